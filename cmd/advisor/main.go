package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"trading-advisor/config"
	"trading-advisor/internal/advisor"
	"trading-advisor/internal/levels"
	"trading-advisor/internal/logging"
	"trading-advisor/internal/market"
	"trading-advisor/internal/signal"
	"trading-advisor/internal/strategy"
)

// request is the JSON input: pre-generated strategy signals plus the price
// history and optional historical scores
type request struct {
	RiskProfile string                  `json:"risk_profile"`
	Signals     []signal.StrategySignal `json:"signals"`
	History     market.History          `json:"history"`
	Scores      signal.ScoreBook        `json:"scores,omitempty"`
}

func main() {
	configPath := flag.String("config", "config.json", "path to configuration file")
	requestPath := flag.String("request", "", "path to request JSON (use - for stdin)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	req, err := readRequest(*requestPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read request")
	}

	// Without pre-generated signals, run the built-in strategies over the history
	if len(req.Signals) == 0 && len(req.History) > 0 {
		collector := advisor.NewCollector(req.Scores, logger)
		req.Signals = collector.Collect(builtinStrategies(), req.History)
	}

	// Scores may be supplied in the request rather than generated live
	for i := range req.Signals {
		if req.Signals[i].Score == 0 {
			req.Signals[i].Score = req.Scores.Lookup(req.Signals[i].StrategyName, req.Signals[i].Timeframe)
		}
	}

	engine := advisor.NewEngine(cfg.Consensus, cfg.ProfileTable(), levels.NewDetector(cfg.Levels), logger)
	result := engine.Recommend(req.Signals, req.History, req.RiskProfile)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(out))
}

func readRequest(path string) (*request, error) {
	if path == "" {
		return nil, fmt.Errorf("no request file given (use -request)")
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading request: %w", err)
	}

	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("error parsing request: %w", err)
	}
	return &req, nil
}

func builtinStrategies() []signal.Strategy {
	return []signal.Strategy{
		strategy.NewCrossoverStrategy(strategy.CrossoverConfig{FastPeriod: 20, SlowPeriod: 50}),
		strategy.NewCrossoverStrategy(strategy.CrossoverConfig{FastPeriod: 12, SlowPeriod: 26, UseEMA: true}),
		strategy.NewReversalStrategy(strategy.ReversalConfig{}),
		strategy.NewBreakoutStrategy(strategy.BreakoutConfig{}),
	}
}
