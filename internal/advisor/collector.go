package advisor

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"trading-advisor/internal/market"
	"trading-advisor/internal/signal"
)

// Collector runs a caller-supplied set of strategies over a history map and
// produces the StrategySignal list the engine consumes. Producer failures
// are caught here, at the boundary: a strategy that errors on one timeframe
// is skipped and logged, never surfaced into the aggregation core.
type Collector struct {
	book   signal.ScoreBook
	logger zerolog.Logger
}

// NewCollector creates a collector; a nil score book defaults every
// strategy's historical score.
func NewCollector(book signal.ScoreBook, logger zerolog.Logger) *Collector {
	return &Collector{
		book:   book,
		logger: logger.With().Str("component", "SignalCollector").Logger(),
	}
}

// Collect evaluates every strategy on every timeframe with data, in a stable
// order, and returns the well-formed signals.
func (c *Collector) Collect(strategies []signal.Strategy, history market.History) []signal.StrategySignal {
	timeframes := make([]string, 0, len(history))
	for tf := range history {
		timeframes = append(timeframes, tf)
	}
	sort.Strings(timeframes)

	var signals []signal.StrategySignal
	for _, tf := range timeframes {
		candles := history[tf]
		if len(candles) == 0 {
			continue
		}

		for _, strat := range strategies {
			reading, err := strat.GenerateSignal(candles)
			if err != nil {
				c.logger.Warn().
					Err(err).
					Str("strategy", strat.Name()).
					Str("timeframe", tf).
					Msg("Strategy failed to produce a signal")
				continue
			}

			price := reading.Price
			if price <= 0 {
				price = market.LastClose(candles)
			}
			if reading.Timestamp.IsZero() {
				reading.Timestamp = time.Now().UTC()
			}

			signals = append(signals, signal.StrategySignal{
				StrategyName: strat.Name(),
				Signal:       reading.Signal,
				Strength:     signal.Clamp01(reading.Strength),
				Confidence:   signal.Clamp01(reading.Confidence),
				Reason:       reading.Reason,
				Price:        price,
				Timestamp:    reading.Timestamp,
				Score:        c.book.Lookup(strat.Name(), tf),
				Timeframe:    tf,
				EntryRange:   strat.EntryRange(candles, reading),
				RiskTargets:  strat.RiskTargets(candles, reading, price),
			})
		}
	}

	c.logger.Debug().
		Int("strategies", len(strategies)).
		Int("timeframes", len(timeframes)).
		Int("signals", len(signals)).
		Msg("Signal collection complete")

	return signals
}
