package risk

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"trading-advisor/internal/levels"
	"trading-advisor/internal/market"
	"trading-advisor/internal/signal"
)

const (
	atrPeriod = 14

	// Neutral defaults when no usable target exists
	fallbackStopPct      = 0.98
	fallbackTakePct      = 1.04
	fallbackShortStopPct = 1.02
	fallbackRiskReward   = 2.0

	// SL/TP clearance from the entry band when ATR is unknown
	entryBufferFallbackPct = 0.005

	// How far beyond a support/resistance level a stop may sit
	levelStopClearance = 0.05

	// Minimum candles before level detection is worth running
	minLevelCandles = 30
)

// Contribution is one strategy's share of the aggregated risk targets
type Contribution struct {
	StrategyName string  `json:"strategy_name"`
	Timeframe    string  `json:"timeframe"`
	Weight       float64 `json:"weight"`
	StopLoss     float64 `json:"stop_loss"`
	TakeProfit   float64 `json:"take_profit"`
}

// SRAnalysis summarizes the support/resistance context used for adjustment
type SRAnalysis struct {
	Timeframe          string  `json:"timeframe"`
	LevelCount         int     `json:"level_count"`
	NearestSupport     float64 `json:"nearest_support,omitempty"`
	SupportStrength    float64 `json:"support_strength,omitempty"`
	NearestResistance  float64 `json:"nearest_resistance,omitempty"`
	ResistanceStrength float64 `json:"resistance_strength,omitempty"`
}

// TradeManagement is a snapshot of how the trade would be managed, anchored
// on the most confident contributing strategy
type TradeManagement struct {
	PrimaryStrategy string  `json:"primary_strategy"`
	RiskPercent     float64 `json:"risk_percent"`
	RewardPercent   float64 `json:"reward_percent"`
}

// AggregatedTargets is the combined stop-loss/take-profit recommendation
type AggregatedTargets struct {
	StopLoss              float64          `json:"stop_loss"`
	TakeProfit            float64          `json:"take_profit"`
	Confidence            float64          `json:"confidence"`
	RiskRewardRatio       float64          `json:"risk_reward_ratio"`
	StrategyContributions []Contribution   `json:"strategy_contributions"`
	SupportResistance     *SRAnalysis      `json:"support_resistance_analysis,omitempty"`
	TradeManagement       *TradeManagement `json:"trade_management,omitempty"`
}

// Aggregator combines per-strategy risk targets into one enforced pair
type Aggregator struct {
	profiles map[Profile]ProfileConfig
	detector *levels.Detector
	logger   zerolog.Logger
}

// NewAggregator creates a risk target aggregator
func NewAggregator(profiles map[Profile]ProfileConfig, detector *levels.Detector, logger zerolog.Logger) *Aggregator {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	if detector == nil {
		detector = levels.NewDetector(levels.DefaultConfig())
	}
	return &Aggregator{
		profiles: profiles,
		detector: detector,
		logger:   logger.With().Str("component", "RiskTargetAggregator").Logger(),
	}
}

// Aggregate reduces the targets to one stop-loss/take-profit pair, enforcing
// ATR-based minimum distances, support/resistance adjustments and separation
// from the entry range. It always returns a fully populated result.
func (a *Aggregator) Aggregate(
	targets []signal.RiskTarget,
	history market.History,
	currentPrice float64,
	action signal.Action,
	entry signal.EntryRange,
	profile Profile,
) *AggregatedTargets {
	valid := filterValid(targets)
	if len(valid) == 0 || currentPrice <= 0 {
		return a.fallback(currentPrice)
	}

	stop, take := a.weightedLevels(valid)
	atr, atrTimeframe := market.EstimateATR(history, atrPeriod)
	cfg := ProfileSettings(a.profiles, profile)

	var sr *SRAnalysis
	var relevant levels.Relevant
	if tf, candles := history.BestSeries(market.LevelTimeframePriority, minLevelCandles); tf != "" {
		detected := a.detector.Detect(candles, currentPrice)
		relevant = levels.RelevantLevels(detected, currentPrice, 0)
		sr = buildSRAnalysis(tf, detected, relevant)
	}

	switch action {
	case signal.ActionBuy:
		stop, take = a.enforceLong(stop, take, currentPrice, atr, cfg, entry, relevant)
	case signal.ActionSell:
		stop, take = a.enforceShort(stop, take, currentPrice, atr, cfg, entry, relevant)
	}

	result := &AggregatedTargets{
		StopLoss:              stop,
		TakeProfit:            take,
		Confidence:            aggregateConfidence(valid),
		RiskRewardRatio:       riskReward(action, currentPrice, stop, take),
		StrategyContributions: contributions(valid),
		SupportResistance:     sr,
		TradeManagement:       tradeManagement(valid, currentPrice, stop, take),
	}

	a.logger.Debug().
		Str("action", string(action)).
		Float64("stop_loss", result.StopLoss).
		Float64("take_profit", result.TakeProfit).
		Float64("atr", atr).
		Str("atr_timeframe", atrTimeframe).
		Float64("risk_reward", result.RiskRewardRatio).
		Int("targets", len(valid)).
		Msg("Risk targets aggregated")

	return result
}

// fallback is the fixed neutral default used when nothing usable was supplied
func (a *Aggregator) fallback(currentPrice float64) *AggregatedTargets {
	return &AggregatedTargets{
		StopLoss:              currentPrice * fallbackStopPct,
		TakeProfit:            currentPrice * fallbackTakePct,
		Confidence:            0,
		RiskRewardRatio:       fallbackRiskReward,
		StrategyContributions: []Contribution{},
	}
}

// weightedLevels averages stop/take across targets weighted by
// confidence*strength, falling back to unweighted means when total weight is 0
func (a *Aggregator) weightedLevels(targets []signal.RiskTarget) (stop, take float64) {
	stops := make([]signal.Weighted, 0, len(targets))
	takes := make([]signal.Weighted, 0, len(targets))
	for _, t := range targets {
		w := targetWeight(t)
		stops = append(stops, signal.Weighted{Value: t.StopLoss, Weight: w})
		takes = append(takes, signal.Weighted{Value: t.TakeProfit, Weight: w})
	}

	stop, ok := signal.WeightedMean(stops)
	if !ok {
		stop = plainMean(targets, func(t signal.RiskTarget) float64 { return t.StopLoss })
	}
	take, ok = signal.WeightedMean(takes)
	if !ok {
		take = plainMean(targets, func(t signal.RiskTarget) float64 { return t.TakeProfit })
	}
	return stop, take
}

// enforceLong applies the long-side distance rules in order: ATR minimums,
// support/resistance adjustment, entry-range exclusion.
func (a *Aggregator) enforceLong(
	stop, take, price, atr float64,
	cfg ProfileConfig,
	entry signal.EntryRange,
	relevant levels.Relevant,
) (float64, float64) {
	if atr > 0 {
		maxStop := price - atr*cfg.ATRStopMultiplier
		if stop > maxStop || stop >= price {
			stop = maxStop
		}
		if risk := price - stop; risk > 0 {
			minTake := price + risk*cfg.MinRiskReward
			if take < minTake {
				take = minTake
			}
		}
	} else if stop >= price {
		stop = price * fallbackStopPct
	}

	if sup := relevant.NearestSupport; sup != nil {
		// Stop parked far below support gets pulled back to just beyond it
		if floor := sup.Price * (1 - levelStopClearance); stop < floor {
			stop = floor
		}
	}
	if res := relevant.NearestResistance; res != nil && take > res.Price {
		take = res.Price
	}

	buffer := entryBuffer(price, atr, cfg)
	if entry.Valid() {
		if stop > entry.Min-buffer {
			stop = entry.Min - buffer
		}
		if take < entry.Max+buffer {
			take = entry.Max + buffer
		}
	}

	return stop, take
}

// enforceShort mirrors enforceLong for the short side
func (a *Aggregator) enforceShort(
	stop, take, price, atr float64,
	cfg ProfileConfig,
	entry signal.EntryRange,
	relevant levels.Relevant,
) (float64, float64) {
	if atr > 0 {
		minStop := price + atr*cfg.ATRStopMultiplier
		if stop < minStop || stop <= price {
			stop = minStop
		}
		if risk := stop - price; risk > 0 {
			maxTake := price - risk*cfg.MinRiskReward
			if take > maxTake {
				take = maxTake
			}
		}
	} else if stop <= price {
		stop = price * fallbackShortStopPct
	}

	if res := relevant.NearestResistance; res != nil {
		if ceil := res.Price * (1 + levelStopClearance); stop > ceil {
			stop = ceil
		}
	}
	if sup := relevant.NearestSupport; sup != nil && take < sup.Price {
		take = sup.Price
	}

	buffer := entryBuffer(price, atr, cfg)
	if entry.Valid() {
		if stop < entry.Max+buffer {
			stop = entry.Max + buffer
		}
		if take > entry.Min-buffer {
			take = entry.Min - buffer
		}
	}

	return stop, take
}

// EntryBuffer is the minimum SL/TP clearance from the entry band
func entryBuffer(price, atr float64, cfg ProfileConfig) float64 {
	if atr > 0 {
		return atr * cfg.EntryBufferATRMult
	}
	return price * entryBufferFallbackPct
}

// riskReward computes reward distance over risk distance for the action
// direction, 0 when risk distance is not positive.
func riskReward(action signal.Action, price, stop, take float64) float64 {
	var reward, risk float64
	switch action {
	case signal.ActionBuy:
		reward = take - price
		risk = price - stop
	case signal.ActionSell:
		reward = price - take
		risk = stop - price
	default:
		reward = math.Abs(take - price)
		risk = math.Abs(price - stop)
	}
	if risk <= 0 {
		return 0
	}
	return reward / risk
}

// aggregateConfidence is the strength-weighted mean of target confidences
func aggregateConfidence(targets []signal.RiskTarget) float64 {
	items := make([]signal.Weighted, 0, len(targets))
	for _, t := range targets {
		items = append(items, signal.Weighted{Value: signal.Clamp01(t.Confidence), Weight: signal.Clamp01(t.Strength)})
	}
	mean, ok := signal.WeightedMean(items)
	if !ok {
		mean = plainMean(targets, func(t signal.RiskTarget) float64 { return signal.Clamp01(t.Confidence) })
	}
	return signal.Clamp01(mean)
}

// contributions ranks the targets by normalized weight, highest first
func contributions(targets []signal.RiskTarget) []Contribution {
	weights := make([]float64, len(targets))
	for i, t := range targets {
		weights[i] = targetWeight(t)
	}
	normalized := signal.NormalizeWeights(weights)

	out := make([]Contribution, len(targets))
	for i, t := range targets {
		out[i] = Contribution{
			StrategyName: t.StrategyName,
			Timeframe:    t.Timeframe,
			Weight:       normalized[i],
			StopLoss:     t.StopLoss,
			TakeProfit:   t.TakeProfit,
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}

// tradeManagement builds the snapshot anchored on the most confident target
func tradeManagement(targets []signal.RiskTarget, price, stop, take float64) *TradeManagement {
	if len(targets) == 0 || price <= 0 {
		return nil
	}

	primary := targets[0]
	for _, t := range targets[1:] {
		if t.Confidence > primary.Confidence {
			primary = t
		}
	}

	return &TradeManagement{
		PrimaryStrategy: primary.StrategyName,
		RiskPercent:     math.Abs(price-stop) / price * 100,
		RewardPercent:   math.Abs(take-price) / price * 100,
	}
}

func buildSRAnalysis(timeframe string, detected []levels.Level, relevant levels.Relevant) *SRAnalysis {
	sr := &SRAnalysis{
		Timeframe:  timeframe,
		LevelCount: len(detected),
	}
	if relevant.NearestSupport != nil {
		sr.NearestSupport = relevant.NearestSupport.Price
		sr.SupportStrength = relevant.NearestSupport.Strength
	}
	if relevant.NearestResistance != nil {
		sr.NearestResistance = relevant.NearestResistance.Price
		sr.ResistanceStrength = relevant.NearestResistance.Strength
	}
	return sr
}

// filterValid drops targets with unusable price levels
func filterValid(targets []signal.RiskTarget) []signal.RiskTarget {
	valid := make([]signal.RiskTarget, 0, len(targets))
	for _, t := range targets {
		if t.StopLoss <= 0 || t.TakeProfit <= 0 {
			continue
		}
		if math.IsNaN(t.StopLoss) || math.IsInf(t.StopLoss, 0) ||
			math.IsNaN(t.TakeProfit) || math.IsInf(t.TakeProfit, 0) {
			continue
		}
		valid = append(valid, t)
	}
	return valid
}

func targetWeight(t signal.RiskTarget) float64 {
	return signal.Clamp01(t.Confidence) * signal.Clamp01(t.Strength)
}

func plainMean(targets []signal.RiskTarget, pick func(signal.RiskTarget) float64) float64 {
	values := make([]float64, len(targets))
	for i, t := range targets {
		values[i] = pick(t)
	}
	return signal.Mean(values)
}
