package advisor

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trading-advisor/internal/levels"
	"trading-advisor/internal/market"
	"trading-advisor/internal/risk"
	"trading-advisor/internal/signal"
)

// Config holds the consensus tuning constants. The damping and cap values
// are empirically chosen; they are exposed here as tunables rather than
// re-derived.
type Config struct {
	MinActionRatio   float64 `json:"min_action_ratio"`   // weakest winning ratio that still acts
	NeutralDamping   float64 `json:"neutral_damping"`    // hold_ratio multiplier for neutral weight
	NeutralWeightCap float64 `json:"neutral_weight_cap"` // upper bound on the neutral weight factor
	HoldCapScale     float64 `json:"hold_cap_scale"`     // consensus cap slope when holds dominate
	HoldCapBase      float64 `json:"hold_cap_base"`      // consensus cap intercept when holds dominate

	HighConfidence   float64 `json:"high_confidence"`   // risk level HIGH threshold
	HighSupporting   int     `json:"high_supporting"`   // signals required for HIGH
	MediumConfidence float64 `json:"medium_confidence"` // risk level MEDIUM threshold
	MediumSupporting int     `json:"medium_supporting"` // signals required for MEDIUM

	AccountCapital float64 `json:"account_capital"` // capital base for position sizing
}

// DefaultConfig returns the standard consensus settings
func DefaultConfig() Config {
	return Config{
		MinActionRatio:   0.05,
		NeutralDamping:   0.3,
		NeutralWeightCap: 0.15,
		HoldCapScale:     0.5,
		HoldCapBase:      0.3,
		HighConfidence:   0.8,
		HighSupporting:   3,
		MediumConfidence: 0.6,
		MediumSupporting: 2,
		AccountCapital:   risk.DefaultAccountCapital,
	}
}

// Engine is the signal consensus and action selector: it reduces a list of
// strategy signals plus price history to a single recommendation. Engines
// are stateless and safe for concurrent use.
type Engine struct {
	cfg      Config
	profiles map[risk.Profile]risk.ProfileConfig
	riskAgg  *risk.Aggregator
	logger   zerolog.Logger
}

// NewEngine creates an engine. Nil profiles use the default table; a zero
// Config is replaced with DefaultConfig.
func NewEngine(cfg Config, profiles map[risk.Profile]risk.ProfileConfig, detector *levels.Detector, logger zerolog.Logger) *Engine {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if profiles == nil {
		profiles = risk.DefaultProfiles()
	}
	return &Engine{
		cfg:      cfg,
		profiles: profiles,
		riskAgg:  risk.NewAggregator(profiles, detector, logger),
		logger:   logger.With().Str("component", "AdvisorEngine").Logger(),
	}
}

// Recommend synthesizes the signals into one actionable recommendation.
// Every code path returns a fully populated result; there is no error case.
func (e *Engine) Recommend(signals []signal.StrategySignal, history market.History, profileName string) *Recommendation {
	profile := risk.ParseProfile(profileName)

	if len(signals) == 0 {
		return e.emptyResult()
	}

	buys, sells, holds := partition(signals)
	activeCount := len(buys) + len(sells)
	holdCount := len(holds)
	total := len(signals)

	buyRatio, sellRatio, holdRatio := e.ratios(len(buys), len(sells), holdCount, activeCount, total)

	action := e.selectAction(buyRatio, sellRatio, holdRatio, activeCount, signals)
	primary := primarySet(action, buys, sells, holds)

	confidence := e.actionConfidence(action, primary, buys, sells, activeCount)
	consensus := e.consensus(buyRatio, sellRatio, activeCount, holdCount, total)
	riskLevel := e.riskLevel(confidence, len(primary))

	currentPrice := meanPrice(signals)
	entry := AggregateEntryRange(primary)

	targets := make([]signal.RiskTarget, 0, len(primary))
	for _, s := range primary {
		targets = append(targets, s.ToRiskTarget())
	}
	aggregated := e.riskAgg.Aggregate(targets, history, currentPrice, action, entry, profile)

	details, weightsSum := strategyDetails(signals)
	breakdown := contributionBreakdown(signals)
	primaryName, supporting := rankStrategies(details, primary)

	profileCfg := risk.ProfileSettings(e.profiles, profile)
	var position risk.PositionSize
	if action != signal.ActionHold {
		position = risk.CalculatePositionSize(currentPrice, aggregated.StopLoss, e.cfg.AccountCapital, profileCfg)
	}

	result := &Recommendation{
		ID:                    uuid.New().String(),
		GeneratedAt:           time.Now().UTC(),
		Action:                action,
		Confidence:            confidence,
		EntryRange:            entry,
		StopLoss:              aggregated.StopLoss,
		TakeProfit:            aggregated.TakeProfit,
		CurrentPrice:          currentPrice,
		PrimaryStrategy:       primaryName,
		SupportingStrategies:  supporting,
		StrategyDetails:       details,
		SignalConsensus:       consensus,
		RiskLevel:             riskLevel,
		ContributionBreakdown: breakdown,
		RiskRewardRatio:       risk.RiskRewardRatio(action, currentPrice, aggregated.StopLoss, aggregated.TakeProfit),
		EntryLabel:            risk.EntryLabel(action, currentPrice, entry),
		RiskPercentage:        risk.RiskPercentage(action, currentPrice, aggregated.StopLoss),
		NormalizedWeightsSum:  weightsSum,
		PositionSizeUSD:       position.NotionalUSD,
		PositionSizePct:       position.PctOfCapital,
		RiskTargets:           aggregated,
	}

	e.logger.Info().
		Str("action", string(action)).
		Float64("confidence", confidence).
		Float64("consensus", consensus).
		Str("risk_level", string(riskLevel)).
		Int("buy_signals", len(buys)).
		Int("sell_signals", len(sells)).
		Int("hold_signals", holdCount).
		Str("primary_strategy", primaryName).
		Msg("Recommendation assembled")

	return result
}

// emptyResult is the canonical neutral output for an empty signal list
func (e *Engine) emptyResult() *Recommendation {
	return &Recommendation{
		ID:                    uuid.New().String(),
		GeneratedAt:           time.Now().UTC(),
		Action:                signal.ActionHold,
		PrimaryStrategy:       "None",
		SupportingStrategies:  []string{},
		StrategyDetails:       []StrategyDetail{},
		ContributionBreakdown: []ContributionBreakdown{},
		RiskLevel:             RiskLow,
		EntryLabel:            risk.EntryLabel(signal.ActionHold, 0, signal.EntryRange{}),
	}
}

// ratios computes the buy/sell/hold fractions of the effective total. Holds
// never fully count: they enter at a damped weight so a sea of neutrals
// cannot manufacture conviction.
func (e *Engine) ratios(buyCount, sellCount, holdCount, activeCount, total int) (buyRatio, sellRatio, holdRatio float64) {
	if activeCount == 0 {
		return 0, 0, 0
	}

	weightedHold := 0.0
	if holdCount > 0 {
		rawHoldRatio := float64(holdCount) / float64(total)
		factor := signal.Clamp(rawHoldRatio*e.cfg.NeutralDamping, 0, e.cfg.NeutralWeightCap)
		weightedHold = float64(holdCount) * factor
	}

	effectiveTotal := float64(activeCount) + weightedHold
	return float64(buyCount) / effectiveTotal,
		float64(sellCount) / effectiveTotal,
		weightedHold / effectiveTotal
}

// selectAction picks the direction whose ratio strictly dominates, subject
// to the minimum action threshold. With no active signals the most confident
// of the top three signals may still set the direction.
func (e *Engine) selectAction(buyRatio, sellRatio, holdRatio float64, activeCount int, signals []signal.StrategySignal) signal.Action {
	if activeCount == 0 {
		if best := mostConfident(signals, 3); best != nil && best.Confidence >= e.cfg.MinActionRatio {
			return directionAction(best.Signal)
		}
		return signal.ActionHold
	}

	switch {
	case buyRatio > sellRatio && buyRatio > holdRatio && buyRatio >= e.cfg.MinActionRatio:
		return signal.ActionBuy
	case sellRatio > buyRatio && sellRatio > holdRatio && sellRatio >= e.cfg.MinActionRatio:
		return signal.ActionSell
	default:
		return signal.ActionHold
	}
}

// actionConfidence is the mean confidence*score of the chosen action's
// signals, capped so no weighting pushes it above what any active signal
// could justify on its own.
func (e *Engine) actionConfidence(action signal.Action, primary, buys, sells []signal.StrategySignal, activeCount int) float64 {
	if action == signal.ActionHold && activeCount == 0 {
		return 0
	}
	if len(primary) == 0 {
		return 0
	}

	values := make([]float64, len(primary))
	for i, s := range primary {
		values[i] = s.Weight()
	}
	confidence := signal.Mean(values)

	// Anti-inflation caps over the active signals
	if activeCount > 0 {
		activeMean, activeMin := meanAndMin(append(append([]signal.StrategySignal{}, buys...), sells...))
		if confidence > activeMean {
			confidence = activeMean
		}
		if confidence > activeMin {
			confidence = activeMin
		}
	}

	return signal.Clamp01(confidence)
}

// consensus is the winning directional ratio, suppressed when neutrals
// outnumber the actives
func (e *Engine) consensus(buyRatio, sellRatio float64, activeCount, holdCount, total int) float64 {
	if activeCount == 0 {
		return 0
	}

	consensus := math.Max(buyRatio, sellRatio)
	if holdCount > activeCount {
		activeShare := float64(activeCount) / float64(total)
		scaled := consensus * activeShare
		if consensus > 0.5 {
			capped := e.cfg.HoldCapScale*activeShare + e.cfg.HoldCapBase
			if scaled > capped {
				scaled = capped
			}
		}
		consensus = scaled
	}

	return signal.Clamp01(consensus)
}

// riskLevel classifies conviction from confidence and breadth of support
func (e *Engine) riskLevel(confidence float64, supporting int) RiskLevel {
	switch {
	case confidence >= e.cfg.HighConfidence && supporting >= e.cfg.HighSupporting:
		return RiskHigh
	case confidence >= e.cfg.MediumConfidence && supporting >= e.cfg.MediumSupporting:
		return RiskMedium
	default:
		return RiskLow
	}
}

// partition splits signals into buy, sell and hold sets
func partition(signals []signal.StrategySignal) (buys, sells, holds []signal.StrategySignal) {
	for _, s := range signals {
		switch s.Signal {
		case signal.DirectionBuy:
			buys = append(buys, s)
		case signal.DirectionSell:
			sells = append(sells, s)
		default:
			holds = append(holds, s)
		}
	}
	return buys, sells, holds
}

func primarySet(action signal.Action, buys, sells, holds []signal.StrategySignal) []signal.StrategySignal {
	switch action {
	case signal.ActionBuy:
		return buys
	case signal.ActionSell:
		return sells
	default:
		return holds
	}
}

// mostConfident returns the most confident of the top-n-by-confidence signals
func mostConfident(signals []signal.StrategySignal, n int) *signal.StrategySignal {
	if len(signals) == 0 {
		return nil
	}

	ranked := append([]signal.StrategySignal{}, signals...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Confidence > ranked[j].Confidence })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return &ranked[0]
}

func directionAction(d signal.Direction) signal.Action {
	switch d {
	case signal.DirectionBuy:
		return signal.ActionBuy
	case signal.DirectionSell:
		return signal.ActionSell
	default:
		return signal.ActionHold
	}
}

// meanAndMin computes the mean and minimum of confidence*score over signals
func meanAndMin(signals []signal.StrategySignal) (mean, minimum float64) {
	if len(signals) == 0 {
		return 0, 0
	}
	minimum = math.Inf(1)
	sum := 0.0
	for _, s := range signals {
		w := s.Weight()
		sum += w
		if w < minimum {
			minimum = w
		}
	}
	return sum / float64(len(signals)), minimum
}

// meanPrice averages the positive signal prices
func meanPrice(signals []signal.StrategySignal) float64 {
	sum := 0.0
	count := 0
	for _, s := range signals {
		if s.Price > 0 {
			sum += s.Price
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// strategyDetails builds the normalized, ranked weight table over all input
// signals. The second return is the sum of normalized weights (1.0, or 0
// when no signal carried weight).
func strategyDetails(signals []signal.StrategySignal) ([]StrategyDetail, float64) {
	weights := make([]float64, len(signals))
	for i, s := range signals {
		weights[i] = s.Weight()
	}
	normalized := signal.NormalizeWeights(weights)

	sum := 0.0
	details := make([]StrategyDetail, len(signals))
	for i, s := range signals {
		sum += normalized[i]
		details[i] = StrategyDetail{
			StrategyName: s.StrategyName,
			Timeframe:    s.Timeframe,
			Signal:       int(s.Signal),
			Confidence:   s.Confidence,
			Strength:     s.Strength,
			Score:        s.Score,
			Weight:       normalized[i],
			Reason:       s.Reason,
		}
	}

	sort.SliceStable(details, func(i, j int) bool { return details[i].Weight > details[j].Weight })
	return details, sum
}

// contributionBreakdown builds the transparency records; weights are
// percentages summing to 100 across all input signals when any weight exists.
func contributionBreakdown(signals []signal.StrategySignal) []ContributionBreakdown {
	weights := make([]float64, len(signals))
	for i, s := range signals {
		weights[i] = s.Weight()
	}
	normalized := signal.NormalizeWeights(weights)

	breakdown := make([]ContributionBreakdown, len(signals))
	for i, s := range signals {
		breakdown[i] = ContributionBreakdown{
			StrategyName:           s.StrategyName,
			Timeframe:              s.Timeframe,
			Signal:                 int(s.Signal),
			Confidence:             s.Confidence,
			Strength:               s.Strength,
			Score:                  s.Score,
			Weight:                 normalized[i] * 100,
			EntryContribution:      s.EntryRange.Mid(),
			StopLossContribution:   s.RiskTargets.StopLoss,
			TakeProfitContribution: s.RiskTargets.TakeProfit,
			Reason:                 s.Reason,
		}
	}

	sort.SliceStable(breakdown, func(i, j int) bool { return breakdown[i].Weight > breakdown[j].Weight })
	return breakdown
}

// rankStrategies picks the primary strategy (top-weighted among the action's
// signals, falling back to the top overall) and the remaining supporters.
func rankStrategies(details []StrategyDetail, primary []signal.StrategySignal) (string, []string) {
	if len(details) == 0 {
		return "None", []string{}
	}

	inPrimary := make(map[string]bool, len(primary))
	for _, s := range primary {
		inPrimary[s.StrategyName] = true
	}

	// A strategy signalling on several timeframes appears once, at its
	// highest-weighted entry
	seen := make(map[string]bool, len(details))
	primaryName := ""
	supporting := []string{}
	for _, d := range details {
		if !inPrimary[d.StrategyName] || seen[d.StrategyName] {
			continue
		}
		seen[d.StrategyName] = true
		if primaryName == "" {
			primaryName = d.StrategyName
			continue
		}
		supporting = append(supporting, d.StrategyName)
	}

	if primaryName == "" {
		primaryName = details[0].StrategyName
	}
	return primaryName, supporting
}
