package advisor

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"trading-advisor/internal/signal"
)

func newTestEngine() *Engine {
	return NewEngine(Config{}, nil, nil, zerolog.Nop())
}

func buySignal(name, tf string, confidence, score float64) signal.StrategySignal {
	return signal.StrategySignal{
		StrategyName: name,
		Timeframe:    tf,
		Signal:       signal.DirectionBuy,
		Confidence:   confidence,
		Strength:     confidence,
		Score:        score,
		Price:        100,
		EntryRange:   signal.EntryRange{Min: 99, Max: 101},
		RiskTargets:  signal.RiskTargets{StopLoss: 97, TakeProfit: 106},
	}
}

func holdSignal(name string, confidence float64) signal.StrategySignal {
	return signal.StrategySignal{
		StrategyName: name,
		Timeframe:    "1h",
		Signal:       signal.DirectionHold,
		Confidence:   confidence,
		Strength:     confidence,
		Score:        0.5,
		Price:        100,
	}
}

func TestRecommend_BuyMajorityWithOneHold(t *testing.T) {
	engine := newTestEngine()

	signals := []signal.StrategySignal{
		buySignal("macd_cross", "1h", 0.7, 0.9),
		buySignal("rsi_reversal", "4h", 0.6, 0.8),
		holdSignal("bb_squeeze", 0.3),
	}

	result := engine.Recommend(signals, nil, "balanced")

	if result.Action != signal.ActionBuy {
		t.Fatalf("expected BUY, got %s", result.Action)
	}

	// Confidence is capped at the weakest active weight: 0.6*0.8 = 0.48
	if math.Abs(result.Confidence-0.48) > 1e-9 {
		t.Errorf("expected confidence 0.48, got %f", result.Confidence)
	}

	// One hold of three enters at weight factor clamp(1/3*0.3, 0.15) = 0.1,
	// so consensus = 2 / (2 + 0.1)
	if math.Abs(result.SignalConsensus-2.0/2.1) > 1e-9 {
		t.Errorf("expected consensus %f, got %f", 2.0/2.1, result.SignalConsensus)
	}

	if result.RiskLevel != RiskLow {
		t.Errorf("confidence 0.48 should classify LOW, got %s", result.RiskLevel)
	}
	if result.PrimaryStrategy != "macd_cross" {
		t.Errorf("expected top-weighted buy as primary, got %s", result.PrimaryStrategy)
	}
	if len(result.SupportingStrategies) != 1 || result.SupportingStrategies[0] != "rsi_reversal" {
		t.Errorf("unexpected supporting strategies %v", result.SupportingStrategies)
	}
	if result.ID == "" {
		t.Error("expected a generated ID")
	}
	if result.GeneratedAt.IsZero() {
		t.Error("expected a generation timestamp")
	}
	if result.PositionSizeUSD <= 0 {
		t.Errorf("expected a position size for BUY, got %f", result.PositionSizeUSD)
	}
	if math.Abs(result.NormalizedWeightsSum-1.0) > 1e-9 {
		t.Errorf("expected normalized weights to sum to 1, got %f", result.NormalizedWeightsSum)
	}
}

func TestRecommend_AllHolds(t *testing.T) {
	engine := newTestEngine()

	signals := []signal.StrategySignal{
		holdSignal("a", 0.9),
		holdSignal("b", 0.8),
		holdSignal("c", 0.7),
	}

	result := engine.Recommend(signals, nil, "balanced")

	if result.Action != signal.ActionHold {
		t.Fatalf("expected HOLD, got %s", result.Action)
	}
	if result.Confidence != 0 {
		t.Errorf("all-hold confidence must be exactly 0, got %f", result.Confidence)
	}
	if result.SignalConsensus != 0 {
		t.Errorf("all-hold consensus must be 0, got %f", result.SignalConsensus)
	}
	if result.PositionSizeUSD != 0 {
		t.Errorf("HOLD must not size a position, got %f", result.PositionSizeUSD)
	}
}

func TestRecommend_EmptyInput(t *testing.T) {
	engine := newTestEngine()

	result := engine.Recommend(nil, nil, "balanced")

	if result.Action != signal.ActionHold {
		t.Errorf("expected HOLD, got %s", result.Action)
	}
	if result.PrimaryStrategy != "None" {
		t.Errorf("expected primary \"None\", got %q", result.PrimaryStrategy)
	}
	if result.RiskLevel != RiskLow {
		t.Errorf("expected LOW risk, got %s", result.RiskLevel)
	}
	if result.Confidence != 0 || result.SignalConsensus != 0 {
		t.Errorf("empty input must be fully neutral, got conf %f consensus %f",
			result.Confidence, result.SignalConsensus)
	}
	if result.ID == "" {
		t.Error("expected a generated ID even for the empty result")
	}
}

func TestRecommend_SellMajority(t *testing.T) {
	engine := newTestEngine()

	sell := func(name string) signal.StrategySignal {
		s := buySignal(name, "1h", 0.7, 0.9)
		s.Signal = signal.DirectionSell
		s.EntryRange = signal.EntryRange{Min: 99, Max: 101}
		s.RiskTargets = signal.RiskTargets{StopLoss: 103, TakeProfit: 94}
		return s
	}

	signals := []signal.StrategySignal{
		sell("breakdown"),
		sell("trend_follow"),
		buySignal("contrarian", "1h", 0.7, 0.9),
	}

	result := engine.Recommend(signals, nil, "balanced")
	if result.Action != signal.ActionSell {
		t.Fatalf("expected SELL, got %s", result.Action)
	}
	if result.StopLoss <= result.CurrentPrice {
		t.Errorf("short stop %f should be above price %f", result.StopLoss, result.CurrentPrice)
	}
	if result.TakeProfit >= result.CurrentPrice {
		t.Errorf("short take %f should be below price %f", result.TakeProfit, result.CurrentPrice)
	}
}

func TestRecommend_TieGoesToHold(t *testing.T) {
	engine := newTestEngine()

	sell := buySignal("s", "1h", 0.7, 0.9)
	sell.Signal = signal.DirectionSell

	result := engine.Recommend([]signal.StrategySignal{
		buySignal("b", "1h", 0.7, 0.9),
		sell,
	}, nil, "balanced")

	if result.Action != signal.ActionHold {
		t.Errorf("buy/sell tie should HOLD, got %s", result.Action)
	}
}

func TestRecommend_HoldDominationSuppressesConsensus(t *testing.T) {
	engine := newTestEngine()

	signals := []signal.StrategySignal{
		buySignal("lone_buy", "1h", 0.9, 1.0),
		holdSignal("h1", 0.5),
		holdSignal("h2", 0.5),
		holdSignal("h3", 0.5),
		holdSignal("h4", 0.5),
		holdSignal("h5", 0.5),
	}

	result := engine.Recommend(signals, nil, "balanced")

	if result.Action != signal.ActionBuy {
		t.Fatalf("expected BUY, got %s", result.Action)
	}

	// 5 holds at capped factor 0.15: buy ratio 1/1.75, scaled by the 1/6
	// active share since holds dominate
	expected := (1.0 / 1.75) * (1.0 / 6.0)
	if math.Abs(result.SignalConsensus-expected) > 1e-9 {
		t.Errorf("expected suppressed consensus %f, got %f", expected, result.SignalConsensus)
	}
	if result.SignalConsensus > 0.15 {
		t.Errorf("lone active among neutrals should report weak consensus, got %f", result.SignalConsensus)
	}
}

func TestRecommend_ConfidenceNeverExceedsActiveSignals(t *testing.T) {
	engine := newTestEngine()

	signals := []signal.StrategySignal{
		buySignal("strong", "1h", 0.95, 1.0),
		buySignal("weak", "4h", 0.3, 0.5),
	}

	result := engine.Recommend(signals, nil, "balanced")

	activeMin := 0.3 * 0.5
	if result.Confidence > activeMin+1e-9 {
		t.Errorf("confidence %f exceeds weakest active weight %f", result.Confidence, activeMin)
	}
}

func TestRecommend_RiskLevels(t *testing.T) {
	engine := newTestEngine()

	high := engine.Recommend([]signal.StrategySignal{
		buySignal("a", "1h", 0.9, 1.0),
		buySignal("b", "4h", 0.9, 1.0),
		buySignal("c", "1d", 0.9, 1.0),
	}, nil, "balanced")
	if high.RiskLevel != RiskHigh {
		t.Errorf("three 0.9-weight buys should be HIGH, got %s", high.RiskLevel)
	}

	medium := engine.Recommend([]signal.StrategySignal{
		buySignal("a", "1h", 0.8, 0.9),
		buySignal("b", "4h", 0.8, 0.9),
	}, nil, "balanced")
	if medium.RiskLevel != RiskMedium {
		t.Errorf("two 0.72-weight buys should be MEDIUM, got %s", medium.RiskLevel)
	}

	low := engine.Recommend([]signal.StrategySignal{
		buySignal("a", "1h", 0.5, 0.8),
	}, nil, "balanced")
	if low.RiskLevel != RiskLow {
		t.Errorf("single weak buy should be LOW, got %s", low.RiskLevel)
	}
}

func TestRecommend_StrategyOnTwoTimeframesListedOnce(t *testing.T) {
	engine := newTestEngine()

	signals := []signal.StrategySignal{
		buySignal("macd_cross", "1h", 0.7, 0.9),
		buySignal("macd_cross", "4h", 0.6, 0.8),
		buySignal("rsi_reversal", "1h", 0.5, 0.8),
	}

	result := engine.Recommend(signals, nil, "balanced")

	if result.PrimaryStrategy != "macd_cross" {
		t.Fatalf("expected macd_cross primary, got %s", result.PrimaryStrategy)
	}
	if len(result.SupportingStrategies) != 1 || result.SupportingStrategies[0] != "rsi_reversal" {
		t.Errorf("primary must not repeat in supporting, got %v", result.SupportingStrategies)
	}

	seen := map[string]bool{result.PrimaryStrategy: true}
	for _, name := range result.SupportingStrategies {
		if seen[name] {
			t.Errorf("duplicate strategy %s in supporting list", name)
		}
		seen[name] = true
	}
}

func TestRecommend_ContributionBreakdown(t *testing.T) {
	engine := newTestEngine()

	signals := []signal.StrategySignal{
		buySignal("heavy", "1h", 0.9, 1.0),
		buySignal("light", "4h", 0.3, 0.5),
	}

	result := engine.Recommend(signals, nil, "balanced")

	if len(result.ContributionBreakdown) != 2 {
		t.Fatalf("expected 2 breakdown entries, got %d", len(result.ContributionBreakdown))
	}

	var total float64
	for _, c := range result.ContributionBreakdown {
		total += c.Weight
	}
	if math.Abs(total-100) > 1e-6 {
		t.Errorf("breakdown weights should sum to 100, got %f", total)
	}
	if result.ContributionBreakdown[0].StrategyName != "heavy" {
		t.Errorf("expected breakdown ranked by weight, got %s first",
			result.ContributionBreakdown[0].StrategyName)
	}
}

func TestRecommend_EntryRangeFromPrimarySignals(t *testing.T) {
	engine := newTestEngine()

	a := buySignal("a", "1h", 0.5, 1.0)
	a.EntryRange = signal.EntryRange{Min: 98, Max: 100}
	b := buySignal("b", "4h", 0.5, 1.0)
	b.EntryRange = signal.EntryRange{Min: 100, Max: 102}

	result := engine.Recommend([]signal.StrategySignal{a, b}, nil, "balanced")

	if math.Abs(result.EntryRange.Min-99) > 1e-9 || math.Abs(result.EntryRange.Max-101) > 1e-9 {
		t.Errorf("expected entry range [99, 101], got [%f, %f]",
			result.EntryRange.Min, result.EntryRange.Max)
	}
	if result.EntryRange.Max <= result.EntryRange.Min {
		t.Error("entry range must have positive width")
	}
}

func TestRecommend_UnknownProfileFallsBack(t *testing.T) {
	engine := newTestEngine()

	result := engine.Recommend([]signal.StrategySignal{
		buySignal("a", "1h", 0.7, 0.9),
	}, nil, "yolo")

	if result.Action != signal.ActionBuy {
		t.Errorf("unknown profile must still produce a recommendation, got %s", result.Action)
	}
	if result.StopLoss <= 0 || result.TakeProfit <= 0 {
		t.Errorf("expected populated targets, got SL %f TP %f", result.StopLoss, result.TakeProfit)
	}
}

func BenchmarkRecommend(b *testing.B) {
	engine := newTestEngine()
	signals := []signal.StrategySignal{
		buySignal("a", "1h", 0.7, 0.9),
		buySignal("b", "4h", 0.6, 0.8),
		holdSignal("c", 0.3),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Recommend(signals, nil, "balanced")
	}
}
