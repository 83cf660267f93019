package advisor

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"trading-advisor/internal/market"
	"trading-advisor/internal/signal"
)

type stubStrategy struct {
	name    string
	reading signal.Reading
	err     error
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) GenerateSignal(history []market.Kline) (signal.Reading, error) {
	return s.reading, s.err
}

func (s *stubStrategy) EntryRange(history []market.Kline, reading signal.Reading) signal.EntryRange {
	if reading.Price <= 0 {
		return signal.EntryRange{}
	}
	return signal.EntryRange{Min: reading.Price * 0.99, Max: reading.Price * 1.01}
}

func (s *stubStrategy) RiskTargets(history []market.Kline, reading signal.Reading, price float64) signal.RiskTargets {
	return signal.RiskTargets{StopLoss: price * 0.98, TakeProfit: price * 1.04}
}

func testHistory() market.History {
	klines := []market.Kline{
		{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000},
		{Open: 100, High: 102, Low: 100, Close: 101.5, Volume: 1200},
	}
	return market.History{"1h": klines, "4h": klines}
}

func TestCollect_OneSignalPerStrategyPerTimeframe(t *testing.T) {
	c := NewCollector(nil, zerolog.Nop())

	strategies := []signal.Strategy{
		&stubStrategy{name: "alpha", reading: signal.Reading{Signal: signal.DirectionBuy, Strength: 0.8, Confidence: 0.7, Price: 100}},
		&stubStrategy{name: "beta", reading: signal.Reading{Signal: signal.DirectionHold, Strength: 0.2, Confidence: 0.4, Price: 100}},
	}

	signals := c.Collect(strategies, testHistory())

	if len(signals) != 4 {
		t.Fatalf("expected 2 strategies x 2 timeframes = 4 signals, got %d", len(signals))
	}

	// Timeframes are visited in sorted order
	if signals[0].Timeframe != "1h" || signals[2].Timeframe != "4h" {
		t.Errorf("expected sorted timeframe order, got %s then %s", signals[0].Timeframe, signals[2].Timeframe)
	}

	first := signals[0]
	if first.StrategyName != "alpha" {
		t.Errorf("expected alpha first, got %s", first.StrategyName)
	}
	if first.Signal != signal.DirectionBuy || first.Confidence != 0.7 {
		t.Errorf("reading not carried through: %+v", first)
	}
	if !first.EntryRange.Valid() {
		t.Errorf("expected the strategy's entry band, got %+v", first.EntryRange)
	}
	if first.RiskTargets.StopLoss <= 0 || first.RiskTargets.TakeProfit <= 0 {
		t.Errorf("expected populated risk targets, got %+v", first.RiskTargets)
	}
	if first.Score != signal.DefaultScore {
		t.Errorf("nil score book should yield the default score, got %f", first.Score)
	}
	if first.Timestamp.IsZero() {
		t.Error("zero reading timestamp should be backfilled")
	}
}

func TestCollect_FailingStrategyIsSkipped(t *testing.T) {
	c := NewCollector(nil, zerolog.Nop())

	strategies := []signal.Strategy{
		&stubStrategy{name: "broken", err: errors.New("insufficient data")},
		&stubStrategy{name: "ok", reading: signal.Reading{Signal: signal.DirectionBuy, Confidence: 0.6, Price: 100}},
	}

	signals := c.Collect(strategies, market.History{"1h": testHistory()["1h"]})

	if len(signals) != 1 {
		t.Fatalf("expected only the working strategy's signal, got %d", len(signals))
	}
	if signals[0].StrategyName != "ok" {
		t.Errorf("unexpected signal from %s", signals[0].StrategyName)
	}
}

func TestCollect_PriceFallsBackToLastClose(t *testing.T) {
	c := NewCollector(nil, zerolog.Nop())

	strategies := []signal.Strategy{
		&stubStrategy{name: "no_price", reading: signal.Reading{Signal: signal.DirectionBuy, Confidence: 0.6}},
	}

	signals := c.Collect(strategies, market.History{"1h": testHistory()["1h"]})

	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].Price != 101.5 {
		t.Errorf("expected last close 101.5, got %f", signals[0].Price)
	}
}

func TestCollect_ScoresFromBook(t *testing.T) {
	book := signal.ScoreBook{
		"1h": {{StrategyName: "alpha", Score: 0.9}},
	}
	c := NewCollector(book, zerolog.Nop())

	strategies := []signal.Strategy{
		&stubStrategy{name: "alpha", reading: signal.Reading{Signal: signal.DirectionBuy, Confidence: 0.6, Price: 100}},
	}

	signals := c.Collect(strategies, market.History{"1h": testHistory()["1h"]})
	if signals[0].Score != 0.9 {
		t.Errorf("expected score 0.9 from the book, got %f", signals[0].Score)
	}
}

func TestCollect_EmptyInputs(t *testing.T) {
	c := NewCollector(nil, zerolog.Nop())

	if got := c.Collect(nil, testHistory()); len(got) != 0 {
		t.Errorf("no strategies should yield no signals, got %d", len(got))
	}
	if got := c.Collect([]signal.Strategy{&stubStrategy{name: "a"}}, nil); len(got) != 0 {
		t.Errorf("no history should yield no signals, got %d", len(got))
	}
	if got := c.Collect([]signal.Strategy{&stubStrategy{name: "a"}}, market.History{"1h": nil}); len(got) != 0 {
		t.Errorf("empty candle list should be skipped, got %d", len(got))
	}
}
