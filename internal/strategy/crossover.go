package strategy

import (
	"fmt"
	"time"

	"trading-advisor/internal/market"
	"trading-advisor/internal/signal"
)

// CrossoverConfig configures the moving-average crossover strategy
type CrossoverConfig struct {
	FastPeriod int  `json:"fast_period"`
	SlowPeriod int  `json:"slow_period"`
	UseEMA     bool `json:"use_ema"` // exponential averages instead of simple
}

// CrossoverStrategy signals on fast/slow moving-average crossovers: buy when
// the fast average crosses above the slow, sell when it crosses below,
// otherwise a weak lean in the direction of the current spread.
type CrossoverStrategy struct {
	config CrossoverConfig
}

func NewCrossoverStrategy(config CrossoverConfig) *CrossoverStrategy {
	if config.FastPeriod <= 0 {
		config.FastPeriod = 20
	}
	if config.SlowPeriod <= config.FastPeriod {
		config.SlowPeriod = config.FastPeriod * 2
	}
	return &CrossoverStrategy{config: config}
}

func (s *CrossoverStrategy) Name() string {
	kind := "sma"
	if s.config.UseEMA {
		kind = "ema"
	}
	return fmt.Sprintf("%s_crossover_%d_%d", kind, s.config.FastPeriod, s.config.SlowPeriod)
}

// averageAt computes the configured moving average for the window ending at
// endIdx (inclusive)
func (s *CrossoverStrategy) averageAt(klines []market.Kline, endIdx, period int) float64 {
	if !s.config.UseEMA {
		return market.SMAAt(klines, endIdx, period)
	}
	if endIdx+1 < period || endIdx >= len(klines) {
		return 0
	}
	return market.CalculateEMA(klines[:endIdx+1], period)
}

func (s *CrossoverStrategy) GenerateSignal(klines []market.Kline) (signal.Reading, error) {
	if len(klines) < s.config.SlowPeriod+1 {
		return signal.Reading{}, ErrInsufficientData
	}

	last := len(klines) - 1
	currFast := s.averageAt(klines, last, s.config.FastPeriod)
	currSlow := s.averageAt(klines, last, s.config.SlowPeriod)
	prevFast := s.averageAt(klines, last-1, s.config.FastPeriod)
	prevSlow := s.averageAt(klines, last-1, s.config.SlowPeriod)

	price := klines[last].Close
	spread := (currFast - currSlow) / currSlow

	reading := signal.Reading{
		Price:     price,
		Timestamp: time.UnixMilli(klines[last].CloseTime).UTC(),
	}

	label := "SMA"
	if s.config.UseEMA {
		label = "EMA"
	}

	switch {
	case prevFast <= prevSlow && currFast > currSlow:
		reading.Signal = signal.DirectionBuy
		reading.Strength = signal.Clamp01(spread * 100)
		reading.Confidence = signal.Clamp01(0.5 + spread*50)
		reading.Reason = fmt.Sprintf("Fast %s(%d) crossed above slow %s(%d)", label, s.config.FastPeriod, label, s.config.SlowPeriod)
	case prevFast >= prevSlow && currFast < currSlow:
		reading.Signal = signal.DirectionSell
		reading.Strength = signal.Clamp01(-spread * 100)
		reading.Confidence = signal.Clamp01(0.5 - spread*50)
		reading.Reason = fmt.Sprintf("Fast %s(%d) crossed below slow %s(%d)", label, s.config.FastPeriod, label, s.config.SlowPeriod)
	default:
		reading.Signal = signal.DirectionHold
		reading.Strength = signal.Clamp01(spread * 10)
		reading.Confidence = 0.3
		reading.Reason = fmt.Sprintf("No crossover, fast/slow spread %.3f%%", spread*100)
	}

	return reading, nil
}

func (s *CrossoverStrategy) EntryRange(klines []market.Kline, reading signal.Reading) signal.EntryRange {
	return entryBand(klines, reading.Price)
}

func (s *CrossoverStrategy) RiskTargets(klines []market.Kline, reading signal.Reading, price float64) signal.RiskTargets {
	return directionalTargets(klines, reading.Signal, price)
}
