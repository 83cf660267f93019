package strategy

import (
	"fmt"
	"time"

	"trading-advisor/internal/market"
	"trading-advisor/internal/signal"
)

// BreakoutConfig configures the breakout strategy
type BreakoutConfig struct {
	MinVolume float64 `json:"min_volume"` // minimum volume on the reference candle
}

// BreakoutStrategy signals when the latest close escapes the previous
// completed candle's range: above its high is a buy, below its low a sell.
type BreakoutStrategy struct {
	config BreakoutConfig
}

func NewBreakoutStrategy(config BreakoutConfig) *BreakoutStrategy {
	return &BreakoutStrategy{config: config}
}

func (s *BreakoutStrategy) Name() string {
	return "range_breakout"
}

func (s *BreakoutStrategy) GenerateSignal(klines []market.Kline) (signal.Reading, error) {
	if len(klines) < 2 {
		return signal.Reading{}, ErrInsufficientData
	}

	last := klines[len(klines)-1]
	ref := klines[len(klines)-2]
	price := last.Close

	reading := signal.Reading{
		Price:     price,
		Timestamp: time.UnixMilli(last.CloseTime).UTC(),
	}

	if s.config.MinVolume > 0 && ref.Volume < s.config.MinVolume {
		reading.Signal = signal.DirectionHold
		reading.Confidence = 0.2
		reading.Reason = fmt.Sprintf("Volume %.0f below minimum %.0f", ref.Volume, s.config.MinVolume)
		return reading, nil
	}

	width := ref.High - ref.Low

	switch {
	case price > ref.High:
		overshoot := 0.0
		if width > 0 {
			overshoot = (price - ref.High) / width
		}
		reading.Signal = signal.DirectionBuy
		reading.Strength = signal.Clamp01(0.5 + overshoot)
		reading.Confidence = signal.Clamp01(0.5 + overshoot/2)
		reading.Reason = fmt.Sprintf("Price %.2f broke above previous candle high %.2f", price, ref.High)
	case price < ref.Low:
		overshoot := 0.0
		if width > 0 {
			overshoot = (ref.Low - price) / width
		}
		reading.Signal = signal.DirectionSell
		reading.Strength = signal.Clamp01(0.5 + overshoot)
		reading.Confidence = signal.Clamp01(0.5 + overshoot/2)
		reading.Reason = fmt.Sprintf("Price %.2f broke below previous candle low %.2f", price, ref.Low)
	default:
		reading.Signal = signal.DirectionHold
		reading.Strength = 0.1
		reading.Confidence = 0.3
		reading.Reason = fmt.Sprintf("Price %.2f inside previous candle range [%.2f, %.2f]", price, ref.Low, ref.High)
	}

	return reading, nil
}

func (s *BreakoutStrategy) EntryRange(klines []market.Kline, reading signal.Reading) signal.EntryRange {
	return entryBand(klines, reading.Price)
}

func (s *BreakoutStrategy) RiskTargets(klines []market.Kline, reading signal.Reading, price float64) signal.RiskTargets {
	return directionalTargets(klines, reading.Signal, price)
}
