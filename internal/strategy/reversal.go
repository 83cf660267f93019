package strategy

import (
	"fmt"
	"time"

	"trading-advisor/internal/market"
	"trading-advisor/internal/signal"
)

// ReversalConfig configures the RSI reversal strategy
type ReversalConfig struct {
	Period     int     `json:"period"`
	Oversold   float64 `json:"oversold"`
	Overbought float64 `json:"overbought"`
}

// ReversalStrategy signals mean reversion on RSI extremes: buy when oversold,
// sell when overbought, confidence scaling with how deep the extreme is.
type ReversalStrategy struct {
	config ReversalConfig
}

func NewReversalStrategy(config ReversalConfig) *ReversalStrategy {
	if config.Period <= 0 {
		config.Period = 14
	}
	if config.Oversold <= 0 {
		config.Oversold = 30
	}
	if config.Overbought <= config.Oversold {
		config.Overbought = 70
	}
	return &ReversalStrategy{config: config}
}

func (s *ReversalStrategy) Name() string {
	return fmt.Sprintf("rsi_reversal_%d", s.config.Period)
}

func (s *ReversalStrategy) GenerateSignal(klines []market.Kline) (signal.Reading, error) {
	if len(klines) < s.config.Period+1 {
		return signal.Reading{}, ErrInsufficientData
	}

	last := len(klines) - 1
	rsi := market.CalculateRSI(klines, s.config.Period)
	price := klines[last].Close

	reading := signal.Reading{
		Price:     price,
		Timestamp: time.UnixMilli(klines[last].CloseTime).UTC(),
	}

	switch {
	case rsi <= s.config.Oversold:
		depth := (s.config.Oversold - rsi) / s.config.Oversold
		reading.Signal = signal.DirectionBuy
		reading.Strength = signal.Clamp01(0.5 + depth)
		reading.Confidence = signal.Clamp01(0.5 + depth)
		reading.Reason = fmt.Sprintf("RSI %.1f below oversold threshold %.0f", rsi, s.config.Oversold)
	case rsi >= s.config.Overbought:
		depth := (rsi - s.config.Overbought) / (100 - s.config.Overbought)
		reading.Signal = signal.DirectionSell
		reading.Strength = signal.Clamp01(0.5 + depth)
		reading.Confidence = signal.Clamp01(0.5 + depth)
		reading.Reason = fmt.Sprintf("RSI %.1f above overbought threshold %.0f", rsi, s.config.Overbought)
	default:
		reading.Signal = signal.DirectionHold
		reading.Strength = 0.2
		reading.Confidence = 0.3
		reading.Reason = fmt.Sprintf("RSI %.1f in neutral zone", rsi)
	}

	return reading, nil
}

func (s *ReversalStrategy) EntryRange(klines []market.Kline, reading signal.Reading) signal.EntryRange {
	return entryBand(klines, reading.Price)
}

func (s *ReversalStrategy) RiskTargets(klines []market.Kline, reading signal.Reading, price float64) signal.RiskTargets {
	return directionalTargets(klines, reading.Signal, price)
}
