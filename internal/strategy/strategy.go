// Package strategy provides reference implementations of the signal.Strategy
// interface. They are intentionally simple: the aggregation core treats
// strategies as black boxes, and these exist so the advisor is usable
// end-to-end without an external signal source.
package strategy

import (
	"errors"

	"trading-advisor/internal/market"
	"trading-advisor/internal/signal"
)

// ErrInsufficientData is returned when the history window is too short for
// the strategy's indicators
var ErrInsufficientData = errors.New("insufficient candle history")

const (
	atrPeriod = 14

	// Fallbacks when ATR cannot be computed
	entryBandFallbackPct = 0.002
	stopFallbackPct      = 0.02

	entryBandATRMult = 0.25
	stopATRMult      = 1.5
	takeRewardMult   = 2.0
)

// entryBand proposes a band around price, ATR-scaled when possible
func entryBand(klines []market.Kline, price float64) signal.EntryRange {
	if price <= 0 {
		return signal.EntryRange{}
	}

	half := price * entryBandFallbackPct
	if atr := market.CalculateATR(klines, atrPeriod); atr > 0 {
		half = atr * entryBandATRMult
	}

	return signal.EntryRange{Min: price - half, Max: price + half}
}

// directionalTargets proposes stop/take around price for the reading's
// direction; HOLD readings get no targets.
func directionalTargets(klines []market.Kline, dir signal.Direction, price float64) signal.RiskTargets {
	if price <= 0 || dir == signal.DirectionHold {
		return signal.RiskTargets{}
	}

	risk := price * stopFallbackPct
	if atr := market.CalculateATR(klines, atrPeriod); atr > 0 {
		risk = atr * stopATRMult
	}

	if dir == signal.DirectionBuy {
		return signal.RiskTargets{
			StopLoss:   price - risk,
			TakeProfit: price + risk*takeRewardMult,
		}
	}
	return signal.RiskTargets{
		StopLoss:   price + risk,
		TakeProfit: price - risk*takeRewardMult,
	}
}
