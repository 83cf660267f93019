package risk

import (
	"math"

	"trading-advisor/internal/signal"
)

// DefaultAccountCapital is assumed when configuration supplies none
const DefaultAccountCapital = 10000.0

// PositionSize is the notional and capital share to commit to a trade
type PositionSize struct {
	NotionalUSD  float64 `json:"position_size_usd"`
	PctOfCapital float64 `json:"position_size_pct"`
}

// CalculatePositionSize converts entry price, stop-loss and the profile's
// risk budget into a position. Invalid inputs produce a zero position.
func CalculatePositionSize(price, stopLoss, accountCapital float64, cfg ProfileConfig) PositionSize {
	if price <= 0 || stopLoss <= 0 || price == stopLoss {
		return PositionSize{}
	}
	if accountCapital <= 0 {
		accountCapital = DefaultAccountCapital
	}

	riskAmount := accountCapital * (cfg.RiskPerTradePct / 100)
	riskPerUnit := math.Abs(price - stopLoss)

	units := riskAmount / riskPerUnit
	notional := units * price

	return PositionSize{
		NotionalUSD:  notional,
		PctOfCapital: notional / accountCapital,
	}
}

// RiskRewardRatio computes reward distance over risk distance relative to
// the action direction; 0 for HOLD or non-positive risk.
func RiskRewardRatio(action signal.Action, price, stopLoss, takeProfit float64) float64 {
	if action == signal.ActionHold {
		return 0
	}
	return riskReward(action, price, stopLoss, takeProfit)
}

// RiskPercentage is the stop distance as a percentage of price; 0 for HOLD
func RiskPercentage(action signal.Action, price, stopLoss float64) float64 {
	if action == signal.ActionHold || price <= 0 {
		return 0
	}
	return math.Abs(price-stopLoss) / price * 100
}

// EntryLabel describes where current price sits relative to the entry band,
// for display only.
func EntryLabel(action signal.Action, price float64, entry signal.EntryRange) string {
	if action == signal.ActionHold {
		return "No entry - holding"
	}
	if !entry.Valid() {
		return string(action) + " at market"
	}

	var zone string
	switch {
	case price < entry.Min:
		zone = "below entry range"
	case price > entry.Max:
		zone = "above entry range"
	case price <= entry.Mid():
		zone = "in lower half of entry range"
	default:
		zone = "in upper half of entry range"
	}

	return string(action) + " " + zone
}
