package signal

import "time"

// Direction is a strategy's directional call: -1 sell, 0 hold, 1 buy
type Direction int

const (
	DirectionSell Direction = -1
	DirectionHold Direction = 0
	DirectionBuy  Direction = 1
)

// Action is the final recommended action
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// EntryRange is the price band within which entering a position is considered favorable
type EntryRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Valid reports whether the range is a usable positive-width band
func (r EntryRange) Valid() bool {
	return r.Min > 0 && r.Max > r.Min
}

// Mid returns the midpoint of the range
func (r EntryRange) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// RiskTargets holds a strategy's proposed stop-loss/take-profit pair
type RiskTargets struct {
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
}

// StrategySignal is one strategy's full output for one timeframe.
// Produced once per (strategy, timeframe) per aggregation call and never
// shared across calls.
type StrategySignal struct {
	StrategyName string      `json:"strategy_name"`
	Signal       Direction   `json:"signal"`
	Strength     float64     `json:"strength"`
	Confidence   float64     `json:"confidence"`
	Reason       string      `json:"reason"`
	Price        float64     `json:"price"`
	Timestamp    time.Time   `json:"timestamp"`
	Score        float64     `json:"score"`
	Timeframe    string      `json:"timeframe"`
	EntryRange   EntryRange  `json:"entry_range"`
	RiskTargets  RiskTargets `json:"risk_targets"`
}

// Weight is the signal's raw influence on the recommendation
func (s StrategySignal) Weight() float64 {
	return Clamp01(s.Confidence) * Clamp01(s.Score)
}

// RiskTarget is the reduced view of a StrategySignal consumed by the risk
// target aggregator.
type RiskTarget struct {
	StrategyName string  `json:"strategy_name"`
	StopLoss     float64 `json:"stop_loss"`
	TakeProfit   float64 `json:"take_profit"`
	Confidence   float64 `json:"confidence"`
	Strength     float64 `json:"strength"`
	Timeframe    string  `json:"timeframe"`
}

// ToRiskTarget reduces the signal to the fields the risk target aggregator needs
func (s StrategySignal) ToRiskTarget() RiskTarget {
	return RiskTarget{
		StrategyName: s.StrategyName,
		StopLoss:     s.RiskTargets.StopLoss,
		TakeProfit:   s.RiskTargets.TakeProfit,
		Confidence:   s.Confidence,
		Strength:     s.Strength,
		Timeframe:    s.Timeframe,
	}
}
