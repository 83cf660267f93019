package advisor

import (
	"time"

	"trading-advisor/internal/risk"
	"trading-advisor/internal/signal"
)

// RiskLevel classifies the conviction behind a recommendation
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// StrategyDetail is one input signal's normalized share of the recommendation
type StrategyDetail struct {
	StrategyName string  `json:"strategy_name"`
	Timeframe    string  `json:"timeframe"`
	Signal       int     `json:"signal"`
	Confidence   float64 `json:"confidence"`
	Strength     float64 `json:"strength"`
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Reason       string  `json:"reason"`
}

// ContributionBreakdown is the per-strategy transparency record: how much
// the strategy influenced the result and which levels it proposed.
type ContributionBreakdown struct {
	StrategyName           string  `json:"strategy_name"`
	Timeframe              string  `json:"timeframe"`
	Signal                 int     `json:"signal"`
	Confidence             float64 `json:"confidence"`
	Strength               float64 `json:"strength"`
	Score                  float64 `json:"score"`
	Weight                 float64 `json:"weight"` // percent, sums to 100 when any weight exists
	EntryContribution      float64 `json:"entry_contribution"`
	StopLossContribution   float64 `json:"sl_contribution"`
	TakeProfitContribution float64 `json:"tp_contribution"`
	Reason                 string  `json:"reason"`
}

// Recommendation is the terminal output of the aggregation core
type Recommendation struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`

	Action          signal.Action     `json:"action"`
	Confidence      float64           `json:"confidence"`
	EntryRange      signal.EntryRange `json:"entry_range"`
	StopLoss        float64           `json:"stop_loss"`
	TakeProfit      float64           `json:"take_profit"`
	CurrentPrice    float64           `json:"current_price"`
	PrimaryStrategy string            `json:"primary_strategy"`

	SupportingStrategies []string         `json:"supporting_strategies"`
	StrategyDetails      []StrategyDetail `json:"strategy_details"`

	SignalConsensus float64   `json:"signal_consensus"`
	RiskLevel       RiskLevel `json:"risk_level"`

	ContributionBreakdown []ContributionBreakdown `json:"contribution_breakdown"`

	RiskRewardRatio      float64 `json:"risk_reward_ratio"`
	EntryLabel           string  `json:"entry_label"`
	RiskPercentage       float64 `json:"risk_percentage"`
	NormalizedWeightsSum float64 `json:"normalized_weights_sum"`
	PositionSizeUSD      float64 `json:"position_size_usd"`
	PositionSizePct      float64 `json:"position_size_pct"`

	RiskTargets *risk.AggregatedTargets `json:"risk_targets,omitempty"`
}
