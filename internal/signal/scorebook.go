package signal

// DefaultScore is assumed for strategies with no recorded history
const DefaultScore = 0.5

// StrategyScore is one strategy's historical performance score on a timeframe
type StrategyScore struct {
	StrategyName string  `json:"strategy_name"`
	Score        float64 `json:"score"`
}

// ScoreBook maps a timeframe label to the historical performance scores of
// the strategies that traded it. It is an optional collaborator: a nil book
// resolves every lookup to DefaultScore.
type ScoreBook map[string][]StrategyScore

// Lookup returns the historical score for a strategy. The signal's own
// timeframe is tried first, then every other timeframe; strategies with no
// recorded score default to DefaultScore.
func (b ScoreBook) Lookup(strategyName, timeframe string) float64 {
	if b == nil {
		return DefaultScore
	}

	if score, ok := b.find(timeframe, strategyName); ok {
		return score
	}

	for tf := range b {
		if tf == timeframe {
			continue
		}
		if score, ok := b.find(tf, strategyName); ok {
			return score
		}
	}

	return DefaultScore
}

func (b ScoreBook) find(timeframe, strategyName string) (float64, bool) {
	for _, entry := range b[timeframe] {
		if entry.StrategyName == strategyName {
			return Clamp01(entry.Score), true
		}
	}
	return 0, false
}
