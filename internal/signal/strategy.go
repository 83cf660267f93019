package signal

import (
	"time"

	"trading-advisor/internal/market"
)

// Reading is the raw directional output of a strategy for one history window
type Reading struct {
	Signal     Direction `json:"signal"`
	Strength   float64   `json:"strength"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	Price      float64   `json:"price"`
	Timestamp  time.Time `json:"timestamp"`
}

// Strategy is the capability contract every signal producer implements.
// Strategies are black boxes to the aggregation core: given candle history
// they return a directional reading plus their own candidate entry band and
// risk levels. The caller supplies the enabled strategies explicitly; there
// is no global registry.
type Strategy interface {
	// Name returns the strategy name used in transparency output
	Name() string

	// GenerateSignal evaluates the history and returns a directional reading
	GenerateSignal(history []market.Kline) (Reading, error)

	// EntryRange proposes the favorable entry band for the reading
	EntryRange(history []market.Kline, reading Reading) EntryRange

	// RiskTargets proposes stop-loss/take-profit for the reading at price
	RiskTargets(history []market.Kline, reading Reading, price float64) RiskTargets
}
