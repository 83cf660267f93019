package market

// Kline represents a single OHLCV candle
type Kline struct {
	OpenTime  int64   `json:"open_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"close_time"`
}

// History maps a timeframe label ("1h", "1d", ...) to its candle series,
// chronologically ordered with no duplicate timestamps.
type History map[string][]Kline

// ATRTimeframePriority is the order in which timeframes are checked when
// estimating volatility. Higher timeframes carry more signal, so they win.
var ATRTimeframePriority = []string{"1w", "1d", "4h", "2h", "1h", "12h"}

// LevelTimeframePriority is the order in which timeframes are checked when
// detecting support/resistance levels.
var LevelTimeframePriority = []string{"1w", "1d", "4h", "1h"}

// BestSeries returns the first timeframe from the priority list that has at
// least minCandles of data, along with its candles. Returns an empty string
// when no timeframe qualifies.
func (h History) BestSeries(priority []string, minCandles int) (string, []Kline) {
	for _, tf := range priority {
		if candles, ok := h[tf]; ok && len(candles) >= minCandles {
			return tf, candles
		}
	}
	return "", nil
}

// LastClose returns the close of the most recent candle, or 0 for an empty series.
func LastClose(klines []Kline) float64 {
	if len(klines) == 0 {
		return 0
	}
	return klines[len(klines)-1].Close
}
