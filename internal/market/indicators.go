package market

import "math"

// CalculateATR calculates Average True Range over the trailing period
func CalculateATR(klines []Kline, period int) float64 {
	if len(klines) < period+1 {
		return 0
	}

	trSum := 0.0
	startIdx := len(klines) - period

	for i := startIdx; i < len(klines); i++ {
		high := klines[i].High
		low := klines[i].Low
		prevClose := klines[i-1].Close

		tr := math.Max(
			high-low,
			math.Max(
				math.Abs(high-prevClose),
				math.Abs(low-prevClose),
			),
		)

		trSum += tr
	}

	return trSum / float64(period)
}

// CalculateSMA calculates Simple Moving Average of closes over the trailing period
func CalculateSMA(klines []Kline, period int) float64 {
	if len(klines) < period {
		return 0
	}

	sum := 0.0
	startIdx := len(klines) - period

	for i := startIdx; i < len(klines); i++ {
		sum += klines[i].Close
	}

	return sum / float64(period)
}

// CalculateEMA calculates Exponential Moving Average of closes, seeded with
// the SMA of the first period
func CalculateEMA(klines []Kline, period int) float64 {
	if len(klines) < period {
		return 0
	}

	ema := CalculateSMA(klines[:period], period)
	multiplier := 2.0 / float64(period+1)

	for i := period; i < len(klines); i++ {
		ema = (klines[i].Close * multiplier) + (ema * (1 - multiplier))
	}

	return ema
}

// CalculateRSI calculates the Relative Strength Index over the trailing period
func CalculateRSI(klines []Kline, period int) float64 {
	if len(klines) < period+1 {
		return 50.0 // Neutral RSI
	}

	gains := 0.0
	losses := 0.0

	for i := len(klines) - period; i < len(klines); i++ {
		change := klines[i].Close - klines[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// SMAAt calculates the SMA of closes for the window ending at index endIdx (inclusive).
// Returns 0 when there is not enough data before endIdx.
func SMAAt(klines []Kline, endIdx, period int) float64 {
	if endIdx+1 < period || endIdx >= len(klines) {
		return 0
	}

	sum := 0.0
	for i := endIdx - period + 1; i <= endIdx; i++ {
		sum += klines[i].Close
	}

	return sum / float64(period)
}

// EstimateATR scans the history in ATRTimeframePriority order and returns the
// first usable ATR(period) along with the timeframe it came from. Returns
// (0, "") when no timeframe has enough candles.
func EstimateATR(history History, period int) (float64, string) {
	for _, tf := range ATRTimeframePriority {
		candles, ok := history[tf]
		if !ok || len(candles) < period+1 {
			continue
		}
		if atr := CalculateATR(candles, period); atr > 0 {
			return atr, tf
		}
	}
	return 0, ""
}
