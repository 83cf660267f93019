package advisor

import (
	"math"

	"trading-advisor/internal/signal"
)

const (
	// Band applied around a raw price when a signal carries no usable range
	priceBandPct = 0.002

	// Half-width applied when the aggregated range collapses
	degenerateExpandPct = 0.0005
)

// AggregateEntryRange combines the contributing signals' entry bands into
// one positive-width band, weight-averaged by confidence*score. Signals with
// unusable ranges fall back to a band around their raw price; when nothing
// carries weight the result is the zero range.
func AggregateEntryRange(signals []signal.StrategySignal) signal.EntryRange {
	mins := make([]signal.Weighted, 0, len(signals))
	maxs := make([]signal.Weighted, 0, len(signals))

	for _, s := range signals {
		r := s.EntryRange
		if !usableRange(r) {
			continue
		}
		w := s.Weight()
		mins = append(mins, signal.Weighted{Value: r.Min, Weight: w})
		maxs = append(maxs, signal.Weighted{Value: r.Max, Weight: w})
	}

	if len(mins) == 0 {
		// No valid ranges at all: coerce raw prices into minimal bands
		for _, s := range signals {
			if s.Price <= 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
				continue
			}
			w := s.Weight()
			mins = append(mins, signal.Weighted{Value: s.Price * (1 - priceBandPct), Weight: w})
			maxs = append(maxs, signal.Weighted{Value: s.Price * (1 + priceBandPct), Weight: w})
		}

		low, okLow := signal.WeightedMean(mins)
		high, okHigh := signal.WeightedMean(maxs)
		if !okLow || !okHigh {
			return signal.EntryRange{}
		}
		return ensureWidth(low, high)
	}

	low, okLow := signal.WeightedMean(mins)
	high, okHigh := signal.WeightedMean(maxs)
	if !okLow || !okHigh {
		// Valid ranges but zero total weight: plain mean keeps them usable
		low, high = unweightedBounds(mins, maxs)
	}

	return ensureWidth(low, high)
}

// ensureWidth guarantees a positive-width band by expanding around the midpoint
func ensureWidth(low, high float64) signal.EntryRange {
	if high > low {
		return signal.EntryRange{Min: low, Max: high}
	}
	mid := (low + high) / 2
	return signal.EntryRange{
		Min: mid * (1 - degenerateExpandPct),
		Max: mid * (1 + degenerateExpandPct),
	}
}

func unweightedBounds(mins, maxs []signal.Weighted) (float64, float64) {
	lows := make([]float64, len(mins))
	highs := make([]float64, len(maxs))
	for i := range mins {
		lows[i] = mins[i].Value
		highs[i] = maxs[i].Value
	}
	return signal.Mean(lows), signal.Mean(highs)
}

func usableRange(r signal.EntryRange) bool {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return false
	}
	return r.Max > r.Min && r.Min > 0
}
