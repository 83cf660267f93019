package signal

// Weighted pairs a value with its aggregation weight
type Weighted struct {
	Value  float64
	Weight float64
}

// WeightedMean computes the weight-averaged value. The second return is false
// when total weight is not positive, in which case callers fall back to an
// unweighted mean or a neutral default.
func WeightedMean(items []Weighted) (float64, bool) {
	sum := 0.0
	totalWeight := 0.0
	for _, it := range items {
		sum += it.Value * it.Weight
		totalWeight += it.Weight
	}
	if totalWeight <= 0 {
		return 0, false
	}
	return sum / totalWeight, true
}

// Mean computes the plain arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Clamp bounds value to [lo, hi]
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Clamp01 bounds value to [0, 1]
func Clamp01(value float64) float64 {
	return Clamp(value, 0, 1)
}

// NormalizeWeights scales weights so they sum to 1.0. When the total is not
// positive every weight comes back as 0.
func NormalizeWeights(weights []float64) []float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}

	normalized := make([]float64, len(weights))
	if total <= 0 {
		return normalized
	}
	for i, w := range weights {
		normalized[i] = w / total
	}
	return normalized
}
