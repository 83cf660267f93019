package levels

import (
	"math"
	"sort"

	"trading-advisor/internal/market"
)

// LevelType classifies a price level relative to current price
type LevelType string

const (
	Support    LevelType = "support"
	Resistance LevelType = "resistance"
)

// Level is a detected support/resistance price level
type Level struct {
	Price         float64   `json:"price"`
	Strength      float64   `json:"strength"`
	Type          LevelType `json:"level_type"`
	Touches       int       `json:"touches"`
	LastTouch     int64     `json:"last_touch,omitempty"`
	VolumeProfile float64   `json:"volume_profile,omitempty"`
}

// Config tunes level detection
type Config struct {
	Tolerance         float64 `json:"tolerance"`          // touch band around a level, fraction of price
	MinTouches        int     `json:"min_touches"`        // required touches to confirm a level
	StrengthThreshold float64 `json:"strength_threshold"` // weakest level kept
	PivotLookback     int     `json:"pivot_lookback"`     // rolling window for pivot extrema
	VolumeBins        int     `json:"volume_bins"`        // close-price buckets for the volume profile
	VolumeFloor       float64 `json:"volume_floor"`       // bucket volume as fraction of peak bucket
	ProximityCutoff   float64 `json:"proximity_cutoff"`   // levels this close to price are not actionable
}

// DefaultConfig returns the standard detection settings
func DefaultConfig() Config {
	return Config{
		Tolerance:         0.005,
		MinTouches:        2,
		StrengthThreshold: 0.3,
		PivotLookback:     10,
		VolumeBins:        50,
		VolumeFloor:       0.30,
		ProximityCutoff:   0.01,
	}
}

// maPeriods are the moving averages checked for confluence
var maPeriods = []int{20, 50, 100, 200}

// Detector extracts support/resistance levels from candle history
type Detector struct {
	cfg Config
}

// NewDetector creates a detector, filling zero config fields with defaults
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.MinTouches <= 0 {
		cfg.MinTouches = def.MinTouches
	}
	if cfg.StrengthThreshold <= 0 {
		cfg.StrengthThreshold = def.StrengthThreshold
	}
	if cfg.PivotLookback <= 0 {
		cfg.PivotLookback = def.PivotLookback
	}
	if cfg.VolumeBins <= 0 {
		cfg.VolumeBins = def.VolumeBins
	}
	if cfg.VolumeFloor <= 0 {
		cfg.VolumeFloor = def.VolumeFloor
	}
	if cfg.ProximityCutoff <= 0 {
		cfg.ProximityCutoff = def.ProximityCutoff
	}
	return &Detector{cfg: cfg}
}

// Detect runs all detection methods over the candles, merges overlapping
// candidates and returns the surviving levels sorted by price ascending.
func (d *Detector) Detect(klines []market.Kline, currentPrice float64) []Level {
	if len(klines) == 0 || currentPrice <= 0 {
		return nil
	}

	var candidates []Level
	candidates = append(candidates, d.detectPivots(klines, currentPrice)...)
	candidates = append(candidates, d.detectFractals(klines, currentPrice)...)
	candidates = append(candidates, d.detectVolumeProfile(klines, currentPrice)...)
	candidates = append(candidates, d.detectMAConfluence(klines, currentPrice)...)

	kept := make([]Level, 0, len(candidates))
	for _, lvl := range candidates {
		// Too close to current price to be actionable
		if math.Abs(lvl.Price-currentPrice)/currentPrice < d.cfg.ProximityCutoff {
			continue
		}
		kept = append(kept, lvl)
	}

	merged := d.merge(kept)

	final := merged[:0]
	for _, lvl := range merged {
		if lvl.Strength >= d.cfg.StrengthThreshold {
			final = append(final, lvl)
		}
	}

	sort.Slice(final, func(i, j int) bool { return final[i].Price < final[j].Price })
	return final
}

// detectPivots finds rolling-window local extrema
func (d *Detector) detectPivots(klines []market.Kline, currentPrice float64) []Level {
	lookback := d.cfg.PivotLookback
	if len(klines) < lookback*2+1 {
		return nil
	}

	var found []Level
	for i := lookback; i < len(klines)-lookback; i++ {
		isHigh := true
		isLow := true
		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if klines[j].High >= klines[i].High {
				isHigh = false
			}
			if klines[j].Low <= klines[i].Low {
				isLow = false
			}
		}

		if isHigh {
			if lvl, ok := d.confirm(klines, klines[i].High, currentPrice, 5.0); ok {
				found = append(found, lvl)
			}
		}
		if isLow {
			if lvl, ok := d.confirm(klines, klines[i].Low, currentPrice, 5.0); ok {
				found = append(found, lvl)
			}
		}
	}
	return found
}

// detectFractals finds 5-bar local extrema
func (d *Detector) detectFractals(klines []market.Kline, currentPrice float64) []Level {
	if len(klines) < 5 {
		return nil
	}

	var found []Level
	for i := 2; i < len(klines)-2; i++ {
		k := klines[i]

		upFractal := k.High > klines[i-1].High && k.High > klines[i-2].High &&
			k.High > klines[i+1].High && k.High > klines[i+2].High
		downFractal := k.Low < klines[i-1].Low && k.Low < klines[i-2].Low &&
			k.Low < klines[i+1].Low && k.Low < klines[i+2].Low

		if upFractal {
			if lvl, ok := d.confirm(klines, k.High, currentPrice, 3.0); ok {
				found = append(found, lvl)
			}
		}
		if downFractal {
			if lvl, ok := d.confirm(klines, k.Low, currentPrice, 3.0); ok {
				found = append(found, lvl)
			}
		}
	}
	return found
}

// detectVolumeProfile bins close prices and flags heavily traded buckets
func (d *Detector) detectVolumeProfile(klines []market.Kline, currentPrice float64) []Level {
	if len(klines) < d.cfg.VolumeBins {
		return nil
	}

	minClose := klines[0].Close
	maxClose := klines[0].Close
	for _, k := range klines {
		if k.Close < minClose {
			minClose = k.Close
		}
		if k.Close > maxClose {
			maxClose = k.Close
		}
	}
	if maxClose <= minClose {
		return nil
	}

	binWidth := (maxClose - minClose) / float64(d.cfg.VolumeBins)
	volumes := make([]float64, d.cfg.VolumeBins)
	for _, k := range klines {
		bin := int((k.Close - minClose) / binWidth)
		if bin >= d.cfg.VolumeBins {
			bin = d.cfg.VolumeBins - 1
		}
		volumes[bin] += k.Volume
	}

	peak := 0.0
	for _, v := range volumes {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return nil
	}

	var found []Level
	for bin, vol := range volumes {
		if vol < peak*d.cfg.VolumeFloor {
			continue
		}
		price := minClose + binWidth*(float64(bin)+0.5)
		touches := d.countTouches(klines, price)
		if touches < d.cfg.MinTouches {
			continue
		}
		found = append(found, Level{
			Price:         price,
			Strength:      vol / peak,
			Type:          classify(price, currentPrice),
			Touches:       touches,
			LastTouch:     d.lastTouch(klines, price),
			VolumeProfile: vol,
		})
	}
	return found
}

// detectMAConfluence checks whether the standard moving averages have acted
// as touched levels over the recent history
func (d *Detector) detectMAConfluence(klines []market.Kline, currentPrice float64) []Level {
	var found []Level
	for _, period := range maPeriods {
		if len(klines) < period {
			continue
		}

		ma := market.CalculateSMA(klines, period)
		if ma <= 0 {
			continue
		}

		// Count bars where price came back to the rolling MA of its day
		touches := 0
		var last int64
		for i := period - 1; i < len(klines); i++ {
			maAt := market.SMAAt(klines, i, period)
			if maAt <= 0 {
				continue
			}
			if klines[i].Low <= maAt*(1+d.cfg.Tolerance) && klines[i].High >= maAt*(1-d.cfg.Tolerance) {
				touches++
				last = klines[i].CloseTime
			}
		}
		if touches < d.cfg.MinTouches {
			continue
		}

		found = append(found, Level{
			Price:     ma,
			Strength:  clamp01(float64(touches) / 4.0),
			Type:      classify(ma, currentPrice),
			Touches:   touches,
			LastTouch: last,
		})
	}
	return found
}

// confirm validates a candidate price by touch count and builds the level.
// strengthDivisor normalizes touches per detection method.
func (d *Detector) confirm(klines []market.Kline, price, currentPrice, strengthDivisor float64) (Level, bool) {
	touches := d.countTouches(klines, price)
	if touches < d.cfg.MinTouches {
		return Level{}, false
	}
	return Level{
		Price:     price,
		Strength:  clamp01(float64(touches) / strengthDivisor),
		Type:      classify(price, currentPrice),
		Touches:   touches,
		LastTouch: d.lastTouch(klines, price),
	}, true
}

// countTouches counts candles whose range comes within tolerance of the level
func (d *Detector) countTouches(klines []market.Kline, price float64) int {
	touches := 0
	lower := price * (1 - d.cfg.Tolerance)
	upper := price * (1 + d.cfg.Tolerance)
	for _, k := range klines {
		if k.Low <= upper && k.High >= lower {
			touches++
		}
	}
	return touches
}

// lastTouch returns the close time of the most recent touching candle
func (d *Detector) lastTouch(klines []market.Kline, price float64) int64 {
	lower := price * (1 - d.cfg.Tolerance)
	upper := price * (1 + d.cfg.Tolerance)
	for i := len(klines) - 1; i >= 0; i-- {
		if klines[i].Low <= upper && klines[i].High >= lower {
			return klines[i].CloseTime
		}
	}
	return 0
}

// merge collapses same-type levels within tolerance of each other, keeping
// the stronger candidate
func (d *Detector) merge(candidates []Level) []Level {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Strength > candidates[j].Strength })

	var merged []Level
	for _, cand := range candidates {
		absorbed := false
		for _, kept := range merged {
			if kept.Type != cand.Type {
				continue
			}
			if math.Abs(kept.Price-cand.Price)/kept.Price <= d.cfg.Tolerance {
				absorbed = true
				break
			}
		}
		if !absorbed {
			merged = append(merged, cand)
		}
	}
	return merged
}

func classify(levelPrice, currentPrice float64) LevelType {
	if levelPrice < currentPrice {
		return Support
	}
	return Resistance
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
