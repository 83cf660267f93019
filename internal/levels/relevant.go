package levels

// DefaultRelevantRangePct is the price window used when callers pass 0
const DefaultRelevantRangePct = 0.12

// Relevant holds the levels near current price and the nearest level on each side
type Relevant struct {
	Levels            []Level
	NearestSupport    *Level
	NearestResistance *Level
}

// RelevantLevels filters levels to a window around price and picks the
// nearest support below and resistance above. rangePct of 0 uses the default
// window.
func RelevantLevels(all []Level, price, rangePct float64) Relevant {
	if rangePct <= 0 {
		rangePct = DefaultRelevantRangePct
	}

	var rel Relevant
	lower := price * (1 - rangePct)
	upper := price * (1 + rangePct)

	for i := range all {
		lvl := all[i]
		if lvl.Price < lower || lvl.Price > upper {
			continue
		}
		rel.Levels = append(rel.Levels, lvl)

		switch {
		case lvl.Type == Support && lvl.Price < price:
			if rel.NearestSupport == nil || lvl.Price > rel.NearestSupport.Price {
				cp := lvl
				rel.NearestSupport = &cp
			}
		case lvl.Type == Resistance && lvl.Price > price:
			if rel.NearestResistance == nil || lvl.Price < rel.NearestResistance.Price {
				cp := lvl
				rel.NearestResistance = &cp
			}
		}
	}

	return rel
}
