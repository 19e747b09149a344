package bml

// TidePosition returns the reseed intensity in [0, 1] for tick c of a tide
// with the given period. The squared wave is 0 at multiples of 2T and peaks
// at 1 halfway between them.
func TidePosition(c, period int, formula TideFormula) float64 {
	if period <= 0 || c < 0 {
		return 0
	}
	a := (c+period)%(2*period) - period
	if a < 0 {
		a = -a
	}
	if formula == TideXOR {
		den := period ^ 2
		if den == 0 {
			return 0
		}
		return clamp01(float64(a^2) / float64(den))
	}
	return float64(a*a) / float64(period*period)
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
