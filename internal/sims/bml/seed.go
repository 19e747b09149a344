package bml

import prng "bml-traffic/pkg/core"

// seedGrid fills g from one uniform draw per cell in row-major order: below
// density a car moves horizontally, below twice the density vertically.
// Horizontal cars only survive on odd rows and vertical cars on odd columns.
func seedGrid(g *Grid, density float64, rng *prng.RNG) {
	n := g.Side()
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			tag := drawTag(rng.Float64(), density)
			if !parityAllows(tag, row, col, false) {
				tag = Empty
			}
			g.Set(row, col, tag)
		}
	}
}

func drawTag(r, density float64) Tag {
	switch {
	case r < density:
		return Horizontal
	case r < 2*density:
		return Vertical
	default:
		return Empty
	}
}

// parityAllows reports whether a car of the given tag may sit at (row, col).
// flipped is set after an odd number of shears, which moves every lane onto
// the other parity class.
func parityAllows(t Tag, row, col int, flipped bool) bool {
	switch t {
	case Horizontal:
		return (row%2 == 1) != flipped
	case Vertical:
		return (col%2 == 1) != flipped
	default:
		return true
	}
}
