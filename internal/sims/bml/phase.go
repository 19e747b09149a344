package bml

// stepHorizontal moves every horizontal car whose right-hand neighbour is
// empty in src one column right, wrapping the last column onto column 0. The
// result is written to dst, so each car moves at most once and every
// destination check sees the start-of-phase occupancy. It returns how many
// cars moved.
func stepHorizontal(src, dst *Grid) int {
	dst.CopyFrom(src)
	n := src.Side()
	moved := 0
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if src.At(row, col) != Horizontal {
				continue
			}
			next := col + 1
			if next == n {
				next = 0
			}
			if src.At(row, next) != Empty {
				continue
			}
			dst.Set(row, col, Empty)
			dst.Set(row, next, Horizontal)
			moved++
		}
	}
	return moved
}

// stepVertical is the transposed rule: vertical cars move one row down and
// the last row wraps onto row 0.
func stepVertical(src, dst *Grid) int {
	dst.CopyFrom(src)
	n := src.Side()
	moved := 0
	for row := 0; row < n; row++ {
		next := row + 1
		if next == n {
			next = 0
		}
		for col := 0; col < n; col++ {
			if src.At(row, col) != Vertical {
				continue
			}
			if src.At(next, col) != Empty {
				continue
			}
			dst.Set(row, col, Empty)
			dst.Set(next, col, Vertical)
			moved++
		}
	}
	return moved
}

func stepPhase(p Phase, src, dst *Grid) int {
	if p == PhaseHorizontal {
		return stepHorizontal(src, dst)
	}
	return stepVertical(src, dst)
}

// blocked reports whether the car at (row, col) cannot advance in its own
// phase given the current occupancy.
func blocked(g *Grid, row, col int) bool {
	n := g.Side()
	switch g.At(row, col) {
	case Horizontal:
		return g.At(row, (col+1)%n) != Empty
	case Vertical:
		return g.At((row+1)%n, col) != Empty
	default:
		return false
	}
}
