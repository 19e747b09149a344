package bml

import (
	"math"

	prng "bml-traffic/pkg/core"
)

const (
	reseedBaseChance = 0.1
	reseedTideGain   = 0.2
	sandCellChance   = 0.04
)

// sandResult summarises one reseeding pass.
type sandResult struct {
	attempted bool
	extent    int
	placed    int
}

// reseed drops new cars onto the corner strip (N-1-k, s-1-k), k < s, where
// the extent s grows with the tide. Only empty cells are filled and every new
// car honours the current lane parity, so no existing car is ever removed.
//
// Draw order: one draw gates the whole pass, then per offset one draw gates
// the cell and, when it passes, one draw picks the car species.
func reseed(g *Grid, tide float64, sandMax int, density float64, flipped bool, rng *prng.RNG) sandResult {
	if !rng.Chance(reseedBaseChance + tide*reseedTideGain) {
		return sandResult{}
	}
	res := sandResult{attempted: true, extent: sandExtent(sandMax, tide)}
	n := g.Side()
	if res.extent > n {
		res.extent = n
	}
	for k := 0; k < res.extent; k++ {
		if !rng.Chance(sandCellChance) {
			continue
		}
		tag := drawTag(rng.Float64(), density)
		row, col := n-1-k, res.extent-1-k
		if tag == Empty || g.At(row, col) != Empty {
			continue
		}
		if !parityAllows(tag, row, col, flipped) {
			continue
		}
		g.Set(row, col, tag)
		res.placed++
	}
	return res
}

func sandExtent(sandMax int, tide float64) int {
	return int(math.Round(float64(sandMax) * tide))
}

// inSandRegion reports whether (row, col) can ever be reseeded for the given
// maximum extent: the triangle swept by the strip as the tide rises.
func inSandRegion(n, sandMax, row, col int) bool {
	k := n - 1 - row
	if k < 0 || k >= sandMax {
		return false
	}
	return col >= 0 && col <= sandMax-1-k
}
