package bml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHorizontalWrapsPastLastColumn(t *testing.T) {
	src := mustGrid(t,
		"....",
		"...H",
		"....",
		"....",
	)
	dst := NewGrid(4)

	moved := stepHorizontal(src, dst)

	assert.Equal(t, 1, moved)
	assert.Equal(t, mustGrid(t,
		"....",
		"H...",
		"....",
		"....",
	).String(), dst.String())
}

func TestVerticalWrapsPastLastRow(t *testing.T) {
	src := mustGrid(t,
		"....",
		"....",
		"....",
		"..V.",
	)
	dst := NewGrid(4)

	moved := stepVertical(src, dst)

	assert.Equal(t, 1, moved)
	assert.Equal(t, Vertical, dst.At(0, 2))
	assert.Equal(t, Empty, dst.At(3, 2))
	assert.Equal(t, 1, dst.Count(Vertical))
}

func TestQueuedCarIsBlockedByCarAhead(t *testing.T) {
	src := mustGrid(t,
		".HH.",
		"....",
		"....",
		"....",
	)
	dst := NewGrid(4)

	moved := stepHorizontal(src, dst)

	assert.Equal(t, 1, moved)
	assert.Equal(t, ".H.H\n", dst.String()[:5])
}

func TestWrapUsesStartOfPhaseOccupancy(t *testing.T) {
	// The car in column 0 leaves during the phase, but the car wrapping in
	// from column 3 must still see it as occupied.
	src := mustGrid(t,
		"H..H",
		"....",
		"....",
		"....",
	)
	dst := NewGrid(4)

	moved := stepHorizontal(src, dst)

	assert.Equal(t, 1, moved)
	assert.Equal(t, ".H.H\n", dst.String()[:5])

	vsrc := mustGrid(t,
		"V...",
		"....",
		"....",
		"V...",
	)
	vdst := NewGrid(4)
	assert.Equal(t, 1, stepVertical(vsrc, vdst))
	assert.Equal(t, Empty, vdst.At(0, 0))
	assert.Equal(t, Vertical, vdst.At(1, 0))
	assert.Equal(t, Vertical, vdst.At(3, 0))
}

func TestPhaseLeavesOtherSpeciesUntouched(t *testing.T) {
	src := mustGrid(t,
		"HV..",
		".V..",
		"..H.",
		"V..H",
	)
	dst := NewGrid(4)
	stepHorizontal(src, dst)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if src.At(r, c) == Vertical {
				assert.Equal(t, Vertical, dst.At(r, c), "vertical car at (%d,%d) moved in horizontal phase", r, c)
			}
		}
	}
}

// expectedAfterPhase is the per-cell form of the movement rule: a cell holds
// a mover afterwards when its own mover was blocked or the mover behind it
// advanced into it.
func expectedAfterPhase(p Phase, src *Grid) *Grid {
	n := src.Side()
	out := src.Clone()
	mover := p.Mover()
	ahead := func(r, c int) (int, int) {
		if p == PhaseHorizontal {
			return r, (c + 1) % n
		}
		return (r + 1) % n, c
	}
	behind := func(r, c int) (int, int) {
		if p == PhaseHorizontal {
			return r, (c - 1 + n) % n
		}
		return (r - 1 + n) % n, c
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			cur := src.At(r, c)
			if cur != mover && cur != Empty {
				continue
			}
			ar, ac := ahead(r, c)
			br, bc := behind(r, c)
			stays := cur == mover && src.At(ar, ac) != Empty
			arrives := cur == Empty && src.At(br, bc) == mover
			if stays || arrives {
				out.Set(r, c, mover)
			} else {
				out.Set(r, c, Empty)
			}
		}
	}
	return out
}

func TestPhaseMatchesCellRule(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		for _, fill := range []float64{0.2, 0.5, 0.8} {
			src := scatter(seed, 10, fill)
			for _, p := range []Phase{PhaseHorizontal, PhaseVertical} {
				dst := NewGrid(10)
				moved := stepPhase(p, src, dst)

				want := expectedAfterPhase(p, src)
				require.True(t, want.Equal(dst), "seed %d fill %.1f phase %s\nsrc:\n%s\ngot:\n%s\nwant:\n%s", seed, fill, p, src, dst, want)

				assert.Equal(t, src.Count(Horizontal), dst.Count(Horizontal))
				assert.Equal(t, src.Count(Vertical), dst.Count(Vertical))

				vacated := 0
				for r := 0; r < 10; r++ {
					for c := 0; c < 10; c++ {
						if src.At(r, c) == p.Mover() && dst.At(r, c) == Empty {
							vacated++
						}
					}
				}
				assert.Equal(t, vacated, moved, "every move vacates exactly one cell")
			}
		}
	}
}

func TestBlocked(t *testing.T) {
	g := mustGrid(t,
		"HH.V",
		"...V",
		"....",
		"V..H",
	)
	assert.True(t, blocked(g, 0, 0))
	assert.False(t, blocked(g, 0, 1))
	assert.True(t, blocked(g, 0, 3))
	assert.False(t, blocked(g, 1, 3))
	assert.True(t, blocked(g, 3, 3), "wraps onto the occupied (3,0)")
	assert.True(t, blocked(g, 3, 0), "wraps onto the occupied (0,0)")
	assert.False(t, blocked(g, 2, 2))
}
