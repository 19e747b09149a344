package bml

import (
	"fmt"
	"strings"

	"bml-traffic/internal/core"
)

// Grid is a square torus of cell tags stored row-major.
type Grid struct {
	n     int
	cells *core.ByteGrid
}

// NewGrid allocates an empty grid of side n.
func NewGrid(n int) *Grid {
	return &Grid{n: n, cells: core.NewByteGrid(n, n)}
}

// ParseGrid builds a grid from rows of '.', 'H' and 'V'. Every row must be as
// long as the number of rows.
func ParseGrid(rows ...string) (*Grid, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("parse grid: no rows")
	}
	g := NewGrid(n)
	for r, line := range rows {
		if len(line) != n {
			return nil, fmt.Errorf("parse grid: row %d has %d cells, want %d", r, len(line), n)
		}
		for c := 0; c < n; c++ {
			switch line[c] {
			case '.':
			case 'H':
				g.Set(r, c, Horizontal)
			case 'V':
				g.Set(r, c, Vertical)
			default:
				return nil, fmt.Errorf("parse grid: unexpected %q at (%d,%d)", line[c], r, c)
			}
		}
	}
	return g, nil
}

// Side returns the grid's side length.
func (g *Grid) Side() int { return g.n }

// At returns the tag at (row, col).
func (g *Grid) At(row, col int) Tag {
	return Tag(g.cells.Cells()[g.index(row, col)])
}

// Set retags the cell at (row, col).
func (g *Grid) Set(row, col int, t Tag) {
	g.cells.Cells()[g.index(row, col)] = uint8(t)
}

// Cells exposes the row-major tag buffer for rendering.
func (g *Grid) Cells() []uint8 { return g.cells.Cells() }

// Count returns how many cells carry t.
func (g *Grid) Count(t Tag) int { return g.cells.Count(uint8(t)) }

// wrap folds (row, col) back onto the torus.
func (g *Grid) wrap(row, col int) (int, int) {
	col, row = g.cells.Wrap(col, row)
	return row, col
}

// CopyFrom overwrites g with src. Both grids must share a side.
func (g *Grid) CopyFrom(src *Grid) { g.cells.CopyFrom(src.cells) }

// Clone returns an independent copy of g.
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.n)
	c.CopyFrom(g)
	return c
}

// Equal reports whether both grids hold the same tags.
func (g *Grid) Equal(o *Grid) bool {
	if o == nil || g.n != o.n {
		return false
	}
	a, b := g.Cells(), o.Cells()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.n * (g.n + 1))
	for r := 0; r < g.n; r++ {
		for c := 0; c < g.n; c++ {
			sb.WriteByte(g.At(r, c).rune())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (g *Grid) index(row, col int) int {
	if debugChecks && !g.cells.InBounds(col, row) {
		panic(fmt.Sprintf("bml: cell (%d,%d) outside %dx%d grid", row, col, g.n, g.n))
	}
	return g.cells.Index(col, row)
}
