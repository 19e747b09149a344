package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pal = []color.RGBA{
	{255, 255, 255, 255},
	{78, 104, 150, 255},
	{184, 120, 139, 255},
}

func TestFillPaletteRGBA(t *testing.T) {
	buf := make([]byte, 4*4)
	FillPaletteRGBA(buf, []uint8{0, 1, 2, 9}, pal)
	assert.Equal(t, []byte{
		255, 255, 255, 255,
		78, 104, 150, 255,
		184, 120, 139, 255,
		184, 120, 139, 255,
	}, buf)

	FillPaletteRGBA(buf, []uint8{1, 1, 1, 1}, nil)
	assert.Equal(t, make([]byte, 16), buf)
}

func TestFillMaskRGBA(t *testing.T) {
	buf := make([]byte, 8)
	FillMaskRGBA(buf, []bool{false, true}, color.RGBA{10, 20, 30, 255})
	assert.Equal(t, []byte{0, 0, 0, 0, 10, 20, 30, 255}, buf)

	FillMaskRGBA(buf, []bool{true, false}, color.RGBA{200, 100, 50, 128})
	assert.Equal(t, []byte{100, 50, 25, 128, 0, 0, 0, 0}, buf, "written premultiplied")
}

func TestFramerMapsRowsToY(t *testing.T) {
	// 3 wide, 2 tall: row 0 = [H . V], row 1 = [. . H]
	cells := []uint8{1, 0, 2, 0, 0, 1}
	f := NewFramer(3, 2, 1, pal)
	img := f.Render(cells)

	w, h := f.Bounds()
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, uint8(1), img.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(2), img.ColorIndexAt(2, 0))
	assert.Equal(t, uint8(1), img.ColorIndexAt(2, 1))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.At(1, 1))
}

func TestFramerScales(t *testing.T) {
	cells := []uint8{1, 0, 0, 2}
	f := NewFramer(2, 2, 3, pal)
	img := f.Render(cells)
	require.Equal(t, 6, img.Bounds().Dx())
	require.Equal(t, 6, img.Bounds().Dy())

	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			want := cells[(y/3)*2+x/3]
			assert.Equal(t, want, img.ColorIndexAt(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestFramerClampsUnknownTags(t *testing.T) {
	f := NewFramer(2, 1, 0, pal)
	img := f.Render([]uint8{7, 0})
	assert.Equal(t, uint8(2), img.ColorIndexAt(0, 0))
	assert.Equal(t, 1, img.Bounds().Dy(), "scale below 1 renders at 1")
}
