package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Framer turns cell buffers into paletted images, one pixel per cell with
// x the column and y the row, optionally upscaled by an integer factor.
// The returned image is reused by the next Render call.
type Framer struct {
	w, h  int
	scale int

	palette color.Palette
	base    *image.Paletted
	scaled  *image.Paletted
}

// NewFramer prepares a framer for a w x h grid. Scales below 1 render at 1.
func NewFramer(w, h, scale int, palette []color.RGBA) *Framer {
	if scale < 1 {
		scale = 1
	}
	pal := make(color.Palette, len(palette))
	for i, c := range palette {
		pal[i] = c
	}
	if len(pal) == 0 {
		pal = color.Palette{color.Transparent}
	}
	f := &Framer{w: w, h: h, scale: scale, palette: pal}
	f.base = image.NewPaletted(image.Rect(0, 0, w, h), pal)
	if scale > 1 {
		f.scaled = image.NewPaletted(image.Rect(0, 0, w*scale, h*scale), pal)
	}
	return f
}

// Bounds returns the size of the frames Render produces.
func (f *Framer) Bounds() (int, int) { return f.w * f.scale, f.h * f.scale }

// Render paints cells, row-major, into the framer's image.
func (f *Framer) Render(cells []uint8) *image.Paletted {
	last := uint8(len(f.palette) - 1)
	n := f.w * f.h
	if len(cells) < n {
		n = len(cells)
	}
	for i := 0; i < n; i++ {
		c := cells[i]
		if c > last {
			c = last
		}
		f.base.Pix[i] = c
	}
	if f.scaled == nil {
		return f.base
	}
	draw.NearestNeighbor.Scale(f.scaled, f.scaled.Bounds(), f.base, f.base.Bounds(), draw.Src, nil)
	return f.scaled
}
