package render

import "image/color"

// FillPaletteRGBA converts cell values into RGBA pixels using a palette.
// Values past the end of the palette use its last colour. When the palette
// is empty the buffer is cleared to transparent black.
func FillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// FillMaskRGBA paints tint wherever mask is set and leaves every other pixel
// transparent, for drawing over a rendered grid. tint is straight alpha; the
// buffer is written premultiplied.
func FillMaskRGBA(buf []byte, mask []bool, tint color.RGBA) {
	pm := premultiply(tint)
	for i, on := range mask {
		base := i * 4
		if on {
			buf[base+0] = pm.R
			buf[base+1] = pm.G
			buf[base+2] = pm.B
			buf[base+3] = pm.A
			continue
		}
		buf[base+0] = 0
		buf[base+1] = 0
		buf[base+2] = 0
		buf[base+3] = 0
	}
}

func premultiply(c color.RGBA) color.RGBA {
	mul := func(v uint8) uint8 { return uint8((uint16(v)*uint16(c.A) + 127) / 255) }
	return color.RGBA{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: c.A}
}
