package bml

import "image/color"

var trafficPalette = []color.RGBA{
	Empty:      {R: 255, G: 255, B: 255, A: 255},
	Horizontal: {R: 78, G: 104, B: 150, A: 255},
	Vertical:   {R: 184, G: 120, B: 139, A: 255},
}

// Palette exposes the colours used to render each Tag, indexed by tag value.
func (s *Simulation) Palette() []color.RGBA {
	return Palette()
}

// Palette returns a copy of the tag palette.
func Palette() []color.RGBA {
	return append([]color.RGBA(nil), trafficPalette...)
}
