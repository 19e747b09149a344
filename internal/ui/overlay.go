//go:build ebiten

package ui

import (
	"image/color"

	"bml-traffic/internal/core"
	"bml-traffic/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type sandMaskProvider interface {
	SandMask(dst []bool) []bool
}

type blockedMaskProvider interface {
	BlockedMask(dst []bool) []bool
}

var (
	sandTint    = color.RGBA{R: 214, G: 182, B: 92, A: 90}
	blockedTint = color.RGBA{R: 220, G: 40, B: 40, A: 160}
)

// Overlay tints diagnostic masks over the grid. Key 1 toggles the reachable
// sand region, key 2 the cars that cannot advance right now.
type Overlay struct {
	sim         core.Sim
	scale       int
	showSand    bool
	showBlocked bool

	painter *render.GridPainter
	mask    []bool
}

// NewOverlay constructs an overlay for sim drawn at scale.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	size := sim.Size()
	return &Overlay{
		sim:     sim,
		scale:   scale,
		painter: render.NewGridPainter(size.W, size.H),
	}
}

// Update toggles masks from the keyboard.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showSand = !o.showSand
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showBlocked = !o.showBlocked
	}
}

// Draw renders the enabled masks onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	if o.showSand {
		if provider, ok := o.sim.(sandMaskProvider); ok {
			o.mask = provider.SandMask(o.mask)
			o.painter.BlitMask(screen, o.mask, sandTint, scale)
		}
	}
	if o.showBlocked {
		if provider, ok := o.sim.(blockedMaskProvider); ok {
			o.mask = provider.BlockedMask(o.mask)
			o.painter.BlitMask(screen, o.mask, blockedTint, scale)
		}
	}
}
