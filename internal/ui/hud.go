//go:build ebiten

package ui

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"bml-traffic/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var (
	panelBg     = color.RGBA{R: 16, G: 16, B: 20, A: 255}
	textBright  = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	textDim     = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	textHeading = color.RGBA{R: 200, G: 200, B: 210, A: 255}
)

var keyHints = []string{
	"space pause  n step",
	"r reset  s reseed",
	"1 sand  2 blocked",
	"[ ] tick rate  q quit",
}

// HUD renders the parameter panel to the right of the grid: live status,
// adjustable tunables and the key bindings.
type HUD struct {
	sim   core.Sim
	width int
	panel *ebiten.Image
	pixel *ebiten.Image

	snapshot core.ParameterSnapshot
	status   []string

	controls    []hudControl
	intSetter   core.IntParameterSetter
	floatSetter core.FloatParameterSetter
	offsetX     int
}

type hudControl struct {
	core.ParameterControl
	value    float64
	hasValue bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

// NewHUD constructs a HUD for sim. A width of zero disables it.
func NewHUD(sim core.Sim, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{sim: sim, width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.intSetter, _ = sim.(core.IntParameterSetter)
	h.floatSetter, _ = sim.(core.FloatParameterSetter)
	if provider, ok := sim.(core.ParameterControlsProvider); ok {
		for _, ctrl := range provider.ParameterControls() {
			h.controls = append(h.controls, hudControl{ParameterControl: ctrl})
		}
	}
	h.layout()
	return h
}

// Width returns the panel width in pixels.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// Update refreshes status and parameter values and handles clicks on the
// +/- buttons. panelOffsetX is the panel's left edge in screen space.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.offsetX = panelOffsetX
	if provider, ok := h.sim.(core.StatusProvider); ok {
		h.status = provider.Status()
	}
	if provider, ok := h.sim.(core.ParameterProvider); ok {
		h.snapshot = provider.Parameters()
	}
	h.refresh()
	h.handleClick()
}

// Draw paints the panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	height := h.sim.Size().H * scale
	if height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(panelBg)

	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	text.Draw(h.panel, strings.ToUpper(h.sim.Name()), face, panelPadding, y, textHeading)
	for _, line := range h.status {
		y += statusSpacing
		text.Draw(h.panel, line, face, panelPadding, y, textDim)
	}

	if len(h.controls) == 0 {
		text.Draw(h.panel, "No adjustable parameters", face, panelPadding, h.controlsTop()+labelBaseline, textDim)
	}
	for i := range h.controls {
		h.drawControl(&h.controls[i])
	}

	y = height - panelPadding - (len(keyHints)-1)*statusSpacing
	for _, line := range keyHints {
		text.Draw(h.panel, line, face, panelPadding, y, textDim)
		y += statusSpacing
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) refresh() {
	for i := range h.controls {
		c := &h.controls[i]
		c.hasValue = false
		param, ok := h.snapshot.Find(c.Key)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(param.Value, 64)
		if err != nil {
			continue
		}
		c.value = v
		c.hasValue = true
	}
}

func (h *HUD) handleClick() {
	if len(h.controls) == 0 || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	px := mx - h.offsetX
	if px < 0 {
		return
	}
	for i := range h.controls {
		c := &h.controls[i]
		switch {
		case pointInRect(px, my, c.minusRect):
			h.adjust(c, -1)
			return
		case pointInRect(px, my, c.plusRect):
			h.adjust(c, 1)
			return
		}
	}
}

// target returns the value one step away from c in direction, clamped to the
// control's bounds, and whether that differs from the current value.
func (h *HUD) target(c *hudControl, direction int) (float64, bool) {
	if !c.hasValue || direction == 0 {
		return 0, false
	}
	step := c.Step
	switch c.Type {
	case core.ParamTypeInt:
		if h.intSetter == nil {
			return 0, false
		}
		step = math.Max(1, math.Round(step))
	case core.ParamTypeFloat:
		if h.floatSetter == nil {
			return 0, false
		}
		if step <= 0 {
			step = 0.05
		}
	default:
		return 0, false
	}
	next := c.value + float64(direction)*step
	if c.HasMin && next < c.Min {
		next = c.Min
	}
	if c.HasMax && next > c.Max {
		next = c.Max
	}
	return next, math.Abs(next-c.value) > 1e-9
}

func (h *HUD) adjust(c *hudControl, direction int) {
	next, ok := h.target(c, direction)
	if !ok {
		return
	}
	var applied bool
	if c.Type == core.ParamTypeInt {
		applied = h.intSetter.SetIntParameter(c.Key, int(math.Round(next)))
	} else {
		applied = h.floatSetter.SetFloatParameter(c.Key, next)
	}
	if applied {
		c.value = next
	}
}

func (h *HUD) drawControl(c *hudControl) {
	face := basicfont.Face7x13
	y := c.top + labelBaseline
	text.Draw(h.panel, c.Label, face, panelPadding, y, textBright)

	value, col := "--", textDim
	if c.hasValue {
		value, col = formatValue(c.ParameterControl, c.value), textBright
	}
	valueX := c.minusRect.Min.X - buttonGap - text.BoundString(face, value).Dx()
	text.Draw(h.panel, value, face, valueX, y, col)

	_, minusOK := h.target(c, -1)
	_, plusOK := h.target(c, 1)
	h.drawButton(c.minusRect, "-", minusOK)
	h.drawButton(c.plusRect, "+", plusOK)
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) controlsTop() int {
	// Room for the heading plus one line per status entry the sim reports.
	lines := 4
	if provider, ok := h.sim.(core.StatusProvider); ok {
		lines = len(provider.Status())
	}
	return panelPadding + headerBaseline + lines*statusSpacing + sectionGap
}

func (h *HUD) layout() {
	if h.width <= 0 {
		return
	}
	top := h.controlsTop()
	for i := range h.controls {
		rowTop := top + i*lineHeight
		buttonY := rowTop + (lineHeight-buttonSize)/2
		plus := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = rowTop
		h.controls[i].minusRect = minus
		h.controls[i].plusRect = plus
	}
}

func formatValue(ctrl core.ParameterControl, value float64) string {
	if ctrl.Type == core.ParamTypeInt {
		return strconv.Itoa(int(math.Round(value)))
	}
	precision := 1
	switch {
	case ctrl.Step < 0.001:
		precision = 4
	case ctrl.Step < 0.01:
		precision = 3
	case ctrl.Step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	statusSpacing  = 16
	sectionGap     = 14
)
