//go:build ebiten

package app

import (
	"image/color"
	"time"

	"bml-traffic/internal/core"
	"bml-traffic/internal/logging"
	"bml-traffic/internal/render"
	"bml-traffic/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
)

// maxCatchUp bounds how many ticks a single frame may run after a stall.
const maxCatchUp = 4

type palettedSim interface {
	Palette() []color.RGBA
}

// Options configures the viewer.
type Options struct {
	Scale    int
	TPS      int
	HUDWidth int
	Seed     int64
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	timer   *core.FixedStep
	palette []color.RGBA
	log     zerolog.Logger

	scale    int
	paused   bool
	tickOnce bool
	seed     int64

	pending chan func(core.Sim)
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, opts Options) *Game {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	size := sim.Size()
	g := &Game{
		sim:     sim,
		painter: render.NewGridPainter(size.W, size.H),
		overlay: ui.NewOverlay(sim, opts.Scale),
		hud:     ui.NewHUD(sim, opts.HUDWidth),
		timer:   core.NewFixedStep(opts.TPS),
		palette: grayscale(),
		log:     logging.Component("viewer"),
		scale:   opts.Scale,
		seed:    opts.Seed,
		pending: make(chan func(core.Sim), 8),
	}
	if p, ok := sim.(palettedSim); ok {
		g.palette = p.Palette()
	}
	return g
}

// Enqueue schedules fn to run against the simulation on the game loop. It is
// safe to call from other goroutines, such as a config watcher.
func (g *Game) Enqueue(fn func(core.Sim)) {
	select {
	case g.pending <- fn:
	default:
		g.log.Warn().Msg("dropping queued simulation update, loop is behind")
	}
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
	g.log.Info().Int64("seed", seed).Msg("reset")
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		g.timer.SetTPS(g.timer.TPS() * 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		g.timer.SetTPS(max(1, g.timer.TPS()/2))
	}

	g.drainPending()
	g.overlay.Update()
	g.hud.Update(g.sim.Size().W * g.scale)

	steps := g.timer.Due(maxCatchUp)
	if g.paused {
		steps = 0
	}
	if g.tickOnce {
		steps = 1
		g.tickOnce = false
	}
	for i := 0; i < steps; i++ {
		g.sim.Step()
	}
	return nil
}

func (g *Game) drainPending() {
	for {
		select {
		case fn := <-g.pending:
			fn(g.sim)
		default:
			return
		}
	}
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.palette, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.sim.Size().W*g.scale, g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + g.hud.Width(), s.H * g.scale
}

func grayscale() []color.RGBA {
	pal := make([]color.RGBA, 256)
	for i := range pal {
		v := uint8(255 - i)
		pal[i] = color.RGBA{R: v, G: v, B: v, A: 255}
	}
	return pal
}
