// Package bml implements a Biham–Middleton–Levine traffic automaton on a
// torus, extended with a periodic diagonal shear and tide-driven reseeding of
// a corner strip.
package bml

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bml-traffic/internal/core"
	prng "bml-traffic/pkg/core"
)

// TickReport describes what a single Step did.
type TickReport struct {
	Tick  int
	Phase Phase
	Moved int
	// Velocity is the fraction of the moving species that advanced.
	Velocity float64

	Rotated bool

	Tide            float64
	ReseedAttempted bool
	SandExtent      int
	Placed          int
}

// Simulation owns the grid and every piece of state that evolves with it.
type Simulation struct {
	cfg  Config
	seed int64

	front *Grid
	back  *Grid
	rng   *prng.RNG
	log   zerolog.Logger

	nextPhaseIsHorizontal bool
	paritySense           bool
	tick                  int
	last                  TickReport
}

// New validates cfg and returns a freshly seeded simulation.
func New(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TideFormula == "" {
		cfg.TideFormula = TideSquared
	}
	s := &Simulation{
		cfg:   cfg,
		front: NewGrid(cfg.Side),
		back:  NewGrid(cfg.Side),
		log:   log.With().Str("component", "bml").Logger(),
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.Reset(seed)
	s.log.Debug().
		Int("side", cfg.Side).
		Float64("density", cfg.Density).
		Int64("seed", s.seed).
		Bool("rotation", cfg.Rotation).
		Bool("sand", cfg.Sand).
		Msg("simulation created")
	return s, nil
}

// Name returns the simulation identifier.
func (s *Simulation) Name() string { return "bml" }

// Size returns the grid dimensions.
func (s *Simulation) Size() core.Size { return core.Size{W: s.cfg.Side, H: s.cfg.Side} }

// Cells exposes the current tag buffer, row-major, one byte per Tag.
func (s *Simulation) Cells() []uint8 { return s.front.Cells() }

// Config returns the configuration the simulation runs with.
func (s *Simulation) Config() Config { return s.cfg }

// Seed returns the seed of the current run.
func (s *Simulation) Seed() int64 { return s.seed }

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int { return s.tick }

// NextPhase reports which species moves on the next Step.
func (s *Simulation) NextPhase() Phase {
	if s.nextPhaseIsHorizontal {
		return PhaseHorizontal
	}
	return PhaseVertical
}

// ParitySense reports whether an odd number of shears has moved every lane
// onto the opposite parity class.
func (s *Simulation) ParitySense() bool { return s.paritySense }

// LastReport returns the report of the most recent Step.
func (s *Simulation) LastReport() TickReport { return s.last }

// Grid returns a copy of the current grid.
func (s *Simulation) Grid() *Grid { return s.front.Clone() }

// Counts returns the number of horizontal and vertical cars.
func (s *Simulation) Counts() (horizontal, vertical int) {
	return s.front.Count(Horizontal), s.front.Count(Vertical)
}

// Tide returns the tide position the reseeder will use on the next Step.
func (s *Simulation) Tide() float64 {
	return TidePosition(s.tick+1, s.cfg.TidePeriod, s.cfg.TideFormula)
}

// CellTag returns the tag at (row, col). It panics when the coordinates fall
// outside the grid.
func (s *Simulation) CellTag(row, col int) Tag {
	n := s.cfg.Side
	if row < 0 || row >= n || col < 0 || col >= n {
		panic(fmt.Sprintf("bml: CellTag(%d,%d) outside %dx%d grid", row, col, n, n))
	}
	return s.front.At(row, col)
}

// Reset reseeds the grid and rewinds the tick counter. A zero seed reuses the
// seed of the current run.
func (s *Simulation) Reset(seed int64) {
	if seed == 0 {
		seed = s.seed
	}
	s.seed = seed
	s.rng = prng.NewRNG(seed)
	s.nextPhaseIsHorizontal = true
	s.paritySense = false
	s.tick = 0
	s.last = TickReport{}
	seedGrid(s.front, s.cfg.Density, s.rng)
}

// Step advances exactly one tick: the phase move, the shear when it is due
// and the reseeding pass, in that order.
func (s *Simulation) Step() {
	phase := s.NextPhase()
	moved := stepPhase(phase, s.front, s.back)
	s.swap()
	s.nextPhaseIsHorizontal = !s.nextPhaseIsHorizontal
	s.tick++

	rep := TickReport{Tick: s.tick, Phase: phase, Moved: moved}
	if cars := s.front.Count(phase.Mover()); cars > 0 {
		rep.Velocity = float64(moved) / float64(cars)
	}

	if s.cfg.Rotation && s.tick%s.cfg.RotationPeriod == 0 {
		shear(s.front, s.back)
		s.swap()
		s.paritySense = !s.paritySense
		rep.Rotated = true
		s.log.Trace().Int("tick", s.tick).Bool("parity_sense", s.paritySense).Msg("grid sheared")
	}

	if s.cfg.Sand {
		rep.Tide = TidePosition(s.tick, s.cfg.TidePeriod, s.cfg.TideFormula)
		res := reseed(s.front, rep.Tide, s.cfg.SandMax, s.cfg.Density, s.paritySense, s.rng)
		rep.ReseedAttempted = res.attempted
		rep.SandExtent = res.extent
		rep.Placed = res.placed
		if res.placed > 0 {
			s.log.Trace().
				Int("tick", s.tick).
				Float64("tide", rep.Tide).
				Int("extent", res.extent).
				Int("placed", res.placed).
				Msg("sand reseeded")
		}
	}

	s.last = rep
}

func (s *Simulation) swap() {
	s.front, s.back = s.back, s.front
}

// BlockedMask marks every car that could not advance in its own phase right
// now. dst is reused when it is large enough.
func (s *Simulation) BlockedMask(dst []bool) []bool {
	n := s.cfg.Side
	if cap(dst) < n*n {
		dst = make([]bool, n*n)
	}
	dst = dst[:n*n]
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			dst[row*n+col] = blocked(s.front, row, col)
		}
	}
	return dst
}

// SandMask marks every cell the reseeder can reach at full tide.
func (s *Simulation) SandMask(dst []bool) []bool {
	n := s.cfg.Side
	if cap(dst) < n*n {
		dst = make([]bool, n*n)
	}
	dst = dst[:n*n]
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			dst[row*n+col] = s.cfg.Sand && inSandRegion(n, s.cfg.SandMax, row, col)
		}
	}
	return dst
}

// Status summarises the live state for on-screen readouts.
func (s *Simulation) Status() []string {
	h, v := s.Counts()
	return []string{
		fmt.Sprintf("tick %d  next %s", s.tick, s.NextPhase()),
		fmt.Sprintf("cars H=%d V=%d", h, v),
		fmt.Sprintf("velocity %.3f", s.last.Velocity),
		fmt.Sprintf("tide %.2f  sand %d", s.last.Tide, s.last.SandExtent),
	}
}

func init() {
	core.Register("bml", func(cfg map[string]string) (core.Sim, error) {
		s, err := New(FromMap(cfg))
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
