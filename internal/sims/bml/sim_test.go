package bml

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bml-traffic/internal/core"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero side", func(c *Config) { c.Side = 0 }},
		{"negative side", func(c *Config) { c.Side = -4 }},
		{"odd side", func(c *Config) { c.Side = 7; c.SandMax = 7 }},
		{"zero density", func(c *Config) { c.Density = 0 }},
		{"dense", func(c *Config) { c.Density = 0.51 }},
		{"rotation period", func(c *Config) { c.RotationPeriod = 0 }},
		{"tide period", func(c *Config) { c.TidePeriod = -1 }},
		{"sand max above side", func(c *Config) { c.SandMax = c.Side + 1 }},
		{"negative sand max", func(c *Config) { c.SandMax = -1 }},
		{"formula", func(c *Config) { c.TideFormula = "cubic" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))

			_, err = New(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}

	require.NoError(t, DefaultConfig().Validate())
	cfg := DefaultConfig()
	cfg.TideFormula = ""
	assert.NoError(t, cfg.Validate(), "an empty formula falls back to squared")
}

func TestSimulationDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Side = 40
	cfg.SandMax = 20
	cfg.TidePeriod = 15
	cfg.Seed = 314

	a, err := New(cfg)
	require.NoError(t, err)
	b, err := New(cfg)
	require.NoError(t, err)

	for i := 0; i < 120; i++ {
		a.Step()
		b.Step()
		require.Equal(t, a.Cells(), b.Cells(), "tick %d diverged", a.Tick())
		require.Equal(t, a.LastReport(), b.LastReport())
	}
}

func TestResetRewinds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Side = 20
	cfg.SandMax = 10
	cfg.Seed = 55
	sim, err := New(cfg)
	require.NoError(t, err)

	initial := sim.Grid()
	for i := 0; i < 25; i++ {
		sim.Step()
	}
	require.Equal(t, 25, sim.Tick())

	sim.Reset(0)
	assert.Equal(t, int64(55), sim.Seed())
	assert.Equal(t, 0, sim.Tick())
	assert.Equal(t, PhaseHorizontal, sim.NextPhase())
	assert.False(t, sim.ParitySense())
	assert.True(t, initial.Equal(sim.Grid()), "reset with the same seed restores the initial grid")

	sim.Reset(56)
	assert.Equal(t, int64(56), sim.Seed())
	assert.False(t, initial.Equal(sim.Grid()))
}

func TestClockSeedWhenZero(t *testing.T) {
	sim, err := New(quietConfig(8, 0.3, 0))
	require.NoError(t, err)
	assert.NotZero(t, sim.Seed())
}

func TestPhasesAlternateStartingHorizontal(t *testing.T) {
	sim, err := New(quietConfig(12, 0.3, 3))
	require.NoError(t, err)

	want := []Phase{PhaseHorizontal, PhaseVertical, PhaseHorizontal, PhaseVertical}
	for i, p := range want {
		require.Equal(t, p, sim.NextPhase())
		sim.Step()
		rep := sim.LastReport()
		assert.Equal(t, p, rep.Phase)
		assert.Equal(t, i+1, rep.Tick)
		assert.GreaterOrEqual(t, rep.Velocity, 0.0)
		assert.LessOrEqual(t, rep.Velocity, 1.0)
	}
}

func TestCellTagPanicsOutsideGrid(t *testing.T) {
	sim, err := New(quietConfig(6, 0.3, 1))
	require.NoError(t, err)

	assert.NotPanics(t, func() { sim.CellTag(5, 5) })
	assert.Panics(t, func() { sim.CellTag(6, 0) })
	assert.Panics(t, func() { sim.CellTag(0, -1) })
}

func TestFullFeatureRunKeepsInvariants(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Side = 24
	cfg.SandMax = 24
	cfg.TidePeriod = 8
	cfg.RotationPeriod = 4
	cfg.Seed = 2024
	sim, err := New(cfg)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		sim.Step()
		for _, v := range sim.Cells() {
			require.LessOrEqual(t, v, uint8(Vertical))
		}
	}
	assert.Equal(t, 200/4%2 == 1, sim.ParitySense())
	assertLaneParity(t, sim)
}

func TestFromMap(t *testing.T) {
	cfg := FromMap(map[string]string{
		"side":            "64",
		"density":         "0.25",
		"seed":            "9",
		"rotation":        "false",
		"rotation_period": "7",
		"sand":            "false",
		"tide_period":     "50",
		"sand_max":        "32",
		"tide_formula":    "xor",
		"bogus":           "1",
	})
	assert.Equal(t, Config{
		Side:           64,
		Density:        0.25,
		Seed:           9,
		Rotation:       false,
		RotationPeriod: 7,
		Sand:           false,
		TidePeriod:     50,
		SandMax:        32,
		TideFormula:    TideXOR,
	}, cfg)

	assert.Equal(t, cfg, FromMap(cfg.Map()))

	kept := FromMap(map[string]string{"side": "many"})
	assert.Equal(t, DefaultConfig().Side, kept.Side)
	assert.Equal(t, DefaultConfig(), FromMap(nil))
}

func TestRegistryBuildsSimulation(t *testing.T) {
	assert.Contains(t, core.Names(), "bml")

	sim, err := core.Build("bml", map[string]string{"side": "16", "sand_max": "8", "seed": "4"})
	require.NoError(t, err)
	assert.Equal(t, "bml", sim.Name())
	assert.Equal(t, core.Size{W: 16, H: 16}, sim.Size())
	assert.Len(t, sim.Cells(), 256)

	_, err = core.Build("bml", map[string]string{"side": "15"})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestApply(t *testing.T) {
	cfg := quietConfig(16, 0.3, 12)
	sim, err := New(cfg)
	require.NoError(t, err)

	sized := cfg
	sized.Side = 32
	assert.ErrorIs(t, sim.Apply(sized), ErrInvalidConfiguration)

	sim.Step()
	tuned := cfg
	tuned.Rotation = true
	tuned.RotationPeriod = 9
	require.NoError(t, sim.Apply(tuned))
	assert.Equal(t, 1, sim.Tick(), "non-density changes keep the run going")
	assert.Equal(t, 9, sim.Config().RotationPeriod)

	denser := tuned
	denser.Density = 0.4
	denser.Seed = 99
	require.NoError(t, sim.Apply(denser))
	assert.Equal(t, 0, sim.Tick(), "density changes reseed")
	assert.Equal(t, int64(12), sim.Seed(), "the seed survives a reload")
}

func TestParameterSetters(t *testing.T) {
	sim, err := New(quietConfig(16, 0.3, 5))
	require.NoError(t, err)
	sim.Step()

	assert.True(t, sim.SetIntParameter("tide_period", 40))
	assert.Equal(t, 40, sim.Config().TidePeriod)
	assert.False(t, sim.SetIntParameter("tide_period", 0))
	assert.False(t, sim.SetIntParameter("sand_max", 17))
	assert.False(t, sim.SetIntParameter("unknown", 1))

	assert.False(t, sim.SetFloatParameter("density", 0.7))
	assert.Equal(t, 1, sim.Tick())
	assert.True(t, sim.SetFloatParameter("density", 0.2))
	assert.Equal(t, 0, sim.Tick())
	assert.Equal(t, 0.2, sim.Config().Density)

	snap := sim.Parameters()
	p, ok := snap.Find("tide_period")
	require.True(t, ok)
	assert.Equal(t, "40", p.Value)
	assert.NotEmpty(t, sim.ParameterControls())
}

func TestMasksAndStatus(t *testing.T) {
	cfg := quietConfig(4, 0.3, 1)
	cfg.Sand = true
	cfg.SandMax = 2
	sim, err := New(cfg)
	require.NoError(t, err)

	sand := sim.SandMask(nil)
	require.Len(t, sand, 16)
	assert.True(t, sand[3*4+0])
	assert.True(t, sand[3*4+1])
	assert.True(t, sand[2*4+0])
	assert.False(t, sand[2*4+1])
	assert.False(t, sand[0])

	blockedMask := sim.BlockedMask(make([]bool, 0, 16))
	require.Len(t, blockedMask, 16)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if sim.CellTag(r, c) == Empty {
				assert.False(t, blockedMask[r*4+c])
			}
		}
	}

	assert.Len(t, sim.Status(), 4)
	assert.Contains(t, sim.Status()[0], "tick 0")
}

func TestStepLogsOnlyAtTrace(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	cfg := DefaultConfig()
	cfg.Side = 16
	cfg.SandMax = 16
	cfg.TidePeriod = 4
	cfg.RotationPeriod = 2
	cfg.Seed = 3

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	quiet, err := New(cfg)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		quiet.Step()
	}
	assert.Empty(t, buf.String(), "info level keeps stepping silent")

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	loud, err := New(cfg)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		loud.Step()
	}
	assert.Contains(t, buf.String(), "grid sheared")
}
