package bml

import (
	"strconv"

	"bml-traffic/internal/core"
)

func (s *Simulation) Parameters() core.ParameterSnapshot {
	cfg := s.cfg
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				intParam("side", "Side", cfg.Side),
				floatParam("density", "Density", cfg.Density),
				int64Param("seed", "Seed", s.seed),
			},
		},
		{
			Name: "Rotation",
			Params: []core.Parameter{
				boolParam("rotation", "Rotation", cfg.Rotation),
				intParam("rotation_period", "Rotation period", cfg.RotationPeriod),
			},
		},
		{
			Name: "Sand",
			Params: []core.Parameter{
				boolParam("sand", "Sand", cfg.Sand),
				intParam("tide_period", "Tide period", cfg.TidePeriod),
				intParam("sand_max", "Sand max", cfg.SandMax),
				{Key: "tide_formula", Label: "Tide formula", Type: core.ParamTypeString, Value: string(cfg.TideFormula)},
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the tunables the HUD may adjust. Density changes
// reseed the grid; the others apply from the next tick.
func (s *Simulation) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "density", Label: "Density", Type: core.ParamTypeFloat, Step: 0.01, Min: 0.01, Max: 0.5, HasMin: true, HasMax: true},
		{Key: "rotation_period", Label: "Rotation period", Type: core.ParamTypeInt, Step: 1, Min: 1, HasMin: true},
		{Key: "tide_period", Label: "Tide period", Type: core.ParamTypeInt, Step: 10, Min: 1, HasMin: true},
		{Key: "sand_max", Label: "Sand max", Type: core.ParamTypeInt, Step: 5, Min: 0, Max: float64(s.cfg.Side), HasMin: true, HasMax: true},
	}
}

// SetIntParameter applies an integer tunable when the result stays valid.
func (s *Simulation) SetIntParameter(key string, value int) bool {
	next := s.cfg
	switch key {
	case "rotation_period":
		next.RotationPeriod = value
	case "tide_period":
		next.TidePeriod = value
	case "sand_max":
		next.SandMax = value
	default:
		return false
	}
	if next.Validate() != nil {
		return false
	}
	s.cfg = next
	return true
}

// SetFloatParameter applies a float tunable when the result stays valid.
// A density change reseeds the grid with the current seed.
func (s *Simulation) SetFloatParameter(key string, value float64) bool {
	if key != "density" {
		return false
	}
	next := s.cfg
	next.Density = value
	if next.Validate() != nil {
		return false
	}
	s.cfg = next
	s.Reset(0)
	return true
}

// Apply swaps in every tunable of cfg that can change without reallocating
// the grid. The side cannot change; density changes reseed.
func (s *Simulation) Apply(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Side != s.cfg.Side {
		return errSideFixed(s.cfg.Side, cfg.Side)
	}
	if cfg.TideFormula == "" {
		cfg.TideFormula = TideSquared
	}
	reseedGrid := cfg.Density != s.cfg.Density
	cfg.Seed = s.cfg.Seed
	s.cfg = cfg
	if reseedGrid {
		s.Reset(0)
	}
	return nil
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}
