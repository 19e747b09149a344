package bml

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidConfiguration marks configurations a Simulation refuses to run.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// TideFormula selects how the tide position is computed from the tick count.
type TideFormula string

const (
	// TideSquared is the squared triangular wave |((c+T) mod 2T) - T|^2 / T^2.
	TideSquared TideFormula = "squared"
	// TideXOR evaluates the same expression with integer XOR in place of
	// squaring, matching output rendered by older builds bit for bit.
	TideXOR TideFormula = "xor"
)

// Config controls the BML simulation.
type Config struct {
	Side    int
	Density float64

	// Seed 0 picks a seed from the clock at construction.
	Seed int64

	Rotation       bool
	RotationPeriod int

	Sand        bool
	TidePeriod  int
	SandMax     int
	TideFormula TideFormula
}

// DefaultConfig returns the tidal, rotating variant at the classic 500x500 size.
func DefaultConfig() Config {
	return Config{
		Side:           500,
		Density:        0.5,
		Rotation:       true,
		RotationPeriod: 5,
		Sand:           true,
		TidePeriod:     300,
		SandMax:        120,
		TideFormula:    TideSquared,
	}
}

// FromMap populates a Config from a string map (flag-style key/value pairs).
// Unparseable values keep their defaults; out-of-range values are kept so
// Validate can reject them.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["side"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Side = parsed
		}
	}
	if v, ok := cfg["density"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Density = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["rotation"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Rotation = parsed
		}
	}
	if v, ok := cfg["rotation_period"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.RotationPeriod = parsed
		}
	}
	if v, ok := cfg["sand"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Sand = parsed
		}
	}
	if v, ok := cfg["tide_period"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.TidePeriod = parsed
		}
	}
	if v, ok := cfg["sand_max"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.SandMax = parsed
		}
	}
	if v, ok := cfg["tide_formula"]; ok {
		c.TideFormula = TideFormula(v)
	}
	return c
}

// Map is the inverse of FromMap, for building through the sim registry.
func (c Config) Map() map[string]string {
	return map[string]string{
		"side":            strconv.Itoa(c.Side),
		"density":         strconv.FormatFloat(c.Density, 'g', -1, 64),
		"seed":            strconv.FormatInt(c.Seed, 10),
		"rotation":        strconv.FormatBool(c.Rotation),
		"rotation_period": strconv.Itoa(c.RotationPeriod),
		"sand":            strconv.FormatBool(c.Sand),
		"tide_period":     strconv.Itoa(c.TidePeriod),
		"sand_max":        strconv.Itoa(c.SandMax),
		"tide_formula":    string(c.TideFormula),
	}
}

// Validate reports the first constraint c violates. Every error wraps
// ErrInvalidConfiguration.
func (c Config) Validate() error {
	switch {
	case c.Side <= 0:
		return fmt.Errorf("%w: side %d must be positive", ErrInvalidConfiguration, c.Side)
	case c.Side%2 != 0:
		return fmt.Errorf("%w: side %d must be even", ErrInvalidConfiguration, c.Side)
	case math.IsNaN(c.Density) || c.Density <= 0 || c.Density > 0.5:
		return fmt.Errorf("%w: density %v must be in (0, 0.5]", ErrInvalidConfiguration, c.Density)
	case c.RotationPeriod <= 0:
		return fmt.Errorf("%w: rotation period %d must be positive", ErrInvalidConfiguration, c.RotationPeriod)
	case c.TidePeriod <= 0:
		return fmt.Errorf("%w: tide period %d must be positive", ErrInvalidConfiguration, c.TidePeriod)
	case c.SandMax < 0 || c.SandMax > c.Side:
		return fmt.Errorf("%w: sand max %d must be in [0, %d]", ErrInvalidConfiguration, c.SandMax, c.Side)
	}
	switch c.TideFormula {
	case "", TideSquared, TideXOR:
	default:
		return fmt.Errorf("%w: unknown tide formula %q", ErrInvalidConfiguration, c.TideFormula)
	}
	return nil
}

func errSideFixed(have, want int) error {
	return fmt.Errorf("%w: side is fixed at %d for the lifetime of a simulation, got %d", ErrInvalidConfiguration, have, want)
}
