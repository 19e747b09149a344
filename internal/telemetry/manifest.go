package telemetry

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"bml-traffic/internal/sims/bml"
)

// Manifest describes one run: what was simulated and how it went.
type Manifest struct {
	RunID     string    `yaml:"run_id"`
	CreatedAt time.Time `yaml:"created_at"`

	Frames int    `yaml:"frames"`
	Output string `yaml:"output,omitempty"`
	Format string `yaml:"format,omitempty"`

	Sim     SimSettings `yaml:"sim"`
	Summary Summary     `yaml:"summary"`
}

// SimSettings mirrors bml.Config with stable YAML keys. Seed is the seed
// actually used, even when the configuration asked for a clock seed.
type SimSettings struct {
	Side           int     `yaml:"side"`
	Density        float64 `yaml:"density"`
	Seed           int64   `yaml:"seed"`
	Rotation       bool    `yaml:"rotation"`
	RotationPeriod int     `yaml:"rotation_period"`
	Sand           bool    `yaml:"sand"`
	TidePeriod     int     `yaml:"tide_period"`
	SandMax        int     `yaml:"sand_max"`
	TideFormula    string  `yaml:"tide_formula"`
}

// NewManifest stamps a fresh run id.
func NewManifest(cfg bml.Config, seed int64) Manifest {
	return Manifest{
		RunID:     uuid.New().String(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Sim: SimSettings{
			Side:           cfg.Side,
			Density:        cfg.Density,
			Seed:           seed,
			Rotation:       cfg.Rotation,
			RotationPeriod: cfg.RotationPeriod,
			Sand:           cfg.Sand,
			TidePeriod:     cfg.TidePeriod,
			SandMax:        cfg.SandMax,
			TideFormula:    string(cfg.TideFormula),
		},
	}
}

// WriteManifest saves m as YAML.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}
