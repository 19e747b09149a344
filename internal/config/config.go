// Package config loads application settings from defaults, an optional YAML
// file and BML_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"bml-traffic/internal/encode"
	"bml-traffic/internal/logging"
	"bml-traffic/internal/sims/bml"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration for the application.
type Config struct {
	Sim    SimConfig    `mapstructure:"sim"`
	Run    RunConfig    `mapstructure:"run"`
	Viewer ViewerConfig `mapstructure:"viewer"`
	Log    LogConfig    `mapstructure:"log"`
}

// SimConfig holds the automaton settings.
type SimConfig struct {
	Side     int            `mapstructure:"side"`
	Density  float64        `mapstructure:"density"`
	Seed     int64          `mapstructure:"seed"`
	Rotation RotationConfig `mapstructure:"rotation"`
	Sand     SandConfig     `mapstructure:"sand"`
}

// RotationConfig controls the periodic shear.
type RotationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Period  int  `mapstructure:"period"`
}

// SandConfig controls tide-driven reseeding.
type SandConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	TidePeriod  int    `mapstructure:"tide_period"`
	Max         int    `mapstructure:"max"`
	TideFormula string `mapstructure:"tide_formula"`
}

// RunConfig holds headless rendering settings.
type RunConfig struct {
	Frames        int    `mapstructure:"frames"`
	FrameDelayMS  int    `mapstructure:"frame_delay_ms"`
	Scale         int    `mapstructure:"scale"`
	Output        string `mapstructure:"output"`
	Format        string `mapstructure:"format"`
	TelemetryDir  string `mapstructure:"telemetry_dir"`
	ProgressEvery int    `mapstructure:"progress_every"`
}

// ViewerConfig holds interactive viewer settings.
type ViewerConfig struct {
	Scale    int `mapstructure:"scale"`
	TPS      int `mapstructure:"tps"`
	HUDWidth int `mapstructure:"hud_width"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FrameDelay returns the per-frame delay as a duration.
func (r RunConfig) FrameDelay() time.Duration {
	return time.Duration(r.FrameDelayMS) * time.Millisecond
}

// Simulation converts the sim section into a bml.Config.
func (c Config) Simulation() bml.Config {
	return bml.Config{
		Side:           c.Sim.Side,
		Density:        c.Sim.Density,
		Seed:           c.Sim.Seed,
		Rotation:       c.Sim.Rotation.Enabled,
		RotationPeriod: c.Sim.Rotation.Period,
		Sand:           c.Sim.Sand.Enabled,
		TidePeriod:     c.Sim.Sand.TidePeriod,
		SandMax:        c.Sim.Sand.Max,
		TideFormula:    bml.TideFormula(c.Sim.Sand.TideFormula),
	}
}

func setDefaults(v *viper.Viper) {
	d := bml.DefaultConfig()
	v.SetDefault("sim.side", d.Side)
	v.SetDefault("sim.density", d.Density)
	v.SetDefault("sim.seed", d.Seed)
	v.SetDefault("sim.rotation.enabled", d.Rotation)
	v.SetDefault("sim.rotation.period", d.RotationPeriod)
	v.SetDefault("sim.sand.enabled", d.Sand)
	v.SetDefault("sim.sand.tide_period", d.TidePeriod)
	v.SetDefault("sim.sand.max", d.SandMax)
	v.SetDefault("sim.sand.tide_formula", string(d.TideFormula))

	v.SetDefault("run.frames", 3000)
	v.SetDefault("run.frame_delay_ms", 20)
	v.SetDefault("run.scale", 1)
	v.SetDefault("run.output", "target/out.gif")
	v.SetDefault("run.format", encode.FormatGIF)
	v.SetDefault("run.telemetry_dir", "")
	v.SetDefault("run.progress_every", 1)

	v.SetDefault("viewer.scale", 2)
	v.SetDefault("viewer.tps", 30)
	v.SetDefault("viewer.hud_width", 260)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Loader owns a viper instance and the last valid configuration it produced.
type Loader struct {
	v    *viper.Viper
	file string

	mu  sync.RWMutex
	cfg Config
}

// Load reads configuration. With an empty path it looks for bml.yaml in the
// working directory and ./config; a missing file means defaults. An explicit
// path that does not exist also falls back to defaults.
func Load(path string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bml")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("BML")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	l := &Loader{v: v}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		l.logger().Debug().Str("path", path).Msg("no config file, using defaults")
	} else {
		l.file = v.ConfigFileUsed()
	}

	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	l.cfg = cfg
	return l, nil
}

func (l *Loader) decode() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// logger is resolved per call so it follows logging.Setup even when the
// loader was created first.
func (l *Loader) logger() *zerolog.Logger {
	lg := logging.Component("config")
	return &lg
}

// Config returns the current configuration.
func (l *Loader) Config() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// File returns the config file in use, or "" when running on defaults.
func (l *Loader) File() string { return l.file }

// Watch reloads the file whenever it changes. onChange receives every
// reloaded configuration that validates; invalid edits are logged and the
// previous configuration stays in effect.
func (l *Loader) Watch(onChange func(Config)) {
	if l.File() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			l.logger().Warn().Err(err).Str("file", e.Name).Msg("ignoring config change")
			return
		}
		l.mu.Lock()
		l.cfg = cfg
		l.mu.Unlock()
		l.logger().Info().Str("file", e.Name).Msg("config reloaded")
		if onChange != nil {
			onChange(cfg)
		}
	})
	l.v.WatchConfig()
}

// Validate validates the configuration values.
func Validate(c Config) error {
	if err := c.Simulation().Validate(); err != nil {
		return fmt.Errorf("%w: sim: %w", ErrInvalidConfig, err)
	}
	if c.Run.Frames <= 0 {
		return fmt.Errorf("%w: run.frames must be positive", ErrInvalidConfig)
	}
	if c.Run.FrameDelayMS < 0 {
		return fmt.Errorf("%w: run.frame_delay_ms must be non-negative", ErrInvalidConfig)
	}
	if c.Run.Scale < 1 {
		return fmt.Errorf("%w: run.scale must be at least 1", ErrInvalidConfig)
	}
	if c.Run.Output == "" {
		return fmt.Errorf("%w: run.output must be set", ErrInvalidConfig)
	}
	if !encode.Supported(c.Run.Format) {
		return fmt.Errorf("%w: run.format %q must be one of %v", ErrInvalidConfig, c.Run.Format, encode.Formats())
	}
	if c.Run.ProgressEvery < 0 {
		return fmt.Errorf("%w: run.progress_every must be non-negative", ErrInvalidConfig)
	}
	if c.Viewer.Scale < 1 {
		return fmt.Errorf("%w: viewer.scale must be at least 1", ErrInvalidConfig)
	}
	if c.Viewer.TPS <= 0 {
		return fmt.Errorf("%w: viewer.tps must be positive", ErrInvalidConfig)
	}
	if c.Viewer.HUDWidth < 0 {
		return fmt.Errorf("%w: viewer.hud_width must be non-negative", ErrInvalidConfig)
	}
	return nil
}
