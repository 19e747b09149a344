// Command bml renders the tidal traffic automaton to an animation file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"bml-traffic/internal/config"
	"bml-traffic/internal/core"
	"bml-traffic/internal/encode"
	"bml-traffic/internal/logging"
	"bml-traffic/internal/render"
	"bml-traffic/internal/sims/bml"
	"bml-traffic/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: ./bml.yaml if present)")
	frames := flag.Int("frames", 0, "override run.frames")
	out := flag.String("out", "", "override run.output")
	format := flag.String("format", "", "override run.format (gif, mjpeg)")
	telemetryDir := flag.String("telemetry", "", "override run.telemetry_dir")
	seed := flag.Int64("seed", 0, "override sim.seed")
	logLevel := flag.String("log-level", "", "override log.level")
	flag.Parse()

	loader, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	cfg := loader.Config()
	if *frames > 0 {
		cfg.Run.Frames = *frames
	}
	if *out != "" {
		cfg.Run.Output = *out
	}
	if *format != "" {
		cfg.Run.Format = *format
	}
	if *telemetryDir != "" {
		cfg.Run.TelemetryDir = *telemetryDir
	}
	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid settings")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, cfg)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("render failed")
	}
	ev := log.Info()
	if err != nil {
		ev = log.Warn()
	}
	ev.Str("output", cfg.Run.Output).
		Int("frames", res.Frames).
		Int64("seed", res.Seed).
		Float64("mean_velocity", res.Summary.MeanVelocity).
		Msg("done")
}

type result struct {
	Frames  int
	Seed    int64
	Summary telemetry.Summary
}

type trafficSim interface {
	core.Sim
	telemetry.Source
	Palette() []color.RGBA
	Config() bml.Config
	Seed() int64
}

// run renders cfg.Run.Frames frames: each frame shows the current grid and
// is followed by one Step. Cancelling ctx stops early but still finalises
// every file written so far.
func run(ctx context.Context, cfg config.Config) (res result, err error) {
	built, err := core.Build("bml", cfg.Simulation().Map())
	if err != nil {
		return res, err
	}
	sim, ok := built.(trafficSim)
	if !ok {
		return res, fmt.Errorf("simulation %q does not report traffic telemetry", built.Name())
	}
	res.Seed = sim.Seed()
	h, v := sim.Counts()
	initialCars := h + v

	if dir := filepath.Dir(cfg.Run.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, fmt.Errorf("creating output directory: %w", err)
		}
	}

	size := sim.Size()
	framer := render.NewFramer(size.W, size.H, cfg.Run.Scale, sim.Palette())
	fw, fh := framer.Bounds()
	sink, err := encode.Open(cfg.Run.Format, cfg.Run.Output, fw, fh, cfg.Run.FrameDelay())
	if err != nil {
		return res, err
	}
	defer func() {
		if cerr := sink.Close(); err == nil {
			err = cerr
		}
	}()

	out, err := telemetry.NewOutput(cfg.Run.TelemetryDir)
	if err != nil {
		return res, err
	}
	defer func() {
		manifest := telemetry.NewManifest(sim.Config(), sim.Seed())
		manifest.Frames = res.Frames
		manifest.Output = cfg.Run.Output
		manifest.Format = cfg.Run.Format
		done, ferr := out.Finish(manifest, initialCars)
		res.Summary = done.Summary
		if err == nil {
			err = ferr
		}
		if ferr == nil && out.Dir() != "" {
			logging.Component("render").Info().Str("dir", out.Dir()).Msg("telemetry written")
		}
	}()

	logger := logging.Component("render")
	logger.Info().
		Int("side", size.W).
		Int64("seed", res.Seed).
		Int("frames", cfg.Run.Frames).
		Str("format", cfg.Run.Format).
		Msg("rendering")

	for i := 0; i < cfg.Run.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if every := cfg.Run.ProgressEvery; every > 0 && i%every == 0 {
			logger.Info().Msgf("frame %d/%d", i, cfg.Run.Frames)
		}
		if err := sink.Add(framer.Render(sim.Cells())); err != nil {
			return res, err
		}
		res.Frames++
		sim.Step()
		if err := out.Record(sim); err != nil {
			return res, err
		}
	}
	return res, nil
}
