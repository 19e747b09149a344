//go:build ebiten

package main

import (
	"errors"
	"flag"

	"bml-traffic/internal/app"
	"bml-traffic/internal/config"
	"bml-traffic/internal/core"
	"bml-traffic/internal/logging"
	"bml-traffic/internal/sims/bml"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
)

type applier interface {
	Apply(bml.Config) error
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: ./bml.yaml if present)")
	simName := flag.String("sim", "bml", "simulation to run")
	seed := flag.Int64("seed", 0, "override sim.seed")
	flag.Parse()

	loader, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	cfg := loader.Config()
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	simCfg := cfg.Simulation()
	if *seed != 0 {
		simCfg.Seed = *seed
	}
	sim, err := core.Build(*simName, simCfg.Map())
	if err != nil {
		log.Fatal().Err(err).Msg("building simulation")
	}

	game := app.New(sim, app.Options{
		Scale:    cfg.Viewer.Scale,
		TPS:      cfg.Viewer.TPS,
		HUDWidth: cfg.Viewer.HUDWidth,
		Seed:     simCfg.Seed,
	})

	loader.Watch(func(next config.Config) {
		game.Enqueue(func(s core.Sim) {
			a, ok := s.(applier)
			if !ok {
				return
			}
			if err := a.Apply(next.Simulation()); err != nil {
				log.Warn().Err(err).Msg("reloaded config not applied")
				return
			}
			log.Info().Msg("applied reloaded config")
		})
	})

	size := sim.Size()
	ebiten.SetWindowTitle("bml-traffic: " + sim.Name())
	ebiten.SetTPS(60)
	ebiten.SetWindowSize(size.W*cfg.Viewer.Scale+cfg.Viewer.HUDWidth, size.H*cfg.Viewer.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	log.Info().Str("sim", sim.Name()).Str("config", loader.File()).Msg("viewer starting")
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal().Err(err).Msg("viewer stopped")
	}
}
