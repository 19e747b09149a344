// Command bml-sweep measures traffic flow across a range of densities to
// locate the jamming transition.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"bml-traffic/internal/config"
	"bml-traffic/internal/logging"
	"bml-traffic/internal/sims/bml"
)

type flowRow struct {
	Density       float64 `csv:"density"`
	Seed          int64   `csv:"seed"`
	Steps         int     `csv:"steps"`
	InitialCars   int     `csv:"initial_cars"`
	FinalCars     int     `csv:"final_cars"`
	MeanVelocity  float64 `csv:"mean_velocity"`
	FinalVelocity float64 `csv:"final_velocity"`
	Jammed        bool    `csv:"jammed"`
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file; the sim section is the sweep baseline")
	from := flag.Float64("from", 0.05, "lowest density")
	to := flag.Float64("to", 0.5, "highest density")
	step := flag.Float64("step", 0.05, "density increment")
	steps := flag.Int("steps", 1000, "ticks to simulate per density")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	side := flag.Int("side", 128, "grid side for the sweep")
	csvPath := flag.String("csv", "", "write results as CSV to this file")
	quiet := flag.Bool("quiet", false, "disable rotation and sand for a classic BML sweep")
	flag.Parse()

	loader, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	cfg := loader.Config()
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	base := cfg.Simulation()
	base.Side = *side
	if base.SandMax > base.Side {
		base.SandMax = base.Side
	}
	if base.Seed == 0 {
		base.Seed = time.Now().UnixNano()
	}
	if *quiet {
		base.Rotation = false
		base.Sand = false
	}

	ds := densities(*from, *to, *step)
	log.Info().
		Int("densities", len(ds)).
		Int("workers", *workers).
		Int("steps", *steps).
		Int("side", base.Side).
		Int64("seed", base.Seed).
		Msg("sweeping")

	start := time.Now()
	results, err := bml.DensitySweep(base, ds, *steps, *workers)
	if err != nil {
		log.Fatal().Err(err).Msg("sweep failed")
	}
	printTable(os.Stdout, results)
	if onset, ok := bml.JamOnset(results); ok {
		fmt.Printf("\nJamming sets in at density %.3f\n", onset)
	} else {
		fmt.Println("\nNo density in the sweep jammed")
	}
	fmt.Printf("Sweep completed in %s\n", time.Since(start).Round(time.Millisecond))

	if *csvPath != "" {
		if err := writeCSV(*csvPath, results); err != nil {
			log.Fatal().Err(err).Msg("writing csv")
		}
		log.Info().Str("path", *csvPath).Msg("results written")
	}
}

// densities lists from, from+step, ... up to and including to, rounded to
// avoid accumulated float drift.
func densities(from, to, step float64) []float64 {
	if step <= 0 || to < from {
		return []float64{from}
	}
	n := int(math.Floor((to-from)/step+1e-9)) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		d := from + float64(i)*step
		out = append(out, math.Round(d*1e6)/1e6)
	}
	return out
}

func printTable(w io.Writer, results []bml.FlowResult) {
	fmt.Fprintf(w, "%-8s %-8s %-8s %-10s %-10s %s\n", "density", "cars", "final", "mean_vel", "final_vel", "state")
	for _, r := range results {
		state := "flowing"
		if r.Jammed {
			state = "jammed"
		}
		fmt.Fprintf(w, "%-8.3f %-8d %-8d %-10.4f %-10.4f %s\n",
			r.Density, r.InitialCars, r.FinalCars, r.MeanVelocity, r.FinalVelocity, state)
	}
}

func writeCSV(path string, results []bml.FlowResult) error {
	rows := make([]flowRow, len(results))
	for i, r := range results {
		rows[i] = flowRow(r)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := gocsv.Marshal(rows, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
