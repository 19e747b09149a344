package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"bml-traffic/internal/sims/bml"
)

// Summary condenses a run into the figures worth comparing across runs.
type Summary struct {
	Ticks int `yaml:"ticks"`

	MeanVelocity float64 `yaml:"mean_velocity"`
	StdVelocity  float64 `yaml:"std_velocity"`
	P10Velocity  float64 `yaml:"p10_velocity"`
	P50Velocity  float64 `yaml:"p50_velocity"`
	P90Velocity  float64 `yaml:"p90_velocity"`

	// JammedTicks counts ticks whose velocity fell below bml.JamThreshold.
	JammedTicks int `yaml:"jammed_ticks"`
	Rotations   int `yaml:"rotations"`

	InitialCars int `yaml:"initial_cars"`
	FinalCars   int `yaml:"final_cars"`
	CarsPlaced  int `yaml:"cars_placed"`
}

// Summarize computes a Summary from samples in tick order. initialCars is the
// car count before the first sample.
func Summarize(samples []Sample, initialCars int) Summary {
	sum := Summary{Ticks: len(samples), InitialCars: initialCars, FinalCars: initialCars}
	if len(samples) == 0 {
		return sum
	}

	vel := make([]float64, len(samples))
	for i, s := range samples {
		vel[i] = s.Velocity
		if s.Velocity < bml.JamThreshold {
			sum.JammedTicks++
		}
		if s.Rotated {
			sum.Rotations++
		}
		sum.CarsPlaced += s.Placed
	}
	sum.FinalCars = samples[len(samples)-1].Cars()

	sum.MeanVelocity, sum.StdVelocity = stat.MeanStdDev(vel, nil)
	if len(vel) < 2 {
		sum.StdVelocity = 0
	}
	sort.Float64s(vel)
	sum.P10Velocity = stat.Quantile(0.1, stat.Empirical, vel, nil)
	sum.P50Velocity = stat.Quantile(0.5, stat.Empirical, vel, nil)
	sum.P90Velocity = stat.Quantile(0.9, stat.Empirical, vel, nil)
	return sum
}
