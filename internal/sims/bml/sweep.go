package bml

import (
	"sort"
	"sync"
	"time"
)

// JamThreshold is the velocity below which a run counts as jammed.
const JamThreshold = 0.05

// FlowResult captures traffic flow telemetry from one deterministic run.
type FlowResult struct {
	Density float64
	Seed    int64
	Steps   int

	InitialCars int
	FinalCars   int

	// MeanVelocity averages the per-tick velocity over the second half of the
	// run, after the initial transient.
	MeanVelocity float64
	// FinalVelocity averages the last two ticks so both phases contribute.
	FinalVelocity float64
	Jammed        bool
}

// MeasureFlow runs cfg for the requested number of ticks and reports how
// freely traffic moved.
func MeasureFlow(cfg Config, steps int) (FlowResult, error) {
	sim, err := New(cfg)
	if err != nil {
		return FlowResult{}, err
	}
	if steps <= 0 {
		steps = 1
	}
	h, v := sim.Counts()
	res := FlowResult{
		Density:     cfg.Density,
		Seed:        sim.Seed(),
		Steps:       steps,
		InitialCars: h + v,
	}

	settle := steps / 2
	var sum float64
	var samples int
	var tail [2]float64
	for step := 1; step <= steps; step++ {
		sim.Step()
		vel := sim.LastReport().Velocity
		tail[step%2] = vel
		if step > settle {
			sum += vel
			samples++
		}
	}
	if samples > 0 {
		res.MeanVelocity = sum / float64(samples)
	}
	if steps >= 2 {
		res.FinalVelocity = (tail[0] + tail[1]) / 2
	} else {
		res.FinalVelocity = tail[1]
	}
	h, v = sim.Counts()
	res.FinalCars = h + v
	res.Jammed = res.FinalVelocity < JamThreshold
	return res, nil
}

// DensitySweep measures flow for every density in parallel and returns the
// results ordered by density. Each run owns its generator and a zero seed is
// resolved once for the whole sweep, so the results do not depend on the
// number of workers.
func DensitySweep(base Config, densities []float64, steps, workers int) ([]FlowResult, error) {
	if workers <= 0 {
		workers = 1
	}
	if base.Seed == 0 {
		base.Seed = time.Now().UnixNano()
	}
	for _, d := range densities {
		cfg := base
		cfg.Density = d
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	jobs := make(chan float64)
	results := make(chan FlowResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range jobs {
				cfg := base
				cfg.Density = d
				res, err := MeasureFlow(cfg, steps)
				if err != nil {
					// Validated above; a failure here cannot happen.
					continue
				}
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, d := range densities {
			jobs <- d
		}
		close(jobs)
	}()

	all := make([]FlowResult, 0, len(densities))
	for res := range results {
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Density < all[j].Density })
	return all, nil
}

// JamOnset returns the lowest density in results that jammed.
func JamOnset(results []FlowResult) (float64, bool) {
	for _, r := range results {
		if r.Jammed {
			return r.Density, true
		}
	}
	return 0, false
}
