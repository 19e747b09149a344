package telemetry

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrTooFewSamples is returned when a plot would have no extent.
var ErrTooFewSamples = errors.New("at least two samples are needed to plot")

// PlotVelocity renders velocity and tide against tick as a PNG.
func PlotVelocity(w io.Writer, samples []Sample) error {
	if len(samples) < 2 {
		return ErrTooFewSamples
	}
	ticks := make([]float64, len(samples))
	velocity := make([]float64, len(samples))
	tide := make([]float64, len(samples))
	for i, s := range samples {
		ticks[i] = float64(s.Tick)
		velocity[i] = s.Velocity
		tide[i] = s.Tide
	}

	graph := chart.Chart{
		Width:  960,
		Height: 320,
		XAxis: chart.XAxis{
			Name:  "tick",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "velocity",
				XValues: ticks,
				YValues: velocity,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 78, G: 104, B: 150, A: 255}, StrokeWidth: 1.5},
			},
			chart.ContinuousSeries{
				Name:    "tide",
				XValues: ticks,
				YValues: tide,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 184, G: 120, B: 139, A: 255}, StrokeWidth: 1.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render velocity plot: %w", err)
	}
	return nil
}
