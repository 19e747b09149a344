// Package telemetry records per-tick traffic statistics and writes them out
// as CSV, a summary manifest and a velocity plot.
package telemetry

import "bml-traffic/internal/sims/bml"

// Sample is one row of tick telemetry.
type Sample struct {
	Tick       int     `csv:"tick"`
	Phase      string  `csv:"phase"`
	Horizontal int     `csv:"horizontal"`
	Vertical   int     `csv:"vertical"`
	Moved      int     `csv:"moved"`
	Velocity   float64 `csv:"velocity"`
	Rotated    bool    `csv:"rotated"`
	Tide       float64 `csv:"tide"`
	SandExtent int     `csv:"sand_extent"`
	Placed     int     `csv:"placed"`
}

// Source is anything that reports on its latest tick.
type Source interface {
	LastReport() bml.TickReport
	Counts() (horizontal, vertical int)
}

// SampleOf captures the most recent tick of src.
func SampleOf(src Source) Sample {
	rep := src.LastReport()
	h, v := src.Counts()
	return Sample{
		Tick:       rep.Tick,
		Phase:      rep.Phase.String(),
		Horizontal: h,
		Vertical:   v,
		Moved:      rep.Moved,
		Velocity:   rep.Velocity,
		Rotated:    rep.Rotated,
		Tide:       rep.Tide,
		SandExtent: rep.SandExtent,
		Placed:     rep.Placed,
	}
}

// Cars returns the total number of cars after the tick.
func (s Sample) Cars() int { return s.Horizontal + s.Vertical }
