package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

const (
	SamplesFile  = "ticks.csv"
	ManifestFile = "manifest.yaml"
	PlotFile     = "velocity.png"
)

// Output collects tick samples for the run summary. With a directory it also
// streams them to disk and writes the manifest and plot when the run
// finishes.
type Output struct {
	dir           string
	file          *os.File
	headerWritten bool
	samples       []Sample
}

// NewOutput creates dir and opens the samples file. An empty dir keeps
// samples in memory only.
func NewOutput(dir string) (*Output, error) {
	if dir == "" {
		return &Output{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, SamplesFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", SamplesFile, err)
	}
	return &Output{dir: dir, file: f}, nil
}

// Dir returns the output directory, or "" when nothing is written to disk.
func (o *Output) Dir() string { return o.dir }

// Record appends the latest tick of src.
func (o *Output) Record(src Source) error {
	return o.Write(SampleOf(src))
}

// Write appends s to the collected samples and the samples file.
func (o *Output) Write(s Sample) error {
	o.samples = append(o.samples, s)
	if o.file == nil {
		return nil
	}

	records := []Sample{s}
	if !o.headerWritten {
		if err := gocsv.Marshal(records, o.file); err != nil {
			return fmt.Errorf("writing samples: %w", err)
		}
		o.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, o.file); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	return nil
}

// Samples returns everything recorded so far.
func (o *Output) Samples() []Sample { return o.samples }

// Finish summarises the run into m and closes the samples file. With a
// directory it also writes the manifest and the plot. The completed manifest
// is returned.
func (o *Output) Finish(m Manifest, initialCars int) (Manifest, error) {
	m.Summary = Summarize(o.samples, initialCars)
	if err := o.Close(); err != nil {
		return m, err
	}
	if o.dir == "" {
		return m, nil
	}
	if err := WriteManifest(filepath.Join(o.dir, ManifestFile), m); err != nil {
		return m, err
	}
	if len(o.samples) < 2 {
		return m, nil
	}
	f, err := os.Create(filepath.Join(o.dir, PlotFile))
	if err != nil {
		return m, fmt.Errorf("creating %s: %w", PlotFile, err)
	}
	if err := PlotVelocity(f, o.samples); err != nil {
		f.Close()
		return m, err
	}
	if err := f.Close(); err != nil {
		return m, fmt.Errorf("closing %s: %w", PlotFile, err)
	}
	return m, nil
}

// Close flushes and closes the samples file.
func (o *Output) Close() error {
	if o.file == nil {
		return nil
	}
	err := o.file.Close()
	o.file = nil
	if err != nil {
		return fmt.Errorf("closing %s: %w", SamplesFile, err)
	}
	return nil
}
