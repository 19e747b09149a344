package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bml-traffic/internal/sims/bml"
)

func TestDensities(t *testing.T) {
	assert.Equal(t, []float64{0.05, 0.1, 0.15, 0.2}, densities(0.05, 0.2, 0.05))
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5}, densities(0.1, 0.5, 0.1))
	assert.Equal(t, []float64{0.3}, densities(0.3, 0.1, 0.05))
	assert.Equal(t, []float64{0.3}, densities(0.3, 0.5, 0))
}

func TestWriteCSVAndTable(t *testing.T) {
	results := []bml.FlowResult{
		{Density: 0.1, Seed: 3, Steps: 10, InitialCars: 8, FinalCars: 8, MeanVelocity: 1, FinalVelocity: 1},
		{Density: 0.4, Seed: 3, Steps: 10, InitialCars: 30, FinalCars: 30, Jammed: true},
	}
	path := filepath.Join(t.TempDir(), "sweep.csv")
	require.NoError(t, writeCSV(path, results))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []flowRow
	require.NoError(t, gocsv.UnmarshalBytes(raw, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, flowRow(results[1]), rows[1])

	var buf bytes.Buffer
	printTable(&buf, results)
	assert.Contains(t, buf.String(), "jammed")
	assert.Contains(t, buf.String(), "flowing")
}
