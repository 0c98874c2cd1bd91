// Package metrics implements PVAC's metrics CSV exporter (spec §1's
// "external collaborator" of the same name): a per-ciphertext Sample row
// plus the sigma_density statistical check from spec §8 ("z-score of the
// popcount against Binomial(n*m, 0.5) lies in [-6, +6]"). Summary
// statistics are computed with montanaflynn/stats, the teacher's own
// dependency for descriptive statistics over sampled data.
package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"
)

// Sample is one ciphertext's metrics row.
type Sample struct {
	Label        string
	EdgeCount    int
	LayerCount   int
	SigmaDensity float64
	ZScore       float64
}

// SigmaZScore computes the z-score of an observed total tag popcount
// against Binomial(numEdges*mBits, 0.5): mean = n/2, stddev = sqrt(n/4).
func SigmaZScore(popcountSum, numEdges, mBits int) float64 {
	n := float64(numEdges) * float64(mBits)
	if n == 0 {
		return 0
	}
	mean := n / 2
	stddev := math.Sqrt(n / 4)
	return (float64(popcountSum) - mean) / stddev
}

// NewSample builds a Sample from one ciphertext's raw counts: its edge
// and layer counts, and the sum of every edge's tag popcount.
func NewSample(label string, numEdges, numLayers, popcountSum, mBits int) Sample {
	density := 0.0
	if numEdges > 0 {
		density = float64(popcountSum) / (float64(numEdges) * float64(mBits))
	}
	return Sample{
		Label:        label,
		EdgeCount:    numEdges,
		LayerCount:   numLayers,
		SigmaDensity: density,
		ZScore:       SigmaZScore(popcountSum, numEdges, mBits),
	}
}

// Summary holds descriptive statistics across a batch of Samples.
type Summary struct {
	MeanEdgeCount      float64
	StddevEdgeCount    float64
	MeanSigmaDensity   float64
	StddevSigmaDensity float64
}

// Summarize computes mean/stddev of edge counts and tag density across
// samples using montanaflynn/stats, the way the CKKS approximation
// machinery in the teacher reports its own error statistics.
func Summarize(samples []Sample) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, fmt.Errorf("metrics: Summarize: no samples")
	}

	edgeCounts := make(stats.Float64Data, len(samples))
	densities := make(stats.Float64Data, len(samples))
	for i, s := range samples {
		edgeCounts[i] = float64(s.EdgeCount)
		densities[i] = s.SigmaDensity
	}

	meanE, err := edgeCounts.Mean()
	if err != nil {
		return Summary{}, fmt.Errorf("metrics: Summarize: edge count mean: %w", err)
	}
	sdE, err := edgeCounts.StandardDeviation()
	if err != nil {
		return Summary{}, fmt.Errorf("metrics: Summarize: edge count stddev: %w", err)
	}
	meanD, err := densities.Mean()
	if err != nil {
		return Summary{}, fmt.Errorf("metrics: Summarize: density mean: %w", err)
	}
	sdD, err := densities.StandardDeviation()
	if err != nil {
		return Summary{}, fmt.Errorf("metrics: Summarize: density stddev: %w", err)
	}

	return Summary{
		MeanEdgeCount:      meanE,
		StddevEdgeCount:    sdE,
		MeanSigmaDensity:   meanD,
		StddevSigmaDensity: sdD,
	}, nil
}

// WriteCSV writes samples as CSV rows (header then one row per sample).
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"label", "edge_count", "layer_count", "sigma_density", "z_score"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			s.Label,
			strconv.Itoa(s.EdgeCount),
			strconv.Itoa(s.LayerCount),
			strconv.FormatFloat(s.SigmaDensity, 'f', 6, 64),
			strconv.FormatFloat(s.ZScore, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
