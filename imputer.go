package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// KNNImputer fills missing (NaN) values from the K nearest rows of the
// training matrix it was fitted on. The fitted matrix ships inside the
// imputer artifact; this service only applies the transform.
type KNNImputer struct {
	K       int
	Samples [][]float64
}

// Dim returns the feature dimension the imputer was fitted on.
func (imp *KNNImputer) Dim() int {
	if len(imp.Samples) == 0 {
		return 0
	}
	return len(imp.Samples[0])
}

// Transform returns a copy of row with every NaN entry replaced by the mean
// of that coordinate over the K nearest training rows. Distance is NaN-aware
// Euclidean: computed over coordinates observed in both rows and rescaled by
// the total coordinate count, matching the fitted imputer's semantics.
// A row with no missing entries is returned unchanged (still copied).
func (imp *KNNImputer) Transform(row []float64) ([]float64, error) {
	dim := imp.Dim()
	if dim == 0 {
		return nil, fmt.Errorf("imputer has no fitted samples")
	}
	if len(row) != dim {
		return nil, fmt.Errorf("row has %d features, imputer fitted on %d", len(row), dim)
	}
	if imp.K < 1 {
		return nil, fmt.Errorf("imputer k=%d, must be >= 1", imp.K)
	}

	out := make([]float64, dim)
	copy(out, row)
	if !hasNaN(out) {
		return out, nil
	}

	dists := make([]float64, len(imp.Samples))
	order := make([]int, len(imp.Samples))
	for i, sample := range imp.Samples {
		dists[i] = nanEuclidean(row, sample)
	}
	floats.Argsort(dists, order)

	for j := range out {
		if !math.IsNaN(out[j]) {
			continue
		}
		var donors []float64
		for pos, idx := range order {
			if math.IsInf(dists[pos], 1) {
				break
			}
			v := imp.Samples[idx][j]
			if math.IsNaN(v) {
				continue
			}
			donors = append(donors, v)
			if len(donors) == imp.K {
				break
			}
		}
		if len(donors) == 0 {
			return nil, fmt.Errorf("no training rows observe coordinate %d", j)
		}
		out[j] = stat.Mean(donors, nil)
	}
	return out, nil
}

// nanEuclidean computes the Euclidean distance over mutually observed
// coordinates, scaled up by total/observed so sparse overlap does not make
// rows look artificially close. Rows with no overlap are infinitely far.
func nanEuclidean(a, b []float64) float64 {
	var sum float64
	present := 0
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		d := a[i] - b[i]
		sum += d * d
		present++
	}
	if present == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(sum * float64(len(a)) / float64(present))
}

func hasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
