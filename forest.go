package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ForestNode is one node of a serialized causal-forest tree. Internal nodes
// route on Feature <= Threshold; leaves carry the estimated treatment effect.
// Left/Right index into the tree's node slice; -1 marks a leaf.
type ForestNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Effect    float64
}

// ForestTree is a flattened decision tree; node 0 is the root.
type ForestTree struct {
	Nodes []ForestNode
}

// CausalForest is the pre-trained effect estimator decoded from its artifact
// file. This service never trains or modifies a forest; it only walks one.
type CausalForest struct {
	NumFeatures int
	Trees       []ForestTree
}

// Effect returns the individualized treatment effect for one feature row: the
// mean of the per-tree leaf effects. The row must be fully imputed; NaN input
// is rejected rather than routed arbitrarily.
func (f *CausalForest) Effect(row []float64) (float64, error) {
	if len(row) != f.NumFeatures {
		return 0, fmt.Errorf("row has %d features, model expects %d", len(row), f.NumFeatures)
	}
	for i, v := range row {
		if math.IsNaN(v) {
			return 0, fmt.Errorf("feature %d is NaN; impute before inference", i)
		}
	}
	if len(f.Trees) == 0 {
		return 0, fmt.Errorf("model has no trees")
	}

	effects := make([]float64, 0, len(f.Trees))
	for ti := range f.Trees {
		e, err := f.Trees[ti].walk(row)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", ti, err)
		}
		effects = append(effects, e)
	}
	return floats.Sum(effects) / float64(len(effects)), nil
}

func (t *ForestTree) walk(row []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, fmt.Errorf("empty tree")
	}
	idx := 0
	// A flattened tree can hold at most len(Nodes) steps on any root-to-leaf
	// path; more than that means a malformed (cyclic) node table.
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node := t.Nodes[idx]
		if node.Left < 0 && node.Right < 0 {
			return node.Effect, nil
		}
		if node.Feature < 0 || node.Feature >= len(row) {
			return 0, fmt.Errorf("node %d splits on feature %d, row has %d", idx, node.Feature, len(row))
		}
		var next int
		if row[node.Feature] <= node.Threshold {
			next = node.Left
		} else {
			next = node.Right
		}
		if next < 0 || next >= len(t.Nodes) {
			return 0, fmt.Errorf("node %d has out-of-range child %d", idx, next)
		}
		idx = next
	}
	return 0, fmt.Errorf("tree walk did not reach a leaf")
}
