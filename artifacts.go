package main

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// Fixed artifact filenames, co-located in the configured artifact directory.
// All four are produced by the offline training pipeline; this service only
// decodes them.
const (
	ModelFile      = "causal_forest_model.gob.gz"
	CovariatesFile = "covariates.gob.gz"
	CutoffsFile    = "ite_tertile_cutoffs.gob.gz"
	ImputerFile    = "knn_imputer.gob.gz"
)

// Artifacts is the read-only bundle loaded once at startup and shared by
// every request. No locking: nothing writes to it after LoadArtifacts.
type Artifacts struct {
	Model      *CausalForest
	Covariates []string
	Cutoffs    []float64
	Imputer    *KNNImputer
}

// LoadArtifacts reads and cross-validates the four artifact files. Any
// missing, corrupt, or mutually incompatible artifact is an error; the caller
// aborts the process rather than serving with a partial bundle.
func LoadArtifacts(dir string) (*Artifacts, error) {
	a := &Artifacts{Model: &CausalForest{}, Imputer: &KNNImputer{}}

	if err := readGob(filepath.Join(dir, ModelFile), a.Model); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if err := readGob(filepath.Join(dir, CovariatesFile), &a.Covariates); err != nil {
		return nil, fmt.Errorf("load covariates: %w", err)
	}
	if err := readGob(filepath.Join(dir, CutoffsFile), &a.Cutoffs); err != nil {
		return nil, fmt.Errorf("load cutoffs: %w", err)
	}
	if err := readGob(filepath.Join(dir, ImputerFile), a.Imputer); err != nil {
		return nil, fmt.Errorf("load imputer: %w", err)
	}

	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("incompatible artifacts: %w", err)
	}
	return a, nil
}

func (a *Artifacts) validate() error {
	if len(a.Covariates) == 0 {
		return fmt.Errorf("covariate list is empty")
	}
	if a.Model.NumFeatures != len(a.Covariates) {
		return fmt.Errorf("model expects %d features, covariate list has %d",
			a.Model.NumFeatures, len(a.Covariates))
	}
	if len(a.Model.Trees) == 0 {
		return fmt.Errorf("model has no trees")
	}
	if d := a.Imputer.Dim(); d != len(a.Covariates) {
		return fmt.Errorf("imputer fitted on %d features, covariate list has %d",
			d, len(a.Covariates))
	}
	if a.Imputer.K < 1 {
		return fmt.Errorf("imputer k=%d, must be >= 1", a.Imputer.K)
	}
	if len(a.Cutoffs) != 4 {
		return fmt.Errorf("cutoff list has %d values, expected 4", len(a.Cutoffs))
	}
	for i := 1; i < len(a.Cutoffs); i++ {
		if a.Cutoffs[i] <= a.Cutoffs[i-1] {
			return fmt.Errorf("cutoffs not strictly ascending: %v", a.Cutoffs)
		}
	}
	return nil
}

// LowerCutoff and UpperCutoff are the second and third tertile boundary
// values; the outer two are the observed ITE range and are display-only.
func (a *Artifacts) LowerCutoff() float64 { return a.Cutoffs[1] }
func (a *Artifacts) UpperCutoff() float64 { return a.Cutoffs[2] }

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	g, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer g.Close()

	if err := gob.NewDecoder(g).Decode(v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// writeGob writes one artifact the way the training pipeline does. Used by
// tests to stage fixture bundles.
func writeGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	g := gzip.NewWriter(f)
	if err := gob.NewEncoder(g).Encode(v); err != nil {
		g.Close()
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := g.Close(); err != nil { // order is important here
		f.Close()
		return err
	}
	return f.Close()
}
