package main

import (
	"fmt"
	"math"
)

// FieldKind describes how a form field is typed and coerced.
type FieldKind int

const (
	KindInt FieldKind = iota
	KindFloat
	KindBinary // 0/1 choice rendered as a select
)

// FieldSpec describes one clinical input field: its covariate name, display
// label, type, and the hard-coded default used when no value (or a malformed
// value) is supplied.
type FieldSpec struct {
	Name    string
	Label   string
	Kind    FieldKind
	Default float64
}

// FieldSpecs returns the full input field table in canonical covariate order.
// The order here must match the covariate-name artifact; Vector enforces that
// at prediction time.
func FieldSpecs() []FieldSpec {
	return []FieldSpec{
		{Name: "age", Label: "Age", Kind: KindInt, Default: 65},
		{Name: "sex", Label: "Sex (1=Male, 0=Female)", Kind: KindBinary, Default: 1},
		{Name: "responsetime", Label: "Response Time (min)", Kind: KindFloat, Default: 5.0},
		{Name: "scenetohosptime", Label: "Scene to Hospital Time (min)", Kind: KindFloat, Default: 15.0},
		{Name: "place_new", Label: "Location Category", Kind: KindInt, Default: 0},
		{Name: "witnessed_core", Label: "Witnessed Arrest", Kind: KindBinary, Default: 0},
		{Name: "bystander_core", Label: "Bystander CPR", Kind: KindBinary, Default: 0},
		{Name: "aed_core", Label: "AED Used", Kind: KindBinary, Default: 0},
		{Name: "airway", Label: "Airway Management", Kind: KindInt, Default: 0},
		{Name: "bosmin_core", Label: "Prehospital Epinephrine", Kind: KindBinary, Default: 0},
		{Name: "initialrhythm_core", Label: "Initial Rhythm", Kind: KindInt, Default: 0},
		{Name: "lactic", Label: "Lactate (mmol/L)", Kind: KindFloat, Default: 0.0},
		{Name: "ph", Label: "pH", Kind: KindFloat, Default: 7.0},
		{Name: "hco3", Label: "HCO3 (mmol/L)", Kind: KindFloat, Default: 20.0},
		{Name: "pco2", Label: "pCO2 (mmHg)", Kind: KindFloat, Default: 40.0},
		{Name: "be", Label: "Base Excess", Kind: KindFloat, Default: 0.0},
		{Name: "cre", Label: "Creatinine (mg/dL)", Kind: KindFloat, Default: 1.0},
		{Name: "na", Label: "Sodium (mmol/L)", Kind: KindFloat, Default: 140.0},
		{Name: "k", Label: "Potassium (mmol/L)", Kind: KindFloat, Default: 4.0},
		{Name: "etco2_core", Label: "EtCO2 (mmHg)", Kind: KindFloat, Default: 0.0},
	}
}

// PatientRecord is one submission's worth of clinical values, keyed by
// covariate name. A NaN value marks a field the user left blank; the imputer
// fills it before inference. Records are created per submission and discarded
// after the prediction renders.
type PatientRecord map[string]float64

// NewDefaultRecord returns a record with every field at its hard-coded default.
func NewDefaultRecord() PatientRecord {
	rec := make(PatientRecord, len(FieldSpecs()))
	for _, spec := range FieldSpecs() {
		rec[spec.Name] = spec.Default
	}
	return rec
}

// Vector lays the record out as a single row in the order given by the
// covariate-name artifact. The record must cover exactly the named covariates;
// a mismatch would silently misalign columns at inference, so it errors here
// instead.
func (r PatientRecord) Vector(covariates []string) ([]float64, error) {
	if len(covariates) != len(r) {
		return nil, fmt.Errorf("record has %d fields, covariate list has %d", len(r), len(covariates))
	}
	row := make([]float64, len(covariates))
	for i, name := range covariates {
		v, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("covariate %q not present in record", name)
		}
		row[i] = v
	}
	return row, nil
}

// MissingCount returns how many fields are blank (NaN) and will be imputed.
func (r PatientRecord) MissingCount() int {
	n := 0
	for _, v := range r {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Recommendation is the three-way treatment call derived from the ITE.
type Recommendation string

const (
	// RecommendTreat: predicted benefit exceeds the upper tertile cutoff.
	RecommendTreat Recommendation = "TREAT"

	// RecommendWithhold: predicted effect falls below the lower tertile cutoff.
	RecommendWithhold Recommendation = "WITHHOLD"

	// RecommendNeutral: predicted effect sits between the cutoffs (inclusive).
	RecommendNeutral Recommendation = "NEUTRAL"
)
