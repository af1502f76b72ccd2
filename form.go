package main

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// parseFieldValue coerces one raw string to the field's type. Binary fields
// accept only 0 or 1; int fields must parse as integers.
func parseFieldValue(spec FieldSpec, raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	switch spec.Kind {
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	case KindBinary:
		n, err := strconv.Atoi(raw)
		if err != nil || (n != 0 && n != 1) {
			return 0, false
		}
		return float64(n), true
	default:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
}

// RecordFromQuery builds a record from defaults, overridden by any URL query
// parameters mirroring field names. Malformed or absent parameters silently
// fall back to the hard-coded default; a bad link pre-fills a usable form
// instead of erroring.
func RecordFromQuery(q url.Values) PatientRecord {
	rec := NewDefaultRecord()
	for _, spec := range FieldSpecs() {
		if !q.Has(spec.Name) {
			continue
		}
		if v, ok := parseFieldValue(spec, q.Get(spec.Name)); ok {
			rec[spec.Name] = v
		}
	}
	return rec
}

// RecordFromForm builds a record from a submitted form. A blank field means
// the value is unknown and becomes NaN for the imputer to fill; a malformed
// value falls back to the field default, same as query overrides.
func RecordFromForm(form url.Values) PatientRecord {
	rec := NewDefaultRecord()
	for _, spec := range FieldSpecs() {
		raw := strings.TrimSpace(form.Get(spec.Name))
		if raw == "" {
			rec[spec.Name] = math.NaN()
			continue
		}
		if v, ok := parseFieldValue(spec, raw); ok {
			rec[spec.Name] = v
		}
	}
	return rec
}

// AutoRun reports whether the autorun query flag asks the page to predict
// immediately with the current values.
func AutoRun(q url.Values) bool {
	return strings.EqualFold(strings.TrimSpace(q.Get("autorun")), "true")
}
