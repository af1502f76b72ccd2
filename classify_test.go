package main

import (
	"strings"
	"testing"
)

const (
	testLower = -0.04
	testUpper = 0.06
)

func TestClassifyBuckets(t *testing.T) {
	cases := []struct {
		ite  float64
		want Recommendation
	}{
		{0.10, RecommendTreat},
		{-0.10, RecommendWithhold},
		{0.02, RecommendNeutral},
		{0.0, RecommendNeutral},
		// Boundary values are inclusive of the middle bucket.
		{testLower, RecommendNeutral},
		{testUpper, RecommendNeutral},
		{testUpper + 1e-9, RecommendTreat},
		{testLower - 1e-9, RecommendWithhold},
	}
	for _, c := range cases {
		if got := Classify(c.ite, testLower, testUpper); got != c.want {
			t.Fatalf("Classify(%v): expected %s, got %s", c.ite, c.want, got)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.10); got != "10.00%" {
		t.Fatalf("unexpected format for 0.10: %s", got)
	}
	if got := FormatPercent(-0.10); got != "-10.00%" {
		t.Fatalf("unexpected format for -0.10: %s", got)
	}
	if got := FormatPercent(0.0234); got != "2.34%" {
		t.Fatalf("unexpected format for 0.0234: %s", got)
	}
}

func TestRecommendationMessageInterpolatesThresholds(t *testing.T) {
	msg := RecommendationMessage(RecommendTreat, 0.10, testLower, testUpper)
	if !strings.Contains(msg, "10.00%") || !strings.Contains(msg, "6.00%") {
		t.Fatalf("treat message missing interpolated values: %s", msg)
	}
	if !strings.Contains(msg, "recommended") {
		t.Fatalf("unexpected treat message: %s", msg)
	}

	msg = RecommendationMessage(RecommendWithhold, -0.10, testLower, testUpper)
	if !strings.Contains(msg, "-10.00%") || !strings.Contains(msg, "-4.00%") {
		t.Fatalf("withhold message missing interpolated values: %s", msg)
	}
	if !strings.Contains(msg, "not recommended") {
		t.Fatalf("unexpected withhold message: %s", msg)
	}

	msg = RecommendationMessage(RecommendNeutral, 0.02, testLower, testUpper)
	if !strings.Contains(msg, "No significant treatment difference") {
		t.Fatalf("unexpected neutral message: %s", msg)
	}
	if !strings.Contains(msg, "-4.00%") || !strings.Contains(msg, "6.00%") {
		t.Fatalf("neutral message missing cutoffs: %s", msg)
	}
}
