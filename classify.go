package main

import "fmt"

// Classify buckets a predicted ITE against the lower and upper tertile
// cutoffs. Values equal to either cutoff land in the neutral bucket.
func Classify(ite, lower, upper float64) Recommendation {
	switch {
	case ite > upper:
		return RecommendTreat
	case ite < lower:
		return RecommendWithhold
	default:
		return RecommendNeutral
	}
}

// FormatPercent renders an ITE for display, scaled to percent.
func FormatPercent(ite float64) string {
	return fmt.Sprintf("%.2f%%", ite*100)
}

// RecommendationMessage builds the user-facing recommendation text with the
// threshold values interpolated.
func RecommendationMessage(rec Recommendation, ite, lower, upper float64) string {
	switch rec {
	case RecommendTreat:
		return fmt.Sprintf(
			"Sodium bicarbonate administration is recommended: predicted ITE %s exceeds the upper tertile cutoff %s.",
			FormatPercent(ite), FormatPercent(upper))
	case RecommendWithhold:
		return fmt.Sprintf(
			"Sodium bicarbonate administration is not recommended: predicted ITE %s falls below the lower tertile cutoff %s.",
			FormatPercent(ite), FormatPercent(lower))
	default:
		return fmt.Sprintf(
			"No significant treatment difference expected: predicted ITE %s lies between the tertile cutoffs %s and %s.",
			FormatPercent(ite), FormatPercent(lower), FormatPercent(upper))
	}
}
