package weather

const (
	highConfidenceSamples   = 10
	mediumConfidenceSamples = 5
)

// EstimateConfidence rates a result by the number of sample points that
// returned data. It is defined for every count, including zero.
func EstimateConfidence(successes int) ConfidenceLevel {
	switch {
	case successes >= highConfidenceSamples:
		return ConfidenceHigh
	case successes >= mediumConfidenceSamples:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
