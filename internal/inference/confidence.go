package inference

// Reliability tiers
const (
	ReliabilityHigh   = "High"
	ReliabilityMedium = "Medium"
	ReliabilityLow    = "Low"
)

// Tier thresholds on the overall confidence
const (
	highConfidence   = 80
	mediumConfidence = 55
)

// OverallConfidence is the floored integer mean of the classification
// confidences
func OverallConfidence(confidences ...int) int {
	if len(confidences) == 0 {
		return 0
	}
	sum := 0
	for _, c := range confidences {
		sum += c
	}
	return sum / len(confidences)
}

// ReliabilityLabel buckets an overall confidence into a tier
func ReliabilityLabel(conf int) string {
	switch {
	case conf >= highConfidence:
		return ReliabilityHigh
	case conf >= mediumConfidence:
		return ReliabilityMedium
	default:
		return ReliabilityLow
	}
}
