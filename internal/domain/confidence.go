package domain

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

const (
	HighConfidenceThreshold   = 0.8
	MediumConfidenceThreshold = 0.5
)

// ComputeConfidenceLevel buckets a probability into an overall level.
func ComputeConfidenceLevel(p float64) ConfidenceLevel {
	switch {
	case p >= HighConfidenceThreshold:
		return ConfidenceHigh
	case p >= MediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func ValidConfidenceLevel(l string) bool {
	switch ConfidenceLevel(l) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}
