package scoring

import (
	"strconv"
	"strings"
)

// Confidence is the validated conviction level attached to a prediction.
// Raw provider output ("HIGH", "medium", "85%") is normalized here, once, at
// the ingestion boundary; nothing downstream re-parses strings.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// Percent maps a confidence level to its nominal percentage.
func (c Confidence) Percent() float64 {
	switch c {
	case ConfidenceHigh:
		return 85
	case ConfidenceLow:
		return 55
	default:
		return 70
	}
}

// ParseConfidence normalizes a raw confidence string. Accepts the level
// names in any case and literal percentages ("85", "85%"); anything
// unrecognized degrades to MEDIUM rather than failing the run.
func ParseConfidence(raw string) Confidence {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	switch normalized {
	case string(ConfidenceLow):
		return ConfidenceLow
	case string(ConfidenceMedium):
		return ConfidenceMedium
	case string(ConfidenceHigh):
		return ConfidenceHigh
	}

	normalized = strings.TrimSuffix(normalized, "%")
	if pct, err := strconv.ParseFloat(normalized, 64); err == nil {
		switch {
		case pct >= 85:
			return ConfidenceHigh
		case pct >= 70:
			return ConfidenceMedium
		default:
			return ConfidenceLow
		}
	}

	return ConfidenceMedium
}
