package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateRecommendation(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected Recommendation
	}{
		{"strong positive", 75, RecommendationBuy},
		{"just above buy threshold", 30.1, RecommendationBuy},
		{"exactly buy threshold", 30, RecommendationHold},
		{"neutral", 0, RecommendationHold},
		{"exactly sell threshold", -30, RecommendationHold},
		{"just below sell threshold", -30.1, RecommendationSell},
		{"strong negative", -90, RecommendationSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateRecommendation(tt.score))
		})
	}
}

func TestLabelAgreesWithRecommendation(t *testing.T) {
	// The display label and the recommendation must always agree on which
	// side of the boundaries a score falls.
	for score := -100.0; score <= 100.0; score += 0.5 {
		label := Label(score)
		switch CalculateRecommendation(score) {
		case RecommendationBuy:
			assert.Equal(t, LabelBullish, label, "score %.1f", score)
		case RecommendationSell:
			assert.Equal(t, LabelBearish, label, "score %.1f", score)
		default:
			assert.Equal(t, LabelNeutral, label, "score %.1f", score)
		}
	}
}

func TestBoundaryProximity(t *testing.T) {
	tests := []struct {
		score    float64
		expected float64
	}{
		{30, 0},
		{-30, 0},
		{28, 2},
		{35, 5},
		{0, 30},
		{-25, 5},
		{100, 70},
		{-100, 70},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, BoundaryProximity(tt.score), 1e-9, "score %.1f", tt.score)
	}
}

func TestReconcileRecommendation(t *testing.T) {
	tests := []struct {
		name             string
		score            float64
		aiRecommendation Recommendation
		wantDeviation    bool
		wantSeverity     DeviationSeverity
	}{
		{"matching buy", 35, RecommendationBuy, false, DeviationNone},
		{"adjacent hold vs sell", 10, RecommendationSell, true, DeviationMinor},
		{"adjacent buy vs hold", 40, RecommendationHold, true, DeviationMinor},
		{"opposite buy vs sell", 50, RecommendationSell, true, DeviationMajor},
		{"opposite sell vs buy", -50, RecommendationBuy, true, DeviationMajor},
		{"matching hold", 0, RecommendationHold, false, DeviationNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ReconcileRecommendation(tt.score, tt.aiRecommendation)
			assert.Equal(t, CalculateRecommendation(tt.score), result.CalculatedRecommendation)
			assert.Equal(t, tt.wantDeviation, result.HasDeviation)
			assert.Equal(t, tt.wantSeverity, result.DeviationSeverity)
			assert.NotEmpty(t, result.Explanation)
		})
	}
}

func TestReconcileRecommendationSymmetry(t *testing.T) {
	// An AI recommendation that matches the calculated one is never flagged.
	for score := -100.0; score <= 100.0; score += 1.0 {
		result := ReconcileRecommendation(score, CalculateRecommendation(score))
		assert.False(t, result.HasDeviation, "score %.1f", score)
		assert.Equal(t, DeviationNone, result.DeviationSeverity, "score %.1f", score)
	}
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		raw      string
		expected Confidence
	}{
		{"HIGH", ConfidenceHigh},
		{"high", ConfidenceHigh},
		{" Medium ", ConfidenceMedium},
		{"LOW", ConfidenceLow},
		{"85%", ConfidenceHigh},
		{"85", ConfidenceHigh},
		{"70", ConfidenceMedium},
		{"55%", ConfidenceLow},
		{"garbage", ConfidenceMedium},
		{"", ConfidenceMedium},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseConfidence(tt.raw), "raw %q", tt.raw)
	}
}

func TestConfidencePercent(t *testing.T) {
	assert.Equal(t, 55.0, ConfidenceLow.Percent())
	assert.Equal(t, 70.0, ConfidenceMedium.Percent())
	assert.Equal(t, 85.0, ConfidenceHigh.Percent())
}
