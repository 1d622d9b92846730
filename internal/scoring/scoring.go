package scoring

import (
	"fmt"
	"math"
)

// Recommendation is the categorical call derived from a consensus score.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationHold Recommendation = "HOLD"
	RecommendationSell Recommendation = "SELL"
)

// ScoreLabel is the display vocabulary for the same boundaries. Labels and
// recommendations must never disagree on which side of a boundary a score
// falls.
type ScoreLabel string

const (
	LabelBullish ScoreLabel = "BULLISH"
	LabelNeutral ScoreLabel = "NEUTRAL"
	LabelBearish ScoreLabel = "BEARISH"
)

// The recommendation thresholds. Defined once; every consumer of a threshold
// (gate engine, synthesis, UI) must go through this package.
const (
	BuyThreshold  = 30.0
	SellThreshold = -30.0
)

// boundaries holds every recommendation-flipping score value.
var boundaries = []float64{SellThreshold, BuyThreshold}

// CalculateRecommendation maps a consensus score in [-100, 100] to a
// recommendation. BUY above +30, SELL below -30, HOLD between.
func CalculateRecommendation(score float64) Recommendation {
	switch {
	case score > BuyThreshold:
		return RecommendationBuy
	case score < SellThreshold:
		return RecommendationSell
	default:
		return RecommendationHold
	}
}

// Label maps a score to its display label using the exact same boundaries as
// CalculateRecommendation.
func Label(score float64) ScoreLabel {
	switch CalculateRecommendation(score) {
	case RecommendationBuy:
		return LabelBullish
	case RecommendationSell:
		return LabelBearish
	default:
		return LabelNeutral
	}
}

// BoundaryProximity returns the minimum absolute distance from score to any
// recommendation boundary.
func BoundaryProximity(score float64) float64 {
	proximity := math.Inf(1)
	for _, b := range boundaries {
		if d := math.Abs(score - b); d < proximity {
			proximity = d
		}
	}
	return proximity
}

// DeviationSeverity classifies how far apart two recommendations are.
type DeviationSeverity string

const (
	DeviationNone  DeviationSeverity = "none"
	DeviationMinor DeviationSeverity = "minor"
	DeviationMajor DeviationSeverity = "major"
)

// Reconciliation is the trust signal surfaced when the AI-declared
// recommendation disagrees with the score-implied one. It never alters
// persisted data.
type Reconciliation struct {
	CalculatedRecommendation Recommendation    `json:"calculatedRecommendation"`
	HasDeviation             bool              `json:"hasDeviation"`
	DeviationSeverity        DeviationSeverity `json:"deviationSeverity"`
	Explanation              string            `json:"explanation"`
}

// ReconcileRecommendation compares an AI-declared recommendation against the
// score-implied one. Severity is purely categorical: major only for an exact
// BUY/SELL opposition, minor for adjacent buckets, regardless of score
// magnitude.
func ReconcileRecommendation(score float64, aiRecommendation Recommendation) Reconciliation {
	calculated := CalculateRecommendation(score)

	if calculated == aiRecommendation {
		return Reconciliation{
			CalculatedRecommendation: calculated,
			HasDeviation:             false,
			DeviationSeverity:        DeviationNone,
			Explanation:              fmt.Sprintf("AI recommendation %s matches score-implied %s (score %.1f)", aiRecommendation, calculated, score),
		}
	}

	severity := DeviationMinor
	if (calculated == RecommendationBuy && aiRecommendation == RecommendationSell) ||
		(calculated == RecommendationSell && aiRecommendation == RecommendationBuy) {
		severity = DeviationMajor
	}

	return Reconciliation{
		CalculatedRecommendation: calculated,
		HasDeviation:             true,
		DeviationSeverity:        severity,
		Explanation:              fmt.Sprintf("AI recommendation %s deviates from score-implied %s (score %.1f, severity %s)", aiRecommendation, calculated, score, severity),
	}
}
