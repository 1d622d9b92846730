package checkpoint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-advisor/internal/scoring"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func predictedDaysAgo(days float64) time.Time {
	return testNow.Add(-time.Duration(days * 24 * float64(time.Hour)))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name           string
		checkpointType Type
		elapsedDays    float64
		evaluated      bool
		wantStatus     Status
		wantRemaining  int
	}{
		{"exactly at threshold", Type10D, 10.0, false, StatusReady, 0},
		{"inside grace buffer", Type10D, 9.9, false, StatusReady, 0},
		{"half day early", Type10D, 9.5, false, StatusPending, 1},
		{"well past threshold", Type10D, 14, false, StatusReady, 0},
		{"already evaluated", Type10D, 14, true, StatusEvaluated, 0},
		{"5d barely early", Type5D, 4.5, false, StatusPending, 1},
		{"5d ready", Type5D, 5.0, false, StatusReady, 0},
		{"20d fresh prediction", Type20D, 1, false, StatusPending, 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := StatusFor(tt.checkpointType, predictedDaysAgo(tt.elapsedDays), testNow, tt.evaluated)
			assert.Equal(t, tt.wantStatus, state.Status)
			assert.Equal(t, tt.wantRemaining, state.DaysRemaining)
		})
	}
}

func TestClassifyDirectionDeadZone(t *testing.T) {
	tests := []struct {
		returnPct float64
		expected  Direction
	}{
		{2.0, DirectionUp},
		{0.51, DirectionUp},
		{0.5, DirectionFlat}, // boundary is strict
		{0.0, DirectionFlat},
		{-0.5, DirectionFlat}, // boundary is strict
		{-0.51, DirectionDown},
		{-3.0, DirectionDown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyDirection(tt.returnPct), "returnPct %.2f", tt.returnPct)
	}
}

func TestDirectionalAccuracy(t *testing.T) {
	tests := []struct {
		recommendation scoring.Recommendation
		direction      Direction
		expected       bool
	}{
		{scoring.RecommendationBuy, DirectionUp, true},
		{scoring.RecommendationBuy, DirectionDown, false},
		{scoring.RecommendationBuy, DirectionFlat, false},
		{scoring.RecommendationSell, DirectionDown, true},
		{scoring.RecommendationSell, DirectionUp, false},
		{scoring.RecommendationHold, DirectionFlat, true},
		{scoring.RecommendationHold, DirectionUp, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DirectionalAccuracy(tt.recommendation, tt.direction), "%s vs %s", tt.recommendation, tt.direction)
	}
}

func TestEvaluateComputesResult(t *testing.T) {
	result, err := Evaluate(Type10D, scoring.RecommendationBuy, 100, 104, predictedDaysAgo(10), testNow, false)
	require.NoError(t, err)

	assert.Equal(t, 104.0, result.Price)
	assert.InDelta(t, 4.0, result.ReturnPct, 1e-9)
	assert.Equal(t, string(DirectionUp), result.Direction)
	assert.True(t, result.DirectionalAccuracy)
	assert.Equal(t, testNow, result.EvaluatedAt)
}

func TestEvaluateInaccurateCall(t *testing.T) {
	result, err := Evaluate(Type5D, scoring.RecommendationBuy, 200, 190, predictedDaysAgo(6), testNow, false)
	require.NoError(t, err)

	assert.Equal(t, string(DirectionDown), result.Direction)
	assert.False(t, result.DirectionalAccuracy)
}

func TestEvaluateRejectsReEvaluation(t *testing.T) {
	result, err := Evaluate(Type10D, scoring.RecommendationBuy, 100, 104, predictedDaysAgo(10), testNow, true)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAlreadyEvaluated)
}

func TestEvaluateRejectsPendingCheckpoint(t *testing.T) {
	result, err := Evaluate(Type10D, scoring.RecommendationBuy, 100, 104, predictedDaysAgo(9.5), testNow, false)
	assert.Nil(t, result)

	var notReady *NotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, 1, notReady.DaysRemaining)
}

func TestEvaluateRejectsMissingBaseline(t *testing.T) {
	_, err := Evaluate(Type10D, scoring.RecommendationBuy, 0, 104, predictedDaysAgo(10), testNow, false)
	assert.ErrorIs(t, err, ErrMissingBaseline)
}

func TestParse(t *testing.T) {
	for _, valid := range []string{"5d", "10d", "20d"} {
		parsed, err := Parse(valid)
		require.NoError(t, err)
		assert.Equal(t, Type(valid), parsed)
	}

	_, err := Parse("15d")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestPrimaryCheckpoint(t *testing.T) {
	assert.False(t, Type5D.IsPrimary())
	assert.True(t, Type10D.IsPrimary())
	assert.False(t, Type20D.IsPrimary())
}
