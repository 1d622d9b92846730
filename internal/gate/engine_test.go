package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-advisor/internal/catalyst"
	"golang-stock-advisor/internal/scoring"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngineAt(func() time.Time { return testNow })
}

func currentState(score float64, confidence scoring.Confidence, hoursSinceAnalysis float64) *CurrentRecommendation {
	return &CurrentRecommendation{
		Score:          score,
		Recommendation: scoring.CalculateRecommendation(score),
		Confidence:     confidence,
		LastAnalyzedAt: testNow.Add(-time.Duration(hoursSinceAnalysis * float64(time.Hour))),
	}
}

func TestEvaluateBootstrapWithoutPrediction(t *testing.T) {
	decision := testEngine().Evaluate(Event{Type: catalyst.EventGeneralPositiveNews, Urgency: catalyst.UrgencyLow}, nil, 0)

	assert.True(t, decision.ShouldTrigger)
	require.Len(t, decision.Audit, 1)
	assert.Equal(t, GateBootstrap, decision.Audit[0].Gate)
	assert.True(t, decision.Audit[0].Passed)
}

func TestEvaluateUrgencyFloorShortCircuits(t *testing.T) {
	decision := testEngine().Evaluate(
		Event{Type: catalyst.EventEarningsBeat, Urgency: catalyst.UrgencyMedium},
		currentState(28, scoring.ConfidenceMedium, 12), 0)

	assert.False(t, decision.ShouldTrigger)
	assert.Contains(t, decision.SkipReason, "too low")
	// No gate beyond the urgency floor may appear in the audit.
	require.Len(t, decision.Audit, 1)
	assert.Equal(t, GateUrgency, decision.Audit[0].Gate)
	assert.False(t, decision.Audit[0].Passed)
}

func TestEvaluateBoundaryProximityGate(t *testing.T) {
	// Score 0 sits 30 from both boundaries; HIGH urgency cannot override.
	decision := testEngine().Evaluate(
		Event{Type: catalyst.EventEarningsBeat, Urgency: catalyst.UrgencyHigh},
		currentState(0, scoring.ConfidenceMedium, 12), 0)

	assert.False(t, decision.ShouldTrigger)
	require.Len(t, decision.Audit, 2)
	assert.Equal(t, GateBoundaryProximity, decision.Audit[1].Gate)
}

func TestEvaluateImpactGate(t *testing.T) {
	// Score 20: proximity 10 passes gate 2, but earnings_report at HIGH only
	// estimates 3, short of the boundary distance.
	decision := testEngine().Evaluate(
		Event{Type: catalyst.EventEarningsReport, Urgency: catalyst.UrgencyHigh},
		currentState(20, scoring.ConfidenceMedium, 12), 0)

	assert.False(t, decision.ShouldTrigger)
	require.Len(t, decision.Audit, 3)
	assert.Equal(t, GatePredictedImpact, decision.Audit[2].Gate)
	assert.False(t, decision.Audit[2].Passed)
}

func TestEvaluateCooldownGate(t *testing.T) {
	// Score 28 (proximity 2), earnings_miss HIGH estimates -10, gates 1-3
	// pass; the 3h-old analysis fails the 6h cooldown.
	decision := testEngine().Evaluate(
		Event{Type: catalyst.EventEarningsMiss, Urgency: catalyst.UrgencyHigh},
		currentState(28, scoring.ConfidenceMedium, 3), 0)

	assert.False(t, decision.ShouldTrigger)
	require.Len(t, decision.Audit, 4)
	assert.Equal(t, GateCooldown, decision.Audit[3].Gate)
	assert.Contains(t, decision.SkipReason, "cooldown")
	for _, result := range decision.Audit[:3] {
		assert.True(t, result.Passed, "gate %s", result.Gate)
	}
}

func TestEvaluateHardCapResistsCritical(t *testing.T) {
	decision := testEngine().Evaluate(
		Event{Type: catalyst.EventFDARejection, Urgency: catalyst.UrgencyCritical},
		currentState(28, scoring.ConfidenceMedium, 1), 3)

	assert.False(t, decision.ShouldTrigger)
	assert.Contains(t, decision.SkipReason, "hard cap")
}

func TestEvaluateConfidenceResistance(t *testing.T) {
	// HIGH confidence (85%) resists a weak catalyst: leadership_departure at
	// HIGH urgency estimates -6, below the floor of 8.
	decision := testEngine().Evaluate(
		Event{Type: catalyst.EventLeadershipDeparture, Urgency: catalyst.UrgencyHigh},
		currentState(28, scoring.ConfidenceHigh, 12), 0)

	assert.False(t, decision.ShouldTrigger)
	require.Len(t, decision.Audit, 5)
	assert.Equal(t, GateConfidenceResistance, decision.Audit[4].Gate)

	// The same catalyst passes against MEDIUM confidence.
	decision = testEngine().Evaluate(
		Event{Type: catalyst.EventLeadershipDeparture, Urgency: catalyst.UrgencyHigh},
		currentState(28, scoring.ConfidenceMedium, 12), 0)
	assert.True(t, decision.ShouldTrigger)
}

func TestEvaluateFullPass(t *testing.T) {
	decision := testEngine().Evaluate(
		Event{Type: catalyst.EventEarningsMiss, Urgency: catalyst.UrgencyHigh},
		currentState(28, scoring.ConfidenceMedium, 12), 1)

	assert.True(t, decision.ShouldTrigger)
	assert.Empty(t, decision.SkipReason)
	require.Len(t, decision.Audit, 5)
	for _, result := range decision.Audit {
		assert.True(t, result.Passed, "gate %s", result.Gate)
	}
}

func TestEvaluateCriticalMonotonicity(t *testing.T) {
	// Raising urgency from HIGH to CRITICAL must never turn a trigger into a
	// skip: CRITICAL is strictly more permissive on proximity, impact,
	// cooldown hours and confidence resistance.
	states := []*CurrentRecommendation{
		currentState(0, scoring.ConfidenceMedium, 12),  // far from boundary
		currentState(28, scoring.ConfidenceMedium, 1),  // inside cooldown
		currentState(28, scoring.ConfidenceHigh, 12),   // high conviction
		currentState(20, scoring.ConfidenceMedium, 12), // impact short of proximity
	}

	for i, state := range states {
		high := testEngine().Evaluate(Event{Type: catalyst.EventLeadershipDeparture, Urgency: catalyst.UrgencyHigh}, state, 0)
		critical := testEngine().Evaluate(Event{Type: catalyst.EventLeadershipDeparture, Urgency: catalyst.UrgencyCritical}, state, 0)

		if high.ShouldTrigger {
			assert.True(t, critical.ShouldTrigger, "case %d", i)
		}
		assert.True(t, critical.ShouldTrigger, "case %d: CRITICAL overrides every soft gate", i)
	}
}

func TestEvaluateAuditReasonsPreserved(t *testing.T) {
	decision := testEngine().Evaluate(
		Event{Type: catalyst.EventEarningsMiss, Urgency: catalyst.UrgencyHigh},
		currentState(28, scoring.ConfidenceMedium, 3), 0)

	// The failing gate's reason is lifted verbatim into the skip reason.
	require.NotEmpty(t, decision.Audit)
	last := decision.Audit[len(decision.Audit)-1]
	assert.False(t, last.Passed)
	assert.Equal(t, last.Reason, decision.SkipReason)
}
