package gate

import (
	"fmt"
	"math"
	"time"

	"golang-stock-advisor/internal/catalyst"
	"golang-stock-advisor/internal/scoring"
)

// A full re-analysis costs six AI calls, so the engine only pays for one when
// the event is credible, the current call is fragile, the event is large
// enough to matter, the stock hasn't just been analyzed, and the existing
// call isn't already high-conviction. Gates run cheapest-first and
// short-circuit on the first failure.
const (
	// Gate 2: score must sit within this distance of a recommendation
	// boundary for a catalyst to plausibly flip it.
	maxBoundaryProximity = 10.0
	// Gate 4: minimum hours between analyses, and the hard cap on
	// catalyst-triggered runs per trailing 24h.
	cooldownHours    = 6.0
	maxReanalyses24h = 3
	// Gate 5: predictions at or above this confidence resist catalysts whose
	// estimated impact is below the floor.
	resistanceConfidencePct = 85.0
	resistanceImpactFloor   = 8.0
)

// Gate names as they appear in the audit trail.
const (
	GateBootstrap            = "bootstrap"
	GateUrgency              = "urgency"
	GateBoundaryProximity    = "boundary_proximity"
	GatePredictedImpact      = "predicted_impact"
	GateCooldown             = "cooldown"
	GateConfidenceResistance = "confidence_resistance"
)

// Event is the catalyst under evaluation.
type Event struct {
	Type    catalyst.EventType
	Urgency catalyst.Urgency
}

// CurrentRecommendation is the stock's live prediction state, read once
// before evaluation. A nil value means no analysis exists yet.
type CurrentRecommendation struct {
	Score          float64
	Recommendation scoring.Recommendation
	Confidence     scoring.Confidence
	LastAnalyzedAt time.Time
}

// GateResult records one gate's outcome for the audit trail.
type GateResult struct {
	Gate   string `json:"gate"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

// Decision is the engine's verdict plus the verbatim audit trail that
// operator-facing logs preserve.
type Decision struct {
	ShouldTrigger bool         `json:"shouldTrigger"`
	SkipReason    string       `json:"skipReason,omitempty"`
	Audit         []GateResult `json:"audit"`
}

// Engine evaluates whether a catalyst justifies a fresh full analysis. It is
// pure decision logic: the two collaborator reads (current recommendation,
// trailing re-analysis count) are passed in by the caller.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an Engine using wall-clock time.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineAt creates an Engine with an injected clock.
func NewEngineAt(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Evaluate runs the five-gate pipeline for one catalyst against one stock's
// state. CRITICAL urgency overrides the boundary-proximity, predicted-impact
// and cooldown-hours checks, but never the urgency floor or the 24h hard cap.
func (e *Engine) Evaluate(event Event, current *CurrentRecommendation, reanalysisCount24h int) Decision {
	// Bootstrap: a stock with no analysis at all always gets one.
	if current == nil {
		return Decision{
			ShouldTrigger: true,
			Audit: []GateResult{{
				Gate:   GateBootstrap,
				Passed: true,
				Reason: "no existing analysis, triggering initial run",
			}},
		}
	}

	critical := event.Urgency == catalyst.UrgencyCritical
	decision := Decision{ShouldTrigger: true}

	record := func(gate string, passed bool, reason string) bool {
		decision.Audit = append(decision.Audit, GateResult{Gate: gate, Passed: passed, Reason: reason})
		if !passed {
			decision.ShouldTrigger = false
			decision.SkipReason = reason
		}
		return passed
	}

	// Gate 1: urgency floor. Never overridden.
	if event.Urgency != catalyst.UrgencyHigh && !critical {
		record(GateUrgency, false, fmt.Sprintf("urgency %s too low to trigger re-analysis", event.Urgency))
		return decision
	}
	record(GateUrgency, true, fmt.Sprintf("urgency %s clears the floor", event.Urgency))

	// Gate 2: boundary proximity.
	proximity := scoring.BoundaryProximity(current.Score)
	if proximity > maxBoundaryProximity && !critical {
		record(GateBoundaryProximity, false, fmt.Sprintf("score %.1f is %.1f from nearest boundary, beyond %.0f", current.Score, proximity, maxBoundaryProximity))
		return decision
	}
	record(GateBoundaryProximity, true, fmt.Sprintf("score %.1f is %.1f from nearest boundary", current.Score, proximity))

	// Gate 3: predicted impact must plausibly cross the boundary.
	impact := catalyst.EstimateImpact(event.Type, event.Urgency)
	if math.Abs(impact) < proximity && !critical {
		record(GatePredictedImpact, false, fmt.Sprintf("estimated impact %.1f cannot cover boundary distance %.1f", impact, proximity))
		return decision
	}
	record(GatePredictedImpact, true, fmt.Sprintf("estimated impact %.1f covers boundary distance %.1f", impact, proximity))

	// Gate 4: cooldown. CRITICAL skips the hours check but the trailing-24h
	// cap is a hard limit.
	hoursSince := e.now().Sub(current.LastAnalyzedAt).Hours()
	if hoursSince < cooldownHours && !critical {
		record(GateCooldown, false, fmt.Sprintf("last analysis %.1fh ago, cooldown is %.0fh", hoursSince, cooldownHours))
		return decision
	}
	if reanalysisCount24h >= maxReanalyses24h {
		record(GateCooldown, false, fmt.Sprintf("%d re-analyses in trailing 24h reached hard cap of %d", reanalysisCount24h, maxReanalyses24h))
		return decision
	}
	record(GateCooldown, true, fmt.Sprintf("last analysis %.1fh ago, %d of %d re-analyses used", hoursSince, reanalysisCount24h, maxReanalyses24h))

	// Gate 5: confidence resistance.
	confidencePct := current.Confidence.Percent()
	if confidencePct >= resistanceConfidencePct && !critical && math.Abs(impact) < resistanceImpactFloor {
		record(GateConfidenceResistance, false, fmt.Sprintf("confidence %.0f%% resists impact %.1f below floor %.0f", confidencePct, impact, resistanceImpactFloor))
		return decision
	}
	record(GateConfidenceResistance, true, fmt.Sprintf("confidence %.0f%% does not resist impact %.1f", confidencePct, impact))

	return decision
}
