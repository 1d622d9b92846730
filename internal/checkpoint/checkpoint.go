package checkpoint

import (
	"errors"
	"fmt"
	"time"

	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/internal/scoring"
	"golang-stock-advisor/pkg/utils"
)

// Type identifies one of the three fixed checkpoints.
type Type string

const (
	Type5D  Type = "5d"
	Type10D Type = "10d"
	Type20D Type = "20d"
)

// All lists the checkpoints in maturity order.
var All = []Type{Type5D, Type10D, Type20D}

// Days returns the nominal elapsed trading days for the checkpoint.
func (t Type) Days() int {
	switch t {
	case Type5D:
		return 5
	case Type10D:
		return 10
	case Type20D:
		return 20
	default:
		return 0
	}
}

// IsPrimary reports whether the checkpoint mirrors its result into the
// prediction's top-level fields. 10d is the primary.
func (t Type) IsPrimary() bool {
	return t == Type10D
}

// Parse validates a raw checkpoint type string.
func Parse(raw string) (Type, error) {
	switch Type(raw) {
	case Type5D, Type10D, Type20D:
		return Type(raw), nil
	default:
		return "", ErrInvalidType
	}
}

// GraceBuffer lets a checkpoint become ready slightly before its nominal
// threshold so a scan that runs just ahead of the boundary is not pushed a
// whole cycle later.
const GraceBuffer = 4 * time.Hour

// Status is a checkpoint's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReady     Status = "ready"
	StatusEvaluated Status = "evaluated"
)

// State is the derived status of one checkpoint slot.
type State struct {
	Type          Type   `json:"type"`
	Status        Status `json:"status"`
	DaysRemaining int    `json:"days_remaining,omitempty"`
}

// Typed evaluation failures. Batch evaluation matches on these and keeps
// going past individual rejections.
var (
	ErrInvalidType      = errors.New("invalid checkpoint type")
	ErrAlreadyEvaluated = errors.New("Checkpoint already evaluated")
	ErrMissingBaseline  = errors.New("prediction has no baseline price")
)

// NotReadyError rejects evaluation of a still-pending checkpoint with the
// whole days left until it matures.
type NotReadyError struct {
	DaysRemaining int
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("checkpoint not ready, %d days remaining", e.DaysRemaining)
}

// StatusFor derives a checkpoint's state from the prediction's age. Elapsed
// time is computed in UTC; a slot already holding a result is evaluated, a
// slot within the grace buffer of its threshold is ready, anything else is
// pending with the remaining whole days attached.
func StatusFor(t Type, predictedAt, now time.Time, alreadyEvaluated bool) State {
	if alreadyEvaluated {
		return State{Type: t, Status: StatusEvaluated}
	}

	elapsedDays := utils.DaysSince(predictedAt, now)
	thresholdDays := float64(t.Days()) - GraceBuffer.Hours()/24

	if elapsedDays >= thresholdDays {
		return State{Type: t, Status: StatusReady}
	}

	return State{
		Type:          t,
		Status:        StatusPending,
		DaysRemaining: utils.CeilDays(float64(t.Days()) - elapsedDays),
	}
}

// Direction classifies a realized return. The ±0.5% dead-zone around zero is
// FLAT; both comparisons are strict, so exactly ±0.5 stays FLAT.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
	DirectionFlat Direction = "FLAT"
)

const flatDeadZonePct = 0.5

// ClassifyDirection maps a percentage return to a direction.
func ClassifyDirection(returnPct float64) Direction {
	switch {
	case returnPct > flatDeadZonePct:
		return DirectionUp
	case returnPct < -flatDeadZonePct:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// DirectionalAccuracy reports whether the realized direction matches the
// recommendation that was live when the prediction was made: BUY expects UP,
// SELL expects DOWN, HOLD expects FLAT.
func DirectionalAccuracy(recommendation scoring.Recommendation, direction Direction) bool {
	switch recommendation {
	case scoring.RecommendationBuy:
		return direction == DirectionUp
	case scoring.RecommendationSell:
		return direction == DirectionDown
	default:
		return direction == DirectionFlat
	}
}

// Evaluate computes the immutable result for a matured checkpoint. It
// rejects re-evaluation, premature evaluation and a missing baseline price
// with typed errors and performs no I/O; the caller supplies the current
// price and persists the result.
func Evaluate(t Type, recommendation scoring.Recommendation, baselinePrice, currentPrice float64, predictedAt, now time.Time, alreadyEvaluated bool) (*entity.CheckpointResult, error) {
	if _, err := Parse(string(t)); err != nil {
		return nil, err
	}
	if alreadyEvaluated {
		return nil, ErrAlreadyEvaluated
	}

	state := StatusFor(t, predictedAt, now, false)
	if state.Status != StatusReady {
		return nil, &NotReadyError{DaysRemaining: state.DaysRemaining}
	}

	if baselinePrice <= 0 {
		return nil, ErrMissingBaseline
	}

	returnPct := (currentPrice - baselinePrice) / baselinePrice * 100
	direction := ClassifyDirection(returnPct)

	return &entity.CheckpointResult{
		Price:               currentPrice,
		ReturnPct:           returnPct,
		Direction:           string(direction),
		DirectionalAccuracy: DirectionalAccuracy(recommendation, direction),
		EvaluatedAt:         now.UTC(),
	}, nil
}
