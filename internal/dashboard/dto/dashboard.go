package dto

import (
	"time"

	"golang-stock-advisor/internal/checkpoint"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/internal/scoring"
)

// AgentScoreView is one persona's opinion in the detail view.
type AgentScoreView struct {
	AgentName string  `json:"agent_name"`
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Reasoning string  `json:"reasoning"`
}

// PredictionView is the API shape of one stock's live prediction, enriched
// with the score-derived fields the UI renders.
type PredictionView struct {
	FinalScore        float64                `json:"final_score"`
	ScoreLabel        scoring.ScoreLabel     `json:"score_label"`
	Recommendation    string                 `json:"recommendation"`
	Confidence        string                 `json:"confidence"`
	ConfidencePct     float64                `json:"confidence_pct"`
	BoundaryProximity float64                `json:"boundary_proximity"`
	Reconciliation    scoring.Reconciliation `json:"reconciliation"`
	DebateSummary     string                 `json:"debate_summary"`
	RiskFactors       []string               `json:"risk_factors"`
	PriceAtPrediction float64                `json:"price_at_prediction"`
	AnalyzedAt        time.Time              `json:"analyzed_at"`
	Checkpoints       []CheckpointView       `json:"checkpoints"`
}

// CheckpointView pairs a slot's lifecycle state with its result once written.
type CheckpointView struct {
	State  checkpoint.State         `json:"state"`
	Result *entity.CheckpointResult `json:"result,omitempty"`
}

// CatalystEventView is the API shape of one detected catalyst.
type CatalystEventView struct {
	EventType           string    `json:"event_type"`
	Urgency             string    `json:"urgency"`
	ImpactOnScore       float64   `json:"impact_on_score"`
	Description         string    `json:"description"`
	DetectedAt          time.Time `json:"detected_at"`
	TriggeredReanalysis *bool     `json:"triggered_reanalysis"`
	SkipReason          string    `json:"skip_reason,omitempty"`
}

// HistoryView is one row of the recommendation change trail.
type HistoryView struct {
	PreviousRecommendation string    `json:"previous_recommendation"`
	NewRecommendation      string    `json:"new_recommendation"`
	PreviousScore          float64   `json:"previous_score"`
	NewScore               float64   `json:"new_score"`
	Reason                 string    `json:"reason"`
	ChangedAt              time.Time `json:"changed_at"`
}

// StockDetailResponse is the full per-stock dashboard payload.
type StockDetailResponse struct {
	Stock       StockResponse       `json:"stock"`
	Prediction  *PredictionView     `json:"prediction,omitempty"`
	AgentScores []AgentScoreView    `json:"agent_scores"`
	Catalysts   []CatalystEventView `json:"catalysts"`
	History     []HistoryView       `json:"history"`
}

// DashboardRow is one stock's summary line on the overview board.
type DashboardRow struct {
	Ticker         string             `json:"ticker"`
	Name           string             `json:"name"`
	Recommendation string             `json:"recommendation,omitempty"`
	FinalScore     *float64           `json:"final_score,omitempty"`
	ScoreLabel     scoring.ScoreLabel `json:"score_label,omitempty"`
	Confidence     string             `json:"confidence,omitempty"`
	AnalyzedAt     *time.Time         `json:"analyzed_at,omitempty"`
}

// DashboardResponse is the overview board.
type DashboardResponse struct {
	Stocks []DashboardRow `json:"stocks"`
}

// QuoteResponse is a live price lookup result.
type QuoteResponse struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
