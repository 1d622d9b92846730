package dto

import (
	"golang-stock-advisor/internal/entity"
)

// AgentContext is the shared input handed to every agent persona and to the
// synthesis step.
type AgentContext struct {
	Ticker              string   `json:"ticker"`
	Name                string   `json:"name"`
	Sector              string   `json:"sector"`
	CurrentPrice        float64  `json:"current_price"`
	NewsHeadlines       []string `json:"news_headlines"`
	PriorRecommendation string   `json:"prior_recommendation,omitempty"`
	PriorScore          *float64 `json:"prior_score,omitempty"`
}

// AgentAnalysisResult is one persona's parsed response.
type AgentAnalysisResult struct {
	AgentName  string             `json:"agent_name"`
	Score      float64            `json:"score"`
	Weight     float64            `json:"weight"`
	Reasoning  string             `json:"reasoning"`
	KeyMetrics map[string]float64 `json:"key_metrics"`
}

// SynthesisResult is the debate-synthesis response declared by the model.
type SynthesisResult struct {
	Recommendation string   `json:"recommendation"`
	Confidence     string   `json:"confidence"`
	DebateSummary  string   `json:"debate_summary"`
	RiskFactors    []string `json:"risk_factors"`
}

// FullAnalysisResult is the outcome of one full analysis run.
type FullAnalysisResult struct {
	Success        bool    `json:"success"`
	PredictionID   uint    `json:"predictionId,omitempty"`
	Recommendation string  `json:"recommendation,omitempty"`
	Score          float64 `json:"score,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// FailedStock records one stock the catalyst scan could not re-analyze.
type FailedStock struct {
	Ticker string `json:"ticker"`
	Error  string `json:"error"`
}

// CatalystScanSummary is the operator-facing result of one scan run.
type CatalystScanSummary struct {
	StocksEvaluated int           `json:"stocks_evaluated"`
	Triggered       []string      `json:"triggered"`
	Skipped         []string      `json:"skipped"`
	Failed          []FailedStock `json:"failed"`
	CostAvoidedUSD  float64       `json:"cost_avoided_usd"`
}

// CheckpointEvalResult is the typed per-checkpoint outcome; rejections are
// data here, not errors, so batch runs continue past them.
type CheckpointEvalResult struct {
	Ticker         string                   `json:"ticker"`
	CheckpointType string                   `json:"checkpoint_type"`
	Success        bool                     `json:"success"`
	Error          string                   `json:"error,omitempty"`
	Result         *entity.CheckpointResult `json:"result,omitempty"`
}

// CheckpointBatchSummary aggregates one checkpoint sweep.
type CheckpointBatchSummary struct {
	Evaluated int                    `json:"evaluated"`
	Skipped   int                    `json:"skipped"`
	Failed    int                    `json:"failed"`
	Results   []CheckpointEvalResult `json:"results"`
}
