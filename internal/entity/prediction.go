package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Prediction is the synthesized output of one full analysis run. A stock has
// at most one live prediction; overwrites go through a transaction and the
// change trail lives in recommendation_histories.
type Prediction struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	StockID           uint           `gorm:"not null;uniqueIndex" json:"stock_id"`
	FinalScore        float64        `gorm:"not null" json:"final_score"`
	Recommendation    string         `gorm:"not null" json:"recommendation"`
	Confidence        string         `gorm:"not null" json:"confidence"`
	DebateSummary     string         `json:"debate_summary"`
	RiskFactors       pq.StringArray `gorm:"type:text[]" json:"risk_factors"`
	PriceAtPrediction float64        `json:"price_at_prediction"`

	// Checkpoint slots stay null until matured and evaluated; once written
	// they are immutable.
	Checkpoint5D  datatypes.JSON `gorm:"type:jsonb" json:"checkpoint_5d"`
	Checkpoint10D datatypes.JSON `gorm:"type:jsonb" json:"checkpoint_10d"`
	Checkpoint20D datatypes.JSON `gorm:"type:jsonb" json:"checkpoint_20d"`

	// Mirror of the primary (10d) checkpoint for single-field querying.
	PrimaryReturnPct *float64 `json:"primary_return_pct,omitempty"`
	PrimaryDirection *string  `json:"primary_direction,omitempty"`
	PrimaryAccurate  *bool    `json:"primary_accurate,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Prediction) TableName() string {
	return "predictions"
}

// CheckpointResult is the immutable payload stored in a checkpoint slot.
type CheckpointResult struct {
	Price               float64   `json:"price"`
	ReturnPct           float64   `json:"returnPct"`
	Direction           string    `json:"direction"`
	DirectionalAccuracy bool      `json:"directionalAccuracy"`
	EvaluatedAt         time.Time `json:"evaluatedAt"`
}
