package entity

import (
	"time"
)

// RecommendationHistory is an append-only ledger of recommendation changes.
// A row is written whenever a new prediction's recommendation differs from
// the one it replaced, or when a catalyst-triggered re-analysis completes.
type RecommendationHistory struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	StockID                uint      `gorm:"not null;index" json:"stock_id"`
	PreviousRecommendation string    `json:"previous_recommendation"`
	NewRecommendation      string    `gorm:"not null" json:"new_recommendation"`
	PreviousScore          float64   `json:"previous_score"`
	NewScore               float64   `json:"new_score"`
	Reason                 string    `json:"reason"`
	CreatedAt              time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (RecommendationHistory) TableName() string {
	return "recommendation_histories"
}
