package entity

import (
	"time"
)

// CatalystEvent is a detected external trigger for a stock. It is created by
// the classifier and mutated exactly once when the scan decides its fate:
// TriggeredReanalysis stays nil until processed, then records the outcome.
// Events are never deleted.
type CatalystEvent struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	StockID             uint      `gorm:"not null;index" json:"stock_id"`
	EventType           string    `gorm:"not null" json:"event_type"`
	Urgency             string    `gorm:"not null" json:"urgency"`
	ImpactOnScore       float64   `json:"impact_on_score"`
	Description         string    `json:"description"`
	SourceURL           string    `json:"source_url"`
	DetectedAt          time.Time `gorm:"not null;index" json:"detected_at"`
	TriggeredReanalysis *bool     `json:"triggered_reanalysis"`
	SkipReason          string    `json:"skip_reason,omitempty"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CatalystEvent) TableName() string {
	return "catalyst_events"
}
