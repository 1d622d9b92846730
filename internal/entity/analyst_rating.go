package entity

import (
	"time"
)

// AnalystRating is a rating-change record pulled from the analyst feed.
type AnalystRating struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StockID    uint      `gorm:"not null;index" json:"stock_id"`
	Action     string    `gorm:"not null" json:"action"`
	FromRating string    `json:"from"`
	ToRating   string    `json:"to"`
	Firm       string    `json:"firm"`
	RatedAt    time.Time `gorm:"not null;index" json:"date"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AnalystRating) TableName() string {
	return "analyst_ratings"
}
