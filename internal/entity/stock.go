package entity

import (
	"time"

	"gorm.io/gorm"
)

// Stock is a tracked instrument. Only active stocks participate in the
// automated news, catalyst and checkpoint scans.
type Stock struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Ticker    string         `gorm:"unique;not null" json:"ticker"`
	Name      string         `gorm:"not null" json:"name"`
	Sector    string         `json:"sector"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Stock) TableName() string {
	return "stocks"
}
