package entity

import (
	"time"
)

// NewsArticle is a raw ingested article scoped to one stock, with a
// sentiment label attached at ingestion time. Articles feed the catalyst
// classifier.
type NewsArticle struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	StockID        uint       `gorm:"not null;index" json:"stock_id"`
	Headline       string     `gorm:"not null" json:"headline"`
	Summary        string     `json:"summary"`
	Sentiment      string     `gorm:"not null;default:neutral" json:"sentiment"`
	URL            string     `json:"url"`
	Source         string     `json:"source"`
	HashIdentifier string     `gorm:"unique;not null" json:"hash_identifier"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (NewsArticle) TableName() string {
	return "news_articles"
}
