package entity

import (
	"time"

	"gorm.io/datatypes"
)

// AgentScore is one persona's opinion from the latest analysis run. The full
// batch for a stock is replaced on every run; there is no score ledger.
type AgentScore struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	StockID    uint           `gorm:"not null;index" json:"stock_id"`
	AgentName  string         `gorm:"not null" json:"agent_name"`
	Score      float64        `gorm:"not null" json:"score"`
	Weight     float64        `gorm:"not null" json:"weight"`
	Reasoning  string         `json:"reasoning"`
	KeyMetrics datatypes.JSON `gorm:"type:jsonb" json:"key_metrics"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (AgentScore) TableName() string {
	return "agent_scores"
}
