package dto

import (
	"time"
)

// CreateStockRequest adds a stock to the tracked universe.
type CreateStockRequest struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// UpdateStockRequest toggles a stock's participation in the automated scans.
type UpdateStockRequest struct {
	Name     *string `json:"name,omitempty"`
	Sector   *string `json:"sector,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// StockResponse is the API view of a tracked stock.
type StockResponse struct {
	ID        uint      `json:"id"`
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TriggerAnalysisRequest asks for a manual full analysis run.
type TriggerAnalysisRequest struct {
	Reason string `json:"reason"`
}
