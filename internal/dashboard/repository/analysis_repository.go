package repository

import (
	"context"
	"fmt"

	"golang-stock-advisor/internal/entity"

	"gorm.io/gorm"
)

// AnalysisRepository reads the per-stock analysis artifacts the detail view
// renders: agent scores, catalyst events and the change trail.
type AnalysisRepository interface {
	GetAgentScores(ctx context.Context, stockID uint) ([]entity.AgentScore, error)
	GetCatalystEvents(ctx context.Context, stockID uint, limit int) ([]entity.CatalystEvent, error)
	GetHistory(ctx context.Context, stockID uint, limit int) ([]entity.RecommendationHistory, error)
}

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new AnalysisRepository.
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) GetAgentScores(ctx context.Context, stockID uint) ([]entity.AgentScore, error) {
	var scores []entity.AgentScore
	if err := r.db.WithContext(ctx).Where("stock_id = ?", stockID).Order("agent_name ASC").Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to get agent scores: %w", err)
	}
	return scores, nil
}

func (r *analysisRepository) GetCatalystEvents(ctx context.Context, stockID uint, limit int) ([]entity.CatalystEvent, error) {
	var events []entity.CatalystEvent
	if err := r.db.WithContext(ctx).Where("stock_id = ?", stockID).Order("detected_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get catalyst events: %w", err)
	}
	return events, nil
}

func (r *analysisRepository) GetHistory(ctx context.Context, stockID uint, limit int) ([]entity.RecommendationHistory, error) {
	var history []entity.RecommendationHistory
	if err := r.db.WithContext(ctx).Where("stock_id = ?", stockID).Order("created_at DESC").Limit(limit).Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to get recommendation history: %w", err)
	}
	return history, nil
}
