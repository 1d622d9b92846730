package repository

import (
	"context"
	"time"

	"golang-stock-advisor/internal/entity"

	"gorm.io/gorm"
)

// CatalystTriggeredReasonPrefix marks history rows written by the catalyst
// scan; the cooldown gate counts rows carrying it.
const CatalystTriggeredReasonPrefix = "catalyst:"

// RecommendationHistoryRepository appends to and queries the append-only
// recommendation ledger.
type RecommendationHistoryRepository interface {
	Create(ctx context.Context, history *entity.RecommendationHistory) error
	CountCatalystTriggered(ctx context.Context, stockID uint, since time.Time) (int, error)
}

type recommendationHistoryRepository struct {
	db *gorm.DB
}

// NewRecommendationHistoryRepository creates a new RecommendationHistoryRepository.
func NewRecommendationHistoryRepository(db *gorm.DB) RecommendationHistoryRepository {
	return &recommendationHistoryRepository{db: db}
}

func (r *recommendationHistoryRepository) Create(ctx context.Context, history *entity.RecommendationHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

func (r *recommendationHistoryRepository) CountCatalystTriggered(ctx context.Context, stockID uint, since time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.RecommendationHistory{}).
		Where("stock_id = ? AND created_at >= ? AND reason LIKE ?", stockID, since, CatalystTriggeredReasonPrefix+"%").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
