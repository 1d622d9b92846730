package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-stock-advisor/internal/entity"

	"gorm.io/gorm"
)

// PredictionsRepository is the dashboard's read-side view of predictions.
type PredictionsRepository interface {
	FindByStockID(ctx context.Context, stockID uint) (*entity.Prediction, error)
	FindByStockIDs(ctx context.Context, stockIDs []uint) (map[uint]entity.Prediction, error)
}

type predictionsRepository struct {
	db *gorm.DB
}

// NewPredictionsRepository creates a new PredictionsRepository.
func NewPredictionsRepository(db *gorm.DB) PredictionsRepository {
	return &predictionsRepository{db: db}
}

func (r *predictionsRepository) FindByStockID(ctx context.Context, stockID uint) (*entity.Prediction, error) {
	var prediction entity.Prediction
	err := r.db.WithContext(ctx).Where("stock_id = ?", stockID).First(&prediction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find prediction: %w", err)
	}
	return &prediction, nil
}

func (r *predictionsRepository) FindByStockIDs(ctx context.Context, stockIDs []uint) (map[uint]entity.Prediction, error) {
	if len(stockIDs) == 0 {
		return map[uint]entity.Prediction{}, nil
	}

	var predictions []entity.Prediction
	if err := r.db.WithContext(ctx).Where("stock_id IN ?", stockIDs).Find(&predictions).Error; err != nil {
		return nil, fmt.Errorf("failed to find predictions: %w", err)
	}

	byStock := make(map[uint]entity.Prediction, len(predictions))
	for _, prediction := range predictions {
		byStock[prediction.StockID] = prediction
	}
	return byStock, nil
}
