package repository

import (
	"context"
	"fmt"

	"golang-stock-advisor/internal/checkpoint"
	"golang-stock-advisor/internal/entity"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PredictionsRepository manages the single live prediction per stock and its
// agent-score batch.
type PredictionsRepository interface {
	FindByStockID(ctx context.Context, stockID uint) (*entity.Prediction, error)
	FindWithPendingCheckpoints(ctx context.Context) ([]entity.Prediction, error)
	// Replace swaps the stock's prediction and agent scores in one
	// transaction so readers never observe a stock with neither.
	Replace(ctx context.Context, prediction *entity.Prediction, scores []entity.AgentScore) error
	// WriteCheckpoint stores an immutable checkpoint result; it fails when
	// the slot is already populated.
	WriteCheckpoint(ctx context.Context, predictionID uint, checkpointType checkpoint.Type, result datatypes.JSON, mirror *entity.CheckpointResult) error
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
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prediction, nil
}

func (r *predictionsRepository) FindWithPendingCheckpoints(ctx context.Context) ([]entity.Prediction, error) {
	var predictions []entity.Prediction
	err := r.db.WithContext(ctx).
		Joins("JOIN stocks ON stocks.id = predictions.stock_id AND stocks.is_active = true AND stocks.deleted_at IS NULL").
		Where("predictions.checkpoint_5d IS NULL OR predictions.checkpoint_10d IS NULL OR predictions.checkpoint_20d IS NULL").
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *predictionsRepository) Replace(ctx context.Context, prediction *entity.Prediction, scores []entity.AgentScore) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stock_id = ?", prediction.StockID).Delete(&entity.AgentScore{}).Error; err != nil {
			return fmt.Errorf("failed to delete previous agent scores: %w", err)
		}
		if err := tx.Where("stock_id = ?", prediction.StockID).Delete(&entity.Prediction{}).Error; err != nil {
			return fmt.Errorf("failed to delete previous prediction: %w", err)
		}

		if err := tx.Create(prediction).Error; err != nil {
			return fmt.Errorf("failed to create prediction: %w", err)
		}
		for i := range scores {
			scores[i].StockID = prediction.StockID
		}
		if err := tx.Create(&scores).Error; err != nil {
			return fmt.Errorf("failed to create agent scores: %w", err)
		}
		return nil
	})
}

func (r *predictionsRepository) WriteCheckpoint(ctx context.Context, predictionID uint, checkpointType checkpoint.Type, result datatypes.JSON, mirror *entity.CheckpointResult) error {
	column := checkpointColumn(checkpointType)
	if column == "" {
		return checkpoint.ErrInvalidType
	}

	updates := map[string]interface{}{column: result}
	if mirror != nil {
		updates["primary_return_pct"] = mirror.ReturnPct
		updates["primary_direction"] = mirror.Direction
		updates["primary_accurate"] = mirror.DirectionalAccuracy
	}

	tx := r.db.WithContext(ctx).Model(&entity.Prediction{}).
		Where("id = ? AND "+column+" IS NULL", predictionID).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return checkpoint.ErrAlreadyEvaluated
	}
	return nil
}

func checkpointColumn(t checkpoint.Type) string {
	switch t {
	case checkpoint.Type5D:
		return "checkpoint_5d"
	case checkpoint.Type10D:
		return "checkpoint_10d"
	case checkpoint.Type20D:
		return "checkpoint_20d"
	default:
		return ""
	}
}
