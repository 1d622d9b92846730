package repository

import (
	"context"
	"time"

	"golang-stock-advisor/internal/entity"

	"gorm.io/gorm"
)

// CatalystEventsRepository manages catalyst event rows. Events are created
// by the classifier and mutated exactly once to record their disposition;
// they are never deleted.
type CatalystEventsRepository interface {
	CreateBatch(ctx context.Context, events []entity.CatalystEvent) error
	// FindUnprocessed returns events with no disposition yet inside the
	// lookback window, restricted to active stocks.
	FindUnprocessed(ctx context.Context, lookback time.Duration) ([]entity.CatalystEvent, error)
	FindRecentByStock(ctx context.Context, stockID uint, since time.Time) ([]entity.CatalystEvent, error)
	MarkProcessed(ctx context.Context, eventIDs []uint, triggered bool, skipReason string) error
}

type catalystEventsRepository struct {
	db *gorm.DB
}

// NewCatalystEventsRepository creates a new CatalystEventsRepository.
func NewCatalystEventsRepository(db *gorm.DB) CatalystEventsRepository {
	return &catalystEventsRepository{db: db}
}

func (r *catalystEventsRepository) CreateBatch(ctx context.Context, events []entity.CatalystEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&events).Error
}

func (r *catalystEventsRepository) FindUnprocessed(ctx context.Context, lookback time.Duration) ([]entity.CatalystEvent, error) {
	var events []entity.CatalystEvent
	err := r.db.WithContext(ctx).
		Joins("JOIN stocks ON stocks.id = catalyst_events.stock_id AND stocks.is_active = true AND stocks.deleted_at IS NULL").
		Where("catalyst_events.triggered_reanalysis IS NULL").
		Where("catalyst_events.detected_at >= ?", time.Now().UTC().Add(-lookback)).
		Order("catalyst_events.detected_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *catalystEventsRepository) FindRecentByStock(ctx context.Context, stockID uint, since time.Time) ([]entity.CatalystEvent, error) {
	var events []entity.CatalystEvent
	err := r.db.WithContext(ctx).
		Where("stock_id = ? AND detected_at >= ?", stockID, since).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *catalystEventsRepository) MarkProcessed(ctx context.Context, eventIDs []uint, triggered bool, skipReason string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	updates := map[string]interface{}{"triggered_reanalysis": triggered}
	if !triggered {
		updates["skip_reason"] = skipReason
	}
	return r.db.WithContext(ctx).Model(&entity.CatalystEvent{}).
		Where("id IN ?", eventIDs).
		Updates(updates).Error
}
