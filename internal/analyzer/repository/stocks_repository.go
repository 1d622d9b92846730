package repository

import (
	"context"
	"errors"

	"golang-stock-advisor/internal/entity"

	"gorm.io/gorm"
)

// StocksRepository reads tracked stocks for the worker side.
type StocksRepository interface {
	GetActiveStocks(ctx context.Context) ([]entity.Stock, error)
	FindByTicker(ctx context.Context, ticker string) (*entity.Stock, error)
	FindByID(ctx context.Context, id uint) (*entity.Stock, error)
}

type stocksRepository struct {
	db *gorm.DB
}

// NewStocksRepository creates a new StocksRepository.
func NewStocksRepository(db *gorm.DB) StocksRepository {
	return &stocksRepository{db: db}
}

func (r *stocksRepository) GetActiveStocks(ctx context.Context) ([]entity.Stock, error) {
	var stocks []entity.Stock
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindByTicker returns nil without error when no stock matches, so callers
// can distinguish absence from a query failure.
func (r *stocksRepository) FindByTicker(ctx context.Context, ticker string) (*entity.Stock, error) {
	var stock entity.Stock
	if err := r.db.WithContext(ctx).Where("ticker = ?", ticker).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stock, nil
}

// FindByID returns nil without error when no stock matches.
func (r *stocksRepository) FindByID(ctx context.Context, id uint) (*entity.Stock, error) {
	var stock entity.Stock
	if err := r.db.WithContext(ctx).First(&stock, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stock, nil
}
