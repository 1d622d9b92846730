package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-stock-advisor/internal/entity"

	"gorm.io/gorm"
)

// ErrStockExists rejects duplicate tickers on create.
var ErrStockExists = errors.New("stock already exists")

// StocksRepository manages the tracked stock universe.
type StocksRepository interface {
	GetAll(ctx context.Context) ([]entity.Stock, error)
	GetActive(ctx context.Context) ([]entity.Stock, error)
	FindByTicker(ctx context.Context, ticker string) (*entity.Stock, error)
	Create(ctx context.Context, stock *entity.Stock) error
	Update(ctx context.Context, stock *entity.Stock) error
	Delete(ctx context.Context, id uint) error
}

type stocksRepository struct {
	db *gorm.DB
}

// NewStocksRepository creates a new StocksRepository.
func NewStocksRepository(db *gorm.DB) StocksRepository {
	return &stocksRepository{db: db}
}

func (r *stocksRepository) GetAll(ctx context.Context) ([]entity.Stock, error) {
	var stocks []entity.Stock
	if err := r.db.WithContext(ctx).Order("ticker ASC").Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("failed to get stocks: %w", err)
	}
	return stocks, nil
}

func (r *stocksRepository) GetActive(ctx context.Context) ([]entity.Stock, error) {
	var stocks []entity.Stock
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("ticker ASC").Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("failed to get active stocks: %w", err)
	}
	return stocks, nil
}

func (r *stocksRepository) FindByTicker(ctx context.Context, ticker string) (*entity.Stock, error) {
	var stock entity.Stock
	err := r.db.WithContext(ctx).Where("ticker = ?", strings.ToUpper(ticker)).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stock: %w", err)
	}
	return &stock, nil
}

func (r *stocksRepository) Create(ctx context.Context, stock *entity.Stock) error {
	stock.Ticker = strings.ToUpper(stock.Ticker)
	existing, err := r.FindByTicker(ctx, stock.Ticker)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrStockExists
	}
	if err := r.db.WithContext(ctx).Create(stock).Error; err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}
	return nil
}

func (r *stocksRepository) Update(ctx context.Context, stock *entity.Stock) error {
	if err := r.db.WithContext(ctx).Save(stock).Error; err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	return nil
}

func (r *stocksRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&entity.Stock{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}
	return nil
}
