package service

import (
	"context"
	"fmt"
	"strings"

	"golang-stock-advisor/internal/dashboard/dto"
	"golang-stock-advisor/internal/dashboard/repository"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/pkg/logger"
)

// StockService manages the tracked stock universe.
type StockService interface {
	GetStocks(ctx context.Context) ([]dto.StockResponse, error)
	CreateStock(ctx context.Context, req *dto.CreateStockRequest) (*dto.StockResponse, error)
	UpdateStock(ctx context.Context, ticker string, req *dto.UpdateStockRequest) (*dto.StockResponse, error)
	DeleteStock(ctx context.Context, ticker string) error
}

type stockService struct {
	stocksRepo repository.StocksRepository
	scheduler  SchedulerService
	logger     *logger.Logger
}

// NewStockService creates a new StockService.
func NewStockService(stocksRepo repository.StocksRepository, scheduler SchedulerService, log *logger.Logger) StockService {
	return &stockService{stocksRepo: stocksRepo, scheduler: scheduler, logger: log}
}

func (s *stockService) GetStocks(ctx context.Context) ([]dto.StockResponse, error) {
	stocks, err := s.stocksRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StockResponse, 0, len(stocks))
	for _, stock := range stocks {
		responses = append(responses, toStockResponse(&stock))
	}
	return responses, nil
}

// CreateStock registers a new ticker and immediately queues its bootstrap
// analysis so the dashboard is never empty for a tracked stock.
func (s *stockService) CreateStock(ctx context.Context, req *dto.CreateStockRequest) (*dto.StockResponse, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	stock := &entity.Stock{
		Ticker:   ticker,
		Name:     strings.TrimSpace(req.Name),
		Sector:   strings.TrimSpace(req.Sector),
		IsActive: true,
	}
	if err := s.stocksRepo.Create(ctx, stock); err != nil {
		return nil, err
	}

	if err := s.scheduler.PublishFullAnalysis(ctx, stock.Ticker, "bootstrap"); err != nil {
		s.logger.Error("Failed to queue bootstrap analysis", logger.ErrorField(err), logger.StringField("ticker", stock.Ticker))
	}

	response := toStockResponse(stock)
	return &response, nil
}

func (s *stockService) UpdateStock(ctx context.Context, ticker string, req *dto.UpdateStockRequest) (*dto.StockResponse, error) {
	stock, err := s.stocksRepo.FindByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, fmt.Errorf("stock %s not found", ticker)
	}

	if req.Name != nil {
		stock.Name = strings.TrimSpace(*req.Name)
	}
	if req.Sector != nil {
		stock.Sector = strings.TrimSpace(*req.Sector)
	}
	if req.IsActive != nil {
		stock.IsActive = *req.IsActive
	}

	if err := s.stocksRepo.Update(ctx, stock); err != nil {
		return nil, err
	}

	response := toStockResponse(stock)
	return &response, nil
}

func (s *stockService) DeleteStock(ctx context.Context, ticker string) error {
	stock, err := s.stocksRepo.FindByTicker(ctx, ticker)
	if err != nil {
		return err
	}
	if stock == nil {
		return fmt.Errorf("stock %s not found", ticker)
	}
	return s.stocksRepo.Delete(ctx, stock.ID)
}

func toStockResponse(stock *entity.Stock) dto.StockResponse {
	return dto.StockResponse{
		ID:        stock.ID,
		Ticker:    stock.Ticker,
		Name:      stock.Name,
		Sector:    stock.Sector,
		IsActive:  stock.IsActive,
		CreatedAt: stock.CreatedAt,
	}
}
