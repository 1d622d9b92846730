package service

import (
	"context"
	"encoding/json"
	"fmt"

	analyzerrepo "golang-stock-advisor/internal/analyzer/repository"
	"golang-stock-advisor/internal/checkpoint"
	"golang-stock-advisor/internal/dashboard/dto"
	"golang-stock-advisor/internal/dashboard/repository"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/internal/scoring"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/utils"

	"gorm.io/datatypes"
)

const (
	detailCatalystLimit = 20
	detailHistoryLimit  = 20
)

// DashboardService assembles the read-side views the API serves.
type DashboardService interface {
	GetOverview(ctx context.Context) (*dto.DashboardResponse, error)
	GetStockDetail(ctx context.Context, ticker string) (*dto.StockDetailResponse, error)
	GetQuote(ctx context.Context, ticker string) (*dto.QuoteResponse, error)
}

type dashboardService struct {
	stocksRepo      repository.StocksRepository
	predictionsRepo repository.PredictionsRepository
	analysisRepo    repository.AnalysisRepository
	quoteRepo       analyzerrepo.QuoteRepository
	logger          *logger.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(stocksRepo repository.StocksRepository, predictionsRepo repository.PredictionsRepository, analysisRepo repository.AnalysisRepository, quoteRepo analyzerrepo.QuoteRepository, log *logger.Logger) DashboardService {
	return &dashboardService{
		stocksRepo:      stocksRepo,
		predictionsRepo: predictionsRepo,
		analysisRepo:    analysisRepo,
		quoteRepo:       quoteRepo,
		logger:          log,
	}
}

func (s *dashboardService) GetOverview(ctx context.Context) (*dto.DashboardResponse, error) {
	stocks, err := s.stocksRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stockIDs := make([]uint, 0, len(stocks))
	for _, stock := range stocks {
		stockIDs = append(stockIDs, stock.ID)
	}
	predictions, err := s.predictionsRepo.FindByStockIDs(ctx, stockIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]dto.DashboardRow, 0, len(stocks))
	for _, stock := range stocks {
		row := dto.DashboardRow{Ticker: stock.Ticker, Name: stock.Name}
		if prediction, ok := predictions[stock.ID]; ok {
			score := prediction.FinalScore
			analyzedAt := prediction.CreatedAt
			row.Recommendation = prediction.Recommendation
			row.FinalScore = &score
			row.ScoreLabel = scoring.Label(score)
			row.Confidence = prediction.Confidence
			row.AnalyzedAt = &analyzedAt
		}
		rows = append(rows, row)
	}

	return &dto.DashboardResponse{Stocks: rows}, nil
}

func (s *dashboardService) GetStockDetail(ctx context.Context, ticker string) (*dto.StockDetailResponse, error) {
	stock, err := s.stocksRepo.FindByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, fmt.Errorf("stock %s not found", ticker)
	}

	detail := &dto.StockDetailResponse{
		Stock:       toStockResponse(stock),
		AgentScores: []dto.AgentScoreView{},
		Catalysts:   []dto.CatalystEventView{},
		History:     []dto.HistoryView{},
	}

	prediction, err := s.predictionsRepo.FindByStockID(ctx, stock.ID)
	if err != nil {
		return nil, err
	}
	if prediction != nil {
		detail.Prediction = s.buildPredictionView(prediction)
	}

	scores, err := s.analysisRepo.GetAgentScores(ctx, stock.ID)
	if err != nil {
		return nil, err
	}
	for _, score := range scores {
		detail.AgentScores = append(detail.AgentScores, dto.AgentScoreView{
			AgentName: score.AgentName,
			Score:     score.Score,
			Weight:    score.Weight,
			Reasoning: score.Reasoning,
		})
	}

	events, err := s.analysisRepo.GetCatalystEvents(ctx, stock.ID, detailCatalystLimit)
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		detail.Catalysts = append(detail.Catalysts, dto.CatalystEventView{
			EventType:           event.EventType,
			Urgency:             event.Urgency,
			ImpactOnScore:       event.ImpactOnScore,
			Description:         event.Description,
			DetectedAt:          event.DetectedAt,
			TriggeredReanalysis: event.TriggeredReanalysis,
			SkipReason:          event.SkipReason,
		})
	}

	history, err := s.analysisRepo.GetHistory(ctx, stock.ID, detailHistoryLimit)
	if err != nil {
		return nil, err
	}
	for _, change := range history {
		detail.History = append(detail.History, dto.HistoryView{
			PreviousRecommendation: change.PreviousRecommendation,
			NewRecommendation:      change.NewRecommendation,
			PreviousScore:          change.PreviousScore,
			NewScore:               change.NewScore,
			Reason:                 change.Reason,
			ChangedAt:              change.CreatedAt,
		})
	}

	return detail, nil
}

// GetQuote serves the live price for a watched stock.
func (s *dashboardService) GetQuote(ctx context.Context, ticker string) (*dto.QuoteResponse, error) {
	stock, err := s.stocksRepo.FindByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, fmt.Errorf("stock %s not found", ticker)
	}

	price, err := s.quoteRepo.GetPrice(ctx, stock.Ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}

	return &dto.QuoteResponse{Ticker: stock.Ticker, Price: price, FetchedAt: utils.TimeNowUTC()}, nil
}

func (s *dashboardService) buildPredictionView(prediction *entity.Prediction) *dto.PredictionView {
	now := utils.TimeNowUTC()

	view := &dto.PredictionView{
		FinalScore:        prediction.FinalScore,
		ScoreLabel:        scoring.Label(prediction.FinalScore),
		Recommendation:    prediction.Recommendation,
		Confidence:        prediction.Confidence,
		ConfidencePct:     scoring.ParseConfidence(prediction.Confidence).Percent(),
		BoundaryProximity: scoring.BoundaryProximity(prediction.FinalScore),
		Reconciliation:    scoring.ReconcileRecommendation(prediction.FinalScore, scoring.Recommendation(prediction.Recommendation)),
		DebateSummary:     prediction.DebateSummary,
		RiskFactors:       prediction.RiskFactors,
		PriceAtPrediction: prediction.PriceAtPrediction,
		AnalyzedAt:        prediction.CreatedAt,
	}

	slots := map[checkpoint.Type]datatypes.JSON{
		checkpoint.Type5D:  prediction.Checkpoint5D,
		checkpoint.Type10D: prediction.Checkpoint10D,
		checkpoint.Type20D: prediction.Checkpoint20D,
	}
	for _, checkpointType := range checkpoint.All {
		raw := slots[checkpointType]
		state := checkpoint.StatusFor(checkpointType, prediction.CreatedAt, now, raw != nil)

		checkpointView := dto.CheckpointView{State: state}
		if raw != nil {
			var result entity.CheckpointResult
			if err := json.Unmarshal(raw, &result); err != nil {
				s.logger.Error("Failed to unmarshal checkpoint result", logger.ErrorField(err))
			} else {
				checkpointView.Result = &result
			}
		}
		view.Checkpoints = append(view.Checkpoints, checkpointView)
	}

	return view
}
