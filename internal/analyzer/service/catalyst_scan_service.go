package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-advisor/internal/analyzer/config"
	"golang-stock-advisor/internal/analyzer/dto"
	"golang-stock-advisor/internal/analyzer/repository"
	"golang-stock-advisor/internal/catalyst"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/internal/gate"
	"golang-stock-advisor/internal/scoring"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/utils"

	"github.com/redis/go-redis/v9"
)

type CatalystScanService interface {
	ProcessTask(ctx context.Context)
	Scan(ctx context.Context) (*dto.CatalystScanSummary, error)
}

type catalystScanService struct {
	cfg             *config.Config
	log             *logger.Logger
	redisClient     *redis.Client
	stocksRepo      repository.StocksRepository
	predictionsRepo repository.PredictionsRepository
	catalystRepo    repository.CatalystEventsRepository
	historyRepo     repository.RecommendationHistoryRepository
	fullAnalysis    FullAnalysisService
	engine          *gate.Engine
}

func NewCatalystScanService(cfg *config.Config, log *logger.Logger,
	redisClient *redis.Client,
	stocksRepo repository.StocksRepository,
	predictionsRepo repository.PredictionsRepository,
	catalystRepo repository.CatalystEventsRepository,
	historyRepo repository.RecommendationHistoryRepository,
	fullAnalysis FullAnalysisService) CatalystScanService {
	return &catalystScanService{
		cfg:             cfg,
		log:             log,
		redisClient:     redisClient,
		stocksRepo:      stocksRepo,
		predictionsRepo: predictionsRepo,
		catalystRepo:    catalystRepo,
		historyRepo:     historyRepo,
		fullAnalysis:    fullAnalysis,
		engine:          gate.NewEngine(),
	}
}

// ProcessTask dequeues and runs a single catalyst scan sweep.
func (s *catalystScanService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamCatalystScan, ">"}, // ">" means only new messages
		Count:    1,
		Block:    2 * time.Second, // Block for 2 seconds to allow graceful shutdown
	}).Result()
	if err != nil {
		// Ignore context cancellation and timeout errors, as they are expected during shutdown or idle periods.
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]

	summary, err := s.Scan(ctx)
	if err != nil {
		s.log.Error("Catalyst scan failed", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	s.log.Info("Catalyst scan completed",
		logger.IntField("stocks_evaluated", summary.StocksEvaluated),
		logger.IntField("triggered", len(summary.Triggered)),
		logger.IntField("skipped", len(summary.Skipped)),
		logger.IntField("failed", len(summary.Failed)),
		logger.Float64Field("cost_avoided_usd", summary.CostAvoidedUSD),
	)

	if err := ackNDel(ctx, s.redisClient, s.log, common.RedisStreamCatalystScan, message.ID); err != nil {
		s.log.Error("Failed to acknowledge and delete catalyst scan task", logger.ErrorField(err), logger.Field("message_id", message.ID))
	}
}

// Scan evaluates every unprocessed catalyst from the lookback window, one
// gate decision per stock. The highest-urgency event represents its stock's
// batch; the whole batch shares the decision's fate.
func (s *catalystScanService) Scan(ctx context.Context) (*dto.CatalystScanSummary, error) {
	lookback := time.Duration(s.cfg.Analyzer.CatalystLookbackHours) * time.Hour
	events, err := s.catalystRepo.FindUnprocessed(ctx, lookback)
	if err != nil {
		return nil, fmt.Errorf("failed to load unprocessed catalysts: %w", err)
	}

	summary := &dto.CatalystScanSummary{
		Triggered: []string{},
		Skipped:   []string{},
		Failed:    []dto.FailedStock{},
	}
	if len(events) == 0 {
		return summary, nil
	}

	grouped, order := groupEventsByStock(events)
	summary.StocksEvaluated = len(order)

	for _, stockID := range order {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		s.scanStock(ctx, stockID, grouped[stockID], summary)
	}

	summary.CostAvoidedUSD = float64(len(summary.Skipped)) * common.CostPerAnalysisUSD
	return summary, nil
}

func (s *catalystScanService) scanStock(ctx context.Context, stockID uint, batch []entity.CatalystEvent, summary *dto.CatalystScanSummary) {
	stock, err := s.stocksRepo.FindByID(ctx, stockID)
	if err != nil || stock == nil {
		summary.Failed = append(summary.Failed, dto.FailedStock{Ticker: fmt.Sprintf("stock_id=%d", stockID), Error: "stock not found"})
		return
	}

	representative := pickRepresentative(batch)

	current, err := s.currentRecommendation(ctx, stockID)
	if err != nil {
		summary.Failed = append(summary.Failed, dto.FailedStock{Ticker: stock.Ticker, Error: err.Error()})
		return
	}

	since := utils.TimeNowUTC().Add(-24 * time.Hour)
	reanalysisCount, err := s.historyRepo.CountCatalystTriggered(ctx, stockID, since)
	if err != nil {
		summary.Failed = append(summary.Failed, dto.FailedStock{Ticker: stock.Ticker, Error: err.Error()})
		return
	}

	decision := s.engine.Evaluate(gate.Event{
		Type:    catalyst.EventType(representative.EventType),
		Urgency: catalyst.Urgency(representative.Urgency),
	}, current, reanalysisCount)

	audit, _ := json.Marshal(decision.Audit)
	s.log.Info("Gate decision",
		logger.StringField("ticker", stock.Ticker),
		logger.StringField("event_type", representative.EventType),
		logger.StringField("urgency", representative.Urgency),
		logger.Field("should_trigger", decision.ShouldTrigger),
		logger.StringField("audit", string(audit)),
	)

	eventIDs := make([]uint, 0, len(batch))
	for _, event := range batch {
		eventIDs = append(eventIDs, event.ID)
	}

	if !decision.ShouldTrigger {
		if err := s.catalystRepo.MarkProcessed(ctx, eventIDs, false, decision.SkipReason); err != nil {
			s.log.Error("Failed to mark catalysts skipped", logger.ErrorField(err), logger.StringField("ticker", stock.Ticker))
		}
		summary.Skipped = append(summary.Skipped, stock.Ticker)
		return
	}

	reason := repository.CatalystTriggeredReasonPrefix + representative.EventType
	if _, err := s.fullAnalysis.Analyze(ctx, stock.Ticker, reason); err != nil {
		// Events stay unprocessed so the next sweep retries them.
		s.log.Error("Catalyst-triggered analysis failed", logger.ErrorField(err), logger.StringField("ticker", stock.Ticker))
		summary.Failed = append(summary.Failed, dto.FailedStock{Ticker: stock.Ticker, Error: err.Error()})
		return
	}

	if err := s.catalystRepo.MarkProcessed(ctx, eventIDs, true, ""); err != nil {
		s.log.Error("Failed to mark catalysts triggered", logger.ErrorField(err), logger.StringField("ticker", stock.Ticker))
	}
	summary.Triggered = append(summary.Triggered, stock.Ticker)
}

func (s *catalystScanService) currentRecommendation(ctx context.Context, stockID uint) (*gate.CurrentRecommendation, error) {
	prediction, err := s.predictionsRepo.FindByStockID(ctx, stockID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prediction: %w", err)
	}
	if prediction == nil {
		return nil, nil
	}
	return &gate.CurrentRecommendation{
		Score:          prediction.FinalScore,
		Recommendation: scoring.Recommendation(prediction.Recommendation),
		Confidence:     scoring.ParseConfidence(prediction.Confidence),
		LastAnalyzedAt: prediction.CreatedAt,
	}, nil
}

// groupEventsByStock buckets events per stock, preserving the order stocks
// were first seen in (events arrive ordered by detection time).
func groupEventsByStock(events []entity.CatalystEvent) (map[uint][]entity.CatalystEvent, []uint) {
	grouped := make(map[uint][]entity.CatalystEvent)
	var order []uint
	for _, event := range events {
		if _, seen := grouped[event.StockID]; !seen {
			order = append(order, event.StockID)
		}
		grouped[event.StockID] = append(grouped[event.StockID], event)
	}
	return grouped, order
}

// pickRepresentative returns the highest-urgency event in a batch; ties go
// to the earliest-detected one.
func pickRepresentative(batch []entity.CatalystEvent) entity.CatalystEvent {
	best := batch[0]
	bestRank := catalyst.Urgency(best.Urgency).Rank()
	for _, event := range batch[1:] {
		if rank := catalyst.Urgency(event.Urgency).Rank(); rank > bestRank {
			best = event
			bestRank = rank
		}
	}
	return best
}
