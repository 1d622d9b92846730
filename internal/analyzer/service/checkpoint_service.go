package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-advisor/internal/analyzer/config"
	"golang-stock-advisor/internal/analyzer/dto"
	"golang-stock-advisor/internal/analyzer/repository"
	"golang-stock-advisor/internal/checkpoint"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/internal/scoring"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/telegram"
	"golang-stock-advisor/pkg/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

type CheckpointService interface {
	ProcessTask(ctx context.Context)
	EvaluateDue(ctx context.Context) (*dto.CheckpointBatchSummary, error)
	EvaluateOne(ctx context.Context, ticker string, checkpointType checkpoint.Type) (*dto.CheckpointEvalResult, error)
}

type checkpointService struct {
	cfg             *config.Config
	log             *logger.Logger
	redisClient     *redis.Client
	stocksRepo      repository.StocksRepository
	predictionsRepo repository.PredictionsRepository
	quoteRepo       repository.QuoteRepository
	telegramBot     telegram.Notifier
}

func NewCheckpointService(cfg *config.Config, log *logger.Logger,
	redisClient *redis.Client,
	stocksRepo repository.StocksRepository,
	predictionsRepo repository.PredictionsRepository,
	quoteRepo repository.QuoteRepository,
	telegramBot telegram.Notifier) CheckpointService {
	return &checkpointService{
		cfg:             cfg,
		log:             log,
		redisClient:     redisClient,
		stocksRepo:      stocksRepo,
		predictionsRepo: predictionsRepo,
		quoteRepo:       quoteRepo,
		telegramBot:     telegramBot,
	}
}

// ProcessTask dequeues and runs a single checkpoint sweep.
func (s *checkpointService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamCheckpointScan, ">"}, // ">" means only new messages
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

	var task dto.CheckpointScanTask
	if taskData, ok := message.Values["payload"].(string); ok {
		if err := json.Unmarshal([]byte(taskData), &task); err != nil {
			s.log.Error("Failed to unmarshal task data", logger.ErrorField(err), logger.Field("message_id", message.ID))
			return
		}
	}

	if task.Ticker != "" {
		s.processSingle(ctx, task)
	} else {
		summary, err := s.EvaluateDue(ctx)
		if err != nil {
			s.log.Error("Checkpoint sweep failed", logger.ErrorField(err), logger.Field("message_id", message.ID))
			return
		}

		s.log.Info("Checkpoint sweep completed",
			logger.IntField("evaluated", summary.Evaluated),
			logger.IntField("skipped", summary.Skipped),
			logger.IntField("failed", summary.Failed),
		)
	}

	if err := ackNDel(ctx, s.redisClient, s.log, common.RedisStreamCheckpointScan, message.ID); err != nil {
		s.log.Error("Failed to acknowledge and delete checkpoint scan task", logger.ErrorField(err), logger.Field("message_id", message.ID))
	}
}

func (s *checkpointService) processSingle(ctx context.Context, task dto.CheckpointScanTask) {
	checkpointType, err := checkpoint.Parse(task.CheckpointType)
	if err != nil {
		s.log.Error("Invalid checkpoint type in task", logger.ErrorField(err), logger.StringField("checkpoint", task.CheckpointType))
		return
	}

	result, err := s.EvaluateOne(ctx, task.Ticker, checkpointType)
	if err != nil {
		s.log.Error("On-demand checkpoint evaluation failed", logger.ErrorField(err), logger.StringField("ticker", task.Ticker))
		return
	}
	if !result.Success {
		s.log.Warn("On-demand checkpoint evaluation rejected",
			logger.StringField("ticker", task.Ticker),
			logger.StringField("checkpoint", string(checkpointType)),
			logger.StringField("reason", result.Error),
		)
	}
}

// EvaluateDue sweeps all predictions with open checkpoint slots and evaluates
// every slot whose threshold has passed. Individual failures are recorded in
// the summary and never abort the sweep.
func (s *checkpointService) EvaluateDue(ctx context.Context) (*dto.CheckpointBatchSummary, error) {
	predictions, err := s.predictionsRepo.FindWithPendingCheckpoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending checkpoints: %w", err)
	}

	summary := &dto.CheckpointBatchSummary{Results: []dto.CheckpointEvalResult{}}
	now := utils.TimeNowUTC()

	for _, prediction := range predictions {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}

		stock, err := s.stocksRepo.FindByID(ctx, prediction.StockID)
		if err != nil || stock == nil {
			summary.Failed++
			continue
		}

		for _, checkpointType := range checkpoint.All {
			evaluated := slotFilled(&prediction, checkpointType)
			state := checkpoint.StatusFor(checkpointType, prediction.CreatedAt, now, evaluated)
			if state.Status != checkpoint.StatusReady {
				summary.Skipped++
				continue
			}

			result := s.evaluate(ctx, stock, &prediction, checkpointType, now)
			summary.Results = append(summary.Results, result)
			if result.Success {
				summary.Evaluated++
			} else {
				summary.Failed++
			}
		}
	}

	return summary, nil
}

// EvaluateOne evaluates a single named checkpoint on demand, regardless of
// the sweep schedule. Maturity and immutability rules still apply.
func (s *checkpointService) EvaluateOne(ctx context.Context, ticker string, checkpointType checkpoint.Type) (*dto.CheckpointEvalResult, error) {
	stock, err := s.stocksRepo.FindByTicker(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to find stock %s: %w", ticker, err)
	}
	if stock == nil {
		return nil, fmt.Errorf("stock %s not found", ticker)
	}

	prediction, err := s.predictionsRepo.FindByStockID(ctx, stock.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prediction: %w", err)
	}
	if prediction == nil {
		return nil, fmt.Errorf("stock %s has no prediction", ticker)
	}

	result := s.evaluate(ctx, stock, prediction, checkpointType, utils.TimeNowUTC())
	return &result, nil
}

func (s *checkpointService) evaluate(ctx context.Context, stock *entity.Stock, prediction *entity.Prediction, checkpointType checkpoint.Type, now time.Time) dto.CheckpointEvalResult {
	evalResult := dto.CheckpointEvalResult{
		Ticker:         stock.Ticker,
		CheckpointType: string(checkpointType),
	}

	price, err := s.quoteRepo.GetPrice(ctx, stock.Ticker)
	if err != nil {
		evalResult.Error = err.Error()
		return evalResult
	}

	evaluated := slotFilled(prediction, checkpointType)
	result, err := checkpoint.Evaluate(checkpointType, scoring.Recommendation(prediction.Recommendation),
		prediction.PriceAtPrediction, price, prediction.CreatedAt, now, evaluated)
	if err != nil {
		evalResult.Error = err.Error()
		return evalResult
	}

	payload, err := json.Marshal(result)
	if err != nil {
		evalResult.Error = err.Error()
		return evalResult
	}

	var mirror *entity.CheckpointResult
	if checkpointType.IsPrimary() {
		mirror = result
	}
	if err := s.predictionsRepo.WriteCheckpoint(ctx, prediction.ID, checkpointType, datatypes.JSON(payload), mirror); err != nil {
		evalResult.Error = err.Error()
		return evalResult
	}

	s.log.Info("Checkpoint evaluated",
		logger.StringField("ticker", stock.Ticker),
		logger.StringField("checkpoint", string(checkpointType)),
		logger.Float64Field("return_pct", result.ReturnPct),
		logger.StringField("direction", result.Direction),
		logger.Field("accurate", result.DirectionalAccuracy),
	)

	if checkpointType.IsPrimary() && s.telegramBot != nil {
		msg := telegram.FormatCheckpointResult(stock.Ticker, checkpointType.Days(), result.ReturnPct, result.Direction, result.DirectionalAccuracy)
		if err := s.telegramBot.SendMessage(msg); err != nil {
			s.log.Error("Failed to send checkpoint alert", logger.ErrorField(err), logger.StringField("ticker", stock.Ticker))
		}
	}

	evalResult.Success = true
	evalResult.Result = result
	return evalResult
}

func slotFilled(prediction *entity.Prediction, checkpointType checkpoint.Type) bool {
	switch checkpointType {
	case checkpoint.Type5D:
		return prediction.Checkpoint5D != nil
	case checkpoint.Type10D:
		return prediction.Checkpoint10D != nil
	case checkpoint.Type20D:
		return prediction.Checkpoint20D != nil
	}
	return false
}
