package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-advisor/internal/analyzer/config"
	"golang-stock-advisor/internal/analyzer/dto"
	"golang-stock-advisor/internal/analyzer/repository"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/internal/scoring"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/telegram"
	"golang-stock-advisor/pkg/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

// agentWeights fixes each persona's say in the consensus. They sum to 1 so
// the weighted average stays on the agent score scale.
var agentWeights = map[string]float64{
	"fundamental": 0.25,
	"technical":   0.20,
	"sentiment":   0.15,
	"macro":       0.15,
	"insider":     0.10,
	"catalyst":    0.15,
}

type FullAnalysisService interface {
	ProcessTask(ctx context.Context)
	Analyze(ctx context.Context, ticker string, reason string) (*dto.FullAnalysisResult, error)
}

type fullAnalysisService struct {
	cfg             *config.Config
	log             *logger.Logger
	redisClient     *redis.Client
	stocksRepo      repository.StocksRepository
	predictionsRepo repository.PredictionsRepository
	newsRepo        repository.NewsRepository
	historyRepo     repository.RecommendationHistoryRepository
	quoteRepo       repository.QuoteRepository
	aiRepo          repository.AIRepository
	telegramBot     telegram.Notifier
}

func NewFullAnalysisService(cfg *config.Config, log *logger.Logger,
	redisClient *redis.Client,
	stocksRepo repository.StocksRepository,
	predictionsRepo repository.PredictionsRepository,
	newsRepo repository.NewsRepository,
	historyRepo repository.RecommendationHistoryRepository,
	quoteRepo repository.QuoteRepository,
	aiRepo repository.AIRepository,
	telegramBot telegram.Notifier) FullAnalysisService {
	return &fullAnalysisService{
		cfg:             cfg,
		log:             log,
		redisClient:     redisClient,
		stocksRepo:      stocksRepo,
		predictionsRepo: predictionsRepo,
		newsRepo:        newsRepo,
		historyRepo:     historyRepo,
		quoteRepo:       quoteRepo,
		aiRepo:          aiRepo,
		telegramBot:     telegramBot,
	}
}

// ProcessTask dequeues and runs a single full-analysis task.
func (s *fullAnalysisService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamFullAnalysis, ">"}, // ">" means only new messages
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

	// The task data is expected to be a JSON string in the 'payload' field.
	taskData, ok := message.Values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", message.ID))
		return
	}

	var task dto.FullAnalysisTask
	if err := json.Unmarshal([]byte(taskData), &task); err != nil {
		s.log.Error("Failed to unmarshal task data", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	s.log.Debug("Processing full analysis task", logger.StringField("ticker", task.Ticker), logger.StringField("reason", task.Reason))

	if _, err := s.Analyze(ctx, task.Ticker, task.Reason); err != nil {
		s.log.Error("Failed to analyze stock", logger.ErrorField(err), logger.Field("message_id", message.ID), logger.StringField("ticker", task.Ticker))
		return
	}
	if err := ackNDel(ctx, s.redisClient, s.log, common.RedisStreamFullAnalysis, message.ID); err != nil {
		s.log.Error("Failed to acknowledge and delete full analysis task", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	s.log.Debug("Full analysis task processed successfully", logger.StringField("ticker", task.Ticker))
}

// Analyze runs the six-agent debate for one stock and replaces its live
// prediction. The reason is recorded in the change trail; catalyst-triggered
// runs arrive with a "catalyst:" prefixed reason.
func (s *fullAnalysisService) Analyze(ctx context.Context, ticker string, reason string) (*dto.FullAnalysisResult, error) {
	stock, err := s.stocksRepo.FindByTicker(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to find stock %s: %w", ticker, err)
	}
	if stock == nil {
		return nil, fmt.Errorf("stock %s not found", ticker)
	}

	price, err := s.quoteRepo.GetPrice(ctx, stock.Ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", ticker, err)
	}

	prior, err := s.predictionsRepo.FindByStockID(ctx, stock.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior prediction: %w", err)
	}

	input, err := s.buildContext(ctx, stock, price, prior)
	if err != nil {
		return nil, err
	}

	agents := make([]dto.AgentAnalysisResult, 0, len(common.AgentNames))
	for _, agentName := range common.AgentNames {
		if !utils.ShouldContinue(ctx, s.log) {
			return nil, ctx.Err()
		}
		agentResult, err := s.aiRepo.AnalyzeAgent(ctx, agentName, input)
		if err != nil {
			return nil, fmt.Errorf("agent %s failed: %w", agentName, err)
		}
		agentResult.Weight = agentWeights[agentName]
		agents = append(agents, *agentResult)
	}

	consensusScore := weightedConsensus(agents)

	synthesis, err := s.aiRepo.Synthesize(ctx, input, agents, consensusScore)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	confidence := scoring.ParseConfidence(synthesis.Confidence)

	// The declared call is stored as-is; reconciliation never rewrites it,
	// it only flags the disagreement for operators.
	recon := scoring.ReconcileRecommendation(consensusScore, scoring.Recommendation(synthesis.Recommendation))
	if recon.HasDeviation {
		s.log.Warn("AI recommendation deviates from calculated",
			logger.StringField("ticker", ticker),
			logger.StringField("severity", string(recon.DeviationSeverity)),
			logger.StringField("explanation", recon.Explanation),
		)
	}
	recommendation := synthesis.Recommendation

	prediction := &entity.Prediction{
		StockID:           stock.ID,
		FinalScore:        consensusScore,
		Recommendation:    recommendation,
		Confidence:        string(confidence),
		DebateSummary:     synthesis.DebateSummary,
		RiskFactors:       synthesis.RiskFactors,
		PriceAtPrediction: price,
	}

	scores := make([]entity.AgentScore, 0, len(agents))
	for _, agent := range agents {
		metrics, err := json.Marshal(agent.KeyMetrics)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal key metrics: %w", err)
		}
		scores = append(scores, entity.AgentScore{
			StockID:    stock.ID,
			AgentName:  agent.AgentName,
			Score:      agent.Score,
			Weight:     agent.Weight,
			Reasoning:  agent.Reasoning,
			KeyMetrics: datatypes.JSON(metrics),
		})
	}

	if err := s.predictionsRepo.Replace(ctx, prediction, scores); err != nil {
		return nil, fmt.Errorf("failed to store prediction: %w", err)
	}

	s.recordChange(ctx, stock, prior, prediction, reason)

	s.log.Info("Full analysis completed",
		logger.StringField("ticker", ticker),
		logger.Float64Field("score", consensusScore),
		logger.StringField("recommendation", recommendation),
		logger.StringField("confidence", string(confidence)),
	)

	return &dto.FullAnalysisResult{
		Success:        true,
		PredictionID:   prediction.ID,
		Recommendation: recommendation,
		Score:          consensusScore,
	}, nil
}

func (s *fullAnalysisService) buildContext(ctx context.Context, stock *entity.Stock, price float64, prior *entity.Prediction) (*dto.AgentContext, error) {
	since := utils.TimeNowUTC().AddDate(0, 0, -s.cfg.Analyzer.NewsMaxAgeDays)
	articles, err := s.newsRepo.FindRecentByStock(ctx, stock.ID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent news: %w", err)
	}

	headlines := make([]string, 0, len(articles))
	for _, article := range articles {
		if len(headlines) >= s.cfg.Analyzer.NewsMaxPerStock {
			break
		}
		headlines = append(headlines, article.Headline)
	}

	input := &dto.AgentContext{
		Ticker:        stock.Ticker,
		Name:          stock.Name,
		Sector:        stock.Sector,
		CurrentPrice:  price,
		NewsHeadlines: headlines,
	}
	if prior != nil {
		input.PriorRecommendation = prior.Recommendation
		priorScore := prior.FinalScore
		input.PriorScore = &priorScore
	}
	return input, nil
}

// recordChange appends to the change trail when the recommendation flipped or
// when the run was catalyst-triggered, and notifies on flips. Trail failures
// are logged, not fatal: the prediction itself is already stored.
func (s *fullAnalysisService) recordChange(ctx context.Context, stock *entity.Stock, prior *entity.Prediction, current *entity.Prediction, reason string) {
	previousRecommendation := ""
	previousScore := 0.0
	if prior != nil {
		previousRecommendation = prior.Recommendation
		previousScore = prior.FinalScore
	}

	changed := prior != nil && prior.Recommendation != current.Recommendation
	catalystTriggered := len(reason) >= len(repository.CatalystTriggeredReasonPrefix) &&
		reason[:len(repository.CatalystTriggeredReasonPrefix)] == repository.CatalystTriggeredReasonPrefix

	if !changed && !catalystTriggered {
		return
	}

	history := &entity.RecommendationHistory{
		StockID:                stock.ID,
		PreviousRecommendation: previousRecommendation,
		NewRecommendation:      current.Recommendation,
		PreviousScore:          previousScore,
		NewScore:               current.FinalScore,
		Reason:                 reason,
	}
	if err := s.historyRepo.Create(ctx, history); err != nil {
		s.log.Error("Failed to record recommendation history", logger.ErrorField(err), logger.StringField("ticker", stock.Ticker))
	}

	if changed && s.telegramBot != nil {
		msg := telegram.FormatRecommendationChange(stock.Ticker, previousRecommendation, current.Recommendation,
			previousScore, current.FinalScore, reason, utils.TimeNowUTC())
		if err := s.telegramBot.SendMessage(msg); err != nil {
			s.log.Error("Failed to send recommendation change alert", logger.ErrorField(err), logger.StringField("ticker", stock.Ticker))
		}
	}
}

func weightedConsensus(agents []dto.AgentAnalysisResult) float64 {
	var weightedSum, totalWeight float64
	for _, agent := range agents {
		weightedSum += agent.Score * agent.Weight
		totalWeight += agent.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}
