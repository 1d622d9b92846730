package service

import (
	"context"
	"encoding/json"
	"time"

	"golang-stock-advisor/internal/analyzer/dto"
	"golang-stock-advisor/internal/dashboard/config"
	"golang-stock-advisor/internal/dashboard/repository"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// SchedulerService publishes the recurring sweep tasks to the analysis
// streams and exposes the same publishes for manual triggers.
type SchedulerService interface {
	Start(ctx context.Context)
	PublishNewsIngestAll(ctx context.Context) error
	PublishCatalystScan(ctx context.Context, triggeredBy string) error
	PublishCheckpointScan(ctx context.Context, triggeredBy string) error
	PublishCheckpointEval(ctx context.Context, ticker, checkpointType string) error
	PublishFullAnalysis(ctx context.Context, ticker, reason string) error
}

type scheduledJob struct {
	name     string
	schedule cron.Schedule
	nextRun  time.Time
	fire     func(ctx context.Context) error
}

type schedulerService struct {
	cfg             *config.Config
	stocksRepo      repository.StocksRepository
	redisClient     *redis.Client
	logger          *logger.Logger
	pollingInterval time.Duration
	cronParser      cron.Parser
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(cfg *config.Config, stocksRepo repository.StocksRepository, redisClient *redis.Client, log *logger.Logger, pollingInterval time.Duration) SchedulerService {
	return &schedulerService{
		cfg:             cfg,
		stocksRepo:      stocksRepo,
		redisClient:     redisClient,
		logger:          log,
		pollingInterval: pollingInterval,
		cronParser:      cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Start runs the polling loop until the context is canceled. Each configured
// sweep fires when its cron expression comes due.
func (s *schedulerService) Start(ctx context.Context) {
	jobs := s.buildJobs()
	if len(jobs) == 0 {
		s.logger.Warn("No sweeps configured, scheduler idle")
		return
	}

	ticker := time.NewTicker(s.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler service stopping")
			return
		case <-ticker.C:
			now := time.Now()
			for i := range jobs {
				if now.Before(jobs[i].nextRun) {
					continue
				}
				if err := jobs[i].fire(ctx); err != nil {
					s.logger.Error("Failed to fire scheduled sweep", logger.ErrorField(err), logger.StringField("job", jobs[i].name))
				} else {
					s.logger.Info("Scheduled sweep fired", logger.StringField("job", jobs[i].name))
				}
				jobs[i].nextRun = jobs[i].schedule.Next(now)
			}
		}
	}
}

func (s *schedulerService) buildJobs() []scheduledJob {
	specs := []struct {
		name string
		expr string
		fire func(ctx context.Context) error
	}{
		{"news_ingest", s.cfg.Scheduler.NewsIngestCron, s.PublishNewsIngestAll},
		{"catalyst_scan", s.cfg.Scheduler.CatalystScanCron, func(ctx context.Context) error {
			return s.PublishCatalystScan(ctx, "schedule")
		}},
		{"checkpoint_scan", s.cfg.Scheduler.CheckpointScanCron, func(ctx context.Context) error {
			return s.PublishCheckpointScan(ctx, "schedule")
		}},
	}

	now := time.Now()
	var jobs []scheduledJob
	for _, spec := range specs {
		if spec.expr == "" {
			continue
		}
		schedule, err := s.cronParser.Parse(spec.expr)
		if err != nil {
			s.logger.Error("Failed to parse cron expression", logger.ErrorField(err), logger.StringField("job", spec.name), logger.StringField("expr", spec.expr))
			continue
		}
		jobs = append(jobs, scheduledJob{
			name:     spec.name,
			schedule: schedule,
			nextRun:  schedule.Next(now),
			fire:     spec.fire,
		})
	}
	return jobs
}

// PublishNewsIngestAll fans out one ingest task per active stock.
func (s *schedulerService) PublishNewsIngestAll(ctx context.Context) error {
	stocks, err := s.stocksRepo.GetActive(ctx)
	if err != nil {
		return err
	}

	for _, stock := range stocks {
		task := dto.NewsIngestTask{StockID: stock.ID, Ticker: stock.Ticker}
		if err := s.publish(ctx, common.RedisStreamNewsIngest, task); err != nil {
			s.logger.Error("Failed to publish news ingest task", logger.ErrorField(err), logger.StringField("ticker", stock.Ticker))
		}
	}
	return nil
}

func (s *schedulerService) PublishCatalystScan(ctx context.Context, triggeredBy string) error {
	return s.publish(ctx, common.RedisStreamCatalystScan, dto.CatalystScanTask{TriggeredBy: triggeredBy})
}

func (s *schedulerService) PublishCheckpointScan(ctx context.Context, triggeredBy string) error {
	return s.publish(ctx, common.RedisStreamCheckpointScan, dto.CheckpointScanTask{TriggeredBy: triggeredBy})
}

// PublishCheckpointEval requests evaluation of a single named checkpoint.
func (s *schedulerService) PublishCheckpointEval(ctx context.Context, ticker, checkpointType string) error {
	task := dto.CheckpointScanTask{TriggeredBy: "manual", Ticker: ticker, CheckpointType: checkpointType}
	return s.publish(ctx, common.RedisStreamCheckpointScan, task)
}

func (s *schedulerService) PublishFullAnalysis(ctx context.Context, ticker, reason string) error {
	return s.publish(ctx, common.RedisStreamFullAnalysis, dto.FullAnalysisTask{Ticker: ticker, Reason: reason})
}

func (s *schedulerService) publish(ctx context.Context, stream string, task interface{}) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.cfg.Redis.StreamMaxLen, // Limit the stream size
	}).Err()
}
