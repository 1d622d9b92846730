package consumer

import (
	"context"
	"sync"
	"time"

	"golang-stock-advisor/internal/analyzer/config"
	"golang-stock-advisor/internal/analyzer/service"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisConsumer manages the consumption of tasks from the Redis streams.
type RedisConsumer struct {
	cfg                 *config.Config
	redisClient         *redis.Client
	newsIngestService   service.NewsIngestService
	catalystScanService service.CatalystScanService
	checkpointService   service.CheckpointService
	fullAnalysisService service.FullAnalysisService
	logger              *logger.Logger
	stopChan            chan struct{}
	wg                  sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	newsIngestService service.NewsIngestService,
	catalystScanService service.CatalystScanService,
	checkpointService service.CheckpointService,
	fullAnalysisService service.FullAnalysisService,
	log *logger.Logger,
) *RedisConsumer {
	return &RedisConsumer{
		cfg:                 cfg,
		redisClient:         redisClient,
		newsIngestService:   newsIngestService,
		catalystScanService: catalystScanService,
		checkpointService:   checkpointService,
		fullAnalysisService: fullAnalysisService,
		logger:              log,
		stopChan:            make(chan struct{}),
	}
}

// Start begins the consumer's task processing loops.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.newsIngestService.ProcessTask, common.RedisStreamNewsIngest, c.cfg.Analyzer.RedisStreamNewsIngestTimeout)
	c.RegisterStreamHandler(ctx, c.catalystScanService.ProcessTask, common.RedisStreamCatalystScan, c.cfg.Analyzer.RedisStreamCatalystScanTimeout)
	c.RegisterStreamHandler(ctx, c.checkpointService.ProcessTask, common.RedisStreamCheckpointScan, c.cfg.Analyzer.RedisStreamCheckpointScanTimeout)
	c.RegisterStreamHandler(ctx, c.fullAnalysisService.ProcessTask, common.RedisStreamFullAnalysis, c.cfg.Analyzer.RedisStreamFullAnalysisTimeout)
}

func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
