package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-advisor/internal/analyzer/config"
	"golang-stock-advisor/internal/analyzer/delivery/consumer"
	"golang-stock-advisor/internal/analyzer/repository"
	"golang-stock-advisor/internal/analyzer/service"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/postgres"
	"golang-stock-advisor/pkg/redis"
	"golang-stock-advisor/pkg/telegram"

	"google.golang.org/genai"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the analysis service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Analysis Service", zap.String("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Create the consumer groups if they don't exist.
	// MKSTREAM creates the stream if it doesn't exist.
	streams := []string{
		common.RedisStreamNewsIngest,
		common.RedisStreamCatalystScan,
		common.RedisStreamCheckpointScan,
		common.RedisStreamFullAnalysis,
	}
	for _, stream := range streams {
		if err := redisClient.XGroupCreateMkStream(context.Background(), stream, common.RedisStreamGroup, "0").Err(); err != nil {
			if err.Error() != "BUSYGROUP Consumer Group name already exists" {
				appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err), logger.StringField("stream", stream))
			}
		}
	}

	// Initialize repositories
	stocksRepo := repository.NewStocksRepository(db.DB)
	predictionsRepo := repository.NewPredictionsRepository(db.DB)
	catalystRepo := repository.NewCatalystEventsRepository(db.DB)
	historyRepo := repository.NewRecommendationHistoryRepository(db.DB)
	newsRepo := repository.NewNewsRepository(db.DB)
	ratingsRepo := repository.NewAnalystRatingsRepository(db.DB, cfg, appLogger)
	quoteRepo := repository.NewQuoteRepository(cfg.Quotes, appLogger)

	// Initialize AI provider
	var aiRepo repository.AIRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", zap.Error(err))
		}
		repo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI repository", zap.Error(err))
		}
		aiRepo = repo
	default:
		appLogger.Fatal("Invalid AI provider specified in config", zap.String("provider", cfg.AI.Provider))
	}

	telegramNotifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
	}

	// Initialize services
	fullAnalysisSvc := service.NewFullAnalysisService(cfg, appLogger, redisClient.Client, stocksRepo, predictionsRepo, newsRepo, historyRepo, quoteRepo, aiRepo, telegramNotifier)
	catalystScanSvc := service.NewCatalystScanService(cfg, appLogger, redisClient.Client, stocksRepo, predictionsRepo, catalystRepo, historyRepo, fullAnalysisSvc)
	checkpointSvc := service.NewCheckpointService(cfg, appLogger, redisClient.Client, stocksRepo, predictionsRepo, quoteRepo, telegramNotifier)
	newsIngestSvc := service.NewNewsIngestService(cfg, appLogger, redisClient.Client, stocksRepo, newsRepo, ratingsRepo, catalystRepo, aiRepo)

	// Initialize and start the Redis consumer
	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient.Client, newsIngestSvc, catalystScanSvc, checkpointSvc, fullAnalysisSvc, appLogger)
	redisConsumer.Start(ctx)

	appLogger.Info("Analysis service started. Waiting for tasks...")

	// Wait for interrupt signal to gracefully shut down the service
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down analysis service...")
	cancel()
	redisConsumer.Stop()
	appLogger.Info("Analysis service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "analysis-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-analyzer.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analysis-service CLI: %s\n", err)
		os.Exit(1)
	}
}
