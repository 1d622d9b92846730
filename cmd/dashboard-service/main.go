package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	analyzerrepo "golang-stock-advisor/internal/analyzer/repository"
	"golang-stock-advisor/internal/dashboard/config"
	delivery "golang-stock-advisor/internal/dashboard/delivery/http"
	"golang-stock-advisor/internal/dashboard/repository"
	"golang-stock-advisor/internal/dashboard/service"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/postgres"
	"golang-stock-advisor/pkg/redis"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the dashboard service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	appLogger.Info("Starting Dashboard Service", logger.Field("name", cfg.App.Name))

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
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
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
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	stocksRepo := repository.NewStocksRepository(db.DB)
	predictionsRepo := repository.NewPredictionsRepository(db.DB)
	analysisRepo := repository.NewAnalysisRepository(db.DB)
	quoteRepo := analyzerrepo.NewQuoteRepository(cfg.Quotes, appLogger)

	// Initialize services
	pollingInterval, err := time.ParseDuration(cfg.Scheduler.PollingInterval)
	if err != nil {
		appLogger.Fatal("Invalid polling interval", logger.ErrorField(err))
	}
	schedulerSvc := service.NewSchedulerService(cfg, stocksRepo, redisClient.Client, appLogger, pollingInterval)
	stockSvc := service.NewStockService(stocksRepo, schedulerSvc, appLogger)
	dashboardSvc := service.NewDashboardService(stocksRepo, predictionsRepo, analysisRepo, quoteRepo, appLogger)

	// Start scheduler service
	go schedulerSvc.Start(ctx)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	auth := delivery.BearerAuth(cfg.API.BearerSecret)

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")
	stocksGroup := apiV1.Group("/stocks")

	stockHandler := delivery.NewStockHandler(stockSvc, dashboardSvc, appLogger)
	stockHandler.RegisterRoutes(stocksGroup, auth)

	dashboardHandler := delivery.NewDashboardHandler(dashboardSvc, schedulerSvc, appLogger)
	dashboardHandler.RegisterRoutes(apiV1, stocksGroup, auth)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "dashboard-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-dashboard.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing dashboard-service CLI: %s\n", err)
		os.Exit(1)
	}
}
