package config

import (
	"time"

	"golang-stock-advisor/pkg/config"
)

// Analyzer holds worker-specific configuration.
type Analyzer struct {
	CatalystLookbackHours int `mapstructure:"catalyst_lookback_hours"`
	NewsMaxAgeDays        int `mapstructure:"news_max_age_days"`
	NewsMaxPerStock       int `mapstructure:"news_max_per_stock"`

	RedisStreamNewsIngestTimeout     time.Duration `mapstructure:"redis_stream_news_ingest_timeout"`
	RedisStreamCatalystScanTimeout   time.Duration `mapstructure:"redis_stream_catalyst_scan_timeout"`
	RedisStreamCheckpointScanTimeout time.Duration `mapstructure:"redis_stream_checkpoint_scan_timeout"`
	RedisStreamFullAnalysisTimeout   time.Duration `mapstructure:"redis_stream_full_analysis_timeout"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// AI holds configuration for AI providers.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// RatingsFeed holds configuration for the analyst rating-change provider.
type RatingsFeed struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// NewsFeed holds configuration for the RSS news source.
type NewsFeed struct {
	BaseURL            string   `mapstructure:"base_url"`
	BlacklistedDomains []string `mapstructure:"blacklisted_domains"`
}

// Config holds the full configuration for the analysis service.
type Config struct {
	App         config.App      `mapstructure:"app"`
	Logger      config.Logger   `mapstructure:"logger"`
	Database    config.Database `mapstructure:"database"`
	Redis       config.Redis    `mapstructure:"redis"`
	Analyzer    Analyzer        `mapstructure:"analyzer"`
	Gemini      Gemini          `mapstructure:"gemini"`
	AI          AI              `mapstructure:"ai"`
	Telegram    Telegram        `mapstructure:"telegram"`
	Quotes      config.Quotes   `mapstructure:"quotes"`
	RatingsFeed RatingsFeed     `mapstructure:"ratings_feed"`
	NewsFeed    NewsFeed        `mapstructure:"news_feed"`
}

// Load loads the analysis-service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
