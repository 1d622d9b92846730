package config

import (
	"golang-stock-advisor/pkg/config"
)

// Scheduler holds the cron expressions driving the automated sweeps.
type Scheduler struct {
	PollingInterval    string `mapstructure:"polling_interval"`
	NewsIngestCron     string `mapstructure:"news_ingest_cron"`
	CatalystScanCron   string `mapstructure:"catalyst_scan_cron"`
	CheckpointScanCron string `mapstructure:"checkpoint_scan_cron"`
}

// Config holds the full configuration for the dashboard service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Quotes    config.Quotes   `mapstructure:"quotes"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
}

// Load loads the dashboard configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
