package config

import (
	"time"

	"golang-swing-market/internal/market"
	"golang-swing-market/pkg/config"
)

// Analyzer holds consumer tuning for the analysis service.
type Analyzer struct {
	MaxConcurrentTasks              int           `mapstructure:"max_concurrent_tasks"`
	RedisStreamTaskExecutionTimeout time.Duration `mapstructure:"redis_stream_task_execution_timeout"`

	// Market Collector
	RedisStreamMarketCollectorTimeout         time.Duration `mapstructure:"redis_stream_market_collector_timeout"`
	RedisStreamMarketCollectorRetryInterval   time.Duration `mapstructure:"redis_stream_market_collector_retry_interval"`
	RedisStreamMarketCollectorMaxIdleDuration time.Duration `mapstructure:"redis_stream_market_collector_max_idle_duration"`
	RedisStreamMarketCollectorMaxRetry        int           `mapstructure:"redis_stream_market_collector_max_retry"`

	// Market Regime
	RedisStreamMarketRegimeTimeout         time.Duration `mapstructure:"redis_stream_market_regime_timeout"`
	RedisStreamMarketRegimeRetryInterval   time.Duration `mapstructure:"redis_stream_market_regime_retry_interval"`
	RedisStreamMarketRegimeMaxIdleDuration time.Duration `mapstructure:"redis_stream_market_regime_max_idle_duration"`
	RedisStreamMarketRegimeMaxRetry        int           `mapstructure:"redis_stream_market_regime_max_retry"`

	// Event Schedule Sync
	RedisStreamEventSyncTimeout         time.Duration `mapstructure:"redis_stream_event_sync_timeout"`
	RedisStreamEventSyncRetryInterval   time.Duration `mapstructure:"redis_stream_event_sync_retry_interval"`
	RedisStreamEventSyncMaxIdleDuration time.Duration `mapstructure:"redis_stream_event_sync_max_idle_duration"`
	RedisStreamEventSyncMaxRetry        int           `mapstructure:"redis_stream_event_sync_max_retry"`
}

// Collector holds the daily price collection parameters.
type Collector struct {
	WindowDays     int `mapstructure:"window_days"`
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

// Market holds index symbols, universe selection, and classifier thresholds.
type Market struct {
	PrimaryIndexSymbol   string              `mapstructure:"primary_index_symbol"`
	SecondaryIndexSymbol string              `mapstructure:"secondary_index_symbol"`
	UniverseName         string              `mapstructure:"universe_name"`
	IndexHistoryDays     int                 `mapstructure:"index_history_days"`
	UniverseCloseDays    int                 `mapstructure:"universe_close_days"`
	Regime               market.RegimeConfig `mapstructure:"regime"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// YahooFinance holds the configuration for the Yahoo Finance chart API.
type YahooFinance struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Calendar holds the IR calendar page scraper configuration, used as the
// fallback source for earnings announcement dates.
type Calendar struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Config holds the full configuration for the analysis service.
type Config struct {
	App           config.App         `mapstructure:"app"`
	Logger        config.Logger      `mapstructure:"logger"`
	Database      config.Database    `mapstructure:"database"`
	Redis         config.Redis       `mapstructure:"redis"`
	API           config.API         `mapstructure:"api"`
	Analyzer      Analyzer           `mapstructure:"analyzer"`
	Collector     Collector          `mapstructure:"collector"`
	Market        Market             `mapstructure:"market"`
	EventCalendar market.EventConfig `mapstructure:"event_calendar"`
	Telegram      Telegram           `mapstructure:"telegram"`
	YahooFinance  YahooFinance       `mapstructure:"yahoo_finance"`
	Calendar      Calendar           `mapstructure:"calendar"`
}

// Load loads the analyzer configuration from the given path. Regime and event
// calendar thresholds left empty in the file fall back to the stock defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Market.Regime == (market.RegimeConfig{}) {
		cfg.Market.Regime = market.DefaultRegimeConfig()
	}
	if cfg.EventCalendar == (market.EventConfig{}) {
		cfg.EventCalendar = market.DefaultEventConfig()
	}
	return &cfg, nil
}
