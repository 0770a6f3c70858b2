// Package config loads and validates the service configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Exchange ExchangeConfig `mapstructure:"exchange"`
	Scanner  ScannerConfig  `mapstructure:"scanner"`
	News     NewsConfig     `mapstructure:"news"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	API      APIConfig      `mapstructure:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ExchangeConfig holds the market data API configuration.
type ExchangeConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	UserAgent         string        `mapstructure:"user_agent"`
}

// ScannerConfig holds detection and dispatch behavior configuration.
type ScannerConfig struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	QuoteSuffix    string        `mapstructure:"quote_suffix"`
	MinQuoteVolume float64       `mapstructure:"min_quote_volume"`
	WindowSize     int           `mapstructure:"window_size"`
	AlertThreshold float64       `mapstructure:"alert_threshold"`
	Cooldown       time.Duration `mapstructure:"cooldown"`
	MaxParallel    int           `mapstructure:"max_parallel"`
	StoreCapacity  int           `mapstructure:"store_capacity"`
}

// NewsConfig holds the optional news flag source configuration.
type NewsConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	FeedURL string        `mapstructure:"feed_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// APIConfig holds the HTTP query API configuration.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file and environment variables.
// A missing file is not an error; defaults and IDXRADAR_* env vars apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	v.SetEnvPrefix("IDXRADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Exchange defaults
	v.SetDefault("exchange.base_url", "https://indodax.com/api")
	v.SetDefault("exchange.timeout", "6s")
	v.SetDefault("exchange.max_retries", 3)
	v.SetDefault("exchange.retry_delay", "300ms")
	v.SetDefault("exchange.requests_per_second", 8.0)
	v.SetDefault("exchange.user_agent", "Mozilla/5.0 (compatible; IndodaxScanner/2.0)")

	// Scanner defaults
	v.SetDefault("scanner.poll_interval", "15s")
	v.SetDefault("scanner.quote_suffix", "idr")
	v.SetDefault("scanner.min_quote_volume", 1_000_000.0)
	v.SetDefault("scanner.window_size", 12)
	v.SetDefault("scanner.alert_threshold", 6.0)
	v.SetDefault("scanner.cooldown", "4m")
	v.SetDefault("scanner.max_parallel", 4)
	v.SetDefault("scanner.store_capacity", 20)

	// News defaults
	v.SetDefault("news.enabled", false)
	v.SetDefault("news.timeout", "5s")

	// API defaults
	v.SetDefault("api.listen_addr", ":8080")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	// Validate Exchange config
	if c.Exchange.BaseURL == "" {
		return fmt.Errorf("exchange.base_url is required")
	}
	if c.Exchange.Timeout < time.Second {
		return fmt.Errorf("exchange.timeout must be at least 1 second")
	}
	if c.Exchange.MaxRetries < 1 {
		return fmt.Errorf("exchange.max_retries must be at least 1")
	}
	if c.Exchange.RetryDelay <= 0 {
		return fmt.Errorf("exchange.retry_delay must be positive")
	}
	if c.Exchange.RequestsPerSecond <= 0 {
		return fmt.Errorf("exchange.requests_per_second must be positive")
	}

	// Validate Scanner config
	if c.Scanner.PollInterval < 5*time.Second {
		return fmt.Errorf("scanner.poll_interval must be at least 5 seconds")
	}
	if c.Scanner.QuoteSuffix == "" {
		return fmt.Errorf("scanner.quote_suffix is required")
	}
	if c.Scanner.MinQuoteVolume < 0 {
		return fmt.Errorf("scanner.min_quote_volume must not be negative")
	}
	if c.Scanner.WindowSize < 2 {
		return fmt.Errorf("scanner.window_size must be at least 2")
	}
	if c.Scanner.AlertThreshold <= 0 {
		return fmt.Errorf("scanner.alert_threshold must be positive")
	}
	if c.Scanner.Cooldown <= 0 {
		return fmt.Errorf("scanner.cooldown must be positive")
	}
	if c.Scanner.MaxParallel < 1 {
		return fmt.Errorf("scanner.max_parallel must be at least 1")
	}
	if c.Scanner.StoreCapacity < 1 {
		return fmt.Errorf("scanner.store_capacity must be at least 1")
	}

	// Validate News config
	if c.News.Enabled && c.News.FeedURL == "" {
		return fmt.Errorf("news.feed_url is required when news is enabled")
	}

	// Validate Telegram config; alerts have nowhere to go without credentials,
	// so this is checked before the scheduler ever starts.
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}

	// Validate API config
	if c.API.ListenAddr == "" {
		return fmt.Errorf("api.listen_addr is required")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
