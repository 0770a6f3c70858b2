package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tokoquant/idxradar/internal/api"
	"github.com/tokoquant/idxradar/internal/config"
	"github.com/tokoquant/idxradar/internal/indodax"
	"github.com/tokoquant/idxradar/internal/logger"
	"github.com/tokoquant/idxradar/internal/metrics"
	"github.com/tokoquant/idxradar/internal/news"
	"github.com/tokoquant/idxradar/internal/scanner"
	"github.com/tokoquant/idxradar/internal/store"
	"github.com/tokoquant/idxradar/internal/telegram"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Credentials usually live in .env during development.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	recorder := metrics.New()
	signals := store.New(cfg.Scanner.StoreCapacity)

	feed := indodax.NewClient(cfg.Exchange.BaseURL, indodax.ClientConfig{
		Timeout:           cfg.Exchange.Timeout,
		MaxRetries:        cfg.Exchange.MaxRetries,
		RetryDelay:        cfg.Exchange.RetryDelay,
		RequestsPerSecond: cfg.Exchange.RequestsPerSecond,
		UserAgent:         cfg.Exchange.UserAgent,
	})

	telegramClient, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, signals)
	if err != nil {
		logger.Fatal("Failed to initialize Telegram client: %v", err)
	}
	logger.Info("Telegram client initialized successfully")

	deps := scanner.Deps{
		Feed:     feed,
		Signals:  signals,
		Notifier: telegramClient,
		Metrics:  recorder,
	}
	if cfg.News.Enabled {
		deps.News = news.NewClient(cfg.News.FeedURL, cfg.News.Timeout)
		logger.Info("News feed enabled: %s", cfg.News.FeedURL)
	} else {
		logger.Debug("News feed disabled")
	}

	scan := scanner.New(scanner.Config{
		QuoteSuffix:    cfg.Scanner.QuoteSuffix,
		MinQuoteVolume: cfg.Scanner.MinQuoteVolume,
		WindowSize:     cfg.Scanner.WindowSize,
		AlertThreshold: cfg.Scanner.AlertThreshold,
		Cooldown:       cfg.Scanner.Cooldown,
		MaxParallel:    cfg.Scanner.MaxParallel,
	}, deps)

	apiServer := api.NewServer(cfg.API.ListenAddr, signals)
	apiServer.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	telegramClient.ListenForCommands(ctx)

	logger.Info("Starting scanner (interval: %v, quote: %s, min_volume: %.0f, threshold: %.1f, window: %d)",
		cfg.Scanner.PollInterval,
		cfg.Scanner.QuoteSuffix,
		cfg.Scanner.MinQuoteVolume,
		cfg.Scanner.AlertThreshold,
		cfg.Scanner.WindowSize,
	)

	ticker := time.NewTicker(cfg.Scanner.PollInterval)
	defer ticker.Stop()

	consecutiveFailures := 0

	handleCycleResult := func(err error) {
		if err != nil {
			consecutiveFailures++
			logger.Error("Scan cycle failed: %v", err)
			if consecutiveFailures == 1 {
				if sendErr := telegramClient.SendError(err); sendErr != nil {
					logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
				}
			}
			return
		}
		if consecutiveFailures > 0 {
			if sendErr := telegramClient.SendRecovery(consecutiveFailures); sendErr != nil {
				logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
			}
		}
		consecutiveFailures = 0
	}

	logger.Debug("Running initial scan cycle")
	handleCycleResult(scan.Cycle(ctx))

	// Cycles run inline on this goroutine, so a slow cycle delays the next
	// tick instead of overlapping it.
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := apiServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("API server shutdown failed: %v", err)
			}
			shutdownCancel()
			logger.Info("Service stopped")
			return

		case <-ticker.C:
			logger.Debug("Starting scheduled scan cycle")
			handleCycleResult(scan.Cycle(ctx))
		}
	}
}
