package main

import (
	"context"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"SignalSentry/internal/bot"
	"SignalSentry/internal/config"
	"SignalSentry/internal/llm"
	"SignalSentry/internal/market"
	"SignalSentry/internal/metrics"
	"SignalSentry/internal/relay"
	"SignalSentry/internal/signal"
	"SignalSentry/internal/watch"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SignalSentry bot starting...")

	// .env is optional; real deployments set variables directly.
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded environment from .env")
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	m := metrics.New()

	gateway := market.NewGateway(market.Config{
		TwelveDataKey: cfg.MarketData.TwelveDataKey,
		NewsAPIKey:    cfg.MarketData.NewsAPIKey,
		Metrics:       m,
	})

	modelClient := llm.NewClient(cfg.Gemini.APIKey)
	if cfg.Gemini.Model != "" {
		modelClient.Model = cfg.Gemini.Model
	}
	scorer := signal.NewScorer(gateway)
	r := relay.New(modelClient, gateway, scorer)

	b, err := bot.New(cfg.Discord.BotToken, r, cfg.Discord.AuthorizedUserIDs)
	if err != nil {
		log.Fatalf("[FATAL] init discord bot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Periodic signal sweep, only when an alert channel is configured.
	if cfg.Discord.AlertChannelID != "" && len(cfg.Watch.Symbols) > 0 {
		w := watch.NewWatcher(ctx, scorer, b, cfg.Discord.AlertChannelID, cfg.Watch.Symbols, cfg.Watch.Interval)
		if err := w.Register(cfg.Watch.Cron); err != nil {
			log.Fatalf("[FATAL] register watch cron: %v", err)
		}
		w.Start()
		defer w.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			log.Println("[INFO] RUN_ON_START enabled, executing sweep now")
			go w.RunNow()
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(ctx) }()

	log.Println("[INFO] SignalSentry is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
		cancel()
		select {
		case <-errCh:
		case <-time.After(10 * time.Second):
			log.Println("[WARN] discord session did not close in time")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("[FATAL] discord bot: %v", err)
		}
	}
	log.Println("[INFO] SignalSentry stopped")
}
