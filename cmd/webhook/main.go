package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"SignalSentry/internal/calendar"
	"SignalSentry/internal/config"
	"SignalSentry/internal/market"
	"SignalSentry/internal/metrics"
	"SignalSentry/internal/webhook"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SignalSentry webhook starting...")

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
	if err := cfg.ValidateWebhook(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	gateway := market.NewGateway(market.Config{
		TwelveDataKey: cfg.MarketData.TwelveDataKey,
		NewsAPIKey:    cfg.MarketData.NewsAPIKey,
		Metrics:       m,
	})

	var scheduler webhook.AppointmentScheduler
	if cfg.CalendarEnabled() {
		sched, err := calendar.NewScheduler(ctx, cfg.Calendar.CredentialsJSON, cfg.Calendar.TokenJSON)
		if err != nil {
			log.Fatalf("[FATAL] init calendar scheduler: %v", err)
		}
		scheduler = sched
		log.Println("[INFO] calendar scheduling enabled")
	} else {
		log.Println("[WARN] calendar credentials not set, /schedule-appointment disabled")
	}

	srv := webhook.NewServer(":"+cfg.Server.Port, gateway, scheduler, m)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("[INFO] shutdown signal received, stopping...")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("[FATAL] webhook: %v", err)
	}
	log.Println("[INFO] SignalSentry webhook stopped")
}
