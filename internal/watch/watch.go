// Package watch runs periodic signal sweeps over a configured symbol list
// and pushes BUY/SELL alerts to a Discord channel. Repeated identical
// signals are suppressed until the signal flips.
package watch

import (
	"context"
	"log"
	"sync"

	"SignalSentry/internal/model"
	"SignalSentry/internal/relay"
	"SignalSentry/internal/signal"

	"github.com/robfig/cron/v3"
)

// Broadcaster delivers chunked text to a channel.
type Broadcaster interface {
	Broadcast(channelID string, chunks []string)
}

// Scorer produces a signal assessment for one symbol.
type Scorer interface {
	Score(ctx context.Context, symbol, interval string) *model.SignalAssessment
}

// Watcher manages the cron sweep.
type Watcher struct {
	Cron        *cron.Cron
	Scorer      Scorer
	Broadcaster Broadcaster
	ChannelID   string
	Symbols     []string
	Interval    string
	Ctx         context.Context

	mu   sync.Mutex
	last map[string]model.Signal
}

// NewWatcher creates a new Watcher.
func NewWatcher(ctx context.Context, scorer Scorer, b Broadcaster, channelID string, symbols []string, interval string) *Watcher {
	if interval == "" {
		interval = "1h"
	}
	return &Watcher{
		Cron:        cron.New(cron.WithSeconds()),
		Scorer:      scorer,
		Broadcaster: b,
		ChannelID:   channelID,
		Symbols:     symbols,
		Interval:    interval,
		Ctx:         ctx,
		last:        make(map[string]model.Signal),
	}
}

// Register schedules the sweep on the given cron spec.
func (w *Watcher) Register(cronSpec string) error {
	_, err := w.Cron.AddFunc(cronSpec, w.sweep)
	return err
}

// Start starts the cron scheduler.
func (w *Watcher) Start() {
	w.Cron.Start()
	log.Println("[INFO] watcher started")
}

// Stop stops the cron scheduler gracefully.
func (w *Watcher) Stop() {
	w.Cron.Stop()
	log.Println("[INFO] watcher stopped")
}

// RunNow executes one sweep immediately (for manual trigger / RUN_ON_START).
func (w *Watcher) RunNow() {
	w.sweep()
}

func (w *Watcher) sweep() {
	log.Printf("[INFO] running signal sweep over %d symbols", len(w.Symbols))
	for _, symbol := range w.Symbols {
		a := w.Scorer.Score(w.Ctx, symbol, w.Interval)
		if a.Signal == model.SignalHold {
			w.remember(symbol, a.Signal)
			continue
		}
		if !w.remember(symbol, a.Signal) {
			log.Printf("[INFO] %s still %s, alert suppressed", symbol, a.Signal)
			continue
		}
		log.Printf("[INFO] %s flipped to %s (%d%% confidence)", symbol, a.Signal, a.Confidence)
		w.Broadcaster.Broadcast(w.ChannelID, relay.Split(signal.FormatReport(a), relay.MaxMessageLength))
	}
}

// remember stores the latest signal and reports whether it changed.
func (w *Watcher) remember(symbol string, s model.Signal) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := w.last[symbol] != s
	w.last[symbol] = s
	return changed
}
