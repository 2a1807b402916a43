// Package webhook exposes the market gateway and the appointment scheduler
// over HTTP, mirroring the chat relay's tool surface for non-chat callers.
package webhook

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"SignalSentry/internal/calendar"
	"SignalSentry/internal/metrics"
	"SignalSentry/internal/signal"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AppointmentScheduler inserts one calendar event and returns its link.
type AppointmentScheduler interface {
	Schedule(ctx context.Context, appt calendar.Appointment) (string, error)
}

// Server hosts the HTTP API.
type Server struct {
	fetcher   signal.Fetcher
	scheduler AppointmentScheduler // nil disables /schedule-appointment
	metrics   *metrics.Metrics
	http      *http.Server
}

// NewServer wires up routes and returns a Server listening on addr when Run
// is called.
func NewServer(addr string, fetcher signal.Fetcher, scheduler AppointmentScheduler, m *metrics.Metrics) *Server {
	s := &Server{
		fetcher:   fetcher,
		scheduler: scheduler,
		metrics:   m,
	}

	r := mux.NewRouter()
	r.HandleFunc("/market_data", s.handleMarketData).Methods(http.MethodGet)
	// Legacy aliases kept for callers configured against older deployments.
	for _, alias := range []string{"/crypto_price", "/bitcoin_price", "/price_data"} {
		r.HandleFunc(alias, s.handleMarketData).Methods(http.MethodGet)
	}
	r.HandleFunc("/schedule-appointment", s.handleScheduleAppointment).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] webhook listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Println("[INFO] webhook shutting down")
	return s.http.Shutdown(shutdownCtx)
}
