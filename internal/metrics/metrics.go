// Package metrics registers Prometheus instrumentation for the webhook
// service and the market-data gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal  *prometheus.CounterVec // labels: endpoint, outcome
	CacheHits      prometheus.Counter
	RateLimited    prometheus.Counter
	UpstreamErrors prometheus.Counter
}

// New registers and returns all metrics.
func New() *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalsentry_requests_total",
			Help: "Webhook requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalsentry_cache_hits_total",
			Help: "Gateway responses served from the in-memory cache",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalsentry_rate_limited_total",
			Help: "Requests rejected by the per-provider rate gate",
		}),
		UpstreamErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalsentry_upstream_errors_total",
			Help: "Provider-reported semantic errors",
		}),
	}

	prometheus.MustRegister(
		m.RequestsTotal,
		m.CacheHits,
		m.RateLimited,
		m.UpstreamErrors,
	)
	return m
}
