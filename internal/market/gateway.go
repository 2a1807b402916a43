package market

import (
	"context"
	"log"
	"net/http"
	"time"

	"SignalSentry/internal/metrics"
	"SignalSentry/internal/model"
)

// DataType selects what the gateway fetches.
type DataType string

const (
	DataLive       DataType = "live"
	DataHistorical DataType = "historical"
	DataIndicator  DataType = "indicator"
	DataNews       DataType = "news"
)

// Request carries every meaningful parameter of a gateway call. The struct
// is comparable and doubles as the cache key.
type Request struct {
	DataType            DataType
	Symbol              string
	Interval            string
	OutputSize          string
	Indicator           model.IndicatorKind
	IndicatorPeriod     string
	IndicatorMultiplier string
	NewsQuery           string
	FromDate            string
	SortBy              string
	NewsLanguage        string
}

func (r Request) provider() Provider {
	if r.DataType == DataNews {
		return ProviderNewsAPI
	}
	return ProviderTwelveData
}

func (r Request) validate() error {
	switch r.DataType {
	case DataLive:
		if r.Symbol == "" {
			return &ValidationError{Msg: "missing 'symbol' parameter for live price"}
		}
	case DataHistorical:
		if r.Symbol == "" {
			return &ValidationError{Msg: "missing 'symbol' parameter for historical data"}
		}
	case DataIndicator:
		if r.Symbol == "" {
			return &ValidationError{Msg: "missing 'symbol' parameter for indicator data"}
		}
		if r.Indicator == "" {
			return &ValidationError{Msg: "'indicator' parameter is required when data_type is 'indicator'"}
		}
	case DataNews:
		if r.NewsQuery == "" {
			return &ValidationError{Msg: "missing 'news_query' parameter for news"}
		}
	default:
		return &ValidationError{Msg: "invalid 'data_type': choose 'live', 'historical', 'indicator', or 'news'"}
	}
	return nil
}

// Payload is the normalized result of a gateway fetch. Exactly one of the
// entity fields is populated per data type; Text is always set and is what
// chat-facing callers relay.
type Payload struct {
	Quote    *model.Quote
	Candles  []model.Candle
	Reading  *model.IndicatorReading
	Articles []model.NewsArticle
	Text     string
}

// Config holds everything the gateway needs; all state lives on the Gateway
// instance rather than in package globals.
type Config struct {
	TwelveDataKey string
	NewsAPIKey    string
	MinInterval   time.Duration // per-provider rate gate, default 1s
	CacheTTL      time.Duration // default 10s
	HTTPClient    *http.Client
	Metrics       *metrics.Metrics
}

// Gateway builds outbound requests to Twelve Data and NewsAPI, enforcing the
// rate gate, response cache, and retry policy in front of them.
type Gateway struct {
	twelveDataKey string
	newsAPIKey    string
	client        *http.Client
	gate          *rateGate
	cache         *responseCache
	metrics       *metrics.Metrics
	retryDelay    time.Duration

	// Overridable in tests.
	twelveDataBase string
	newsAPIBase    string
	now            func() time.Time
}

// NewGateway creates a gateway with the documented defaults: 1s minimum
// inter-call interval per provider and a 10s response cache TTL.
func NewGateway(cfg Config) *Gateway {
	if cfg.MinInterval == 0 {
		cfg.MinInterval = 1 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Gateway{
		twelveDataKey:  cfg.TwelveDataKey,
		newsAPIKey:     cfg.NewsAPIKey,
		client:         cfg.HTTPClient,
		gate:           newRateGate(cfg.MinInterval),
		cache:          newResponseCache(cfg.CacheTTL),
		metrics:        cfg.Metrics,
		retryDelay:     initialRetryDelay,
		twelveDataBase: "https://api.twelvedata.com",
		newsAPIBase:    "https://newsapi.org",
		now:            time.Now,
	}
}

// Fetch resolves a request against the cache, the rate gate, and finally the
// provider. Live-price requests bypass the cache read so quotes stay fresh.
func (g *Gateway) Fetch(ctx context.Context, req Request) (*Payload, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if req.DataType != DataLive {
		if p, ok := g.cache.get(req); ok {
			log.Printf("[INFO] serving cached response for %s request", req.DataType)
			if g.metrics != nil {
				g.metrics.CacheHits.Inc()
			}
			return p, nil
		}
	}

	provider := req.provider()
	if wait, ok := g.gate.allow(provider); !ok {
		if g.metrics != nil {
			g.metrics.RateLimited.Inc()
		}
		return nil, &RateLimitedError{Provider: provider, Wait: wait}
	}

	var (
		payload *Payload
		err     error
	)
	switch req.DataType {
	case DataLive:
		payload, err = g.fetchQuote(ctx, req)
	case DataHistorical:
		payload, err = g.fetchSeries(ctx, req)
	case DataIndicator:
		payload, err = g.fetchIndicator(ctx, req)
	case DataNews:
		payload, err = g.fetchNews(ctx, req)
	}
	g.gate.record(provider)
	if err != nil {
		return nil, err
	}

	g.cache.put(req, payload)
	return payload, nil
}
