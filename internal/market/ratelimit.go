package market

import (
	"sync"
	"time"
)

// Provider identifies an upstream data source for rate-gating purposes.
type Provider string

const (
	ProviderTwelveData Provider = "twelvedata"
	ProviderNewsAPI    Provider = "newsapi"
)

// rateGate enforces a minimum elapsed time between calls per provider.
// Callers that arrive early are rejected with the remaining wait rather
// than silently delayed.
type rateGate struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastCall    map[Provider]time.Time
	now         func() time.Time
}

func newRateGate(minInterval time.Duration) *rateGate {
	return &rateGate{
		minInterval: minInterval,
		lastCall:    make(map[Provider]time.Time),
		now:         time.Now,
	}
}

// allow reports whether a call to p may proceed now. When it may not, the
// returned duration is how long the caller has to wait.
func (g *rateGate) allow(p Provider) (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.lastCall[p]
	if !ok {
		return 0, true
	}
	elapsed := g.now().Sub(last)
	if elapsed < g.minInterval {
		return g.minInterval - elapsed, false
	}
	return 0, true
}

// record marks a call attempt to p. Called after every network attempt,
// successful or not, so a failing provider is not hammered.
func (g *rateGate) record(p Provider) {
	g.mu.Lock()
	g.lastCall[p] = g.now()
	g.mu.Unlock()
}
