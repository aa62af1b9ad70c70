// Package pool keeps the currently-healthy proxy candidates behind a TTL.
package pool

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/domain"
)

// Source yields fresh proxy candidates.
type Source interface {
	Fetch(ctx context.Context, maxItems int) []*domain.Candidate
}

// Prober filters candidates down to the healthy subset.
type Prober interface {
	Probe(ctx context.Context, candidates []*domain.Candidate, headers http.Header) []*domain.Candidate
}

// Pool caches probed-healthy candidates until the TTL elapses. It is owned by
// the orchestrator and refreshed by explicit call only; refreshes are not
// reentrant and are serialized by the single coordinating flow.
type Pool struct {
	source Source
	prober Prober
	ttl    time.Duration

	mu          sync.RWMutex
	healthy     []*domain.Candidate
	lastRefresh time.Time
}

func New(src Source, prb Prober, ttl time.Duration) *Pool {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Pool{
		source: src,
		prober: prb,
		ttl:    ttl,
	}
}

// Stale reports whether the cached set has outlived its TTL.
func (p *Pool) Stale(now time.Time) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return now.Sub(p.lastRefresh) >= p.ttl
}

// Healthy returns a snapshot of the cached candidates.
func (p *Pool) Healthy() []*domain.Candidate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*domain.Candidate, len(p.healthy))
	copy(out, p.healthy)
	return out
}

// Refresh fetches fresh candidates, probes them with the supplied headers and
// replaces the cached set. An all-failing refresh leaves an empty pool rather
// than an error; callers degrade to direct-only operation.
func (p *Pool) Refresh(ctx context.Context, maxItems int, headers http.Header) []*domain.Candidate {
	candidates := p.source.Fetch(ctx, maxItems)
	healthy := p.prober.Probe(ctx, candidates, headers)

	p.mu.Lock()
	p.healthy = healthy
	p.lastRefresh = time.Now()
	p.mu.Unlock()

	slog.Info("Proxy pool refreshed", "fetched", len(candidates), "healthy", len(healthy))
	return p.Healthy()
}

// RefreshIfStale refreshes only when the TTL has elapsed, otherwise returns
// the cached snapshot.
func (p *Pool) RefreshIfStale(ctx context.Context, maxItems int, headers http.Header) []*domain.Candidate {
	if !p.Stale(time.Now()) {
		return p.Healthy()
	}
	return p.Refresh(ctx, maxItems, headers)
}
