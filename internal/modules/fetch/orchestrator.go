package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	alertdomain "github.com/reshetovitsme/truth-market-feed/internal/modules/alert/domain"
	proxydomain "github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/domain"
	"github.com/reshetovitsme/truth-market-feed/internal/shared/config"
)

const (
	shortTimeout = 8 * time.Second
	longTimeout  = 25 * time.Second

	// The server tends to answer a smaller page even under load.
	reducedLimit = 5

	// How many pool candidates to walk sequentially before racing the rest.
	sequentialProxies = 3
)

// JSONFetcher is the transport-facing surface the orchestrator drives.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, url string, headers http.Header, proxies []*proxydomain.Candidate, opts Options) ([]alertdomain.RawPost, error)
	Race(ctx context.Context, url string, headers http.Header, candidates []*proxydomain.Candidate, timeout time.Duration) ([]alertdomain.RawPost, bool)
}

// CandidatePool hands out TTL-fresh healthy proxy candidates.
type CandidatePool interface {
	RefreshIfStale(ctx context.Context, maxItems int, headers http.Header) []*proxydomain.Candidate
}

// Orchestrator escalates through fetch strategies until one yields posts:
// direct with the full limit, direct with a reduced limit, a few pool
// candidates in sequence, then the whole pool raced in parallel. Total
// failure is a zero yield, not an error.
type Orchestrator struct {
	cfg     *config.Config
	fetcher JSONFetcher
	pool    CandidatePool
}

func NewOrchestrator(cfg *config.Config, fetcher JSONFetcher, pool CandidatePool) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		fetcher: fetcher,
		pool:    pool,
	}
}

// FetchRecent returns the most recent posts for the configured account, or an
// empty slice when every strategy fails.
func (o *Orchestrator) FetchRecent(ctx context.Context) []alertdomain.RawPost {
	headers := CookieHeaders(o.cfg.TruthCookie, o.cfg.TruthUsername)
	limit := o.cfg.FetchLimit

	// Step 1: direct, full limit, short timeout, small retry budget.
	posts, err := o.fetcher.FetchJSON(ctx, StatusesURL(o.cfg.TruthAccountID, limit), headers, nil, Options{
		Timeout: shortTimeout,
		Retries: o.cfg.DirectRetries,
		Backoff: o.cfg.Backoff(),
	})
	if err == nil {
		return posts
	}
	slog.Warn("Direct fetch failed", "error", err)

	// Step 2: direct again with a reduced page and a longer timeout.
	fallback := min(reducedLimit, limit)
	posts, err = o.fetcher.FetchJSON(ctx, StatusesURL(o.cfg.TruthAccountID, fallback), headers, nil, Options{
		Timeout: longTimeout,
		Retries: o.cfg.DirectRetries,
		Backoff: o.cfg.Backoff() + time.Second,
	})
	if err == nil {
		return posts
	}
	slog.Warn("Reduced-limit fetch failed", "error", err)

	// Step 3: refresh the pool if stale and walk a few healthy candidates
	// sequentially, each with its own smaller retry budget.
	healthy := o.pool.RefreshIfStale(ctx, 0, headers)
	if len(healthy) == 0 {
		slog.Warn("No healthy proxies available, giving up this cycle")
		return []alertdomain.RawPost{}
	}

	sequential := healthy[:min(sequentialProxies, len(healthy))]
	posts, err = o.fetcher.FetchJSON(ctx, StatusesURL(o.cfg.TruthAccountID, fallback), headers, sequential, Options{
		Timeout:      shortTimeout,
		Retries:      1,
		ProxyRetries: o.cfg.ProxyRetries,
		Backoff:      o.cfg.Backoff(),
	})
	if err == nil {
		return posts
	}
	slog.Warn("Sequential proxied fetch failed", "error", err, "candidates", len(sequential))

	// Step 4: race the whole healthy set, first success wins.
	if posts, ok := o.fetcher.Race(ctx, StatusesURL(o.cfg.TruthAccountID, fallback), headers, healthy, longTimeout); ok {
		return posts
	}

	slog.Warn("All fetch strategies exhausted", "healthy_proxies", len(healthy))
	return []alertdomain.RawPost{}
}
