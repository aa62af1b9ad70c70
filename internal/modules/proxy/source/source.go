// Package source fetches proxy candidates from public plain-text lists.
package source

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/domain"
	"github.com/reshetovitsme/truth-market-feed/internal/shared/config"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36"

// ListSource reads one-proxy-per-line text endpoints. A failing endpoint is
// skipped; if every endpoint fails the result is simply empty and callers
// degrade to direct-only operation.
type ListSource struct {
	endpoints []config.ProxySourceEndpoint
	client    *http.Client

	// AllowPlainHTTP admits bare http candidates. Unauthenticated HTTP
	// proxies are lower-trust, so the default is to drop them.
	allowPlainHTTP bool
}

func New(endpoints []config.ProxySourceEndpoint, allowPlainHTTP bool) *ListSource {
	return &ListSource{
		endpoints: endpoints,
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
		allowPlainHTTP: allowPlainHTTP,
	}
}

// Fetch collects candidates from every endpoint, dedupes them by address and
// returns them in randomized order, truncated to maxItems (<=0 means all).
func (s *ListSource) Fetch(ctx context.Context, maxItems int) []*domain.Candidate {
	var all []*domain.Candidate
	for _, ep := range s.endpoints {
		candidates, err := s.fetchOne(ctx, ep)
		if err != nil {
			slog.Warn("Proxy list endpoint failed", "url", ep.URL, "error", err)
			continue
		}
		all = append(all, candidates...)
	}

	all = lo.UniqBy(all, func(c *domain.Candidate) string { return c.Address })
	all = lo.Shuffle(all)

	if maxItems > 0 && len(all) > maxItems {
		all = all[:maxItems]
	}
	slog.Debug("Proxy sources fetched", "candidates", len(all))
	return all
}

func (s *ListSource) fetchOne(ctx context.Context, ep config.ProxySourceEndpoint) ([]*domain.Candidate, error) {
	defaultScheme, err := domain.ParseProxyScheme(ep.Scheme)
	if err != nil {
		return nil, oops.With("scheme", ep.Scheme).Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		return nil, oops.With("url", ep.URL).Wrap(err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, oops.With("url", ep.URL).Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.Errorf("proxy list %s returned status %d", ep.URL, resp.StatusCode)
	}

	var candidates []*domain.Candidate
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		c, err := domain.ParseCandidate(scanner.Text(), defaultScheme)
		if err != nil {
			continue
		}
		if !s.allowPlainHTTP && c.Scheme == domain.ProxySchemeHttp && c.Username == "" {
			continue
		}
		candidates = append(candidates, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, oops.With("url", ep.URL).Wrap(err)
	}
	return candidates, nil
}
