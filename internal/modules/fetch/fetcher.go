// Package fetch retrieves upstream posts through unreliable transports:
// per-candidate retry with backoff, concurrent racing across a proxy pool
// and an escalating orchestration strategy on top.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	alertdomain "github.com/reshetovitsme/truth-market-feed/internal/modules/alert/domain"
	proxydomain "github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/domain"
	"github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/transport"
	sharederrors "github.com/reshetovitsme/truth-market-feed/internal/shared/errors"
	"github.com/samber/oops"
)

// Options is one fetch attempt's budget.
type Options struct {
	Timeout      time.Duration
	Retries      int // attempt budget for the direct candidate
	ProxyRetries int // smaller budget for each proxied candidate
	Backoff      time.Duration
}

// Fetcher performs GET-and-decode-JSON through a sequence of candidates,
// direct first.
type Fetcher struct {
	adapter *transport.Adapter
}

func NewFetcher(adapter *transport.Adapter) *Fetcher {
	return &Fetcher{adapter: adapter}
}

// FetchJSON tries the direct route and then each proxy in order. Every
// candidate gets its own attempt budget with backoff*attempt sleeps between
// attempts on the same candidate. An unusable candidate is skipped without
// charging any budget. Terminal failure wraps the last concrete error.
func (f *Fetcher) FetchJSON(ctx context.Context, url string, headers http.Header, proxies []*proxydomain.Candidate, opts Options) ([]alertdomain.RawPost, error) {
	candidates := make([]*proxydomain.Candidate, 0, len(proxies)+1)
	candidates = append(candidates, nil) // direct first
	candidates = append(candidates, proxies...)

	var lastErr error
	for _, c := range candidates {
		rt, err := f.adapter.Resolve(c)
		if err != nil {
			if errors.Is(err, sharederrors.ErrProxyUnusable) {
				slog.Debug("Skipping unusable candidate", "candidate", label(c))
				continue
			}
			lastErr = err
			continue
		}

		attempts := opts.Retries
		if c != nil {
			attempts = opts.ProxyRetries
		}
		if attempts <= 0 {
			attempts = 1
		}

		client := &http.Client{Transport: rt, Timeout: opts.Timeout}
		for attempt := 1; attempt <= attempts; attempt++ {
			posts, err := f.getOnce(ctx, client, url, headers)
			if err == nil {
				client.CloseIdleConnections()
				return posts, nil
			}
			lastErr = err
			slog.Debug("Fetch attempt failed",
				"candidate", label(c), "attempt", attempt, "attempts", attempts, "error", err)

			if attempt < attempts && opts.Backoff > 0 {
				if !sleep(ctx, opts.Backoff*time.Duration(attempt)) {
					client.CloseIdleConnections()
					return nil, ctx.Err()
				}
			}
		}
		client.CloseIdleConnections()
	}

	if lastErr == nil {
		lastErr = sharederrors.ErrSourceUnavailable
		return nil, lastErr
	}
	return nil, errors.Join(sharederrors.ErrSourceUnavailable, lastErr)
}

func (f *Fetcher) getOnce(ctx context.Context, client *http.Client, url string, headers http.Header) ([]alertdomain.RawPost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, oops.With("url", url).Wrap(err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.Errorf("upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var posts []alertdomain.RawPost
	if err := json.Unmarshal(body, &posts); err != nil {
		// Counted as a failed attempt against this candidate's budget.
		return nil, oops.With("context", "decoding upstream body").Wrap(err)
	}
	return posts, nil
}

func label(c *proxydomain.Candidate) string {
	if c == nil {
		return "direct"
	}
	return c.Redacted()
}

// sleep waits for d or until the context is done; false means cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
