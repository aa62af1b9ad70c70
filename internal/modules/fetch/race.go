package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	alertdomain "github.com/reshetovitsme/truth-market-feed/internal/modules/alert/domain"
	proxydomain "github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/domain"
	sharederrors "github.com/reshetovitsme/truth-market-feed/internal/shared/errors"
)

// Race issues the identical GET concurrently through every candidate and
// keeps the first JSON-list success. Losing attempts are cancelled so their
// sockets can be released; their results are discarded either way. Returns
// false when no candidate succeeds.
func (f *Fetcher) Race(ctx context.Context, url string, headers http.Header, candidates []*proxydomain.Candidate, timeout time.Duration) ([]alertdomain.RawPost, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan []alertdomain.RawPost, len(candidates))
	var wg sync.WaitGroup

	for _, c := range candidates {
		wg.Add(1)
		go func(c *proxydomain.Candidate) {
			defer wg.Done()

			rt, err := f.adapter.Resolve(c)
			if err != nil {
				if !errors.Is(err, sharederrors.ErrProxyUnusable) {
					slog.Debug("Race candidate rejected", "candidate", label(c), "error", err)
				}
				return
			}

			client := &http.Client{Transport: rt, Timeout: timeout}
			defer client.CloseIdleConnections()

			posts, err := f.getOnce(raceCtx, client, url, headers)
			if err != nil {
				slog.Debug("Race attempt failed", "candidate", label(c), "error", err)
				return
			}
			results <- posts
		}(c)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case posts := <-results:
		// First success wins; cancel the rest.
		cancel()
		return posts, true
	case <-done:
		// Every attempt finished without a winner, but a success may have
		// landed between the last send and the close.
		select {
		case posts := <-results:
			return posts, true
		default:
			return nil, false
		}
	case <-ctx.Done():
		return nil, false
	}
}
