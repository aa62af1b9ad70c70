// Package prober validates proxy candidates against a lightweight target
// within a time budget.
package prober

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/domain"
	"github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/transport"
)

const geoTimeout = 5 * time.Second

// Fallback geo-IP endpoints; the second is consulted only when the first
// fails to answer.
var geoEndpoints = []geoEndpoint{
	{format: "http://ip-api.com/json/%s?fields=status,countryCode", field: "countryCode"},
	{format: "https://ipwho.is/%s?fields=success,country_code", field: "country_code"},
}

type geoEndpoint struct {
	format string
	field  string
}

// Prober tests candidates in bounded-concurrency batches. A candidate that
// cannot connect, handshake or answer within the timeout is dropped for the
// cycle and never retried.
type Prober struct {
	adapter     *transport.Adapter
	target      string
	timeout     time.Duration
	concurrency int

	// expectedCountry is a policy knob, not a correctness requirement: when
	// set, candidates whose exit country visibly mismatches are dropped, but
	// a failed geo lookup never fails the probe.
	expectedCountry string
	geoClient       *http.Client
}

func New(adapter *transport.Adapter, target string, timeout time.Duration, concurrency int, expectedCountry string) *Prober {
	if concurrency <= 0 {
		concurrency = 50
	}
	return &Prober{
		adapter:         adapter,
		target:          target,
		timeout:         timeout,
		concurrency:     concurrency,
		expectedCountry: strings.ToUpper(expectedCountry),
		geoClient:       &http.Client{Timeout: geoTimeout},
	}
}

// Probe returns the healthy subset of candidates. Result order reflects
// completion order within the batch, not submission order.
func (p *Prober) Probe(ctx context.Context, candidates []*domain.Candidate, headers http.Header) []*domain.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	slog.Info("Probing proxy candidates", "count", len(candidates), "concurrency", p.concurrency)

	var wg sync.WaitGroup
	results := make(chan *domain.Candidate, len(candidates))
	semaphore := make(chan struct{}, p.concurrency)

	for _, c := range candidates {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(c *domain.Candidate) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := p.probeOne(ctx, c, headers); err != nil {
				slog.Debug("Probe failed", "candidate", c.Redacted(), "error", err)
				return
			}
			results <- c
		}(c)
	}

	wg.Wait()
	close(results)

	healthy := make([]*domain.Candidate, 0, len(candidates))
	for c := range results {
		healthy = append(healthy, c)
	}

	slog.Info("Probe batch finished", "healthy", len(healthy), "dropped", len(candidates)-len(healthy))
	return healthy
}

func (p *Prober) probeOne(ctx context.Context, c *domain.Candidate, headers http.Header) error {
	rt, err := p.adapter.Resolve(c)
	if err != nil {
		return err
	}

	client := &http.Client{Transport: rt, Timeout: p.timeout}
	defer client.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.target, nil)
	if err != nil {
		return err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	// Reading a small prefix is enough to prove the tunnel works.
	if _, err := io.CopyN(io.Discard, resp.Body, 128); err != nil && err != io.EOF {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return fmt.Errorf("probe target returned status %d", resp.StatusCode)
	}

	if p.expectedCountry != "" && !p.countryMatches(ctx, c) {
		return fmt.Errorf("exit country does not match %s", p.expectedCountry)
	}
	return nil
}

func (p *Prober) countryMatches(ctx context.Context, c *domain.Candidate) bool {
	host, _, err := net.SplitHostPort(c.Address)
	if err != nil {
		return true
	}

	for _, ep := range geoEndpoints {
		code, err := p.lookupCountry(ctx, ep, host)
		if err != nil {
			continue
		}
		return strings.EqualFold(code, p.expectedCountry)
	}
	// Both geo endpoints unreachable; keep the candidate.
	return true
}

func (p *Prober) lookupCountry(ctx context.Context, ep geoEndpoint, host string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(ep.format, host), nil)
	if err != nil {
		return "", err
	}

	resp, err := p.geoClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	code, ok := payload[ep.field].(string)
	if !ok || code == "" {
		return "", fmt.Errorf("geo endpoint answered without %s", ep.field)
	}
	return code, nil
}
