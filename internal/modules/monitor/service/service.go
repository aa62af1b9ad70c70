// Package service drives the polling cadence: decide when a fetch/ingest
// cycle is due, run it, and advance the clock no matter how it went.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	alertdomain "github.com/reshetovitsme/truth-market-feed/internal/modules/alert/domain"
	"github.com/reshetovitsme/truth-market-feed/internal/shared/config"
)

// wakeup is how often the background loop re-evaluates ShouldFetch; the
// actual polling interval is runtime-adjustable and much larger.
const wakeup = time.Minute

// PostFetcher produces the latest raw posts, empty on total failure.
type PostFetcher interface {
	FetchRecent(ctx context.Context) []alertdomain.RawPost
}

// Ingestor persists raw posts and reports how many were new.
type Ingestor interface {
	Ingest(ctx context.Context, posts []alertdomain.RawPost) (int, error)
}

// Service is the polling scheduler.
type Service struct {
	cfg      *config.Config
	fetcher  PostFetcher
	ingestor Ingestor

	mu        sync.Mutex
	interval  time.Duration
	lastCheck time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg *config.Config, fetcher PostFetcher, ingestor Ingestor) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:      cfg,
		fetcher:  fetcher,
		ingestor: ingestor,
		interval: cfg.PollInterval(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ShouldFetch is the pure scheduling decision.
func ShouldFetch(now, lastCheck time.Time, interval time.Duration) bool {
	return now.Sub(lastCheck) >= interval
}

// Interval returns the current polling interval.
func (s *Service) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval adjusts the polling interval at runtime, clamped to the
// supported range.
func (s *Service) SetInterval(d time.Duration) {
	clamped := config.ClampInterval(d)
	s.mu.Lock()
	s.interval = clamped
	s.mu.Unlock()
	slog.Info("Polling interval updated", "interval", clamped)
}

// Tick runs a cycle when one is due. Returns the number of new alerts, zero
// when nothing was due or nothing was new.
func (s *Service) Tick(ctx context.Context) int {
	s.mu.Lock()
	due := ShouldFetch(time.Now(), s.lastCheck, s.interval)
	s.mu.Unlock()

	if !due {
		return 0
	}
	return s.RunCycle(ctx)
}

// RunCycle fetches and ingests once. lastCheck advances unconditionally,
// also on zero yield or ingestion failure, so a persistently failing
// upstream cannot cause a retry storm.
func (s *Service) RunCycle(ctx context.Context) int {
	defer func() {
		s.mu.Lock()
		s.lastCheck = time.Now()
		s.mu.Unlock()
	}()

	if !s.cfg.EnableRemoteFetch {
		slog.Debug("Remote fetch disabled, skipping cycle")
		return 0
	}

	posts := s.fetcher.FetchRecent(ctx)
	if len(posts) == 0 {
		slog.Info("Fetch cycle yielded no posts")
		return 0
	}

	count, err := s.ingestor.Ingest(ctx, posts)
	if err != nil {
		slog.Error("Ingestion failed", "error", err)
		return 0
	}

	slog.Info("Fetch cycle complete", "fetched", len(posts), "new_alerts", count)
	return count
}

// Start launches the background polling loop.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop()
}

func (s *Service) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(wakeup)
	defer ticker.Stop()

	// Initial check
	s.Tick(s.ctx)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Tick(s.ctx)
		}
	}
}

// Stop terminates the polling loop and waits for it to exit.
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}
