// Package service ingests raw upstream posts into the durable alert store:
// dedup against the processed-id ledger, content derivation, ordering and
// atomic persistence.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/reshetovitsme/truth-market-feed/internal/modules/alert/domain"
	"github.com/reshetovitsme/truth-market-feed/internal/modules/alert/repository"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Service is the alert ingestion store.
type Service struct {
	repo     repository.Repository
	analyzer Analyzer
	now      func() time.Time
}

func New(repo repository.Repository, analyzer Analyzer) *Service {
	if analyzer == nil {
		analyzer = DisabledAnalyzer{}
	}
	return &Service{
		repo:     repo,
		analyzer: analyzer,
		now:      time.Now,
	}
}

// Ingest deduplicates, orders and persists a batch of raw posts, returning
// how many alerts were newly appended. Records are immutable: a post id
// either transitions unseen -> ingested here, or is skipped.
func (s *Service) Ingest(ctx context.Context, posts []domain.RawPost) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	alerts, err := s.repo.LoadAlerts()
	if err != nil {
		return 0, oops.With("context", "loading alert store").Wrap(err)
	}
	ledger, err := s.repo.LoadProcessedIDs()
	if err != nil {
		return 0, oops.With("context", "loading processed-id ledger").Wrap(err)
	}

	// Newest first, so prepended batches keep their relative order.
	sorted := make([]domain.RawPost, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, _ := ParseTimestamp(sorted[i].CreatedAt)
		tj, _ := ParseTimestamp(sorted[j].CreatedAt)
		return ti.After(tj)
	})

	coldStart := len(alerts) == 0
	now := s.now()

	var batch []*domain.Alert
	for i := range sorted {
		post := &sorted[i]
		id := strings.TrimSpace(post.ID)

		if id == "" {
			if !coldStart {
				continue
			}
			// Cold start tolerates id-less posts with a synthesized id.
			id = fmt.Sprintf("api_%d_%d", now.Unix(), i)
		}
		// Ledger dedup applies on cold start too: a first batch can repeat
		// an id within itself.
		if _, seen := ledger[id]; seen {
			continue
		}

		media := NormalizeMedia(post.MediaAttachments)
		content := DeriveContent(post, media)
		if content == "" {
			// No text and no media, nothing to alert on.
			continue
		}

		analysis, err := s.analyzer.Analyze(ctx, content, media)
		if err != nil {
			slog.Warn("AI analysis failed, storing alert without it", "post_id", id, "error", err)
			analysis = nil
		}

		batch = append(batch, &domain.Alert{
			ID:         id,
			CreatedAt:  NormalizeTimestamp(post.CreatedAt, now),
			Content:    content,
			URL:        postURL(post),
			Media:      media,
			Keywords:   ExtractKeywords(content),
			AIAnalysis: analysis,
			DetectedAt: now.UTC().Format(time.RFC3339),
			Source:     domain.AlertSourceReal,
		})
		ledger[id] = struct{}{}
	}

	if len(batch) == 0 {
		return 0, nil
	}

	merged := append(batch, alerts...)
	sortNewestFirst(merged)

	if err := s.repo.ReplaceAll(merged, ledger); err != nil {
		return 0, oops.With("context", "persisting alert store").Wrap(err)
	}

	slog.Info("Ingested new alerts", "count", len(batch), "store_size", len(merged))
	return len(batch), nil
}

// PurgeSimulated removes every simulated record and its ledger entry in one
// rewrite, returning the number removed.
func (s *Service) PurgeSimulated() (int, error) {
	alerts, err := s.repo.LoadAlerts()
	if err != nil {
		return 0, oops.With("context", "loading alert store").Wrap(err)
	}

	kept := lo.Filter(alerts, func(a *domain.Alert, _ int) bool {
		return a.Source != domain.AlertSourceSimulated
	})
	removed := len(alerts) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	ledger, err := s.repo.LoadProcessedIDs()
	if err != nil {
		return 0, oops.With("context", "loading processed-id ledger").Wrap(err)
	}
	for _, a := range alerts {
		if a.Source == domain.AlertSourceSimulated {
			delete(ledger, a.ID)
		}
	}

	if err := s.repo.ReplaceAll(kept, ledger); err != nil {
		return 0, oops.With("context", "persisting alert store").Wrap(err)
	}

	slog.Info("Purged simulated alerts", "removed", removed)
	return removed, nil
}

// Alerts returns the stored alerts, newest first. A limit <= 0 returns all.
func (s *Service) Alerts(limit int) ([]*domain.Alert, error) {
	alerts, err := s.repo.LoadAlerts()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

func postURL(post *domain.RawPost) string {
	if post.URL != "" {
		return post.URL
	}
	return "https://truthsocial.com/@realDonaldTrump"
}

// sortNewestFirst orders by created timestamp, falling back to detection
// time, non-increasing.
func sortNewestFirst(alerts []*domain.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return bestEffortTime(alerts[i]).After(bestEffortTime(alerts[j]))
	})
}

func bestEffortTime(a *domain.Alert) time.Time {
	if t, ok := ParseTimestamp(a.CreatedAt); ok {
		return t
	}
	t, _ := ParseTimestamp(a.DetectedAt)
	return t
}
