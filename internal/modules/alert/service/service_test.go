package service

import (
	"context"
	"testing"
	"time"

	"github.com/reshetovitsme/truth-market-feed/internal/modules/alert/domain"
)

type memoryRepo struct {
	alerts []*domain.Alert
	ledger map[string]struct{}

	saveAlertCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{ledger: make(map[string]struct{})}
}

func (m *memoryRepo) LoadAlerts() ([]*domain.Alert, error) { return m.alerts, nil }

func (m *memoryRepo) LoadProcessedIDs() (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(m.ledger))
	for k := range m.ledger {
		out[k] = struct{}{}
	}
	return out, nil
}

func (m *memoryRepo) ReplaceAll(alerts []*domain.Alert, ids map[string]struct{}) error {
	m.saveAlertCalls++
	m.alerts = alerts
	m.ledger = ids
	return nil
}

func fixedService(repo *memoryRepo, at time.Time) *Service {
	s := New(repo, nil)
	s.now = func() time.Time { return at }
	return s
}

func TestIngestColdStartAdmitsAll(t *testing.T) {
	repo := newMemoryRepo()
	s := fixedService(repo, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	count, err := s.Ingest(context.Background(), []domain.RawPost{
		{ID: "a", CreatedAt: "2024-01-01T10:00:00Z", Content: "<p>first</p>"},
		{CreatedAt: "2024-01-01T11:00:00Z", Content: "<p>no id</p>"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2 (cold start admits id-less posts)", count)
	}
	if len(repo.alerts) != 2 {
		t.Fatalf("stored %d alerts", len(repo.alerts))
	}
	for _, a := range repo.alerts {
		if a.ID == "" {
			t.Error("every stored alert must carry an id")
		}
		if a.Source != domain.AlertSourceReal {
			t.Errorf("source = %q", a.Source)
		}
	}
}

func TestIngestColdStartDedupesWithinBatch(t *testing.T) {
	repo := newMemoryRepo()
	s := fixedService(repo, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	count, err := s.Ingest(context.Background(), []domain.RawPost{
		{ID: "a", CreatedAt: "2024-01-01T10:00:00Z", Content: "<p>first</p>"},
		{ID: "a", CreatedAt: "2024-01-01T11:00:00Z", Content: "<p>same id again</p>"},
		{ID: "b", CreatedAt: "2024-01-01T12:00:00Z", Content: "<p>second</p>"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2 (the repeated id admits once)", count)
	}

	seen := make(map[string]int)
	for _, a := range repo.alerts {
		seen[a.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %q stored %d times, ids must be unique", id, n)
		}
	}
}

func TestIngestSkipsContentlessPosts(t *testing.T) {
	repo := newMemoryRepo()
	s := fixedService(repo, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	count, err := s.Ingest(context.Background(), []domain.RawPost{
		{ID: "empty", CreatedAt: "2024-01-01T10:00:00Z", Content: "<p></p>"},
		{ID: "real", CreatedAt: "2024-01-01T11:00:00Z", Content: "<p>something</p>"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1 (no text and no media has nothing to alert on)", count)
	}
	for _, a := range repo.alerts {
		if a.Content == "" {
			t.Errorf("stored alert %q with empty content", a.ID)
		}
	}
}

func TestIngestSkipsSeenAndIDLessPosts(t *testing.T) {
	repo := newMemoryRepo()
	s := fixedService(repo, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	if _, err := s.Ingest(context.Background(), []domain.RawPost{
		{ID: "a", CreatedAt: "2024-01-01T10:00:00Z", Content: "<p>first</p>"},
	}); err != nil {
		t.Fatal(err)
	}

	count, err := s.Ingest(context.Background(), []domain.RawPost{
		{ID: "a", CreatedAt: "2024-01-01T10:00:00Z", Content: "<p>first again</p>"},
		{CreatedAt: "2024-01-01T11:00:00Z", Content: "<p>no id</p>"},
		{ID: "b", CreatedAt: "2024-01-01T12:00:00Z", Content: "<p>second</p>"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want only the unseen id", count)
	}
	if len(repo.alerts) != 2 {
		t.Fatalf("stored %d alerts", len(repo.alerts))
	}
}

func TestIngestIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	s := fixedService(repo, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	posts := []domain.RawPost{
		{ID: "a", CreatedAt: "2024-01-01T10:00:00Z", Content: "<p>one</p>"},
		{ID: "b", CreatedAt: "2024-01-01T11:00:00Z", Content: "<p>two</p>"},
	}

	if _, err := s.Ingest(context.Background(), posts); err != nil {
		t.Fatal(err)
	}
	saves := repo.saveAlertCalls

	count, err := s.Ingest(context.Background(), posts)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("replayed batch ingested %d alerts", count)
	}
	if repo.saveAlertCalls != saves {
		t.Error("an all-duplicate batch must not rewrite the store")
	}
}

func TestIngestKeepsNewestFirst(t *testing.T) {
	repo := newMemoryRepo()
	s := fixedService(repo, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))

	if _, err := s.Ingest(context.Background(), []domain.RawPost{
		{ID: "old", CreatedAt: "2024-01-01T10:00:00Z", Content: "<p>old</p>"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Ingest(context.Background(), []domain.RawPost{
		{ID: "mid", CreatedAt: "2024-01-02T10:00:00Z", Content: "<p>mid</p>"},
		{ID: "new", CreatedAt: "2024-01-02T12:00:00Z", Content: "<p>new</p>"},
	}); err != nil {
		t.Fatal(err)
	}

	want := []string{"new", "mid", "old"}
	if len(repo.alerts) != len(want) {
		t.Fatalf("stored %d alerts", len(repo.alerts))
	}
	for i, id := range want {
		if repo.alerts[i].ID != id {
			t.Errorf("alerts[%d] = %q, want %q", i, repo.alerts[i].ID, id)
		}
	}
}

func TestIngestDerivesContentAndKeywords(t *testing.T) {
	repo := newMemoryRepo()
	s := fixedService(repo, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	if _, err := s.Ingest(context.Background(), []domain.RawPost{{
		ID:        "a",
		CreatedAt: "2024-01-01T10:00:00Z",
		Content:   "<p>Markets surge after tariff announcement</p>",
	}}); err != nil {
		t.Fatal(err)
	}

	a := repo.alerts[0]
	if a.Content != "Markets surge after tariff announcement" {
		t.Errorf("content = %q", a.Content)
	}
	if a.Keywords == "" {
		t.Error("keywords should be derived from the content")
	}
	if a.AIAnalysis == nil {
		t.Error("the disabled analyzer still emits a payload")
	}
	if a.CreatedAt != "2024-01-01T10:00:00Z" {
		t.Errorf("created_at = %q", a.CreatedAt)
	}
}

func TestIngestMediaOnlyPost(t *testing.T) {
	repo := newMemoryRepo()
	s := fixedService(repo, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	if _, err := s.Ingest(context.Background(), []domain.RawPost{{
		ID:        "a",
		CreatedAt: "2024-01-01T10:00:00Z",
		Content:   "",
		MediaAttachments: []domain.RawAttachment{
			{Type: "image", URL: "https://cdn.example/1.jpg"},
			{Type: "image", URL: "https://cdn.example/2.jpg"},
		},
	}}); err != nil {
		t.Fatal(err)
	}

	a := repo.alerts[0]
	if a.Content != "[图片] 2 张" {
		t.Errorf("content = %q", a.Content)
	}
	if len(a.Media) != 2 {
		t.Errorf("media = %+v", a.Media)
	}
}

func TestIngestNormalizesBadTimestamp(t *testing.T) {
	repo := newMemoryRepo()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := fixedService(repo, now)

	if _, err := s.Ingest(context.Background(), []domain.RawPost{{
		ID:        "a",
		CreatedAt: "yesterday-ish",
		Content:   "<p>hello</p>",
	}}); err != nil {
		t.Fatal(err)
	}

	if got := repo.alerts[0].CreatedAt; got != "2024-01-02T03:04:05Z" {
		t.Errorf("created_at = %q, want the injected clock", got)
	}
}

func TestPurgeSimulated(t *testing.T) {
	repo := newMemoryRepo()
	repo.alerts = []*domain.Alert{
		{ID: "real1", Source: domain.AlertSourceReal},
		{ID: "sim1", Source: domain.AlertSourceSimulated},
		{ID: "real2", Source: domain.AlertSourceReal},
		{ID: "sim2", Source: domain.AlertSourceSimulated},
	}
	repo.ledger = map[string]struct{}{
		"real1": {}, "sim1": {}, "real2": {}, "sim2": {},
	}

	s := New(repo, nil)
	removed, err := s.PurgeSimulated()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if len(repo.alerts) != 2 {
		t.Errorf("kept %d alerts, want 2", len(repo.alerts))
	}
	if _, ok := repo.ledger["sim1"]; ok {
		t.Error("purged ids must leave the ledger")
	}
	if _, ok := repo.ledger["real1"]; !ok {
		t.Error("real ids must stay in the ledger")
	}

	// A second purge is a no-op that does not rewrite the store.
	saves := repo.saveAlertCalls
	if removed, _ := s.PurgeSimulated(); removed != 0 {
		t.Errorf("second purge removed %d", removed)
	}
	if repo.saveAlertCalls != saves {
		t.Error("a purge with nothing to remove must not rewrite the store")
	}
}

func TestAlertsLimit(t *testing.T) {
	repo := newMemoryRepo()
	repo.alerts = []*domain.Alert{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	s := New(repo, nil)

	got, err := s.Alerts(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("limit 2 returned %d", len(got))
	}

	all, _ := s.Alerts(0)
	if len(all) != 3 {
		t.Errorf("limit 0 returned %d", len(all))
	}
}
