package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	proxydomain "github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/domain"
)

func TestRaceFirstSuccessWins(t *testing.T) {
	winner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(postsJSON))
	}))
	t.Cleanup(winner.Close)

	loser := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(loser.Close)

	candidates := []*proxydomain.Candidate{
		proxyCandidate(loser),
		{Address: "127.0.0.1:1", Scheme: proxydomain.ProxySchemeHttp}, // nothing listening
		proxyCandidate(winner),
		proxyCandidate(loser),
	}

	posts, ok := newFetcher().Race(context.Background(), "http://upstream.invalid/posts", nil, candidates, 2*time.Second)
	if !ok {
		t.Fatal("expected the race to produce a winner")
	}
	if len(posts) != 1 || posts[0].ID != "1" {
		t.Fatalf("posts = %+v", posts)
	}
}

func TestRaceAllCandidatesFail(t *testing.T) {
	loser := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(loser.Close)

	candidates := []*proxydomain.Candidate{
		proxyCandidate(loser),
		{Scheme: proxydomain.ProxySchemeSocks5}, // unusable, rejected upfront
	}

	if _, ok := newFetcher().Race(context.Background(), "http://upstream.invalid/posts", nil, candidates, time.Second); ok {
		t.Fatal("expected no winner")
	}
}

func TestRaceNoCandidates(t *testing.T) {
	if _, ok := newFetcher().Race(context.Background(), "http://upstream.invalid/posts", nil, nil, time.Second); ok {
		t.Fatal("expected false for an empty candidate set")
	}
}

func TestRaceRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(postsJSON))
	}))
	t.Cleanup(slow.Close)

	start := time.Now()
	_, ok := newFetcher().Race(ctx, "http://upstream.invalid/posts", nil,
		[]*proxydomain.Candidate{proxyCandidate(slow)}, 2*time.Second)
	if ok {
		t.Fatal("cancelled race must not report a winner")
	}
	if time.Since(start) > time.Second {
		t.Error("cancelled race should return promptly")
	}
}
