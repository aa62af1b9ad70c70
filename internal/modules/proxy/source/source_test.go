package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/domain"
	"github.com/reshetovitsme/truth-market-feed/internal/shared/config"
)

func listServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchParsesAndDedupes(t *testing.T) {
	srv := listServer(t, "1.2.3.4:1080\n1.2.3.4:1080\n5.6.7.8:1080\nnot a proxy line\n")

	s := New([]config.ProxySourceEndpoint{{URL: srv.URL, Scheme: "socks5"}}, false)
	got := s.Fetch(context.Background(), 0)

	if len(got) != 2 {
		t.Fatalf("expected 2 unique candidates, got %d", len(got))
	}
	for _, c := range got {
		if c.Scheme != domain.ProxySchemeSocks5 {
			t.Errorf("scheme = %q, want socks5", c.Scheme)
		}
	}
}

func TestFetchDropsPlainHTTPByDefault(t *testing.T) {
	srv := listServer(t, "1.2.3.4:8080\nuser:pass@5.6.7.8:8080\n")

	s := New([]config.ProxySourceEndpoint{{URL: srv.URL, Scheme: "http"}}, false)
	got := s.Fetch(context.Background(), 0)

	if len(got) != 1 {
		t.Fatalf("expected only the authenticated candidate, got %d", len(got))
	}
	if got[0].Username != "user" {
		t.Errorf("kept candidate = %+v, want the authenticated one", got[0])
	}

	permissive := New([]config.ProxySourceEndpoint{{URL: srv.URL, Scheme: "http"}}, true)
	if got := permissive.Fetch(context.Background(), 0); len(got) != 2 {
		t.Errorf("allowPlainHTTP should keep both candidates, got %d", len(got))
	}
}

func TestFetchTruncatesToMaxItems(t *testing.T) {
	srv := listServer(t, "1.1.1.1:1080\n2.2.2.2:1080\n3.3.3.3:1080\n4.4.4.4:1080\n")

	s := New([]config.ProxySourceEndpoint{{URL: srv.URL, Scheme: "socks5"}}, false)
	if got := s.Fetch(context.Background(), 2); len(got) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(got))
	}
}

func TestFetchSkipsFailingEndpoint(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(bad.Close)
	good := listServer(t, "1.2.3.4:1080\n")

	s := New([]config.ProxySourceEndpoint{
		{URL: bad.URL, Scheme: "socks5"},
		{URL: good.URL, Scheme: "socks5"},
	}, false)
	got := s.Fetch(context.Background(), 0)

	if len(got) != 1 {
		t.Fatalf("expected the good endpoint's candidate, got %d", len(got))
	}
	if got[0].Address != "1.2.3.4:1080" {
		t.Errorf("address = %q", got[0].Address)
	}
}

func TestFetchAllEndpointsFailingYieldsEmpty(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(bad.Close)

	s := New([]config.ProxySourceEndpoint{{URL: bad.URL, Scheme: "socks5"}}, false)
	if got := s.Fetch(context.Background(), 0); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
