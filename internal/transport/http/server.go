// Package http exposes the dashboard-facing contract: read the alert store,
// trigger a fetch cycle, purge simulated records.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	alertservice "github.com/reshetovitsme/truth-market-feed/internal/modules/alert/service"
	feedService "github.com/reshetovitsme/truth-market-feed/internal/modules/feed/service"
	monitorService "github.com/reshetovitsme/truth-market-feed/internal/modules/monitor/service"
	"github.com/reshetovitsme/truth-market-feed/internal/shared/config"
	sharederrors "github.com/reshetovitsme/truth-market-feed/internal/shared/errors"
	sloghttp "github.com/samber/slog-http"
)

// Server handles HTTP requests from the dashboard collaborator
type Server struct {
	cfg         *config.Config
	alerts      *alertservice.Service
	feedService *feedService.Service
	monitor     *monitorService.Service
	logger      *slog.Logger
}

// New creates a new HTTP server
func New(cfg *config.Config, alerts *alertservice.Service, feeds *feedService.Service, monitor *monitorService.Service) *Server {
	return &Server{
		cfg:         cfg,
		alerts:      alerts,
		feedService: feeds,
		monitor:     monitor,
		logger:      slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /alerts", s.handleAlerts)
	mux.HandleFunc("DELETE /alerts/simulated", s.handlePurgeSimulated)
	mux.HandleFunc("POST /fetch", s.handleFetch)
	mux.HandleFunc("PUT /interval", s.handleSetInterval)
	mux.HandleFunc("GET /rss", s.handleRSSFeed)
	mux.HandleFunc("GET /health", s.handleHealth)

	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("HTTP server starting", "addr", addr)

	// Use slog-http middleware with recovery
	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.alerts.Alerts(0)
	if err != nil {
		s.logger.Error("Error loading alerts", "error", err)
		http.Error(w, "Failed to load alerts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, alerts)
}

func (s *Server) handlePurgeSimulated(w http.ResponseWriter, r *http.Request) {
	removed, err := s.alerts.PurgeSimulated()
	if err != nil {
		s.logger.Error("Error purging simulated alerts", "error", err)
		http.Error(w, "Failed to purge simulated alerts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int{"removed": removed})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.EnableRemoteFetch {
		http.Error(w, sharederrors.ErrRemoteFetchDisabled.Error(), http.StatusConflict)
		return
	}
	count := s.monitor.RunCycle(r.Context())
	writeJSON(w, map[string]int{"new_alerts": count})
}

func (s *Server) handleSetInterval(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Minutes <= 0 {
		http.Error(w, "Body must be {\"minutes\": n}", http.StatusBadRequest)
		return
	}

	s.monitor.SetInterval(time.Duration(payload.Minutes) * time.Minute)
	writeJSON(w, map[string]string{"interval": s.monitor.Interval().String()})
}

func (s *Server) handleRSSFeed(w http.ResponseWriter, r *http.Request) {
	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed, err := s.feedService.GenerateFeed(baseURL)
	if err != nil {
		s.logger.Error("Error generating feed", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300") // Cache for 5 minutes
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
