package repository

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/reshetovitsme/truth-market-feed/internal/modules/alert/domain"
	"github.com/samber/oops"
)

const (
	alertsFile = "market_alerts.json"
	ledgerFile = "processed_posts.json"
)

// FileStorage implements alert.Repository with two JSON documents on disk.
// Loads fail open: a missing or corrupt file reads as empty, prioritizing
// availability over strict duplicate prevention (the id ledger is the real
// safety net).
type FileStorage struct {
	basePath  string
	maxAlerts int // most-recent bound applied on save; 0 keeps everything
	mu        sync.RWMutex
}

func NewFileStorage(basePath string, maxAlerts int) (Repository, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create storage directory").Wrap(err)
	}
	return &FileStorage{basePath: basePath, maxAlerts: maxAlerts}, nil
}

func (s *FileStorage) LoadAlerts() ([]*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var alerts []*domain.Alert
	if !s.readJSON(alertsFile, &alerts) {
		return []*domain.Alert{}, nil
	}
	return alerts, nil
}

func (s *FileStorage) LoadProcessedIDs() (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	set := make(map[string]struct{})
	if !s.readJSON(ledgerFile, &ids) {
		return set, nil
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (s *FileStorage) ReplaceAll(alerts []*domain.Alert, ids map[string]struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxAlerts > 0 && len(alerts) > s.maxAlerts {
		alerts = alerts[:s.maxAlerts]
	}
	if err := s.writeJSON(alertsFile, alerts); err != nil {
		return err
	}
	return s.writeLedger(ids)
}

func (s *FileStorage) writeLedger(ids map[string]struct{}) error {
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Strings(list)
	return s.writeJSON(ledgerFile, list)
}

// readJSON reports whether the document was read and decoded; any failure is
// logged and treated as an empty document.
func (s *FileStorage) readJSON(name string, v any) bool {
	path := filepath.Join(s.basePath, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Store file unreadable, treating as empty", "path", path, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("Store file corrupt, treating as empty", "path", path, "error", err)
		return false
	}
	return true
}

// writeJSON is an atomic whole-file rewrite: encode to a temp file in the
// same directory, then rename over the target.
func (s *FileStorage) writeJSON(name string, v any) error {
	path := filepath.Join(s.basePath, name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return oops.With("path", path, "context", "failed to marshal document").Wrap(err)
	}

	tmp, err := os.CreateTemp(s.basePath, name+".tmp-*")
	if err != nil {
		return oops.With("path", path, "context", "failed to create temp file").Wrap(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return oops.With("path", tmpName, "context", "failed to write temp file").Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return oops.With("path", tmpName, "context", "failed to close temp file").Wrap(err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return oops.With("path", path, "context", "failed to replace document").Wrap(err)
	}
	return nil
}
