package repository

import (
	"github.com/reshetovitsme/truth-market-feed/internal/modules/alert/domain"
)

// Repository defines the interface for alert and ledger persistence. Both
// documents are rewritten wholesale per ingestion cycle.
type Repository interface {
	LoadAlerts() ([]*domain.Alert, error)
	LoadProcessedIDs() (map[string]struct{}, error)

	// ReplaceAll rewrites both documents under one lock, keeping the store
	// and the ledger consistent with each other.
	ReplaceAll(alerts []*domain.Alert, ids map[string]struct{}) error
}
