package service

import (
	"context"
	"encoding/json"

	"github.com/reshetovitsme/truth-market-feed/internal/modules/alert/domain"
)

// Analyzer is the market-impact analysis collaborator. Its output is opaque
// to ingestion and stored verbatim on the alert.
type Analyzer interface {
	Analyze(ctx context.Context, content string, media []domain.Media) (json.RawMessage, error)
}

// disabledPayload mirrors the shape analysis consumers expect when the
// feature is off.
var disabledPayload = json.RawMessage(`{"impact":false,"summary":"AI Analysis disabled.","recommendation":"None","sentiment":"neutral","affected_assets":[],"external_context_used":"Analysis disabled"}`)

// DisabledAnalyzer satisfies Analyzer without calling anything.
type DisabledAnalyzer struct{}

func (DisabledAnalyzer) Analyze(context.Context, string, []domain.Media) (json.RawMessage, error) {
	return disabledPayload, nil
}
