package domain

import "encoding/json"

// RawPost is one upstream status as the API returns it.
type RawPost struct {
	ID               string          `json:"id"`
	CreatedAt        string          `json:"created_at"`
	Content          string          `json:"content"` // HTML
	URL              string          `json:"url"`
	MediaAttachments []RawAttachment `json:"media_attachments"`
}

// RawAttachment mirrors the upstream media_attachments entries.
type RawAttachment struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	RemoteURL   string `json:"remote_url"`
	PreviewURL  string `json:"preview_url"`
	Description string `json:"description"`
}

// Media is a normalized media item carried on an alert.
type Media struct {
	URL         string    `json:"url"`
	PreviewURL  string    `json:"preview_url"`
	Description string    `json:"description"`
	Type        MediaType `json:"type"`
}

// Alert is one ingested post, immutable once created. Simulated alerts can
// additionally be removed via an explicit purge.
type Alert struct {
	ID         string          `json:"id"`
	CreatedAt  string          `json:"created_at"` // UTC ISO-8601
	Content    string          `json:"content"`    // plain text, never empty
	URL        string          `json:"url"`
	Media      []Media         `json:"media"`
	Keywords   string          `json:"keywords"`
	AIAnalysis json.RawMessage `json:"ai_analysis"` // opaque collaborator output
	DetectedAt string          `json:"detected_at"` // UTC ISO-8601, ingestion time
	Source     AlertSource     `json:"source"`
}
