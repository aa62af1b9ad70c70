package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	alertdomain "github.com/reshetovitsme/truth-market-feed/internal/modules/alert/domain"
	alertservice "github.com/reshetovitsme/truth-market-feed/internal/modules/alert/service"
	"github.com/samber/oops"
)

const feedSize = 50

// Service renders the alert store as an RSS feed for external readers.
type Service struct {
	alerts *alertservice.Service
}

// New creates a new feed service
func New(alerts *alertservice.Service) *Service {
	return &Service{alerts: alerts}
}

// GenerateFeed builds an RSS feed of the most recent alerts.
func (s *Service) GenerateFeed(baseURL string) (*feeds.Feed, error) {
	alerts, err := s.alerts.Alerts(feedSize)
	if err != nil {
		return nil, oops.With("context", "failed to load alerts").Wrap(err)
	}

	feed := &feeds.Feed{
		Title:       "Truth Social Market Alerts",
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/rss", baseURL)},
		Description: "Posts annotated with AI-generated market-impact analysis",
		Updated:     time.Now(),
	}

	var items []*feeds.Item
	for _, a := range alerts {
		items = append(items, s.alertToFeedItem(a))
	}

	feed.Items = items
	return feed, nil
}

func (s *Service) alertToFeedItem(a *alertdomain.Alert) *feeds.Item {
	description := a.Content
	if len(a.Media) > 0 {
		var b strings.Builder
		b.WriteString(description)
		b.WriteString("\n\nMedia:\n")
		for _, m := range a.Media {
			fmt.Fprintf(&b, "- %s: %s\n", m.Type, m.URL)
			if m.Description != "" {
				fmt.Fprintf(&b, "  Description: %s\n", m.Description)
			}
		}
		description = b.String()
	}

	created, _ := alertservice.ParseTimestamp(a.CreatedAt)

	return &feeds.Item{
		Title:       truncate(a.Content, 100),
		Link:        &feeds.Link{Href: a.URL},
		Description: description,
		Created:     created,
		Id:          a.ID,
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
