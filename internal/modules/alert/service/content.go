package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"github.com/reshetovitsme/truth-market-feed/internal/modules/alert/domain"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	urlRe        = regexp.MustCompile(`http\S+`)
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)

	// Block-level boundaries that would otherwise glue adjacent words
	// together once tags are stripped.
	blockBreaks = strings.NewReplacer("</p>", " ", "<br>", " ", "<br/>", " ", "<br />", " ")
)

// Common noise plus self-references, filtered out of keyword extraction.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"a an the and or but is are was were be been being " +
			"in on at to for from with by about of that this these those " +
			"it he she they we i you me him her us them " +
			"what which who whom whose when where why how " +
			"will would shall should can could may might must " +
			"has have had do does did " +
			"very really just so too quite rather " +
			"donald trump realdonaldtrump truth social") {
		stopWords[w] = struct{}{}
	}
}

// StripMarkup reduces upstream HTML to collapsed plain text.
func StripMarkup(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(blockBreaks.Replace(html)))
	if err != nil {
		// Parsing should not fail on any input; degrade to a raw collapse.
		return strings.TrimSpace(whitespaceRe.ReplaceAllString(html, " "))
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(doc.Text(), " "))
}

// DeriveContent strips the post's markup and backfills from media when the
// text comes out empty: joined descriptions first, then a counted
// placeholder.
func DeriveContent(post *domain.RawPost, media []domain.Media) string {
	if content := StripMarkup(post.Content); content != "" {
		return content
	}
	return describeMedia(media)
}

func describeMedia(media []domain.Media) string {
	descs := lo.FilterMap(media, func(m domain.Media, _ int) (string, bool) {
		d := strings.TrimSpace(m.Description)
		return d, d != ""
	})
	if len(descs) > 0 {
		return strings.Join(descs, " ")
	}
	if len(media) > 0 {
		return fmt.Sprintf("[图片] %d 张", len(media))
	}
	return ""
}

// NormalizeMedia converts upstream attachments into the stored media shape.
// Attachments with no usable URL or an unknown type are dropped; a missing
// type defaults to image.
func NormalizeMedia(atts []domain.RawAttachment) []domain.Media {
	return lo.FilterMap(atts, func(a domain.RawAttachment, _ int) (domain.Media, bool) {
		u := a.URL
		if u == "" {
			u = a.RemoteURL
		}
		if u == "" {
			u = a.PreviewURL
		}
		if u == "" {
			return domain.Media{}, false
		}

		mt := domain.MediaTypeImage
		if a.Type != "" {
			parsed, err := domain.ParseMediaType(a.Type)
			if err != nil {
				return domain.Media{}, false
			}
			mt = parsed
		}

		preview := a.PreviewURL
		if preview == "" {
			preview = u
		}

		return domain.Media{
			URL:         u,
			PreviewURL:  preview,
			Description: a.Description,
			Type:        mt,
		}, true
	})
}

// ExtractKeywords pulls up to six interesting terms out of the content for
// downstream search queries.
func ExtractKeywords(text string) string {
	text = urlRe.ReplaceAllString(text, "")
	text = nonWordRe.ReplaceAllString(text, " ")

	var keywords []string
	for _, w := range strings.Fields(text) {
		lower := strings.ToLower(w)
		if len(lower) <= 2 {
			continue
		}
		if _, stop := stopWords[lower]; stop {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == 6 {
			break
		}
	}
	return strings.Join(keywords, " ")
}

// Layouts tolerated when normalizing upstream timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeTimestamp returns a UTC ISO-8601 string, substituting now for
// missing or malformed values. Naive timestamps are assumed to be UTC.
func NormalizeTimestamp(value string, now time.Time) string {
	if t, ok := ParseTimestamp(value); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return now.UTC().Format(time.RFC3339)
}

// ParseTimestamp parses any tolerated timestamp form; false means the value
// is missing or malformed.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
