package fetch

import (
	"fmt"
	"net/http"
)

const upstreamBase = "https://truthsocial.com"

// StatusesURL builds the authenticated statuses endpoint for an account.
func StatusesURL(accountID string, limit int) string {
	return fmt.Sprintf(
		"%s/api/v1/accounts/%s/statuses?exclude_replies=true&with_muted=true&limit=%d",
		upstreamBase, accountID, limit,
	)
}

// CookieHeaders builds the browser-like header set for cookie-authenticated
// upstream calls. Every transport hop reuses the identical set so the
// upstream's auth model is unaffected by proxying.
func CookieHeaders(cookie, username string) http.Header {
	referer := upstreamBase
	if username != "" {
		referer = fmt.Sprintf("%s/@%s", upstreamBase, username)
	}

	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36")
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Origin", upstreamBase)
	h.Set("Referer", referer)
	h.Set("Cookie", cookie)
	return h
}
