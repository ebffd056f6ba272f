package model

import "strings"

// MaxPageSize is the maximum number of response body bytes kept from a
// content fetch. Larger bodies are truncated to this size so a huge or
// hostile page cannot exhaust memory during feature enrichment.
const MaxPageSize = 2 * 1024 * 1024 // 2 MB

// Page holds the result of fetching a URL for content-feature
// enrichment. Only what the feature analyzer consumes is kept: the final
// location after redirects, the content type, and a bounded body.
type Page struct {
	// URL is the originally requested URL.
	URL string `json:"url"`

	// FinalURL is the URL after following redirects. Equal to URL when
	// no redirect occurred.
	FinalURL string `json:"final_url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header,
	// possibly with a charset suffix.
	ContentType string `json:"content_type"`

	// Body is the response body, truncated to MaxPageSize bytes.
	// Only consulted when the content type indicates HTML.
	Body []byte `json:"-"` // Excluded from JSON to keep reports small
}

// Redirected reports whether the fetch ended at a different URL than it
// started from.
func (p *Page) Redirected() bool {
	return p.FinalURL != "" && p.FinalURL != p.URL
}

// IsHTML returns true if the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return strings.HasPrefix(p.ContentType, "text/html") ||
		strings.HasPrefix(p.ContentType, "application/xhtml+xml")
}

// TruncateBody enforces the MaxPageSize limit on the body.
// Call this after setting Body.
func (p *Page) TruncateBody() {
	if len(p.Body) > MaxPageSize {
		p.Body = p.Body[:MaxPageSize]
	}
}
