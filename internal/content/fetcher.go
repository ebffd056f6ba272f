package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/phishscan/phishscan/internal/model"
)

// DefaultTimeout bounds the enrichment fetch. Kept short because the
// check must not hang on a slow phishing host; a page that cannot
// answer in time is scored on lexical features alone.
const DefaultTimeout = 5 * time.Second

// defaultUserAgent is sent with enrichment fetches. Phishing kits
// often serve different content to obvious bots, so the agent string
// mimics a browser.
const defaultUserAgent = "Mozilla/5.0"

// maxRedirects caps redirect chains during the fetch.
const maxRedirects = 10

// Fetcher performs the single bounded page fetch used for content
// enrichment.
//
// Design decision: The fetcher never follows more than one URL per
// check and never recurses into discovered links. Enrichment looks at
// the landing page only; anything more would turn a URL check into a
// crawl.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetcherHTTPClient sets a custom HTTP client.
func WithFetcherHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithFetcherUserAgent sets a custom User-Agent header.
func WithFetcherUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithFetcherMaxBodySize sets the maximum body size read from a page.
func WithFetcherMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// NewFetcher creates a Fetcher with bounded defaults.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent:   defaultUserAgent,
		maxBodySize: model.MaxPageSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the page behind rawURL, following redirects, and
// returns it with the body populated only for HTML responses. A
// network-level failure returns an error; the caller treats that as
// "no enrichment", never as a failed check.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return nil, fmt.Errorf("fetch: empty URL")
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "http://" + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	page := &model.Page{
		URL:         target,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	// Non-HTML bodies (PDFs, images, binaries) are never parsed, so
	// reading them would be wasted transfer.
	if page.IsHTML() {
		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
		if err == nil {
			page.Body = body
		}
	}

	return page, nil
}
