package reputation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/phishscan/phishscan/internal/model"
)

// DefaultSafeBrowsingEndpoint is the Safe Browsing v4 lookup endpoint.
const DefaultSafeBrowsingEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// Client identification sent with every Safe Browsing request, as the
// v4 API requires.
const (
	safeBrowsingClientID      = "phishscan"
	safeBrowsingClientVersion = "1.0.0"
)

// threatTypes are the threat lists a URL is checked against. Phishing
// is SOCIAL_ENGINEERING in Safe Browsing terms; the other lists catch
// URLs that are dangerous for reasons adjacent to phishing.
var threatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

// SafeBrowsing checks URLs against the Google Safe Browsing v4 lookup
// API.
type SafeBrowsing struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// SafeBrowsingOption configures a SafeBrowsing source.
type SafeBrowsingOption func(*SafeBrowsing)

// WithSafeBrowsingEndpoint overrides the lookup endpoint.
func WithSafeBrowsingEndpoint(endpoint string) SafeBrowsingOption {
	return func(s *SafeBrowsing) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// WithSafeBrowsingHTTPClient sets a custom HTTP client.
func WithSafeBrowsingHTTPClient(client *http.Client) SafeBrowsingOption {
	return func(s *SafeBrowsing) {
		if client != nil {
			s.client = client
		}
	}
}

// NewSafeBrowsing creates a Safe Browsing source. An empty API key is
// allowed: the source then answers every check with VerdictSuspicious
// and ErrNoAPIKey, keeping the scanner usable without credentials.
func NewSafeBrowsing(apiKey string, opts ...SafeBrowsingOption) *SafeBrowsing {
	s := &SafeBrowsing{
		apiKey:   apiKey,
		endpoint: DefaultSafeBrowsingEndpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Source.
func (s *SafeBrowsing) Name() string {
	return model.SourceSafeBrowsing
}

// Wire types for the v4 threatMatches:find call.
type safeBrowsingRequest struct {
	Client     safeBrowsingClient     `json:"client"`
	ThreatInfo safeBrowsingThreatInfo `json:"threatInfo"`
}

type safeBrowsingClient struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type safeBrowsingThreatInfo struct {
	ThreatTypes      []string            `json:"threatTypes"`
	PlatformTypes    []string            `json:"platformTypes"`
	ThreatEntryTypes []string            `json:"threatEntryTypes"`
	ThreatEntries    []safeBrowsingEntry `json:"threatEntries"`
}

type safeBrowsingEntry struct {
	URL string `json:"url"`
}

type safeBrowsingResponse struct {
	Matches []safeBrowsingMatch `json:"matches"`
}

type safeBrowsingMatch struct {
	ThreatType string `json:"threatType"`
}

// Check implements Source. A URL on any of the configured threat lists
// is Phishing; an empty match set is Legitimate; anything that keeps
// the API from answering cleanly is Suspicious with the cause.
func (s *SafeBrowsing) Check(ctx context.Context, rawURL string) (model.Verdict, error) {
	if s.apiKey == "" {
		return model.VerdictSuspicious, ErrNoAPIKey
	}

	payload, err := json.Marshal(safeBrowsingRequest{
		Client: safeBrowsingClient{
			ClientID:      safeBrowsingClientID,
			ClientVersion: safeBrowsingClientVersion,
		},
		ThreatInfo: safeBrowsingThreatInfo{
			ThreatTypes:      threatTypes,
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []safeBrowsingEntry{{URL: rawURL}},
		},
	})
	if err != nil {
		return model.VerdictSuspicious, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	endpoint := s.endpoint + "?key=" + url.QueryEscape(s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.VerdictSuspicious, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.VerdictSuspicious, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return model.VerdictSuspicious, fmt.Errorf("%w: safe browsing responded %s", ErrUnavailable, resp.Status)
	}

	var decoded safeBrowsingResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&decoded); err != nil {
		return model.VerdictSuspicious, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	if len(decoded.Matches) > 0 {
		return model.VerdictPhishing, nil
	}
	return model.VerdictLegitimate, nil
}
