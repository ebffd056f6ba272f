package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/phishscan/phishscan/internal/model"
)

// DefaultVirusTotalEndpoint is the VirusTotal v2 URL report endpoint.
const DefaultVirusTotalEndpoint = "https://www.virustotal.com/vtapi/v2/url/report"

// VirusTotal checks URLs against the VirusTotal v2 URL report API.
type VirusTotal struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// VirusTotalOption configures a VirusTotal source.
type VirusTotalOption func(*VirusTotal)

// WithVirusTotalEndpoint overrides the report endpoint.
func WithVirusTotalEndpoint(endpoint string) VirusTotalOption {
	return func(v *VirusTotal) {
		if endpoint != "" {
			v.endpoint = endpoint
		}
	}
}

// WithVirusTotalHTTPClient sets a custom HTTP client.
func WithVirusTotalHTTPClient(client *http.Client) VirusTotalOption {
	return func(v *VirusTotal) {
		if client != nil {
			v.client = client
		}
	}
}

// NewVirusTotal creates a VirusTotal source. As with Safe Browsing, an
// empty API key degrades every check instead of failing construction.
func NewVirusTotal(apiKey string, opts ...VirusTotalOption) *VirusTotal {
	v := &VirusTotal{
		apiKey:   apiKey,
		endpoint: DefaultVirusTotalEndpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Name implements Source.
func (v *VirusTotal) Name() string {
	return model.SourceVirusTotal
}

// virusTotalResponse is the subset of the v2 report payload the
// verdict depends on. ResponseCode 1 means the URL is in the dataset;
// 0 means unknown; -1 is an invalid resource.
type virusTotalResponse struct {
	ResponseCode int `json:"response_code"`
	Positives    int `json:"positives"`
	Total        int `json:"total"`
}

// Check implements Source. A URL flagged by at least one engine is
// Phishing, a clean report is Legitimate, and a URL VirusTotal has no
// record of is Suspicious without an error: the authority answered,
// it just cannot vouch either way.
func (v *VirusTotal) Check(ctx context.Context, rawURL string) (model.Verdict, error) {
	if v.apiKey == "" {
		return model.VerdictSuspicious, ErrNoAPIKey
	}

	query := url.Values{
		"apikey":   {v.apiKey},
		"resource": {rawURL},
		"allinfo":  {"false"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return model.VerdictSuspicious, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return model.VerdictSuspicious, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	// VirusTotal signals an exhausted rate limit with 204 and an empty
	// body, so any non-200 status is handled before decoding.
	if resp.StatusCode != http.StatusOK {
		return model.VerdictSuspicious, fmt.Errorf("%w: virustotal responded %s", ErrUnavailable, resp.Status)
	}

	var decoded virusTotalResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&decoded); err != nil {
		return model.VerdictSuspicious, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	if decoded.ResponseCode != 1 {
		return model.VerdictSuspicious, nil
	}
	if decoded.Positives > 0 {
		return model.VerdictPhishing, nil
	}
	return model.VerdictLegitimate, nil
}
