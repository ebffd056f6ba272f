package feature

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ErrInvalidURL is returned when the input cannot be turned into a
// feature vector at all: empty input, unparseable syntax, or no
// recoverable host. The caller surfaces this as a client error; no
// downstream stage runs after it.
var ErrInvalidURL = errors.New("invalid URL")

var (
	// hasSchemeRE detects whether the input already carries a URL scheme.
	// Inputs without one are assumed to be http.
	hasSchemeRE = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)

	// schemeRE strips http:// and https:// prefixes for dot counting,
	// so scheme-relative duplicates inside query strings are treated
	// the same way as the leading scheme.
	schemeRE = regexp.MustCompile(`(?i)https?://`)
)

// sensitiveWords are tokens phishing URLs use to look like account or
// payment flows. NumSensitiveWords counts their total occurrences in
// the lowercased URL.
var sensitiveWords = []string{
	"secure",
	"account",
	"webscr",
	"login",
	"ebayisapi",
	"signin",
	"banking",
	"confirm",
}

// brandNames are widely impersonated brands. EmbeddedBrandName fires
// when one of them appears in the subdomain chain or path while the
// registered domain itself is a different name.
var brandNames = []string{
	"paypal",
	"apple",
	"google",
	"amazon",
	"microsoft",
	"netflix",
	"facebook",
	"instagram",
	"whatsapp",
	"dropbox",
	"ebay",
	"chase",
}

// Extractor computes the lexical feature set for a URL. It is stateless
// apart from the schema that orders its output and is safe for
// concurrent use.
type Extractor struct {
	schema *Schema
}

// NewExtractor creates an extractor that orders its output by the given
// schema. A nil schema selects the bundled default.
func NewExtractor(schema *Schema) *Extractor {
	if schema == nil {
		schema = DefaultSchema()
	}
	return &Extractor{schema: schema}
}

// Schema returns the schema the extractor emits vectors for.
func (e *Extractor) Schema() *Schema {
	return e.schema
}

// Extract computes the lexical features of a URL and returns them as a
// vector ordered by the extractor's schema. Content features stay at
// 0.0. Extraction is pure and deterministic: the same input always
// yields the same vector, and no network access ever happens here.
func (e *Extractor) Extract(rawURL string) (*Vector, error) {
	parts, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return e.schema.VectorFromMap(lexicalFeatures(parts)), nil
}

// urlParts holds the decomposed URL pieces every feature reads from.
// All host-derived fields are lowercased; raw keeps the input casing so
// character counts see the URL as given.
type urlParts struct {
	raw      string // input with a scheme ensured
	rawLower string
	host     string // hostname without port or brackets
	path     string // escaped path, as transmitted
	query    string
	isIP     bool
	// registered is the eTLD+1 of the host, empty when none can be
	// derived (IP hosts, bare suffixes, single labels).
	registered string
	// regLabel is the first label of the registered domain, e.g.
	// "example" for example.co.uk.
	regLabel string
	// subdomain is the host portion before the registered domain.
	subdomain string
}

// parseURL validates and decomposes the input. A missing scheme is
// assumed to be http before parsing.
func parseURL(rawURL string) (*urlParts, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}
	if !hasSchemeRE.MatchString(raw) {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("%w: no host", ErrInvalidURL)
	}

	parts := &urlParts{
		raw:      raw,
		rawLower: strings.ToLower(raw),
		host:     host,
		path:     u.EscapedPath(),
		query:    u.RawQuery,
		isIP:     net.ParseIP(host) != nil,
	}

	parts.registered = RegisteredDomain(host)
	if parts.registered != "" {
		parts.regLabel = strings.SplitN(parts.registered, ".", 2)[0]
	}
	parts.subdomain = subdomainPart(host, parts.registered)

	return parts, nil
}

// RegisteredDomain returns the eTLD+1 for a host, or "" when none can
// be derived. IP hosts never have one.
func RegisteredDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	registered, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return registered
}

// subdomainPart returns the host portion before the registered domain,
// or the whole host when no registered domain is known.
func subdomainPart(host, registered string) string {
	if registered == "" || !strings.HasSuffix(host, registered) {
		return host
	}
	return strings.TrimSuffix(strings.TrimSuffix(host, registered), ".")
}

// subdomainLevel estimates subdomain depth relative to the registered
// domain: "a.b.example.com" is level 2, "example.com" level 0. Hosts
// without a derivable registered domain fall back to label count minus
// two, floored at zero.
func subdomainLevel(p *urlParts) int {
	if p.registered == "" || p.registered == p.host || !strings.HasSuffix(p.host, p.registered) {
		labels := nonEmptySplit(p.host, ".")
		if len(labels) > 2 {
			return len(labels) - 2
		}
		return 0
	}
	return len(nonEmptySplit(p.subdomain, "."))
}

// lexicalFeatures computes every feature derivable from the URL string
// alone. Content features are intentionally absent; the schema defaults
// them to 0.0.
func lexicalFeatures(p *urlParts) map[string]float64 {
	level := subdomainLevel(p)
	urlLen := len(p.raw)
	pathLower := strings.ToLower(p.path)

	// Scheme markers carry no dots, so stripping every occurrence
	// keeps dot counting focused on host and path structure.
	urlNoScheme := schemeRE.ReplaceAllString(p.raw, "")

	feats := map[string]float64{
		"NumDots":            float64(strings.Count(urlNoScheme, ".")),
		"SubdomainLevel":     float64(level),
		"PathLevel":          float64(len(nonEmptySplit(p.path, "/"))),
		"UrlLength":          float64(urlLen),
		"NumDash":            float64(strings.Count(p.raw, "-")),
		"NumDashInHostname":  float64(strings.Count(p.host, "-")),
		"AtSymbol":           flag(strings.Contains(p.raw, "@")),
		"TildeSymbol":        flag(strings.Contains(p.raw, "~")),
		"NumUnderscore":      float64(strings.Count(p.raw, "_")),
		"NumPercent":         float64(strings.Count(p.raw, "%")),
		"NumQueryComponents": float64(len(nonEmptySplit(p.query, "&"))),
		"NumAmpersand":       float64(strings.Count(p.raw, "&")),
		"NumHash":            float64(strings.Count(p.raw, "#")),
		"NumNumericChars":    float64(countDigits(p.raw)),
		"NoHttps":            flag(!strings.HasPrefix(p.rawLower, "https://")),
		"RandomString":       flag(hasRandomToken(p)),
		"IpAddress":          flag(p.isIP),
		"DomainInSubdomains": flag(p.regLabel != "" && strings.Contains(p.subdomain, p.regLabel)),
		"DomainInPaths":      flag(p.regLabel != "" && strings.Contains(pathLower, p.regLabel)),
		"HttpsInHostname":    flag(strings.Contains(p.host, "https")),
		"HostnameLength":     float64(len(p.host)),
		"PathLength":         float64(len(p.path)),
		"QueryLength":        float64(len(p.query)),
		"DoubleSlashInPath":  flag(strings.Contains(p.path, "//")),
		"NumSensitiveWords":  float64(countSensitiveWords(p.rawLower)),
		"EmbeddedBrandName":  flag(embeddedBrand(p) != ""),

		// Binary risk flags over the structural features.
		"SubdomainLevelRT": flag(level > 2),
		"UrlLengthRT":      flag(urlLen > 75),
	}

	return feats
}

// countSensitiveWords counts total occurrences of the sensitive tokens
// in the lowercased URL.
func countSensitiveWords(urlLower string) int {
	total := 0
	for _, word := range sensitiveWords {
		total += strings.Count(urlLower, word)
	}
	return total
}

// embeddedBrand returns the first impersonated brand found in the
// subdomain chain or path, or "" when none is. A brand matching the
// registered domain's own label is not an impersonation.
func embeddedBrand(p *urlParts) string {
	pathLower := strings.ToLower(p.path)
	for _, brand := range brandNames {
		if brand == p.regLabel {
			continue
		}
		if strings.Contains(p.subdomain, brand) || strings.Contains(pathLower, brand) {
			return brand
		}
	}
	return ""
}

// hasRandomToken reports whether any host label or path segment looks
// machine-generated.
func hasRandomToken(p *urlParts) bool {
	for _, label := range nonEmptySplit(p.host, ".") {
		if looksRandom(label) {
			return true
		}
	}
	for _, segment := range nonEmptySplit(strings.ToLower(p.path), "/") {
		if looksRandom(segment) {
			return true
		}
	}
	return false
}

// looksRandom is a cheap heuristic for machine-generated tokens: long
// strings with a five-letter consonant run or almost no vowels.
func looksRandom(s string) bool {
	if len(s) < 7 {
		return false
	}

	letters, vowels, run, maxRun := 0, 0, 0, 0
	for _, r := range s {
		if r < 'a' || r > 'z' {
			run = 0
			continue
		}
		letters++
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			vowels++
			run = 0
		default:
			run++
			if run > maxRun {
				maxRun = run
			}
		}
	}

	if letters < 7 {
		return false
	}
	if maxRun >= 5 {
		return true
	}
	return float64(vowels)/float64(letters) < 0.15
}

// nonEmptySplit splits s on sep and drops empty elements.
func nonEmptySplit(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// countDigits counts ASCII digits in s.
func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// flag converts a boolean condition to the 0/1 feature encoding.
func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
