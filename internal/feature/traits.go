package feature

import (
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/phishscan/phishscan/internal/model"
)

// shortenerDomains are link-shortener services. A shortened URL hides
// its real destination, which is worth surfacing even though the
// classifier judges only the visible URL.
var shortenerDomains = map[string]struct{}{
	"bit.ly":      {},
	"tinyurl.com": {},
	"goo.gl":      {},
	"t.co":        {},
	"ow.ly":       {},
	"is.gd":       {},
	"buff.ly":     {},
	"cutt.ly":     {},
	"rebrand.ly":  {},
	"tiny.cc":     {},
}

// riskyTLDs are top-level domains with a high share of abuse in public
// blocklists, mostly free or near-free registrations.
var riskyTLDs = map[string]struct{}{
	"tk":    {},
	"ml":    {},
	"ga":    {},
	"cf":    {},
	"gq":    {},
	"top":   {},
	"xyz":   {},
	"click": {},
	"work":  {},
	"buzz":  {},
}

// Traits lists the notable lexical characteristics of a URL for report
// output. Traits are informational only and never feed the classifier.
// Unparseable input yields no traits; the caller has already failed the
// check by then.
func (e *Extractor) Traits(rawURL string) []model.Trait {
	p, err := parseURL(rawURL)
	if err != nil {
		return nil
	}

	var traits []model.Trait
	add := func(id, title, detail string) {
		traits = append(traits, model.Trait{ID: id, Title: title, Detail: detail})
	}

	if p.isIP {
		add("ip_host", "Host is a literal IP address", p.host)
	}

	shortenerHost := p.registered
	if shortenerHost == "" {
		shortenerHost = p.host
	}
	if _, ok := shortenerDomains[shortenerHost]; ok {
		add("shortener_domain", "Host is a link-shortener service", shortenerHost)
	}

	if suffix, _ := publicsuffix.PublicSuffix(p.host); suffix != "" {
		if _, ok := riskyTLDs[suffix]; ok {
			add("suspicious_tld", "Top-level domain is frequently abused", "."+suffix)
		}
	}

	if level := subdomainLevel(p); level > 2 {
		add("deep_subdomains", "Unusually deep subdomain chain", fmt.Sprintf("%d levels", level))
	}

	if brand := embeddedBrand(p); brand != "" {
		add("embedded_brand", "Impersonated brand name in subdomain or path", brand)
	}

	if strings.Contains(p.host, "https") {
		add("https_in_hostname", "Hostname contains the text \"https\"", p.host)
	}

	if !strings.HasPrefix(p.rawLower, "https://") {
		add("no_https", "Connection is not HTTPS", "")
	}

	if strings.Contains(p.raw, "@") {
		add("at_symbol", "URL contains an @ symbol", "")
	}

	if dashes := strings.Count(p.host, "-"); dashes >= 2 {
		add("hyphenated_host", "Hostname is heavily hyphenated", fmt.Sprintf("%d hyphens", dashes))
	}

	if length := len(p.raw); length > 75 {
		add("long_url", "URL is unusually long", fmt.Sprintf("%d characters", length))
	}

	if n := countSensitiveWords(p.rawLower); n > 0 {
		add("sensitive_words", "URL contains account or payment words", fmt.Sprintf("%d occurrences", n))
	}

	if hasRandomToken(p) {
		add("random_token", "URL contains a machine-generated token", "")
	}

	if strings.Contains(p.host, "xn--") {
		add("punycode_host", "Hostname uses punycode encoding", p.host)
	}

	return traits
}
