package model

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Verdict is the three-valued classification every source emits for a URL.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and tallying. Suspicious is deliberately the
// zero value: an uninitialized or degraded verdict must always read as
// "unknown/undecidable", never as a confident classification. The String()
// and JSON methods provide the wire representation.
type Verdict int

const (
	// VerdictSuspicious marks a URL as unknown or undecidable.
	// Reputation sources emit it when the external service has no data,
	// times out, or fails in any way. It is also the fusion fallback when
	// no value reaches a majority.
	VerdictSuspicious Verdict = iota

	// VerdictLegitimate marks a URL as safe according to one source.
	VerdictLegitimate

	// VerdictPhishing marks a URL as a phishing page according to one source.
	VerdictPhishing
)

// String returns the canonical wire spelling of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictLegitimate:
		return "Legitimate"
	case VerdictPhishing:
		return "Phishing"
	case VerdictSuspicious:
		return "Suspicious"
	default:
		return "Suspicious"
	}
}

// ParseVerdict converts a wire spelling back into a Verdict.
// Unknown spellings return an error rather than silently mapping to a value;
// callers that want degradation handle the error themselves.
func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "Legitimate":
		return VerdictLegitimate, nil
	case "Phishing":
		return VerdictPhishing, nil
	case "Suspicious":
		return VerdictSuspicious, nil
	default:
		return VerdictSuspicious, fmt.Errorf("unknown verdict %q", s)
	}
}

// MarshalJSON encodes the verdict as its canonical string form.
func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON decodes a verdict from its canonical string form.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("verdict must be a string: %w", err)
	}

	parsed, err := ParseVerdict(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Source identifiers for the three verdict producers. These are the keys
// used in the response body's details object and in stored history rows.
const (
	// SourceModel is the locally hosted classifier.
	SourceModel = "model"

	// SourceSafeBrowsing is the threat-list lookup service.
	SourceSafeBrowsing = "gsb"

	// SourceVirusTotal is the multi-vendor scan service.
	SourceVirusTotal = "vt"
)

// sourceDisplayNames maps source identifiers to human-readable names for
// report output. Wire payloads always use the short identifiers.
var sourceDisplayNames = map[string]string{
	SourceModel:        "Local Model",
	SourceSafeBrowsing: "Google Safe Browsing",
	SourceVirusTotal:   "VirusTotal",
}

// SourceDisplayName returns the human-readable name for a source identifier.
// Unknown identifiers are title-cased as a best effort.
func SourceDisplayName(source string) string {
	if name, ok := sourceDisplayNames[source]; ok {
		return name
	}
	return cases.Title(language.English).String(source)
}
