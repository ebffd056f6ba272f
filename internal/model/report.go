package model

import "time"

// SourceVerdicts holds the three per-source verdicts for one checked URL.
// The JSON keys are the canonical detail keys of the response contract.
type SourceVerdicts struct {
	// Model is the verdict from the locally hosted classifier.
	// It is binary: the classifier never emits Suspicious.
	Model Verdict `json:"model"`

	// SafeBrowsing is the verdict from the threat-list lookup service.
	SafeBrowsing Verdict `json:"gsb"`

	// VirusTotal is the verdict from the multi-vendor scan service.
	VirusTotal Verdict `json:"vt"`
}

// FusionResult is the outcome of majority-vote fusion: the final verdict
// plus all three per-source verdicts. The per-source verdicts are always
// carried regardless of the final value so callers can see how each
// source voted.
type FusionResult struct {
	Final   Verdict        `json:"final_verdict"`
	Details SourceVerdicts `json:"details"`
}

// Trait describes one notable lexical characteristic of a checked URL,
// such as an IP-literal host or a link-shortener domain. Traits are
// informational report content and never feed back into classification.
type Trait struct {
	// ID identifies the trait kind, e.g. "ip_host" or "shortener_domain".
	ID string `json:"id"`

	// Title is a short human-readable description of the trait.
	Title string `json:"title"`

	// Detail optionally carries the concrete value that triggered the
	// trait, e.g. the matched brand name or the hyphen count.
	Detail string `json:"detail,omitempty"`
}

// ScanReport is the full record of one URL check: the fused result plus
// the metadata a caller or report writer needs to understand it. The HTTP
// boundary returns only the FusionResult portion; the CLI and the history
// store work with the whole report.
//
// Design decision: We use one flat struct rather than nesting FusionResult
// inside it so the JSON output of a CLI check is a single level deep and
// directly comparable with stored history rows.
type ScanReport struct {
	// URL is the exact input string as received, never normalized.
	URL string `json:"url"`

	// FinalVerdict is the majority-vote outcome over the three sources.
	FinalVerdict Verdict `json:"final_verdict"`

	// Details holds the three per-source verdicts.
	Details SourceVerdicts `json:"details"`

	// ModelProbability is the phishing probability the local classifier
	// assigned, in [0, 1].
	ModelProbability float64 `json:"model_probability"`

	// ModelVersion identifies the artifact bundle that produced the
	// model verdict.
	ModelVersion string `json:"model_version,omitempty"`

	// Traits lists notable lexical characteristics of the URL.
	Traits []Trait `json:"traits,omitempty"`

	// ContentFetched records whether page-content features were filled
	// from a live fetch rather than left at their defaults.
	ContentFetched bool `json:"content_fetched"`

	// CheckedAt is the UTC time the check started.
	CheckedAt time.Time `json:"checked_at"`

	// DurationMS is the wall-clock time of the whole check in
	// milliseconds, including the reputation lookups.
	DurationMS int64 `json:"duration_ms"`

	// Error records why a check could not complete, for batch output
	// and history rows. Empty on success. A report with a non-empty
	// Error keeps the zero verdicts, which read as Suspicious.
	Error string `json:"error,omitempty"`
}

// NewScanReport creates a report for the given URL with the check time
// set to now.
func NewScanReport(url string) *ScanReport {
	return &ScanReport{
		URL:       url,
		CheckedAt: time.Now().UTC(),
	}
}

// SetResult copies a fusion result into the report.
func (r *ScanReport) SetResult(result FusionResult) {
	r.FinalVerdict = result.Final
	r.Details = result.Details
}

// Result returns the report's fused verdicts in response form.
func (r *ScanReport) Result() FusionResult {
	return FusionResult{
		Final:   r.FinalVerdict,
		Details: r.Details,
	}
}

// AddTrait appends a trait, skipping duplicates with the same ID and
// detail. Traits keep their insertion order for stable report output.
func (r *ScanReport) AddTrait(trait Trait) {
	for _, existing := range r.Traits {
		if existing.ID == trait.ID && existing.Detail == trait.Detail {
			return
		}
	}
	r.Traits = append(r.Traits, trait)
}

// IsPhishing reports whether the final verdict is Phishing.
func (r *ScanReport) IsPhishing() bool {
	return r.FinalVerdict == VerdictPhishing
}
