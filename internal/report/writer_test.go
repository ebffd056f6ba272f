package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/phishscan/phishscan/internal/model"
)

// sampleReport builds a completed check report for writer tests.
func sampleReport() *model.ScanReport {
	return &model.ScanReport{
		URL:          "http://paypal-secure-login.verify-account.tk/reset",
		FinalVerdict: model.VerdictPhishing,
		Details: model.SourceVerdicts{
			Model:        model.VerdictPhishing,
			SafeBrowsing: model.VerdictPhishing,
			VirusTotal:   model.VerdictSuspicious,
		},
		ModelProbability: 0.9731,
		ModelVersion:     "2025-08-01",
		Traits: []model.Trait{
			{ID: "suspicious_tld", Title: "Suspicious top-level domain", Detail: "tk"},
			{ID: "hyphenated_host", Title: "Hyphenated hostname"},
		},
		CheckedAt:  time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
		DurationMS: 412,
	}
}

func legitimateReport() *model.ScanReport {
	return &model.ScanReport{
		URL:          "https://www.wikipedia.org",
		FinalVerdict: model.VerdictLegitimate,
		Details: model.SourceVerdicts{
			Model:        model.VerdictLegitimate,
			SafeBrowsing: model.VerdictLegitimate,
			VirusTotal:   model.VerdictSuspicious,
		},
		ModelProbability: 0.0212,
		CheckedAt:        time.Date(2026, 8, 25, 10, 31, 0, 0, time.UTC),
		DurationMS:       388,
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("single report round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		n, err := w.Write(sampleReport())
		if err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("byte count: got %d, want %d", n, buf.Len())
		}

		var got model.ScanReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.FinalVerdict != model.VerdictPhishing {
			t.Errorf("final verdict: got %v, want %v", got.FinalVerdict, model.VerdictPhishing)
		}
		if got.Details.VirusTotal != model.VerdictSuspicious {
			t.Errorf("vt verdict: got %v, want %v", got.Details.VirusTotal, model.VerdictSuspicious)
		}
	})

	t.Run("wire contract keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		out := buf.String()
		for _, key := range []string{`"final_verdict"`, `"details"`, `"model"`, `"gsb"`, `"vt"`} {
			if !strings.Contains(out, key) {
				t.Errorf("output missing %s key", key)
			}
		}
	})

	t.Run("batch emits array in input order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		reports := []*model.ScanReport{sampleReport(), legitimateReport()}
		if _, err := w.WriteAll(reports); err != nil {
			t.Fatalf("failed to write batch: %v", err)
		}

		var got []model.ScanReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("batch output is not a JSON array: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("batch length: got %d, want 2", len(got))
		}
		if got[0].URL != reports[0].URL || got[1].URL != reports[1].URL {
			t.Error("batch order does not match input order")
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(sampleReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output with WithPrettyPrint")
		}
	})
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders verdicts and traits", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		out := buf.String()
		wantFragments := []string{
			"PHISHSCAN REPORT",
			"http://paypal-secure-login.verify-account.tk/reset",
			"Final Verdict: [!!] Phishing",
			"Local Model:",
			"Google Safe Browsing:",
			"VirusTotal:",
			"Suspicious top-level domain (tk)",
			"Hyphenated hostname",
		}
		for _, fragment := range wantFragments {
			if !strings.Contains(out, fragment) {
				t.Errorf("output missing %q", fragment)
			}
		}
	})

	t.Run("verbose adds probability and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(sampleReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "Model probability: 0.9731") {
			t.Error("verbose output missing model probability")
		}
		if !strings.Contains(out, "Duration:          412ms") {
			t.Error("verbose output missing duration")
		}
	})

	t.Run("failed check shows error", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport("not a url")
		report.Error = "invalid URL: no host"

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		if !strings.Contains(buf.String(), "ERROR - invalid URL: no host") {
			t.Error("output missing error status")
		}
	})

	t.Run("batch separates reports", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		reports := []*model.ScanReport{sampleReport(), legitimateReport()}
		if _, err := NewSimpleWriter(&buf).WriteAll(reports); err != nil {
			t.Fatalf("failed to write batch: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, reports[0].URL) || !strings.Contains(out, reports[1].URL) {
			t.Error("batch output missing a report")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("phishing report renders caution", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		out := buf.String()
		wantFragments := []string{
			"# Phishscan Report",
			"## http://paypal-secure-login.verify-account.tk/reset",
			"🔴 Phishing",
			"[!CAUTION]",
			"Suspicious top-level domain",
		}
		for _, fragment := range wantFragments {
			if !strings.Contains(out, fragment) {
				t.Errorf("output missing %q", fragment)
			}
		}
	})

	t.Run("legitimate report renders tip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(legitimateReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "[!TIP]") {
			t.Error("output missing tip alert")
		}
		if !strings.Contains(out, "🟢 Legitimate") {
			t.Error("output missing legitimate badge")
		}
	})

	t.Run("batch includes distribution chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		reports := []*model.ScanReport{sampleReport(), legitimateReport()}
		if _, err := NewMarkdownWriter(&buf).WriteAll(reports); err != nil {
			t.Fatalf("failed to write batch: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "```mermaid") {
			t.Error("batch output missing mermaid chart")
		}
		if !strings.Contains(out, "Final Verdict Distribution") {
			t.Error("batch output missing chart title")
		}
	})

	t.Run("single report skips chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteAll([]*model.ScanReport{sampleReport()}); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if strings.Contains(buf.String(), "```mermaid") {
			t.Error("single-report batch should not include a chart")
		}
	})
}

// failWriter errors after a fixed number of writes, to exercise
// MultiWriter's stop-on-first-error behavior.
type failWriter struct {
	err error
}

func (f *failWriter) Write(_ *model.ScanReport) (int, error)      { return 0, f.err }
func (f *failWriter) WriteAll(_ []*model.ScanReport) (int, error) { return 0, f.err }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, jsonBuf bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&jsonBuf))

		if _, err := mw.Write(sampleReport()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if text.Len() == 0 {
			t.Error("text writer received nothing")
		}
		if jsonBuf.Len() == 0 {
			t.Error("json writer received nothing")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("disk full")
		var buf bytes.Buffer
		mw := NewMultiWriter(&failWriter{err: wantErr}, NewSimpleWriter(&buf))

		if _, err := mw.Write(sampleReport()); !errors.Is(err, wantErr) {
			t.Errorf("error: got %v, want %v", err, wantErr)
		}
		if buf.Len() != 0 {
			t.Error("writer after the failing one should not have been reached")
		}
	})
}
