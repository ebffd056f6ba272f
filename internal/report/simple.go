package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/phishscan/phishscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables additional detail in the output, such as the
	// exact model probability and check duration.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one check report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb)
	w.writeReport(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteAll outputs the batch with one section per report and a shared
// header and footer.
func (w *SimpleWriter) WriteAll(reports []*model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb)
	for i, report := range reports {
		if i > 0 {
			sb.WriteString(strings.Repeat("-", 70))
			sb.WriteString("\n\n")
		}
		w.writeReport(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report banner.
func (w *SimpleWriter) writeHeader(sb *strings.Builder) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         PHISHSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

// writeReport writes one URL's check result.
func (w *SimpleWriter) writeReport(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(fmt.Sprintf("URL:           %s\n", report.URL))
	if !report.CheckedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Checked:       %s\n", report.CheckedAt.Format("2006-01-02 15:04:05 MST")))
	}

	if report.Error != "" {
		sb.WriteString(fmt.Sprintf("Status:        ERROR - %s\n\n", report.Error))
		return
	}

	sb.WriteString(fmt.Sprintf("Final Verdict: %s %s\n\n", verdictIndicator(report.FinalVerdict), report.FinalVerdict))

	sb.WriteString("Source verdicts:\n")
	sb.WriteString(fmt.Sprintf("  %-22s %s\n", model.SourceDisplayName(model.SourceModel)+":", report.Details.Model))
	sb.WriteString(fmt.Sprintf("  %-22s %s\n", model.SourceDisplayName(model.SourceSafeBrowsing)+":", report.Details.SafeBrowsing))
	sb.WriteString(fmt.Sprintf("  %-22s %s\n", model.SourceDisplayName(model.SourceVirusTotal)+":", report.Details.VirusTotal))
	sb.WriteString("\n")

	if len(report.Traits) > 0 {
		sb.WriteString("Notable traits:\n")
		for _, trait := range report.Traits {
			if trait.Detail != "" {
				sb.WriteString(fmt.Sprintf("  * %s (%s)\n", trait.Title, trait.Detail))
			} else {
				sb.WriteString(fmt.Sprintf("  * %s\n", trait.Title))
			}
		}
		sb.WriteString("\n")
	}

	if w.verbose {
		sb.WriteString(fmt.Sprintf("Model probability: %.4f\n", report.ModelProbability))
		if report.ModelVersion != "" {
			sb.WriteString(fmt.Sprintf("Model version:     %s\n", report.ModelVersion))
		}
		sb.WriteString(fmt.Sprintf("Content features:  %s\n", contentStatus(report.ContentFetched)))
		sb.WriteString(fmt.Sprintf("Duration:          %dms\n", report.DurationMS))
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by phishscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// verdictIndicator returns a visual indicator for the verdict.
func verdictIndicator(v model.Verdict) string {
	switch v {
	case model.VerdictPhishing:
		return "[!!]"
	case model.VerdictSuspicious:
		return "[?]"
	case model.VerdictLegitimate:
		return "[ok]"
	default:
		return "[?]"
	}
}

// contentStatus describes whether content features were live or defaults.
func contentStatus(fetched bool) string {
	if fetched {
		return "fetched from live page"
	}
	return "defaults (page not fetched)"
}
