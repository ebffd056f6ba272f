package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/phishscan/phishscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one check report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Phishscan Report")
	md.PlainText("")
	w.writeReport(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteAll outputs the batch with one section per report plus a verdict
// distribution chart.
func (w *MarkdownWriter) WriteAll(reports []*model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Phishscan Report")
	md.PlainText("")
	w.writeDistribution(md, reports)

	for _, report := range reports {
		w.writeReport(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeReport writes one URL's section.
func (w *MarkdownWriter) writeReport(md *markdown.Markdown, report *model.ScanReport) {
	md.H2(report.URL)
	md.PlainText("")

	if report.Error != "" {
		md.Cautionf("Check failed: %s", report.Error)
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Source", "Verdict"},
		Rows: [][]string{
			{model.SourceDisplayName(model.SourceModel), verdictBadge(report.Details.Model)},
			{model.SourceDisplayName(model.SourceSafeBrowsing), verdictBadge(report.Details.SafeBrowsing)},
			{model.SourceDisplayName(model.SourceVirusTotal), verdictBadge(report.Details.VirusTotal)},
			{"**Final**", "**" + verdictBadge(report.FinalVerdict) + "**"},
		},
	})
	md.PlainText("")

	w.writeAlert(md, report)

	if len(report.Traits) > 0 {
		md.PlainText("**Notable traits**")
		md.PlainText("")
		items := make([]string, 0, len(report.Traits))
		for _, trait := range report.Traits {
			if trait.Detail != "" {
				items = append(items, fmt.Sprintf("%s (`%s`)", trait.Title, trait.Detail))
			} else {
				items = append(items, trait.Title)
			}
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Model probability", fmt.Sprintf("%.4f", report.ModelProbability)},
			{"Model version", orDash(report.ModelVersion)},
			{"Content features", contentStatus(report.ContentFetched)},
			{"Checked", report.CheckedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", strconv.FormatInt(report.DurationMS, 10) + "ms"},
		},
	})
	md.PlainText("")
}

// writeAlert writes an alert matching the final verdict.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ScanReport) {
	switch report.FinalVerdict {
	case model.VerdictPhishing:
		md.Caution("This URL was classified as phishing. Do not enter credentials or personal data.")
	case model.VerdictSuspicious:
		md.Important("The sources disagree or lack data for this URL. Treat it with caution.")
	case model.VerdictLegitimate:
		md.Tip("No source flagged this URL.")
	}
	md.PlainText("")
}

// writeDistribution writes a mermaid pie chart of final verdicts across
// the batch. Skipped for single-report output where it carries no
// information.
func (w *MarkdownWriter) writeDistribution(md *markdown.Markdown, reports []*model.ScanReport) {
	if len(reports) < 2 {
		return
	}

	var phishing, legitimate, suspicious uint64
	for _, report := range reports {
		switch report.FinalVerdict {
		case model.VerdictPhishing:
			phishing++
		case model.VerdictLegitimate:
			legitimate++
		case model.VerdictSuspicious:
			suspicious++
		}
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Final Verdict Distribution"),
		piechart.WithShowData(true),
	)
	if phishing > 0 {
		chart.LabelAndIntValue("Phishing", phishing)
	}
	if legitimate > 0 {
		chart.LabelAndIntValue("Legitimate", legitimate)
	}
	if suspicious > 0 {
		chart.LabelAndIntValue("Suspicious", suspicious)
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by phishscan*")
}

// verdictBadge returns the verdict with a color indicator for tables.
func verdictBadge(v model.Verdict) string {
	switch v {
	case model.VerdictPhishing:
		return "🔴 Phishing"
	case model.VerdictSuspicious:
		return "🟡 Suspicious"
	case model.VerdictLegitimate:
		return "🟢 Legitimate"
	default:
		return "🟡 Suspicious"
	}
}

// orDash substitutes "-" for empty table cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
