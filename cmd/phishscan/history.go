package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phishscan/phishscan/internal/config"
	"github.com/phishscan/phishscan/internal/history"
	"github.com/phishscan/phishscan/internal/model"
)

// NewHistoryCmd creates the history command.
// This command inspects past check results recorded in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show how a URL's verdict changed over time",
		Long: `History displays past check results recorded in the history database.

For a URL it lists the recorded checks newest first and summarizes the
verdict transitions between consecutive checks: worsened (toward
Phishing), improved (toward Legitimate), or unchanged.

Results are recorded by 'phishscan check --save' and by the serve
command when a history database is configured.

Examples:
  # Show the verdict timeline for a URL
  phishscan history https://example.com

  # Limit to the five most recent checks
  phishscan history -n 5 https://example.com

  # List every URL in the database
  phishscan history --list-urls

  # Output the timeline as JSON
  phishscan history --json https://example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-urls", "L", false,
		"List all URLs recorded in the history database")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of checks to show")
	cmd.Flags().BoolP("json", "j", false,
		"Output the timeline in JSON format")
	cmd.Flags().String("history-db", config.DefaultHistoryDBPath(),
		"SQLite file holding check history")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listURLs, err := cmd.Flags().GetBool("list-urls")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so a missing URL
	// fails fast without touching the file.
	if !listURLs && len(args) == 0 {
		return errors.New("URL is required (use --list-urls to see recorded URLs)")
	}

	dbPath, err := cmd.Flags().GetString("history-db")
	if err != nil {
		return err
	}

	// The history command only reads; a missing database is an error,
	// not something to silently create.
	store, err := history.Open(dbPath, history.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if listURLs {
		return listCheckedURLs(ctx, cmd, store)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	return showTimeline(ctx, cmd, store, args[0], limit, jsonOutput)
}

// listCheckedURLs lists every URL with at least one recorded check.
func listCheckedURLs(ctx context.Context, cmd *cobra.Command, store *history.Store) error {
	urls, err := store.ListURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list URLs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(urls) == 0 {
		fmt.Fprintln(out, "No checks recorded in the history database.")
		fmt.Fprintln(out, "\nUse 'phishscan check --save <url>' to record a check.")
		return nil
	}

	fmt.Fprintf(out, "Recorded URLs (%d):\n\n", len(urls))
	for _, url := range urls {
		fmt.Fprintf(out, "  • %s\n", url)
	}
	fmt.Fprintln(out, "\nUse 'phishscan history <url>' to see a URL's verdict timeline.")

	return nil
}

// timelineEntry is the JSON shape for one recorded check.
type timelineEntry struct {
	// ID is the database identifier of the check.
	ID int64 `json:"id"`

	// Report is the stored check result.
	Report model.ScanReport `json:"report"`
}

// timelineOutput is the JSON shape for the history command.
type timelineOutput struct {
	// URL is the checked URL.
	URL string `json:"url"`

	// Checks are the recorded checks, newest first.
	Checks []timelineEntry `json:"checks"`

	// Changes summarize verdict transitions, oldest first.
	Changes []changeOutput `json:"changes,omitempty"`
}

// changeOutput is the JSON shape for one verdict transition.
type changeOutput struct {
	// From is the older verdict.
	From model.Verdict `json:"from"`

	// To is the newer verdict.
	To model.Verdict `json:"to"`

	// Direction is worsened, improved, or unchanged.
	Direction string `json:"direction"`
}

// showTimeline prints a URL's recorded checks and verdict transitions.
func showTimeline(ctx context.Context, cmd *cobra.Command, store *history.Store, url string, limit int, jsonOutput bool) error {
	timeline, err := store.Timeline(ctx, url, limit)
	if err != nil {
		return fmt.Errorf("failed to load timeline: %w", err)
	}

	if len(timeline) == 0 {
		return fmt.Errorf("no checks recorded for %s", url)
	}

	changes := history.Changes(timeline)

	if jsonOutput {
		return outputTimelineJSON(cmd, url, timeline, changes)
	}
	return outputTimelineText(cmd, url, timeline, changes)
}

// outputTimelineJSON prints the timeline in JSON format.
func outputTimelineJSON(cmd *cobra.Command, url string, timeline []history.Entry, changes []history.Change) error {
	out := timelineOutput{URL: url}
	for _, entry := range timeline {
		out.Checks = append(out.Checks, timelineEntry{ID: entry.ID, Report: entry.Report})
	}
	for _, change := range changes {
		out.Changes = append(out.Changes, changeOutput{
			From:      change.From.Report.FinalVerdict,
			To:        change.To.Report.FinalVerdict,
			Direction: change.Direction,
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// outputTimelineText prints the timeline in human-readable text format.
func outputTimelineText(cmd *cobra.Command, url string, timeline []history.Entry, changes []history.Change) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Check history for %s (%d checks):\n\n", url, len(timeline))
	fmt.Fprintf(out, "  %-6s  %-20s  %-11s  %s\n", "ID", "Date", "Final", "Sources (model/gsb/vt)")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))

	for _, entry := range timeline {
		r := entry.Report
		fmt.Fprintf(out, "  %-6d  %-20s  %-11s  %s / %s / %s\n",
			entry.ID,
			r.CheckedAt.Format("2006-01-02 15:04:05"),
			r.FinalVerdict,
			r.Details.Model,
			r.Details.SafeBrowsing,
			r.Details.VirusTotal,
		)
	}

	if len(changes) > 0 {
		fmt.Fprintf(out, "\nVerdict changes (%d):\n", len(changes))
		for _, change := range changes {
			fmt.Fprintf(out, "  %s  %s -> %s (%s)\n",
				change.To.Report.CheckedAt.Format("2006-01-02 15:04:05"),
				change.From.Report.FinalVerdict,
				change.To.Report.FinalVerdict,
				formatDirection(change.Direction),
			)
		}
	} else {
		fmt.Fprintln(out, "\nOnly one check recorded; no verdict changes yet.")
	}

	return nil
}

// formatDirection annotates the change direction for display.
func formatDirection(direction string) string {
	switch direction {
	case history.DirectionWorsened:
		return "WORSENED: moved toward Phishing"
	case history.DirectionImproved:
		return "IMPROVED: moved toward Legitimate"
	default:
		return "unchanged"
	}
}
