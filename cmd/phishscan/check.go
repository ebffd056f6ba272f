package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phishscan/phishscan/internal/checker"
	"github.com/phishscan/phishscan/internal/classifier"
	"github.com/phishscan/phishscan/internal/config"
	"github.com/phishscan/phishscan/internal/history"
	"github.com/phishscan/phishscan/internal/log"
	"github.com/phishscan/phishscan/internal/model"
	"github.com/phishscan/phishscan/internal/report"
	"github.com/phishscan/phishscan/internal/reputation"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [url]...",
		Short: "Check one or more URLs for phishing",
		Long: `Check classifies each URL as Phishing, Suspicious, or Legitimate.

Three sources vote on every URL: the local model, Google Safe Browsing,
and VirusTotal. The final verdict is the majority vote. A source that
fails or has no API key votes Suspicious without failing the check.

Examples:
  # Check a single URL
  phishscan check http://paypal-secure-login.verify-account.tk/reset

  # Check multiple URLs concurrently
  phishscan check https://example.com https://example.org

  # Output JSON report
  phishscan check --json https://example.com

  # Fetch the page so content features feed the model
  phishscan check --fetch-content https://example.com

  # Record results in the history database
  phishscan check --save https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	addConfigFlags(cmd)

	// Check behavior flags
	cmd.Flags().Bool("fetch-content", false,
		"Download the page body so content features feed the model (contacts the suspect site)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent checks for multi-URL runs")

	// History flags
	cmd.Flags().Bool("save", false,
		"Record results in the history database")

	// Report flags
	cmd.Flags().String("format", "",
		"Report format: text, json, or markdown (default from config, text otherwise)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (shorthand for --format json)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (shorthand for --format markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// addConfigFlags registers the flags shared by check and serve.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .phishscan in current or home directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultCheckTimeout,
		"Timeout for a single URL check end to end")
	cmd.Flags().Float64("threshold", config.DefaultThreshold,
		"Phishing probability at or above which the model votes Phishing")
	cmd.Flags().String("model", "",
		"Path to a classifier artifact file (default: embedded artifact)")
	cmd.Flags().String("history-db", "",
		"SQLite file for check history (default: history.db in the XDG data directory)")
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if len(cfg.URLs) == 0 {
		return config.ErrNoURL
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runCheck(ctx, cfg, logger)
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config for the check and serve commands.
// Sources apply in precedence order: defaults, then the config file,
// then environment variables, then explicitly set flags. A flag left at
// its default never overrides a file or environment value.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	configPathFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPathFlag

	// Load the configuration file. An explicitly specified file must
	// exist; the default search silently falls through to defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, err
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Environment overrides the file so keys never have to live on disk.
	cfg.LoadEnvironment()

	if cmd.Flags().Changed("timeout") {
		cfg.CheckTimeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Threshold, err = cmd.Flags().GetFloat64("threshold")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("model") {
		cfg.ModelPath, err = cmd.Flags().GetString("model")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("history-db") {
		cfg.HistoryDBPath, err = cmd.Flags().GetString("history-db")
		if err != nil {
			return nil, err
		}
	}

	if err := applyCheckFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := applyServeFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.URLs = args

	return cfg, nil
}

// applyCheckFlags applies flags only the check command registers.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Lookup("batch") == nil {
		return nil
	}

	var err error
	if cmd.Flags().Changed("batch") {
		cfg.BatchSize, err = cmd.Flags().GetInt("batch")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("fetch-content") {
		cfg.FetchContent, err = cmd.Flags().GetBool("fetch-content")
		if err != nil {
			return err
		}
	}

	save, err := cmd.Flags().GetBool("save")
	if err != nil {
		return err
	}
	if save && cfg.HistoryDBPath == "" {
		cfg.HistoryDBPath = config.DefaultHistoryDBPath()
	}
	if !save && !cmd.Flags().Changed("history-db") {
		// Without --save the check command does not persist, even when
		// the config file names a history database for serve.
		cfg.HistoryDBPath = ""
	}

	if cmd.Flags().Changed("format") {
		cfg.Format, err = cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
	}
	jsonReport, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownReport, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonReport && markdownReport {
		return fmt.Errorf("--json and --markdown are mutually exclusive")
	}
	if jsonReport {
		cfg.Format = config.FormatJSON
	}
	if markdownReport {
		cfg.Format = config.FormatMarkdown
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	return nil
}

// newChecker builds the checker shared by the check and serve commands:
// classifier, both reputation sources, and optional content enrichment.
// Extra options let serve attach its metrics instruments.
func newChecker(cfg *config.Config, logger *slog.Logger, extra ...checker.Option) (*checker.Checker, error) {
	var (
		clf *classifier.Classifier
		err error
	)
	if cfg.ModelPath != "" {
		clf, err = classifier.Load(cfg.ModelPath, classifier.WithThreshold(cfg.Threshold))
	} else {
		clf, err = classifier.LoadEmbedded(classifier.WithThreshold(cfg.Threshold))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load classifier: %w", err)
	}
	logger.Debug("classifier loaded",
		"version", clf.Version(),
		"path", cfg.ModelPath,
	)

	opts := append([]checker.Option{
		checker.WithLogger(logger),
		checker.WithEnrichment(cfg.FetchContent),
	}, extra...)
	return checker.New(
		clf,
		reputation.NewSafeBrowsing(cfg.GSBAPIKey),
		reputation.NewVirusTotal(cfg.VTAPIKey),
		opts...,
	)
}

// runCheck executes the check run.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	chk, err := newChecker(cfg, logger)
	if err != nil {
		return err
	}

	var store *history.Store
	if cfg.HistoryEnabled() {
		store, err = history.Open(cfg.HistoryDBPath, history.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer store.Close()
		logger.Debug("history database opened", "path", store.Path())
	}

	start := time.Now()
	reports, err := checkURLs(ctx, cfg, chk, logger)
	if err != nil {
		return err
	}
	logger.Info("check complete",
		"urls", len(cfg.URLs),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if store != nil {
		saveReports(ctx, store, reports, logger)
	}

	return outputReports(cfg, reports)
}

// checkURLs runs either a single check or a concurrent batch.
func checkURLs(ctx context.Context, cfg *config.Config, chk *checker.Checker, logger *slog.Logger) ([]*model.ScanReport, error) {
	if len(cfg.URLs) == 1 {
		report, err := chk.Check(ctx, cfg.URLs[0])
		if err != nil {
			return nil, err
		}
		return []*model.ScanReport{report}, nil
	}

	runner := checker.NewBatchRunner(chk,
		checker.WithBatchConcurrency(cfg.BatchSize),
		checker.WithBatchLogger(logger),
	)
	return runner.Run(ctx, cfg.URLs)
}

// saveReports records each completed report. Persistence is best-effort:
// a failed write logs and the report still prints.
func saveReports(ctx context.Context, store *history.Store, reports []*model.ScanReport, logger *slog.Logger) {
	for _, r := range reports {
		if r == nil || r.Error != "" {
			continue
		}
		if _, err := store.Save(ctx, r); err != nil {
			logger.Warn("failed to save check to history", "url", r.URL, "error", err)
		}
	}
}

// outputReports renders the reports in the configured format.
func outputReports(cfg *config.Config, reports []*model.ScanReport) error {
	output, closeOutput, err := openReportOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer := newReportWriter(cfg, output)
	if len(reports) == 1 {
		_, err = writer.Write(reports[0])
		return err
	}
	_, err = writer.WriteAll(reports)
	return err
}

// newReportWriter selects the writer matching cfg.Format.
// Validate already rejected unknown formats, so the default arm is the
// human-readable writer.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch cfg.Format {
	case config.FormatJSON:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case config.FormatMarkdown:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// openReportOutput returns the report destination: the named file, or
// stdout when no file is configured. The returned closer is a no-op for
// stdout.
func openReportOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports name suspect URLs and verdicts; keep them owner-readable only
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil //nolint:errcheck // Best effort close
}
