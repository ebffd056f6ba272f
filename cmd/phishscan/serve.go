package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/phishscan/phishscan/internal/api"
	"github.com/phishscan/phishscan/internal/checker"
	"github.com/phishscan/phishscan/internal/config"
	"github.com/phishscan/phishscan/internal/history"
	"github.com/phishscan/phishscan/internal/log"
	"github.com/phishscan/phishscan/internal/metrics"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP checking service",
		Long: `Serve runs the HTTP service that answers URL check requests.

The service exposes:
  POST /check    {"url": "..."} -> final verdict plus per-source verdicts
  GET  /health   service status and model version
  GET  /metrics  Prometheus metrics

It binds to loopback by default so only the local machine (typically a
browser extension) can reach it. Use --listen to rebind.

Examples:
  # Serve on the default loopback address
  phishscan serve

  # Serve on all interfaces
  phishscan serve --listen 0.0.0.0:5000

  # Enable content enrichment and history recording
  phishscan serve --fetch-content --history-db ~/.local/share/phishscan/history.db`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addConfigFlags(cmd)

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Address for the HTTP service (host:port)")
	cmd.Flags().Bool("fetch-content", false,
		"Download page bodies so content features feed the model (contacts suspect sites)")

	return cmd
}

// applyServeFlags applies flags only the serve command registers.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Lookup("listen") == nil {
		return nil
	}

	var err error
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddress, err = cmd.Flags().GetString("listen")
		if err != nil {
			return err
		}
	}
	// The check command applies fetch-content itself; reaching this point
	// means serve owns the flag.
	if cmd.Flags().Lookup("batch") == nil && cmd.Flags().Changed("fetch-content") {
		cfg.FetchContent, err = cmd.Flags().GetBool("fetch-content")
		if err != nil {
			return err
		}
	}

	return nil
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	chk, err := newChecker(cfg, logger, checker.WithMetrics(m))
	if err != nil {
		return err
	}

	opts := []api.Option{
		api.WithLogger(logger),
		api.WithMetrics(m, reg),
		api.WithVersion(getVersion()),
	}

	if cfg.HistoryEnabled() {
		store, err := history.Open(cfg.HistoryDBPath, history.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer store.Close()
		logger.Info("history database opened", "path", store.Path())
		opts = append(opts, api.WithHistory(store))
	}

	server, err := api.NewServer(cfg, chk, opts...)
	if err != nil {
		return err
	}

	logger.Info("starting HTTP service",
		"address", cfg.ListenAddress,
		"model_version", chk.ModelVersion(),
		"gsb_configured", cfg.GSBAPIKey != "",
		"vt_configured", cfg.VTAPIKey != "",
		"fetch_content", cfg.FetchContent,
		"history", cfg.HistoryEnabled(),
	)

	return server.Start(ctx)
}
