package main

import (
	"testing"

	"github.com/phishscan/phishscan/internal/config"
)

// TestNewServeCmd tests the serve command creation.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "serve" {
			t.Errorf("expected use 'serve', got %q", cmd.Use)
		}
	})

	t.Run("registers expected flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"config", "timeout", "threshold", "model", "history-db",
			"listen", "fetch-content",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})

	t.Run("listen defaults to loopback", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("listen")
		if flag == nil {
			t.Fatal("expected listen flag")
		}
		if flag.DefValue != config.DefaultListenAddress {
			t.Errorf("expected default %q, got %q", config.DefaultListenAddress, flag.DefValue)
		}
	})

	t.Run("rejects positional arguments", func(t *testing.T) {
		t.Parallel()
		cmd := NewServeCmd()
		cmd.SetArgs([]string{"https://example.com"})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error for positional argument")
		}
	})
}

// TestBuildConfigServe tests serve-specific configuration assembly.
func TestBuildConfigServe(t *testing.T) {
	t.Run("listen flag rebinds the service", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cmd := NewServeCmd()
		if err := cmd.ParseFlags([]string{"--listen", "0.0.0.0:8080"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddress != "0.0.0.0:8080" {
			t.Errorf("listen: got %q, want 0.0.0.0:8080", cfg.ListenAddress)
		}
	})

	t.Run("defaults keep loopback", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cmd := NewServeCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddress != config.DefaultListenAddress {
			t.Errorf("listen: got %q, want %q", cfg.ListenAddress, config.DefaultListenAddress)
		}
	})

	t.Run("fetch-content flag enables enrichment", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cmd := NewServeCmd()
		if err := cmd.ParseFlags([]string{"--fetch-content"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.FetchContent {
			t.Error("expected fetch-content flag to enable enrichment")
		}
	})
}
