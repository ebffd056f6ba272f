package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phishscan/phishscan/internal/classifier"
)

// TestDefaultThresholdMatchesClassifier guards the single decision
// boundary shared between the configuration defaults and the model.
func TestDefaultThresholdMatchesClassifier(t *testing.T) {
	t.Parallel()

	if DefaultThreshold != classifier.DefaultThreshold {
		t.Errorf("DefaultThreshold = %v, want the classifier default %v",
			DefaultThreshold, classifier.DefaultThreshold)
	}
}

// TestNewConfig tests the default configuration values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("listen address defaults to loopback", func(t *testing.T) {
		t.Parallel()
		if cfg.ListenAddress != DefaultListenAddress {
			t.Errorf("ListenAddress: got %q, want %q", cfg.ListenAddress, DefaultListenAddress)
		}
		if !strings.HasPrefix(cfg.ListenAddress, "127.0.0.1") {
			t.Errorf("default listen address should be loopback, got %q", cfg.ListenAddress)
		}
	})

	t.Run("check timeout default", func(t *testing.T) {
		t.Parallel()
		if cfg.CheckTimeout != DefaultCheckTimeout {
			t.Errorf("CheckTimeout: got %v, want %v", cfg.CheckTimeout, DefaultCheckTimeout)
		}
	})

	t.Run("threshold default", func(t *testing.T) {
		t.Parallel()
		if cfg.Threshold != DefaultThreshold {
			t.Errorf("Threshold: got %v, want %v", cfg.Threshold, DefaultThreshold)
		}
	})

	t.Run("batch size default", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != DefaultBatchSize {
			t.Errorf("BatchSize: got %d, want %d", cfg.BatchSize, DefaultBatchSize)
		}
	})

	t.Run("format defaults to text", func(t *testing.T) {
		t.Parallel()
		if cfg.Format != FormatText {
			t.Errorf("Format: got %q, want %q", cfg.Format, FormatText)
		}
	})

	t.Run("origins default to wildcard", func(t *testing.T) {
		t.Parallel()
		if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
			t.Errorf("AllowedOrigins: got %v, want [*]", cfg.AllowedOrigins)
		}
	})

	t.Run("optional features are off", func(t *testing.T) {
		t.Parallel()
		if cfg.FetchContent {
			t.Error("FetchContent should default to false")
		}
		if cfg.HistoryDBPath != "" {
			t.Errorf("HistoryDBPath should default to empty, got %q", cfg.HistoryDBPath)
		}
	})
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := NewConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("validates without URLs", func(t *testing.T) {
		t.Parallel()
		// The serve command runs with no URLs configured.
		cfg := NewConfig()
		cfg.URLs = nil
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	testCases := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "empty listen address",
			modify:  func(c *Config) { c.ListenAddress = "" },
			wantErr: ErrNoListenAddress,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.CheckTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.CheckTimeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "threshold at zero",
			modify:  func(c *Config) { c.Threshold = 0 },
			wantErr: ErrInvalidThreshold,
		},
		{
			name:    "threshold at one",
			modify:  func(c *Config) { c.Threshold = 1 },
			wantErr: ErrInvalidThreshold,
		},
		{
			name:    "threshold above one",
			modify:  func(c *Config) { c.Threshold = 1.5 },
			wantErr: ErrInvalidThreshold,
		},
		{
			name:    "zero batch size",
			modify:  func(c *Config) { c.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "negative batch size",
			modify:  func(c *Config) { c.BatchSize = -1 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "unknown format",
			modify:  func(c *Config) { c.Format = "xml" },
			wantErr: ErrInvalidFormat,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tc.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("error: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

// TestHistoryEnabled tests the history switch.
func TestHistoryEnabled(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if cfg.HistoryEnabled() {
		t.Error("history should be disabled without a database path")
	}

	cfg.HistoryDBPath = "/tmp/history.db"
	if !cfg.HistoryEnabled() {
		t.Error("history should be enabled with a database path")
	}
}

// TestFileApply tests applying a configuration file onto a Config.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("set fields override defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cf := &File{
			Listen:         "0.0.0.0:9000",
			ModelPath:      "/models/v2.json",
			Threshold:      0.7,
			CheckTimeout:   "30s",
			FetchContent:   true,
			HistoryDB:      "/data/history.db",
			AllowedOrigins: []string{"https://extension.example"},
			BatchSize:      4,
			Format:         FormatJSON,
			GSBAPIKey:      "gsb-key",
			VTAPIKey:       "vt-key",
		}

		if err := cf.Apply(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ListenAddress != "0.0.0.0:9000" {
			t.Errorf("ListenAddress: got %q", cfg.ListenAddress)
		}
		if cfg.ModelPath != "/models/v2.json" {
			t.Errorf("ModelPath: got %q", cfg.ModelPath)
		}
		if cfg.Threshold != 0.7 {
			t.Errorf("Threshold: got %v", cfg.Threshold)
		}
		if cfg.CheckTimeout != 30*time.Second {
			t.Errorf("CheckTimeout: got %v", cfg.CheckTimeout)
		}
		if !cfg.FetchContent {
			t.Error("FetchContent: expected true")
		}
		if cfg.HistoryDBPath != "/data/history.db" {
			t.Errorf("HistoryDBPath: got %q", cfg.HistoryDBPath)
		}
		if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://extension.example" {
			t.Errorf("AllowedOrigins: got %v", cfg.AllowedOrigins)
		}
		if cfg.BatchSize != 4 {
			t.Errorf("BatchSize: got %d", cfg.BatchSize)
		}
		if cfg.Format != FormatJSON {
			t.Errorf("Format: got %q", cfg.Format)
		}
		if cfg.GSBAPIKey != "gsb-key" || cfg.VTAPIKey != "vt-key" {
			t.Errorf("keys: got %q / %q", cfg.GSBAPIKey, cfg.VTAPIKey)
		}
	})

	t.Run("unset fields keep defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := (&File{}).Apply(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ListenAddress != DefaultListenAddress {
			t.Errorf("ListenAddress changed: got %q", cfg.ListenAddress)
		}
		if cfg.CheckTimeout != DefaultCheckTimeout {
			t.Errorf("CheckTimeout changed: got %v", cfg.CheckTimeout)
		}
		if cfg.Threshold != DefaultThreshold {
			t.Errorf("Threshold changed: got %v", cfg.Threshold)
		}
	})

	t.Run("malformed duration errors", func(t *testing.T) {
		t.Parallel()

		cf := &File{CheckTimeout: "soon"}
		if err := cf.Apply(NewConfig()); err == nil {
			t.Error("expected error for malformed duration")
		}
	})
}

// TestLoadConfigFile tests reading the YAML configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile("/nonexistent/path/.phishscan")
		if err == nil {
			t.Fatal("expected error for non-existent file")
		}
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
		if cf != nil {
			t.Error("expected nil file on error")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".phishscan")
		content := `listen: "127.0.0.1:6000"
threshold: 0.65
check_timeout: "20s"
allowed_origins:
  - "https://extension.example"
format: markdown
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cf.Listen != "127.0.0.1:6000" {
			t.Errorf("Listen: got %q", cf.Listen)
		}
		if cf.Threshold != 0.65 {
			t.Errorf("Threshold: got %v", cf.Threshold)
		}
		if cf.CheckTimeout != "20s" {
			t.Errorf("CheckTimeout: got %q", cf.CheckTimeout)
		}
		if len(cf.AllowedOrigins) != 1 || cf.AllowedOrigins[0] != "https://extension.example" {
			t.Errorf("AllowedOrigins: got %v", cf.AllowedOrigins)
		}
		if cf.Format != FormatMarkdown {
			t.Errorf("Format: got %q", cf.Format)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".phishscan")
		content := `invalid: yaml: content: [}`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests the configuration file search.
func TestFindConfigFile(t *testing.T) {
	t.Run("explicit existing path wins", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("threshold: 0.6\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		got := FindConfigFile(configPath)
		if got != configPath {
			t.Errorf("got %q, want %q", got, configPath)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		got := FindConfigFile("/nonexistent/custom.yaml")
		if got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("finds default file in current directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)

		configPath := filepath.Join(tmpDir, DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte("threshold: 0.6\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		got := FindConfigFile("")
		if got != configPath {
			t.Errorf("got %q, want %q", got, configPath)
		}
	})
}

// TestLoadEnvironment tests credential loading from the environment.
func TestLoadEnvironment(t *testing.T) {
	t.Run("environment values apply", func(t *testing.T) {
		t.Chdir(t.TempDir()) // keep a stray .env out of the test
		t.Setenv(EnvGSBAPIKey, "env-gsb")
		t.Setenv(EnvVTAPIKey, "env-vt")
		t.Setenv(EnvModelPath, "/env/model.json")

		cfg := NewConfig()
		cfg.LoadEnvironment()

		if cfg.GSBAPIKey != "env-gsb" {
			t.Errorf("GSBAPIKey: got %q", cfg.GSBAPIKey)
		}
		if cfg.VTAPIKey != "env-vt" {
			t.Errorf("VTAPIKey: got %q", cfg.VTAPIKey)
		}
		if cfg.ModelPath != "/env/model.json" {
			t.Errorf("ModelPath: got %q", cfg.ModelPath)
		}
	})

	t.Run("empty environment keeps existing values", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv(EnvGSBAPIKey, "")
		t.Setenv(EnvVTAPIKey, "")
		t.Setenv(EnvModelPath, "")

		cfg := NewConfig()
		cfg.GSBAPIKey = "file-key"
		cfg.LoadEnvironment()

		if cfg.GSBAPIKey != "file-key" {
			t.Errorf("GSBAPIKey: got %q, want file-key", cfg.GSBAPIKey)
		}
	})

	t.Run("dotenv file in working directory applies", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)
		// godotenv never overrides variables already present in the
		// environment, so the key must be truly unset for the .env file
		// to take effect. t.Setenv registers the restore, Unsetenv
		// clears the value.
		t.Setenv(EnvVTAPIKey, "")
		if err := os.Unsetenv(EnvVTAPIKey); err != nil {
			t.Fatalf("failed to unset env: %v", err)
		}

		content := EnvVTAPIKey + "=dotenv-vt\n"
		if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(content), 0600); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}

		cfg := NewConfig()
		cfg.LoadEnvironment()

		if cfg.VTAPIKey != "dotenv-vt" {
			t.Errorf("VTAPIKey: got %q, want dotenv-vt", cfg.VTAPIKey)
		}
	})
}

// TestXDGDirs tests the XDG directory helpers.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if dir == "" {
			t.Errorf("%s dir is empty", name)
		}
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir should end with %q, got %q", name, AppName, dir)
		}
	}

	if filepath.Base(DefaultHistoryDBPath()) != "history.db" {
		t.Errorf("history path should end with history.db, got %q", DefaultHistoryDBPath())
	}
}
