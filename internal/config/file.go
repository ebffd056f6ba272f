package config

import (
	"fmt"
	"time"
)

// File represents the structure of the phishscan configuration file.
// All fields are optional; unset fields leave the corresponding Config
// value untouched when Apply is called.
//
// Durations are YAML strings in Go syntax ("15s", "1m30s") because the
// YAML decoder has no native duration type.
type File struct {
	// Listen is the host:port for the HTTP service.
	Listen string `yaml:"listen,omitempty"`

	// ModelPath points to a classifier artifact file on disk.
	ModelPath string `yaml:"model_path,omitempty"`

	// Threshold is the phishing probability cutoff for the model vote.
	Threshold float64 `yaml:"threshold,omitempty"`

	// CheckTimeout bounds a single URL check, e.g. "15s".
	CheckTimeout string `yaml:"check_timeout,omitempty"`

	// FetchContent enables page download for content features.
	// The file can only switch this on; flags take precedence either way
	// because they are applied after the file.
	FetchContent bool `yaml:"fetch_content,omitempty"`

	// HistoryDB is the SQLite file recording past check results.
	HistoryDB string `yaml:"history_db,omitempty"`

	// AllowedOrigins lists CORS origins for the HTTP service.
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`

	// BatchSize limits concurrent checks for multi-URL runs.
	BatchSize int `yaml:"batch_size,omitempty"`

	// Format selects the report renderer: text, json, or markdown.
	Format string `yaml:"format,omitempty"`

	// GSBAPIKey is the Google Safe Browsing API key.
	// Prefer the GOOGLE_API_KEY environment variable; environment values
	// override file values so a key never has to live on disk.
	GSBAPIKey string `yaml:"gsb_api_key,omitempty"`

	// VTAPIKey is the VirusTotal API key.
	// Prefer the VIRUSTOTAL_API_KEY environment variable.
	VTAPIKey string `yaml:"vt_api_key,omitempty"`
}

// Apply copies every set field of the file onto cfg.
// Unset fields (zero values) are skipped, so defaults survive a sparse file.
// It returns an error only when a field fails to parse, such as a malformed
// duration string.
func (cf *File) Apply(cfg *Config) error {
	if cf.Listen != "" {
		cfg.ListenAddress = cf.Listen
	}
	if cf.ModelPath != "" {
		cfg.ModelPath = cf.ModelPath
	}
	if cf.Threshold != 0 {
		cfg.Threshold = cf.Threshold
	}
	if cf.CheckTimeout != "" {
		d, err := time.ParseDuration(cf.CheckTimeout)
		if err != nil {
			return fmt.Errorf("config: parse check_timeout: %w", err)
		}
		cfg.CheckTimeout = d
	}
	if cf.FetchContent {
		cfg.FetchContent = true
	}
	if cf.HistoryDB != "" {
		cfg.HistoryDBPath = cf.HistoryDB
	}
	if len(cf.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = cf.AllowedOrigins
	}
	if cf.BatchSize != 0 {
		cfg.BatchSize = cf.BatchSize
	}
	if cf.Format != "" {
		cfg.Format = cf.Format
	}
	if cf.GSBAPIKey != "" {
		cfg.GSBAPIKey = cf.GSBAPIKey
	}
	if cf.VTAPIKey != "" {
		cfg.VTAPIKey = cf.VTAPIKey
	}
	return nil
}
