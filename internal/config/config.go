package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/phishscan/phishscan/internal/classifier"
)

// Default configuration values.
// These values are chosen for a single-user service that answers a browser
// extension on the same machine, with conservative limits on outbound traffic.
const (
	// DefaultListenAddress binds the HTTP API to loopback on port 5000.
	// The service exists to answer a browser extension running on the same
	// host, so it stays off external interfaces unless explicitly rebound.
	DefaultListenAddress = "127.0.0.1:5000"

	// DefaultCheckTimeout is set to 15 seconds because a single check fans
	// out to two reputation APIs and optionally fetches the page itself.
	// Each leg carries its own shorter timeout; this bounds the whole check.
	DefaultCheckTimeout = 15 * time.Second

	// DefaultBatchSize of 8 concurrent checks balances throughput with
	// politeness toward the reputation APIs. Higher values risk rate
	// limiting, especially on free-tier VirusTotal keys.
	DefaultBatchSize = 8

	// DefaultThreshold is the model probability at or above which the
	// classifier votes Phishing. It is the classifier's own default, so
	// flag defaults, validation, and the model share one decision
	// boundary. Raise it to trade recall for precision.
	DefaultThreshold = classifier.DefaultThreshold

	// AppName is the application name used for XDG directory paths.
	AppName = "phishscan"
)

// Report formats accepted by Validate and the --format flag.
const (
	// FormatText renders a human-readable summary for terminal use.
	FormatText = "text"

	// FormatJSON emits the full report as indented JSON.
	FormatJSON = "json"

	// FormatMarkdown emits GitHub Flavored Markdown with tables and alerts.
	FormatMarkdown = "markdown"
)

// DefaultFormat is the report format used when none is specified.
const DefaultFormat = FormatText

// Config holds all configuration options for phishscan.
// This struct is designed to be populated from defaults, an optional YAML
// file, environment variables, and CLI flags (in that order, later sources
// winning), then passed through the application via dependency injection
// rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ServerConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// ListenAddress is the host:port the HTTP service binds to.
	// Defaults to loopback; bind 0.0.0.0 deliberately if the service must
	// be reachable from other machines.
	ListenAddress string

	// CheckTimeout bounds a single URL check end to end, including both
	// reputation lookups and the optional page fetch.
	CheckTimeout time.Duration

	// Threshold is the phishing probability at or above which the model
	// votes Phishing. Must be strictly between 0 and 1.
	Threshold float64

	// ModelPath points to a classifier artifact file on disk.
	// When empty, the artifact embedded in the binary is used.
	ModelPath string

	// GSBAPIKey authenticates Google Safe Browsing lookups.
	// When empty the source is skipped and contributes a Suspicious vote.
	GSBAPIKey string

	// VTAPIKey authenticates VirusTotal lookups.
	// When empty the source is skipped and contributes a Suspicious vote.
	VTAPIKey string

	// FetchContent enables downloading the page body so that content
	// features (external links, form targets, script tricks) feed the
	// model. Off by default because it contacts the suspect site directly.
	FetchContent bool

	// HistoryDBPath is the SQLite file that records past check results for
	// verdict-over-time queries. When empty, results are not persisted.
	HistoryDBPath string

	// AllowedOrigins lists the CORS origins the HTTP service accepts.
	// Defaults to ["*"] so browser extensions work out of the box.
	AllowedOrigins []string

	// BatchSize is the number of concurrent checks when processing
	// multiple URLs. Higher values increase throughput but may trip
	// reputation API rate limits.
	BatchSize int

	// Format selects the report renderer: text, json, or markdown.
	Format string

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only informational messages and above are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .phishscan in the current directory,
	// then config.yaml in the XDG config directory, then .phishscan in the
	// user's home directory.
	ConfigFilePath string

	// URLs are the targets for a one-shot check run.
	// Unused by the serve command, which receives URLs over HTTP.
	URLs []string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, threshold).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ListenAddress:  DefaultListenAddress,
		CheckTimeout:   DefaultCheckTimeout,
		Threshold:      DefaultThreshold,
		BatchSize:      DefaultBatchSize,
		Format:         DefaultFormat,
		AllowedOrigins: []string{"*"},
	}
}

// HistoryEnabled reports whether check results should be persisted.
// History is keyed off the database path so there is exactly one switch.
func (c *Config) HistoryEnabled() bool {
	return c.HistoryDBPath != ""
}

// XDGDataDir returns the XDG data directory for phishscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/phishscan
// On macOS: ~/Library/Application Support/phishscan
// On Windows: %LOCALAPPDATA%\phishscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for phishscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/phishscan
// On macOS: ~/Library/Application Support/phishscan
// On Windows: %APPDATA%\phishscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for phishscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/phishscan
// On macOS: ~/Library/Caches/phishscan
// On Windows: %LOCALAPPDATA%\phishscan\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// DefaultHistoryDBPath returns the conventional location for the history
// database under the XDG data directory. Commands that enable history
// without an explicit path use this value.
func DefaultHistoryDBPath() string {
	return filepath.Join(XDGDataDir(), "history.db")
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any checking begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
//
// Note that Validate does not require URLs: the serve command runs without
// any. The check command enforces ErrNoURL itself.
func (c *Config) Validate() error {
	// The serve command dereferences this unconditionally, and an empty
	// address would silently bind an ephemeral port on all interfaces.
	if c.ListenAddress == "" {
		return ErrNoListenAddress
	}

	// Timeout must be positive; zero timeout would cancel every check
	// before the first network call completes
	if c.CheckTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// Threshold at 0 would convict every URL, at 1 would clear every URL;
	// both endpoints make the model vote meaningless
	if c.Threshold <= 0 || c.Threshold >= 1 {
		return ErrInvalidThreshold
	}

	// BatchSize must be positive; zero would mean no checking
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		return ErrInvalidFormat
	}

	return nil
}
