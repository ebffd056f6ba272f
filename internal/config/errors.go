package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoURL is returned when a check run is started without any URL.
	// It is enforced by the check command rather than Validate() because
	// the serve command legitimately runs with no URLs configured.
	ErrNoURL = errors.New("no URL specified: provide at least one URL to check")

	// ErrNoListenAddress is returned when the HTTP listen address is empty.
	// An empty address would bind an ephemeral port on all interfaces,
	// which is never what an operator intended.
	ErrNoListenAddress = errors.New("no listen address specified: provide host:port for the HTTP service")

	// ErrInvalidTimeout is returned when the check timeout is not positive.
	// A timeout of zero or negative would cancel checks immediately.
	ErrInvalidTimeout = errors.New("invalid check timeout: must be positive")

	// ErrInvalidThreshold is returned when the model threshold is outside
	// the open interval (0, 1). At the endpoints the model vote is fixed
	// regardless of the URL, which defeats the purpose of the classifier.
	ErrInvalidThreshold = errors.New("invalid threshold: must be between 0 and 1 exclusive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent checks, effectively
	// stopping the run.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidFormat is returned when the report format is not one of
	// text, json, or markdown.
	ErrInvalidFormat = errors.New("invalid format: must be text, json, or markdown")
)
