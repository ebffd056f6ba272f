package reputation

import "errors"

// Sentinel errors for reputation lookups.
//
// Design decision: Both errors resolve to VerdictSuspicious at the
// call site; they exist as separate sentinels because a missing key is
// an operator problem worth a distinct log line, while an unavailable
// source is transient.
var (
	// ErrNoAPIKey is returned when a source is consulted without
	// credentials configured.
	ErrNoAPIKey = errors.New("reputation source has no API key configured")

	// ErrUnavailable is returned when a source cannot be reached or
	// its response cannot be understood.
	ErrUnavailable = errors.New("reputation source unavailable")
)
