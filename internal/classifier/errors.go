package classifier

import "errors"

// Classifier errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each return site. This allows callers
// to branch with errors.Is(): artifact errors are fatal at startup,
// schema mismatches are programming bugs, and inference errors surface
// as per-request failures. Wrapped messages still carry the
// human-readable detail.
var (
	// ErrBadArtifact is returned when an artifact bundle is missing,
	// unreadable, or internally inconsistent. This error is fatal: the
	// service must not start serving with a broken model.
	ErrBadArtifact = errors.New("invalid model artifact")

	// ErrSchemaMismatch is returned when a feature vector's schema
	// disagrees with the schema the artifact was trained on. This is a
	// correctness bug between producer and model, never a condition to
	// coerce or silently recover from.
	ErrSchemaMismatch = errors.New("feature schema does not match trained schema")

	// ErrInference is returned when the classifier cannot score a given
	// input, e.g. a normalized vector of the wrong width or with
	// non-finite values.
	ErrInference = errors.New("classifier cannot score input")
)
