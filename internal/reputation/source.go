package reputation

import (
	"context"
	"time"

	"github.com/phishscan/phishscan/internal/model"
)

// DefaultTimeout bounds a single reputation lookup. Reputation checks
// sit on the request path of the API, so a slow authority must not
// stall the whole verdict.
const DefaultTimeout = 6 * time.Second

// maxResponseSize caps how much of a reputation response is read.
// Both APIs answer in well under a kilobyte; anything near this limit
// is not a response worth trusting.
const maxResponseSize = 1 << 20

// Source is one external reputation authority consulted during a URL
// check.
//
// Check returns the source's verdict for the URL. A Suspicious verdict
// with a non-nil error means the lookup failed (unreachable, bad
// credentials, unrecognized payload); a Suspicious verdict with a nil
// error means the authority answered but does not know the URL. Either
// way the verdict counts for neither side of the fusion vote.
type Source interface {
	// Name returns the stable source identifier used in reports.
	Name() string

	// Check looks up the URL's reputation. Implementations must honor
	// context cancellation and never block past their configured
	// timeout.
	Check(ctx context.Context, rawURL string) (model.Verdict, error)
}
