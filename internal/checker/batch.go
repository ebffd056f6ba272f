package checker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phishscan/phishscan/internal/model"
)

// DefaultConcurrency is the number of URLs a batch run checks in
// parallel when not configured otherwise. Each check can hold up to
// three outbound requests, so the effective connection count is a
// multiple of this.
const DefaultConcurrency = 8

// BatchRunner checks many URLs concurrently with a bounded pool.
//
// Design decision: We use errgroup.SetLimit rather than a hand-built
// worker pool because it bounds concurrency correctly with less code.
// Each URL gets its own goroutine, but only DefaultConcurrency of them
// run at once.
type BatchRunner struct {
	checker     *Checker
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner)

// WithBatchConcurrency sets the maximum number of concurrent checks.
func WithBatchConcurrency(n int) BatchOption {
	return func(b *BatchRunner) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets a custom logger for batch progress.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRunner) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBatchRunner creates a runner over an existing Checker.
func NewBatchRunner(checker *Checker, opts ...BatchOption) *BatchRunner {
	b := &BatchRunner{
		checker:     checker,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Run checks every URL and returns one report per input, in input
// order. A URL that cannot be checked still yields a report: all
// verdicts Suspicious with the failure recorded in its Error field.
//
// The returned error is non-nil only when the context was cancelled;
// in that case reports for unstarted URLs are nil and callers must not
// use the slice without checking the error first.
func (b *BatchRunner) Run(ctx context.Context, urls []string) ([]*model.ScanReport, error) {
	b.logger.Info("starting batch check",
		"total", len(urls),
		"concurrency", b.concurrency,
	)
	start := time.Now()

	reports := make([]*model.ScanReport, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, rawURL := range urls {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			report, err := b.checker.Check(gctx, rawURL)
			if err != nil {
				b.logger.Warn("check failed", "url", rawURL, "error", err)
				report = model.NewScanReport(rawURL)
				report.Error = err.Error()
			}
			reports[i] = report
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch check complete",
		"total", len(urls),
		"elapsed", time.Since(start),
	)
	return reports, err
}
