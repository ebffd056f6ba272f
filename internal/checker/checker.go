package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phishscan/phishscan/internal/classifier"
	"github.com/phishscan/phishscan/internal/content"
	"github.com/phishscan/phishscan/internal/feature"
	"github.com/phishscan/phishscan/internal/fusion"
	"github.com/phishscan/phishscan/internal/metrics"
	"github.com/phishscan/phishscan/internal/model"
	"github.com/phishscan/phishscan/internal/reputation"
)

// Checker runs the full check for one URL.
//
// Design decision: The classifier and the two reputation lookups run
// concurrently because they are independent. Only content enrichment
// must happen before classification, so it rides in the classifier's
// goroutine. A reputation failure never fails the check: the failing
// source votes Suspicious and the other two sources still count. The
// model has no such degraded state; if it cannot score, the check
// fails.
type Checker struct {
	classifier   *classifier.Classifier
	extractor    *feature.Extractor
	safeBrowsing reputation.Source
	virusTotal   reputation.Source
	fetcher      *content.Fetcher
	enrichment   bool
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEnrichment enables or disables content-feature enrichment.
// Disabled by default: a check stays a pure lookup unless the caller
// opts into fetching the page.
func WithEnrichment(enabled bool) Option {
	return func(c *Checker) {
		c.enrichment = enabled
	}
}

// WithMetrics records source degradations on the given instruments.
// Without it the checker runs unmetered; the Metrics methods are
// nil-receiver safe.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Checker) {
		c.metrics = m
	}
}

// WithFetcher sets a custom content fetcher for enrichment.
func WithFetcher(fetcher *content.Fetcher) Option {
	return func(c *Checker) {
		if fetcher != nil {
			c.fetcher = fetcher
		}
	}
}

// New creates a Checker over a loaded classifier and the two reputation
// sources. The feature extractor is derived from the classifier's
// schema so extraction always produces exactly the features the model
// was trained on.
func New(clf *classifier.Classifier, safeBrowsing, virusTotal reputation.Source, opts ...Option) (*Checker, error) {
	if clf == nil {
		return nil, errors.New("checker: classifier must not be nil")
	}
	if safeBrowsing == nil || virusTotal == nil {
		return nil, errors.New("checker: both reputation sources must be set")
	}

	c := &Checker{
		classifier:   clf,
		extractor:    feature.NewExtractor(clf.Schema()),
		safeBrowsing: safeBrowsing,
		virusTotal:   virusTotal,
		fetcher:      content.NewFetcher(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// ModelVersion identifies the classifier artifact this checker scores
// with.
func (c *Checker) ModelVersion() string {
	return c.classifier.Version()
}

// Check runs the complete check for rawURL and returns its report.
// It fails when the URL cannot be parsed or the model cannot score it;
// a reputation problem degrades the affected source to Suspicious
// instead.
func (c *Checker) Check(ctx context.Context, rawURL string) (*model.ScanReport, error) {
	start := time.Now()

	vec, err := c.extractor.Extract(rawURL)
	if err != nil {
		return nil, fmt.Errorf("extract features for %q: %w", rawURL, err)
	}

	report := model.NewScanReport(rawURL)

	var (
		modelVerdict = model.VerdictSuspicious
		gsbVerdict   = model.VerdictSuspicious
		vtVerdict    = model.VerdictSuspicious
		probability  float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if c.enrichment {
			c.enrich(gctx, rawURL, vec, report)
		}
		// The model vote is binary and has no degraded state, so a
		// scoring failure surfaces instead of casting a vote.
		verdict, p, err := c.classifier.Classify(vec)
		if err != nil {
			return fmt.Errorf("classify %q: %w", rawURL, err)
		}
		modelVerdict, probability = verdict, p
		return nil
	})
	g.Go(func() error {
		gsbVerdict = c.lookup(gctx, c.safeBrowsing, rawURL)
		return nil
	})
	g.Go(func() error {
		vtVerdict = c.lookup(gctx, c.virusTotal, rawURL)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.SetResult(fusion.Fuse(modelVerdict, gsbVerdict, vtVerdict))
	report.ModelProbability = probability
	report.ModelVersion = c.classifier.Version()
	report.Traits = c.extractor.Traits(rawURL)
	report.DurationMS = time.Since(start).Milliseconds()

	return report, nil
}

// lookup queries one reputation source. The source already degrades to
// Suspicious on failure; lookup only decides how loudly to say so. A
// missing API key is an expected configuration state and logs at debug,
// anything else is a real failure and logs at warn.
func (c *Checker) lookup(ctx context.Context, source reputation.Source, rawURL string) model.Verdict {
	verdict, err := source.Check(ctx, rawURL)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, reputation.ErrNoAPIKey) {
			level = slog.LevelDebug
		}
		c.logger.Log(ctx, level, "reputation source degraded to Suspicious",
			"source", source.Name(),
			"url", rawURL,
			"error", err,
		)
		c.metrics.ObserveSourceFailure(source.Name())
	}
	return verdict
}

// enrich fetches the page once and merges its content features into the
// vector. Every failure path leaves the vector untouched so the content
// features keep their 0 defaults.
func (c *Checker) enrich(ctx context.Context, rawURL string, vec *feature.Vector, report *model.ScanReport) {
	page, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		c.logger.Debug("content fetch failed", "url", rawURL, "error", err)
		return
	}
	feats := content.Features(page)
	if feats == nil {
		c.logger.Debug("page carried no HTML to analyze",
			"url", rawURL,
			"content_type", page.ContentType,
		)
		return
	}
	vec.Merge(feats)
	report.ContentFetched = true
}
