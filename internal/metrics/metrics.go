package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phishscan/phishscan/internal/model"
)

// Metrics holds the service's Prometheus instruments.
type Metrics struct {
	checksTotal         *prometheus.CounterVec
	sourceVerdictsTotal *prometheus.CounterVec
	sourceFailuresTotal *prometheus.CounterVec
	checkDuration       prometheus.Histogram
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the instruments and registers them with reg.
// A nil reg registers against the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "phishscan_checks_total", Help: "Total completed URL checks by final verdict"},
			[]string{"final_verdict"},
		),
		sourceVerdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "phishscan_source_verdicts_total", Help: "Per-source verdict counts"},
			[]string{"source", "verdict"},
		),
		sourceFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "phishscan_source_failures_total", Help: "Reputation lookups degraded to Suspicious"},
			[]string{"source"},
		),
		checkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "phishscan_check_duration_seconds",
				Help:    "End-to-end URL check duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "phishscan_http_requests_total", Help: "HTTP requests by path and status code"},
			[]string{"path", "code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "phishscan_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.checksTotal,
		m.sourceVerdictsTotal,
		m.sourceFailuresTotal,
		m.checkDuration,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

// Handler returns the /metrics handler for the given registry.
// A nil registry serves the default gatherer. Safe on a nil receiver
// like the observation methods.
func (m *Metrics) Handler(reg *prometheus.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveCheck records one completed URL check.
// A nil receiver is a no-op so callers can run without metrics wired.
func (m *Metrics) ObserveCheck(report *model.ScanReport) {
	if m == nil || report == nil {
		return
	}

	m.checksTotal.WithLabelValues(report.FinalVerdict.String()).Inc()
	m.checkDuration.Observe((time.Duration(report.DurationMS) * time.Millisecond).Seconds())

	m.sourceVerdictsTotal.WithLabelValues(model.SourceModel, report.Details.Model.String()).Inc()
	m.sourceVerdictsTotal.WithLabelValues(model.SourceSafeBrowsing, report.Details.SafeBrowsing.String()).Inc()
	m.sourceVerdictsTotal.WithLabelValues(model.SourceVirusTotal, report.Details.VirusTotal.String()).Inc()
}

// ObserveSourceFailure records a reputation source that degraded to
// Suspicious instead of answering.
func (m *Metrics) ObserveSourceFailure(source string) {
	if m == nil {
		return
	}
	m.sourceFailuresTotal.WithLabelValues(source).Inc()
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(path string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(path, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}
