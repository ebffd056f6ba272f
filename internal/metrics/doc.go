// Package metrics exposes Prometheus instrumentation for the HTTP
// service: check counters broken down by verdict, per-source verdict
// and failure counters, and latency histograms.
//
// All instruments register against a caller-supplied registry so tests
// can run in isolation; the service wires them to a fresh registry and
// serves it on /metrics.
package metrics
