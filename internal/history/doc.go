// Package history provides SQLite-based storage for past check results.
//
// This package implements the Store, which records:
//   - One row per completed URL check (verdicts, probability, timing)
//   - Enough metadata to show how a URL's verdict changed over time
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// embedded stores because it needs no external service, the driver is pure
// Go (no cgo), and a single append-only table is all the verdict timeline
// requires. The store is strictly opt-in: the check pipeline itself never
// touches it, preserving the purely request/response core.
package history
