// Package model defines the core data structures used throughout phishscan.
//
// This package contains the following main types:
//   - Verdict: The three-valued classification emitted by every source
//   - FusionResult: The final verdict plus the three per-source verdicts
//   - ScanReport: The full record of one URL check
//   - Page: A fetched web page used for content-feature enrichment
//
// Design decision: We separate models into their own package to avoid
// circular dependencies. Multiple packages (checker, fusion, report,
// history, api) need to use these types, so centralizing them prevents
// import cycles.
//
// The models are designed to be serializable to JSON for the HTTP
// response body, report output, and database storage.
package model
