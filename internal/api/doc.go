// Package api implements the HTTP boundary of phishscan: the /check
// endpoint the browser extension calls, plus /health and /metrics.
//
// The handlers are a thin shell around internal/checker. They validate
// input, bound each check with the configured timeout, and translate
// the checker's errors into status codes; every classification decision
// stays in the core packages. CORS is permissive by default because the
// expected caller is a browser extension.
package api
