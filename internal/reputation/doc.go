// Package reputation provides clients for external URL reputation
// authorities: Google Safe Browsing and VirusTotal.
//
// Every client implements the Source interface and degrades rather
// than fails: a lookup that cannot complete (missing credentials,
// network error, unexpected payload) yields VerdictSuspicious together
// with the error, so a dead authority never blocks a check and never
// vouches for a URL.
package reputation
