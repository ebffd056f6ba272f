// Package checker orchestrates the complete check for a URL: lexical
// feature extraction, optional content enrichment, the local
// classifier, and the external reputation sources, fused into a single
// verdict. It also provides a bounded concurrent runner for checking
// many URLs at once.
package checker
