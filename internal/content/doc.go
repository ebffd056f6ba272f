// Package content implements optional page enrichment: a single
// bounded fetch of the checked URL and extraction of the content
// features (external link ratios, form properties, frames, favicon
// origin, script tricks) from the returned HTML.
//
// Enrichment is strictly best-effort. A URL check never depends on it:
// when the fetch fails, the page is not HTML, or parsing finds
// nothing, the content features simply stay at their 0.0 defaults and
// classification proceeds on lexical features alone.
package content
