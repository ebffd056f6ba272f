// Package feature turns a raw URL string into the fixed-size, ordered
// numeric feature vector the classifier consumes.
//
// The package has three parts:
//   - Schema: the canonical ordered list of feature names bound to a
//     trained model version
//   - Vector: one row of feature values aligned to a Schema
//   - Extractor: pure, deterministic computation of the lexical features
//     from the URL string alone
//
// Extraction never performs network access. Features that describe page
// content (external hyperlink ratios, form targets, iframes) stay at
// their 0.0 defaults here; the content package fills them when content
// enrichment is enabled.
//
// Design decision: The extractor computes a name→value map and the
// Schema orders it into a Vector, defaulting any feature the schema
// expects but the extractor did not produce to 0.0 and dropping any
// extra keys. This keeps the extractor independent of which exact
// feature subset a given model artifact was trained on.
package feature
