// Package classifier hosts the local phishing model: the per-feature
// scaler, the gradient-boosted base ensembles, and the logistic
// meta-model that stacks them into one probability.
//
// Everything is loaded once from a JSON artifact bundle (either the
// embedded default or a file on disk) and is read-only afterwards, so a
// single Classifier is safe to share across concurrent requests. Loading
// validates the whole bundle up front: a service must refuse to start on
// an inconsistent artifact rather than fail on its first request.
//
// Inference is plain arithmetic over the loaded parameters. Scoring is
// deterministic and side-effect free, and the classifier is binary: it
// answers Legitimate or Phishing, never Suspicious.
package classifier
