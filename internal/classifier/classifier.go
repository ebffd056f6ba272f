package classifier

import (
	"fmt"
	"math"

	"github.com/phishscan/phishscan/internal/feature"
	"github.com/phishscan/phishscan/internal/model"
)

// DefaultThreshold is the decision boundary on the stacked phishing
// probability. A probability at or above the threshold classifies the
// URL as phishing.
const DefaultThreshold = 0.5

// MetaModel is the logistic stacking head. It combines the base
// models' probabilities, and with Passthrough enabled the normalized
// feature vector as well, into the final probability.
type MetaModel struct {
	// Passthrough appends the normalized feature vector after the base
	// probabilities when forming the meta input.
	Passthrough bool `json:"passthrough"`

	// Weights has one entry per meta input.
	Weights []float64 `json:"weights"`

	// Intercept is the logistic bias term.
	Intercept float64 `json:"intercept"`
}

// validate checks that the weight vector matches the meta input width.
func (m *MetaModel) validate(baseCount, featureCount int) error {
	want := baseCount
	if m.Passthrough {
		want += featureCount
	}
	if len(m.Weights) != want {
		return fmt.Errorf("%w: meta model has %d weights, want %d",
			ErrBadArtifact, len(m.Weights), want)
	}
	for i, w := range m.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: meta weight %d is %v", ErrBadArtifact, i, w)
		}
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("%w: meta intercept is %v", ErrBadArtifact, m.Intercept)
	}
	return nil
}

// probability applies the logistic head to the base probabilities and,
// with passthrough, the normalized sample.
func (m *MetaModel) probability(baseProbs []float64, x Normalized) float64 {
	z := m.Intercept
	for i, p := range baseProbs {
		z += m.Weights[i] * p
	}
	if m.Passthrough {
		offset := len(baseProbs)
		for i, v := range x {
			z += m.Weights[offset+i] * v
		}
	}
	return sigmoid(z)
}

// Classifier scores feature vectors with a stacking ensemble loaded
// from a model artifact. It is immutable after New and safe for
// concurrent use.
type Classifier struct {
	version   string
	schema    *feature.Schema
	scaler    *Scaler
	bases     []BaseModel
	meta      MetaModel
	threshold float64
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithThreshold sets the phishing decision boundary. Values outside
// (0, 1) are ignored and the default of 0.5 is kept.
func WithThreshold(t float64) ClassifierOption {
	return func(c *Classifier) {
		if t > 0 && t < 1 {
			c.threshold = t
		}
	}
}

// New builds a Classifier from a parsed artifact. The artifact is
// validated up front so that a malformed model fails here, at startup,
// rather than on the first request.
func New(artifact *Artifact, opts ...ClassifierOption) (*Classifier, error) {
	if artifact == nil {
		return nil, fmt.Errorf("%w: nil artifact", ErrBadArtifact)
	}
	if err := artifact.Validate(); err != nil {
		return nil, err
	}

	schema, err := feature.NewSchema(artifact.FeatureNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	scaler, err := NewScaler(schema, artifact.Scaler.Mean, artifact.Scaler.Scale)
	if err != nil {
		return nil, err
	}

	c := &Classifier{
		version:   artifact.Version,
		schema:    schema,
		scaler:    scaler,
		bases:     artifact.BaseModels,
		meta:      artifact.Meta,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Load reads a model artifact from path and builds a Classifier.
func Load(path string, opts ...ClassifierOption) (*Classifier, error) {
	artifact, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	return New(artifact, opts...)
}

// LoadEmbedded builds a Classifier from the artifact compiled into the
// binary.
func LoadEmbedded(opts ...ClassifierOption) (*Classifier, error) {
	artifact, err := EmbeddedArtifact()
	if err != nil {
		return nil, err
	}
	return New(artifact, opts...)
}

// Version returns the artifact version string.
func (c *Classifier) Version() string { return c.version }

// Schema returns the feature schema the model was trained on.
func (c *Classifier) Schema() *feature.Schema { return c.schema }

// Threshold returns the phishing decision boundary.
func (c *Classifier) Threshold() float64 { return c.threshold }

// Normalize standardizes a raw feature vector with the training
// scaler. The vector's schema must match the trained schema exactly;
// a mismatch returns ErrSchemaMismatch.
func (c *Classifier) Normalize(vec *feature.Vector) (Normalized, error) {
	return c.scaler.Transform(vec)
}

// Probability returns the stacked phishing probability for a
// normalized sample in [0, 1].
func (c *Classifier) Probability(x Normalized) (float64, error) {
	if len(x) != c.schema.Len() {
		return 0, fmt.Errorf("%w: sample has %d values, model expects %d",
			ErrInference, len(x), c.schema.Len())
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: sample value %d is %v", ErrInference, i, v)
		}
	}

	baseProbs := make([]float64, len(c.bases))
	for i := range c.bases {
		baseProbs[i] = c.bases[i].probability(x)
	}
	return c.meta.probability(baseProbs, x), nil
}

// Predict classifies a normalized sample. It returns the verdict and
// the phishing probability behind it. A probability exactly at the
// threshold counts as phishing.
func (c *Classifier) Predict(x Normalized) (model.Verdict, float64, error) {
	p, err := c.Probability(x)
	if err != nil {
		return model.VerdictSuspicious, 0, err
	}
	if p >= c.threshold {
		return model.VerdictPhishing, p, nil
	}
	return model.VerdictLegitimate, p, nil
}

// Classify runs the full scoring path for a raw feature vector:
// normalization followed by prediction.
func (c *Classifier) Classify(vec *feature.Vector) (model.Verdict, float64, error) {
	x, err := c.Normalize(vec)
	if err != nil {
		return model.VerdictSuspicious, 0, err
	}
	return c.Predict(x)
}
