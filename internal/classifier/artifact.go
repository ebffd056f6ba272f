package classifier

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

// embeddedModel is the default model artifact compiled into the
// binary, so the scanner works without any external files.
//
//go:embed data/model.json
var embeddedModel []byte

// ScalerParams holds the standardization parameters fitted on the
// training set, one entry per feature in schema order.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Artifact is the on-disk model format: the trained schema, the
// scaler, the gradient-boosted base models, and the logistic stacking
// head that combines them.
type Artifact struct {
	Version      string       `json:"version"`
	TrainedAt    string       `json:"trained_at"`
	FeatureNames []string     `json:"feature_names"`
	Scaler       ScalerParams `json:"scaler"`
	BaseModels   []BaseModel  `json:"base_models"`
	Meta         MetaModel    `json:"meta"`
}

// ParseArtifact decodes a model artifact from JSON. It does not
// validate the artifact; New does that before building a Classifier.
func ParseArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	return &a, nil
}

// LoadArtifact reads and decodes a model artifact from path.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	return ParseArtifact(data)
}

// EmbeddedArtifact decodes the artifact compiled into the binary.
func EmbeddedArtifact() (*Artifact, error) {
	return ParseArtifact(embeddedModel)
}

// Validate checks the artifact's structural consistency: the schema,
// the scaler dimensions, every tree of every base model, and the meta
// weight vector. All failures wrap ErrBadArtifact.
func (a *Artifact) Validate() error {
	if a.Version == "" {
		return fmt.Errorf("%w: missing version", ErrBadArtifact)
	}
	if len(a.FeatureNames) == 0 {
		return fmt.Errorf("%w: no feature names", ErrBadArtifact)
	}

	n := len(a.FeatureNames)
	if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
		return fmt.Errorf("%w: scaler has %d means and %d scales for %d features",
			ErrBadArtifact, len(a.Scaler.Mean), len(a.Scaler.Scale), n)
	}
	if len(a.BaseModels) == 0 {
		return fmt.Errorf("%w: no base models", ErrBadArtifact)
	}
	for i := range a.BaseModels {
		if err := a.BaseModels[i].validate(n); err != nil {
			return err
		}
	}
	return a.Meta.validate(len(a.BaseModels), n)
}
