package classifier

import (
	"fmt"
	"math"

	"github.com/phishscan/phishscan/internal/feature"
)

// Normalized is a feature vector after per-feature centering and
// scaling. Positions follow the trained schema's feature order.
type Normalized []float64

// Scaler applies the affine per-feature transform (x - mean) / scale
// fitted at training time. Parameters are immutable after construction
// and shared read-only across all requests; the transform itself is
// pure and never refits anything.
type Scaler struct {
	schema *feature.Schema
	mean   []float64
	scale  []float64
}

// NewScaler builds a scaler for a schema. The parameter slices must
// match the schema length, every scale must be finite and non-zero,
// and every mean finite.
func NewScaler(schema *feature.Schema, mean, scale []float64) (*Scaler, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: scaler requires a schema", ErrBadArtifact)
	}
	if len(mean) != schema.Len() || len(scale) != schema.Len() {
		return nil, fmt.Errorf("%w: scaler has %d means and %d scales for %d features",
			ErrBadArtifact, len(mean), len(scale), schema.Len())
	}

	names := schema.Names()
	for i := range scale {
		if scale[i] == 0 || math.IsNaN(scale[i]) || math.IsInf(scale[i], 0) {
			return nil, fmt.Errorf("%w: scale for feature %q is %v", ErrBadArtifact, names[i], scale[i])
		}
		if math.IsNaN(mean[i]) || math.IsInf(mean[i], 0) {
			return nil, fmt.Errorf("%w: mean for feature %q is %v", ErrBadArtifact, names[i], mean[i])
		}
	}

	return &Scaler{
		schema: schema,
		mean:   append([]float64(nil), mean...),
		scale:  append([]float64(nil), scale...),
	}, nil
}

// Schema returns the schema the scaler was fitted on.
func (s *Scaler) Schema() *feature.Schema {
	return s.schema
}

// Mean returns a copy of the fitted per-feature means.
func (s *Scaler) Mean() []float64 {
	return append([]float64(nil), s.mean...)
}

// Transform normalizes a feature vector into model input space.
// The vector's schema must equal the fitted schema; any disagreement is
// ErrSchemaMismatch, never a silent coercion.
func (s *Scaler) Transform(vec *feature.Vector) (Normalized, error) {
	if vec == nil {
		return nil, fmt.Errorf("%w: nil vector", ErrSchemaMismatch)
	}
	if !s.schema.Equal(vec.Schema()) {
		return nil, fmt.Errorf("%w: vector carries %d features, scaler fitted on %d",
			ErrSchemaMismatch, vec.Len(), s.schema.Len())
	}

	values := vec.Values()
	out := make(Normalized, len(values))
	for i, v := range values {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}
