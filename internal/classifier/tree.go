package classifier

import (
	"fmt"
	"math"
)

// leafMarker in a tree's Feature array marks a leaf node.
const leafMarker = -1

// Tree is one regression tree in flattened parallel-array form, the
// layout the training pipeline exports. Node i is internal when
// Feature[i] >= 0: traversal goes to Left[i] when the sample's value at
// that feature index is <= Threshold[i], otherwise to Right[i].
// Feature[i] == leafMarker marks a leaf whose raw score is Value[i].
type Tree struct {
	Feature   []int     `json:"feature"`
	Threshold []float64 `json:"threshold"`
	Left      []int     `json:"left"`
	Right     []int     `json:"right"`
	Value     []float64 `json:"value"`
}

// validate checks the tree's structural consistency for the given
// feature count. Children must point strictly forward so traversal
// always terminates.
func (t *Tree) validate(featureCount int) error {
	n := len(t.Feature)
	if n == 0 {
		return fmt.Errorf("%w: empty tree", ErrBadArtifact)
	}
	if len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n || len(t.Value) != n {
		return fmt.Errorf("%w: tree arrays have inconsistent lengths", ErrBadArtifact)
	}

	for i := range n {
		if t.Feature[i] == leafMarker {
			continue
		}
		if t.Feature[i] < 0 || t.Feature[i] >= featureCount {
			return fmt.Errorf("%w: tree node %d splits on feature %d of %d",
				ErrBadArtifact, i, t.Feature[i], featureCount)
		}
		if t.Left[i] <= i || t.Left[i] >= n || t.Right[i] <= i || t.Right[i] >= n {
			return fmt.Errorf("%w: tree node %d has out-of-order children", ErrBadArtifact, i)
		}
	}
	return nil
}

// score walks the tree for one normalized sample and returns the
// reached leaf's raw score.
func (t *Tree) score(x Normalized) float64 {
	i := 0
	for t.Feature[i] != leafMarker {
		if x[t.Feature[i]] <= t.Threshold[i] {
			i = t.Left[i]
		} else {
			i = t.Right[i]
		}
	}
	return t.Value[i]
}

// BaseModel is one gradient-boosted tree ensemble of the stacking
// layer. Its probability is a sigmoid over the boosted raw score.
type BaseModel struct {
	// Name labels the base model in the artifact, e.g. "gbt_a".
	Name string `json:"name"`

	// LearningRate shrinks each tree's contribution to the raw score.
	LearningRate float64 `json:"learning_rate"`

	// InitScore is the raw-score starting point, the log-odds of the
	// training prior.
	InitScore float64 `json:"init_score"`

	// Trees are summed in order to form the boosted raw score.
	Trees []Tree `json:"trees"`
}

// validate checks the base model's consistency for the given feature
// count.
func (m *BaseModel) validate(featureCount int) error {
	if m.Name == "" {
		return fmt.Errorf("%w: base model without a name", ErrBadArtifact)
	}
	if m.LearningRate <= 0 || math.IsNaN(m.LearningRate) || math.IsInf(m.LearningRate, 0) {
		return fmt.Errorf("%w: base model %q learning rate %v", ErrBadArtifact, m.Name, m.LearningRate)
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("%w: base model %q has no trees", ErrBadArtifact, m.Name)
	}
	for i := range m.Trees {
		if err := m.Trees[i].validate(featureCount); err != nil {
			return fmt.Errorf("base model %q tree %d: %w", m.Name, i, err)
		}
	}
	return nil
}

// probability returns the base model's phishing probability for one
// normalized sample.
func (m *BaseModel) probability(x Normalized) float64 {
	raw := m.InitScore
	for i := range m.Trees {
		raw += m.LearningRate * m.Trees[i].score(x)
	}
	return sigmoid(raw)
}

// sigmoid maps a raw score to (0, 1).
func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
