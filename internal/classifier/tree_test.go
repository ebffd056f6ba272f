package classifier

import (
	"errors"
	"math"
	"testing"
)

// stumpTree returns a single-split tree on feature 0 at threshold 0
// with leaf scores left and right.
func stumpTree(left, right float64) Tree {
	return Tree{
		Feature:   []int{0, -1, -1},
		Threshold: []float64{0, 0, 0},
		Left:      []int{1, -1, -1},
		Right:     []int{2, -1, -1},
		Value:     []float64{0, left, right},
	}
}

// TestTreeScore tests traversal of a two-level tree against
// hand-traced paths.
func TestTreeScore(t *testing.T) {
	t.Parallel()

	// Splits on feature 0 at 0.5, and on the left branch on feature 1
	// at -1.0.
	tree := Tree{
		Feature:   []int{0, 1, -1, -1, -1},
		Threshold: []float64{0.5, -1.0, 0, 0, 0},
		Left:      []int{1, 2, -1, -1, -1},
		Right:     []int{4, 3, -1, -1, -1},
		Value:     []float64{0, 0, 10, 20, 30},
	}

	testCases := []struct {
		name     string
		sample   Normalized
		expected float64
	}{
		{name: "left then left", sample: Normalized{0.0, -2.0}, expected: 10},
		{name: "left then right", sample: Normalized{0.0, 0.0}, expected: 20},
		{name: "right branch", sample: Normalized{1.0, 0.0}, expected: 30},
		{name: "at threshold goes left", sample: Normalized{0.5, -1.0}, expected: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tree.score(tc.sample); got != tc.expected {
				t.Errorf("score(%v) = %v, expected %v", tc.sample, got, tc.expected)
			}
		})
	}
}

// TestTreeValidate tests structural validation of flattened trees.
func TestTreeValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		tree    Tree
		wantErr bool
	}{
		{
			name: "valid stump",
			tree: stumpTree(-1.0, 1.0),
		},
		{
			name: "single leaf",
			tree: Tree{
				Feature:   []int{-1},
				Threshold: []float64{0},
				Left:      []int{-1},
				Right:     []int{-1},
				Value:     []float64{0.7},
			},
		},
		{
			name:    "empty tree",
			tree:    Tree{},
			wantErr: true,
		},
		{
			name: "inconsistent array lengths",
			tree: Tree{
				Feature:   []int{0, -1, -1},
				Threshold: []float64{0},
				Left:      []int{1, -1, -1},
				Right:     []int{2, -1, -1},
				Value:     []float64{0, 1, 2},
			},
			wantErr: true,
		},
		{
			name: "feature index out of range",
			tree: Tree{
				Feature:   []int{5, -1, -1},
				Threshold: []float64{0, 0, 0},
				Left:      []int{1, -1, -1},
				Right:     []int{2, -1, -1},
				Value:     []float64{0, 1, 2},
			},
			wantErr: true,
		},
		{
			name: "child points backward",
			tree: Tree{
				Feature:   []int{0, 0, -1},
				Threshold: []float64{0, 0, 0},
				Left:      []int{1, 0, -1},
				Right:     []int{2, 2, -1},
				Value:     []float64{0, 0, 1},
			},
			wantErr: true,
		},
		{
			name: "child out of bounds",
			tree: Tree{
				Feature:   []int{0, -1, -1},
				Threshold: []float64{0, 0, 0},
				Left:      []int{1, -1, -1},
				Right:     []int{3, -1, -1},
				Value:     []float64{0, 1, 2},
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.tree.validate(2)
			if tc.wantErr {
				if !errors.Is(err, ErrBadArtifact) {
					t.Errorf("validate error = %v, expected ErrBadArtifact", err)
				}
				return
			}
			if err != nil {
				t.Errorf("validate returned unexpected error: %v", err)
			}
		})
	}
}

// TestBaseModelProbability tests the boosted score against a
// hand-computed sigmoid.
func TestBaseModelProbability(t *testing.T) {
	t.Parallel()

	m := BaseModel{
		Name:         "gbt_test",
		LearningRate: 1.0,
		InitScore:    0.0,
		Trees:        []Tree{stumpTree(-2.0, 2.0)},
	}

	// sigmoid(2) and sigmoid(-2)
	wantHigh := 1 / (1 + math.Exp(-2.0))
	wantLow := 1 / (1 + math.Exp(2.0))

	if got := m.probability(Normalized{1.0}); got != wantHigh {
		t.Errorf("probability(right leaf) = %v, expected %v", got, wantHigh)
	}
	if got := m.probability(Normalized{-1.0}); got != wantLow {
		t.Errorf("probability(left leaf) = %v, expected %v", got, wantLow)
	}
}

// TestBaseModelProbabilitySumsTrees tests that tree scores accumulate
// with the learning rate before the sigmoid.
func TestBaseModelProbabilitySumsTrees(t *testing.T) {
	t.Parallel()

	m := BaseModel{
		Name:         "gbt_test",
		LearningRate: 0.5,
		InitScore:    -1.0,
		Trees: []Tree{
			stumpTree(-2.0, 2.0),
			stumpTree(-2.0, 4.0),
		},
	}

	// raw = -1.0 + 0.5*(2.0 + 4.0) = 2.0
	want := 1 / (1 + math.Exp(-2.0))
	if got := m.probability(Normalized{1.0}); got != want {
		t.Errorf("probability = %v, expected %v", got, want)
	}
}

// TestBaseModelValidate tests base-model level validation.
func TestBaseModelValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		model   BaseModel
		wantErr bool
	}{
		{
			name: "valid",
			model: BaseModel{
				Name:         "gbt_a",
				LearningRate: 0.3,
				Trees:        []Tree{stumpTree(-1, 1)},
			},
		},
		{
			name: "missing name",
			model: BaseModel{
				LearningRate: 0.3,
				Trees:        []Tree{stumpTree(-1, 1)},
			},
			wantErr: true,
		},
		{
			name: "zero learning rate",
			model: BaseModel{
				Name:  "gbt_a",
				Trees: []Tree{stumpTree(-1, 1)},
			},
			wantErr: true,
		},
		{
			name: "no trees",
			model: BaseModel{
				Name:         "gbt_a",
				LearningRate: 0.3,
			},
			wantErr: true,
		},
		{
			name: "invalid tree",
			model: BaseModel{
				Name:         "gbt_a",
				LearningRate: 0.3,
				Trees:        []Tree{{}},
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.model.validate(2)
			if tc.wantErr {
				if !errors.Is(err, ErrBadArtifact) {
					t.Errorf("validate error = %v, expected ErrBadArtifact", err)
				}
				return
			}
			if err != nil {
				t.Errorf("validate returned unexpected error: %v", err)
			}
		})
	}
}
