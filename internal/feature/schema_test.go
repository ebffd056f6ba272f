package feature

import (
	"errors"
	"testing"
)

// TestNewSchema tests schema construction and validation.
func TestNewSchema(t *testing.T) {
	t.Parallel()

	t.Run("builds from ordered names", func(t *testing.T) {
		t.Parallel()

		s, err := NewSchema([]string{"A", "B", "C"})
		if err != nil {
			t.Fatalf("NewSchema returned error: %v", err)
		}
		if s.Len() != 3 {
			t.Errorf("Len() = %d, expected 3", s.Len())
		}
		if i, ok := s.Index("B"); !ok || i != 1 {
			t.Errorf("Index(B) = %d, %v, expected 1, true", i, ok)
		}
	})

	t.Run("rejects empty list", func(t *testing.T) {
		t.Parallel()

		if _, err := NewSchema(nil); !errors.Is(err, ErrEmptySchema) {
			t.Errorf("expected ErrEmptySchema, got %v", err)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		if _, err := NewSchema([]string{"A", ""}); !errors.Is(err, ErrEmptySchema) {
			t.Errorf("expected ErrEmptySchema, got %v", err)
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		t.Parallel()

		if _, err := NewSchema([]string{"A", "B", "A"}); !errors.Is(err, ErrDuplicateFeature) {
			t.Errorf("expected ErrDuplicateFeature, got %v", err)
		}
	})
}

// TestDefaultSchema tests the bundled feature list.
func TestDefaultSchema(t *testing.T) {
	t.Parallel()

	s := DefaultSchema()

	if s.Len() != 48 {
		t.Errorf("default schema has %d features, expected 48", s.Len())
	}

	t.Run("order is stable", func(t *testing.T) {
		t.Parallel()

		names := s.Names()
		if names[0] != "NumDots" {
			t.Errorf("first feature = %q, expected NumDots", names[0])
		}
		if names[len(names)-1] != "PctExtNullSelfRedirectHyperlinksRT" {
			t.Errorf("last feature = %q, expected PctExtNullSelfRedirectHyperlinksRT", names[len(names)-1])
		}
	})

	t.Run("DefaultNames returns a copy", func(t *testing.T) {
		t.Parallel()

		names := DefaultNames()
		names[0] = "mutated"
		if DefaultNames()[0] != "NumDots" {
			t.Error("mutating the returned slice changed the canonical list")
		}
	})
}

// TestSchemaEqual tests schema comparison.
func TestSchemaEqual(t *testing.T) {
	t.Parallel()

	a, err := NewSchema([]string{"A", "B"})
	if err != nil {
		t.Fatalf("NewSchema returned error: %v", err)
	}

	testCases := []struct {
		name     string
		other    func() *Schema
		expected bool
	}{
		{
			name:     "same instance",
			other:    func() *Schema { return a },
			expected: true,
		},
		{
			name: "same names and order",
			other: func() *Schema {
				s, _ := NewSchema([]string{"A", "B"})
				return s
			},
			expected: true,
		},
		{
			name: "different order",
			other: func() *Schema {
				s, _ := NewSchema([]string{"B", "A"})
				return s
			},
			expected: false,
		},
		{
			name: "different length",
			other: func() *Schema {
				s, _ := NewSchema([]string{"A"})
				return s
			},
			expected: false,
		},
		{
			name:     "nil schema",
			other:    func() *Schema { return nil },
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := a.Equal(tc.other()); got != tc.expected {
				t.Errorf("Equal() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

// TestVectorFromMap tests ordering, defaulting, and dropping.
func TestVectorFromMap(t *testing.T) {
	t.Parallel()

	s, err := NewSchema([]string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("NewSchema returned error: %v", err)
	}

	v := s.VectorFromMap(map[string]float64{
		"C":     3,
		"A":     1,
		"Extra": 99, // not in schema, must be dropped
	})

	expected := []float64{1, 0, 3}
	got := v.Values()
	if len(got) != len(expected) {
		t.Fatalf("got %d values, expected %d", len(got), len(expected))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("values[%d] = %v, expected %v", i, got[i], expected[i])
		}
	}

	if _, ok := v.Get("Extra"); ok {
		t.Error("Get(Extra) should not resolve for a dropped key")
	}
}

// TestVectorSet tests named assignment.
func TestVectorSet(t *testing.T) {
	t.Parallel()

	s, err := NewSchema([]string{"A", "B"})
	if err != nil {
		t.Fatalf("NewSchema returned error: %v", err)
	}

	v := NewVector(s)
	if err := v.Set("B", 7); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if got, _ := v.Get("B"); got != 7 {
		t.Errorf("Get(B) = %v, expected 7", got)
	}

	if err := v.Set("Missing", 1); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("expected ErrUnknownFeature, got %v", err)
	}
}

// TestVectorMerge tests bulk assignment with unknown keys dropped.
func TestVectorMerge(t *testing.T) {
	t.Parallel()

	s, err := NewSchema([]string{"A", "B"})
	if err != nil {
		t.Fatalf("NewSchema returned error: %v", err)
	}

	v := NewVector(s)
	v.Merge(map[string]float64{"A": 1, "Unknown": 5})

	if got, _ := v.Get("A"); got != 1 {
		t.Errorf("Get(A) = %v, expected 1", got)
	}

	values := v.Values()
	if values[1] != 0 {
		t.Errorf("untouched feature = %v, expected 0", values[1])
	}
}

// TestVectorValuesCopy tests that Values returns a defensive copy.
func TestVectorValuesCopy(t *testing.T) {
	t.Parallel()

	s, err := NewSchema([]string{"A"})
	if err != nil {
		t.Fatalf("NewSchema returned error: %v", err)
	}

	v := NewVector(s)
	values := v.Values()
	values[0] = 42

	if got, _ := v.Get("A"); got != 0 {
		t.Error("mutating Values() result changed the vector")
	}
}
