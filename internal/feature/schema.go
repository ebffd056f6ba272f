package feature

import (
	"errors"
	"fmt"
)

// Sentinel errors for schema construction and vector access.
//
// Design decision: We use sentinel errors rather than custom error types
// because callers only need to distinguish error categories with
// errors.Is, not extract structured data from them.
var (
	// ErrEmptySchema is returned when a schema is built from no names.
	ErrEmptySchema = errors.New("feature schema must contain at least one name")

	// ErrDuplicateFeature is returned when a schema contains the same
	// feature name twice.
	ErrDuplicateFeature = errors.New("feature schema contains a duplicate name")

	// ErrUnknownFeature is returned when a vector is asked to set a
	// feature its schema does not define.
	ErrUnknownFeature = errors.New("feature name not in schema")
)

// defaultNames is the canonical ordered feature list of the bundled
// model. The order is part of the trained-model contract: the scaler's
// statistics and every tree's feature indices refer to positions in
// this list.
var defaultNames = []string{
	// Lexical and structural features computed from the URL string alone.
	"NumDots",
	"SubdomainLevel",
	"PathLevel",
	"UrlLength",
	"NumDash",
	"NumDashInHostname",
	"AtSymbol",
	"TildeSymbol",
	"NumUnderscore",
	"NumPercent",
	"NumQueryComponents",
	"NumAmpersand",
	"NumHash",
	"NumNumericChars",
	"NoHttps",
	"RandomString",
	"IpAddress",
	"DomainInSubdomains",
	"DomainInPaths",
	"HttpsInHostname",
	"HostnameLength",
	"PathLength",
	"QueryLength",
	"DoubleSlashInPath",
	"NumSensitiveWords",
	"EmbeddedBrandName",

	// Content features, filled only when page enrichment runs.
	"PctExtHyperlinks",
	"PctExtResourceUrls",
	"ExtFavicon",
	"InsecureForms",
	"RelativeFormAction",
	"ExtFormAction",
	"AbnormalFormAction",
	"PctNullSelfRedirectHyperlinks",
	"FrequentDomainNameMismatch",
	"FakeLinkInStatusBar",
	"RightClickDisabled",
	"PopUpWindow",
	"SubmitInfoToEmail",
	"IframeOrFrame",
	"MissingTitle",
	"ImagesOnlyInForm",

	// Discretized risk flags derived from the features above.
	// RT flags are binary here: 1 marks the risky side of the threshold.
	"SubdomainLevelRT",
	"UrlLengthRT",
	"PctExtResourceUrlsRT",
	"AbnormalExtFormActionR",
	"ExtMetaScriptLinkRT",
	"PctExtNullSelfRedirectHyperlinksRT",
}

// Schema is the canonical ordered list of feature names a trained model
// expects. A Schema is immutable after construction and safe for
// concurrent use.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema builds a schema from an ordered name list.
// Names must be unique and the list non-empty.
func NewSchema(names []string) (*Schema, error) {
	if len(names) == 0 {
		return nil, ErrEmptySchema
	}

	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: empty name at position %d", ErrEmptySchema, i)
		}
		if _, exists := index[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateFeature, name)
		}
		index[name] = i
	}

	return &Schema{
		names: append([]string(nil), names...),
		index: index,
	}, nil
}

// DefaultNames returns a copy of the canonical 48-feature name list.
func DefaultNames() []string {
	return append([]string(nil), defaultNames...)
}

// DefaultSchema returns the schema of the bundled model.
func DefaultSchema() *Schema {
	s, err := NewSchema(defaultNames)
	if err != nil {
		// The canonical list is a compile-time constant; failing to
		// build it is a programming error.
		panic(err)
	}
	return s
}

// Len returns the number of features in the schema.
func (s *Schema) Len() int {
	return len(s.names)
}

// Names returns a copy of the ordered feature names.
func (s *Schema) Names() []string {
	return append([]string(nil), s.names...)
}

// Index returns the position of a feature name in the schema.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Equal reports whether two schemas define the same names in the same
// order. A schema is always equal to itself and never to nil.
func (s *Schema) Equal(other *Schema) bool {
	if other == nil {
		return false
	}
	if s == other {
		return true
	}
	if len(s.names) != len(other.names) {
		return false
	}
	for i, name := range s.names {
		if other.names[i] != name {
			return false
		}
	}
	return true
}

// Vector is one row of feature values aligned to a schema.
type Vector struct {
	schema *Schema
	values []float64
}

// NewVector creates a zero-filled vector for the given schema.
func NewVector(schema *Schema) *Vector {
	return &Vector{
		schema: schema,
		values: make([]float64, schema.Len()),
	}
}

// VectorFromMap orders a name→value map into a vector. Features the
// schema expects but the map lacks default to 0.0; map keys outside the
// schema are dropped. This mirrors how the serving layer has always
// reconciled computed features with the trained feature list.
func (s *Schema) VectorFromMap(values map[string]float64) *Vector {
	v := NewVector(s)
	for name, value := range values {
		if i, ok := s.index[name]; ok {
			v.values[i] = value
		}
	}
	return v
}

// Schema returns the schema the vector is aligned to.
func (v *Vector) Schema() *Schema {
	return v.schema
}

// Len returns the number of values in the vector.
func (v *Vector) Len() int {
	return len(v.values)
}

// Get returns the value of a named feature.
func (v *Vector) Get(name string) (float64, bool) {
	i, ok := v.schema.index[name]
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Set assigns a named feature value. Setting a name the schema does not
// define returns ErrUnknownFeature.
func (v *Vector) Set(name string, value float64) error {
	i, ok := v.schema.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	v.values[i] = value
	return nil
}

// Merge copies all map entries whose names the schema defines into the
// vector, silently dropping the rest. Used by content enrichment to fill
// whichever content features the trained schema actually carries.
func (v *Vector) Merge(values map[string]float64) {
	for name, value := range values {
		if i, ok := v.schema.index[name]; ok {
			v.values[i] = value
		}
	}
}

// Values returns a copy of the ordered feature values.
func (v *Vector) Values() []float64 {
	return append([]float64(nil), v.values...)
}
