package features

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Model feature names in the column order the trained classifier expects.
const (
	LengthURL      = "length_url"
	LengthHostname = "length_hostname"
	NbDots         = "nb_dots"
	NbHyphens      = "nb_hyphens"
	NbSlash        = "nb_slash"
	HTTPSToken     = "https_token"
	NbSubdomains   = "nb_subdomains"
	PrefixSuffix   = "prefix_suffix"
	PhishHints     = "phish_hints"
	SuspiciousTLD  = "suspecious_tld" // spelling matches the training dataset column
)

// NumModelFeatures is the width of the classifier input row.
const NumModelFeatures = 10

// ModelFeatureNames is frozen: it must match the trained model's input schema.
var ModelFeatureNames = [NumModelFeatures]string{
	LengthURL,
	LengthHostname,
	NbDots,
	NbHyphens,
	NbSlash,
	HTTPSToken,
	NbSubdomains,
	PrefixSuffix,
	PhishHints,
	SuspiciousTLD,
}

// ModelVector is the strict classifier row, indexed in ModelFeatureNames order.
type ModelVector [NumModelFeatures]float64

// Row returns the vector as a fresh slice suitable for a predictor.
func (m ModelVector) Row() []float64 {
	row := make([]float64, NumModelFeatures)
	copy(row, m[:])
	return row
}

// Get returns the value of a model field by name.
func (m ModelVector) Get(name string) (float64, bool) {
	for i, n := range ModelFeatureNames {
		if n == name {
			return m[i], true
		}
	}
	return 0, false
}

// Vector converts the model row into a named, ordered Vector.
func (m ModelVector) Vector() Vector {
	v := make(Vector, 0, NumModelFeatures)
	for i, n := range ModelFeatureNames {
		v = append(v, Field{Name: n, Value: m[i]})
	}
	return v
}

// MarshalJSON encodes the model row as an ordered JSON object.
func (m ModelVector) MarshalJSON() ([]byte, error) {
	return m.Vector().MarshalJSON()
}

// UnmarshalJSON fills the row from an object keyed by model field names.
func (m *ModelVector) UnmarshalJSON(data []byte) error {
	var v Vector
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	for i, n := range ModelFeatureNames {
		x, ok := v.Get(n)
		if !ok {
			return fmt.Errorf("features: model row missing %q", n)
		}
		m[i] = x
	}
	return nil
}

// Field is one named numeric feature.
type Field struct {
	Name  string
	Value float64
}

// Vector is an ordered mapping of feature names to values.
type Vector []Field

// Get looks up a field by name.
func (v Vector) Get(name string) (float64, bool) {
	for _, f := range v {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// Value returns the named field or fallback when it is absent.
func (v Vector) Value(name string, fallback float64) float64 {
	if x, ok := v.Get(name); ok {
		return x
	}
	return fallback
}

// Names returns field names in order.
func (v Vector) Names() []string {
	names := make([]string, len(v))
	for i, f := range v {
		names[i] = f.Name
	}
	return names
}

// Has reports whether every name is present.
func (v Vector) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := v.Get(n); !ok {
			return false
		}
	}
	return true
}

// Map returns an unordered copy, for callers that only need lookups.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(v))
	for _, f := range v {
		m[f.Name] = f.Value
	}
	return m
}

// Merge appends the fields of other whose names are not already present.
func (v Vector) Merge(other Vector) Vector {
	out := make(Vector, len(v), len(v)+len(other))
	copy(out, v)
	for _, f := range other {
		if _, dup := out.Get(f.Name); dup {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Equal reports whether both vectors hold the same fields in the same order.
func (v Vector) Equal(other Vector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON keeps field order, which a plain map would lose.
func (v Vector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(f.Value, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object while preserving key order.
func (v *Vector) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("features: expected object, got %v", tok)
	}
	out := Vector{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("features: expected string key, got %v", tok)
		}
		var val float64
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("features: field %q: %w", name, err)
		}
		out = append(out, Field{Name: name, Value: val})
	}
	*v = out
	return nil
}
