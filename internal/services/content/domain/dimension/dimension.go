// Package dimension defines content dimensions: named axes of variation whose
// values form specialization trees.
package dimension

import (
	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
)

// ErrConfigInvalid marks dimension configuration that cannot be used.
var ErrConfigInvalid = apperrors.New(apperrors.CodeDimensionConfigInvalid, "dimension configuration is invalid")

// ID identifies a content dimension, e.g. "language".
type ID string

// String returns the raw identifier.
func (id ID) String() string {
	return string(id)
}

// Value is one legal value of a dimension.
type Value struct {
	Value string
	// Depth is the distance from the root of the value's specialization tree.
	Depth int
	// Generalization is empty for root values.
	Generalization  string
	Specializations []string
	Constraints     Constraints
}

// IsRoot reports whether the value has no generalization.
func (v Value) IsRoot() bool {
	return v.Generalization == ""
}

// ContentDimension is a validated dimension with its value tree.
type ContentDimension struct {
	id       ID
	values   []Value
	index    map[string]int
	maxDepth int
}

// ID returns the dimension identifier.
func (d *ContentDimension) ID() ID {
	return d.id
}

// Value looks up a value by name.
func (d *ContentDimension) Value(value string) (Value, bool) {
	i, ok := d.index[value]
	if !ok {
		return Value{}, false
	}
	return d.values[i], true
}

// Values returns all values in declaration order (depth-first).
func (d *ContentDimension) Values() []Value {
	out := make([]Value, len(d.values))
	copy(out, d.values)
	return out
}

// RootValues returns the values without generalization.
func (d *ContentDimension) RootValues() []Value {
	var out []Value
	for _, v := range d.values {
		if v.IsRoot() {
			out = append(out, v)
		}
	}
	return out
}

// Specializations returns the direct specializations of value in declaration order.
func (d *ContentDimension) Specializations(value string) []Value {
	v, ok := d.Value(value)
	if !ok {
		return nil
	}
	out := make([]Value, 0, len(v.Specializations))
	for _, name := range v.Specializations {
		out = append(out, d.values[d.index[name]])
	}
	return out
}

// Generalization returns the direct generalization of value, if any.
func (d *ContentDimension) Generalization(value string) (Value, bool) {
	v, ok := d.Value(value)
	if !ok || v.IsRoot() {
		return Value{}, false
	}
	return d.Value(v.Generalization)
}

// MaximumDepth returns the greatest value depth in the dimension.
func (d *ContentDimension) MaximumDepth() int {
	return d.maxDepth
}
