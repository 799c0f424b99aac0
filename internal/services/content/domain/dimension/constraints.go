package dimension

import "sort"

// Wildcard is the constraint key matching every value of a dimension.
const Wildcard = "*"

// Constraints restricts which values of other dimensions a value may be
// combined with. A dimension without an entry is unrestricted.
type Constraints struct {
	byDimension map[ID]DimensionConstraint
}

// DimensionConstraint restricts the values of one other dimension.
type DimensionConstraint struct {
	// WildcardAllowed applies to values without an explicit entry.
	WildcardAllowed bool
	Values          map[string]bool
}

// Allows reports whether value is permitted.
func (c DimensionConstraint) Allows(value string) bool {
	if allowed, ok := c.Values[value]; ok {
		return allowed
	}
	return c.WildcardAllowed
}

// NewConstraints builds constraints from the configuration form
// dimension -> value (or "*") -> allowed.
func NewConstraints(raw map[string]map[string]bool) Constraints {
	if len(raw) == 0 {
		return Constraints{}
	}
	byDimension := make(map[ID]DimensionConstraint, len(raw))
	for dim, rules := range raw {
		dc := DimensionConstraint{WildcardAllowed: true, Values: make(map[string]bool, len(rules))}
		for value, allowed := range rules {
			if value == Wildcard {
				dc.WildcardAllowed = allowed
				continue
			}
			dc.Values[value] = allowed
		}
		byDimension[ID(dim)] = dc
	}
	return Constraints{byDimension: byDimension}
}

// Allows reports whether a value of dimension dim may be combined with the
// value holding these constraints.
func (c Constraints) Allows(dim ID, value string) bool {
	dc, ok := c.byDimension[dim]
	if !ok {
		return true
	}
	return dc.Allows(value)
}

// For returns the constraint declared against dim.
func (c Constraints) For(dim ID) (DimensionConstraint, bool) {
	dc, ok := c.byDimension[dim]
	return dc, ok
}

// Dimensions returns the dimensions the constraints refer to, sorted.
func (c Constraints) Dimensions() []ID {
	out := make([]ID, 0, len(c.byDimension))
	for dim := range c.byDimension {
		out = append(out, dim)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsEmpty reports whether no constraint is declared.
func (c Constraints) IsEmpty() bool {
	return len(c.byDimension) == 0
}
