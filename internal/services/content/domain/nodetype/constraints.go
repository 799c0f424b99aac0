package nodetype

// Wildcard matches every node type in a constraint.
const Wildcard Name = "*"

// Constraints maps node type names (or the wildcard) to allowed flags.
type Constraints map[Name]bool

// resolve decides whether a type with the given lineage is allowed. The
// lineage lists the type first, then its supertypes level by level. The
// nearest level with an explicit entry decides; a deny wins within a level.
// Without an explicit match the wildcard decides, and without a wildcard the
// type is denied unless no constraint is declared at all.
func (c Constraints) resolve(lineage [][]Name) bool {
	if len(c) == 0 {
		return true
	}
	for _, level := range lineage {
		matched, allowed := false, true
		for _, name := range level {
			if v, ok := c[name]; ok {
				matched = true
				allowed = allowed && v
			}
		}
		if matched {
			return allowed
		}
	}
	if v, ok := c[Wildcard]; ok {
		return v
	}
	return false
}

func (c Constraints) merge(override Constraints) Constraints {
	if len(c) == 0 && len(override) == 0 {
		return nil
	}
	out := make(Constraints, len(c)+len(override))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
