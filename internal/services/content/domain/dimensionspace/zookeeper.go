package dimensionspace

import "github.com/louisbranch/contentrepository/internal/services/content/domain/dimension"

// Zookeeper computes the allowed subspace: every combination of dimension
// values whose constraints permit each other.
type Zookeeper struct {
	source       *dimension.Source
	combinations []Point
	subspace     PointSet
}

// NewZookeeper enumerates the allowed combinations of source. The first
// dimension varies slowest and values follow declaration order.
func NewZookeeper(source *dimension.Source) *Zookeeper {
	combinations := []map[dimension.ID]string{{}}
	var chosen []*dimension.ContentDimension
	for _, dim := range source.Dimensions() {
		next := make([]map[dimension.ID]string, 0, len(combinations)*len(dim.Values()))
		for _, combination := range combinations {
			for _, value := range dim.Values() {
				if !combinable(chosen, combination, dim.ID(), value) {
					continue
				}
				extended := make(map[dimension.ID]string, len(combination)+1)
				for k, v := range combination {
					extended[k] = v
				}
				extended[dim.ID()] = value.Value
				next = append(next, extended)
			}
		}
		combinations = next
		chosen = append(chosen, dim)
	}

	// Without dimensions the subspace is the single empty point.
	z := &Zookeeper{source: source}
	for _, combination := range combinations {
		z.combinations = append(z.combinations, NewPoint(combination))
	}
	z.subspace = NewPointSet(z.combinations...)
	return z
}

// combinable checks constraints in both directions between value and the
// values already chosen for earlier dimensions.
func combinable(chosen []*dimension.ContentDimension, combination map[dimension.ID]string, id dimension.ID, value dimension.Value) bool {
	for _, other := range chosen {
		otherValue, _ := other.Value(combination[other.ID()])
		if !value.Constraints.Allows(other.ID(), otherValue.Value) {
			return false
		}
		if !otherValue.Constraints.Allows(id, value.Value) {
			return false
		}
	}
	return true
}

// Source returns the dimension source the zookeeper was built from.
func (z *Zookeeper) Source() *dimension.Source {
	return z.source
}

// AllowedCombinations returns the allowed coordinate maps in enumeration order.
func (z *Zookeeper) AllowedCombinations() []map[dimension.ID]string {
	out := make([]map[dimension.ID]string, len(z.combinations))
	for i, p := range z.combinations {
		out[i] = p.Coordinates()
	}
	return out
}

// AllowedSubspace returns the allowed points in enumeration order.
func (z *Zookeeper) AllowedSubspace() PointSet {
	return z.subspace
}
