package dimensionspace

import (
	"sort"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimension"
)

// WeightedGeneralization is an ancestor of a point keyed by the normalized
// weight difference between the two.
type WeightedGeneralization struct {
	Difference int
	Point      Point
}

// WeightedSpecializations groups the descendants of a point sharing one
// normalized weight difference.
type WeightedSpecializations struct {
	Difference int
	Points     PointSet
}

// Graph is the inter-dimensional variation graph over the allowed subspace.
// It records the full transitive closure of generalization edges. A Graph is
// immutable once built and safe for concurrent use.
type Graph struct {
	base     int
	subspace PointSet
	weighted []WeightedPoint
	byHash   map[string]int
	roots    PointSet

	generalizations         map[string]PointSet
	specializations         map[string]PointSet
	weightedGeneralizations map[string][]WeightedGeneralization
	weightedSpecializations map[string][]WeightedSpecializations
	primary                 map[string]Point
}

// Builder derives a Graph from a zookeeper's allowed subspace.
type Builder struct {
	zookeeper *Zookeeper
}

// NewBuilder returns a builder for the zookeeper's dimensions.
func NewBuilder(zookeeper *Zookeeper) *Builder {
	return &Builder{zookeeper: zookeeper}
}

// graphTables collects the mutable state used while building.
type graphTables struct {
	generalizations map[string]PointSet
	specializations map[string]PointSet
	weightedGens    map[string][]WeightedGeneralization
	weightedSpecs   map[string]map[int]PointSet
	primary         map[string]Point
	minDifference   map[string]int
}

// Build computes every table of the graph.
//
// Points are visited by ascending total depth, then zookeeper enumeration
// order. Every generalization of a point has a strictly smaller total depth,
// so a point's ancestors are complete before it is visited as a
// generalization. Within a point, dimensions follow priority order and
// specialized values follow declaration order. The primary generalization of
// a point is the ancestor with the smallest normalized weight difference;
// on an exact tie the first one discovered in this order is kept.
func (b *Builder) Build() *Graph {
	source := b.zookeeper.Source()
	dims := source.Dimensions()
	subspace := b.zookeeper.AllowedSubspace()

	g := &Graph{
		base:     source.MaximumDepth() + 1,
		subspace: subspace,
		byHash:   make(map[string]int, subspace.Len()),
	}
	for i, p := range subspace.Points() {
		g.weighted = append(g.weighted, WeightedPoint{Point: p, Weight: weigh(dims, p)})
		g.byHash[p.Hash()] = i
	}

	order := make([]int, len(g.weighted))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return g.weighted[order[i]].Weight.Total() < g.weighted[order[j]].Weight.Total()
	})

	t := graphTables{
		generalizations: make(map[string]PointSet),
		specializations: make(map[string]PointSet),
		weightedGens:    make(map[string][]WeightedGeneralization),
		weightedSpecs:   make(map[string]map[int]PointSet),
		primary:         make(map[string]Point),
		minDifference:   make(map[string]int),
	}
	for _, i := range order {
		generalization := g.weighted[i]
		for _, dim := range dims {
			current, _ := generalization.Point.Coordinate(dim.ID())
			for _, value := range dim.Specializations(current) {
				candidate := generalization.Point.Vary(dim.ID(), value.Value)
				j, ok := g.byHash[candidate.Hash()]
				if !ok {
					continue
				}
				specialization := g.weighted[j]
				g.link(&t, generalization, specialization)
				for _, ancestor := range t.generalizations[generalization.Hash()].Points() {
					g.link(&t, g.weighted[g.byHash[ancestor.Hash()]], specialization)
				}
			}
		}
	}

	g.generalizations = t.generalizations
	g.specializations = t.specializations
	g.primary = t.primary
	g.weightedGeneralizations = make(map[string][]WeightedGeneralization, len(t.weightedGens))
	for h, entries := range t.weightedGens {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Difference < entries[j].Difference })
		g.weightedGeneralizations[h] = entries
	}
	g.weightedSpecializations = make(map[string][]WeightedSpecializations, len(t.weightedSpecs))
	for h, byDifference := range t.weightedSpecs {
		entries := make([]WeightedSpecializations, 0, len(byDifference))
		for difference, points := range byDifference {
			entries = append(entries, WeightedSpecializations{Difference: difference, Points: points})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Difference < entries[j].Difference })
		g.weightedSpecializations[h] = entries
	}

	var roots []Point
	for _, wp := range g.weighted {
		if g.generalizations[wp.Hash()].IsEmpty() {
			roots = append(roots, wp.Point)
		}
	}
	g.roots = NewPointSet(roots...)
	return g
}

// link records ancestor as a generalization of specialization.
func (g *Graph) link(t *graphTables, ancestor, specialization WeightedPoint) {
	sh, ah := specialization.Hash(), ancestor.Hash()
	if t.generalizations[sh].Contains(ancestor.Point) {
		return
	}
	t.generalizations[sh] = withPoint(t.generalizations[sh], ancestor.Point)
	t.specializations[ah] = withPoint(t.specializations[ah], specialization.Point)

	difference := specialization.Weight.Normalize(g.base) - ancestor.Weight.Normalize(g.base)
	if !hasDifference(t.weightedGens[sh], difference) {
		t.weightedGens[sh] = append(t.weightedGens[sh], WeightedGeneralization{Difference: difference, Point: ancestor.Point})
	}
	if t.weightedSpecs[ah] == nil {
		t.weightedSpecs[ah] = make(map[int]PointSet)
	}
	t.weightedSpecs[ah][difference] = withPoint(t.weightedSpecs[ah][difference], specialization.Point)

	if current, ok := t.minDifference[sh]; !ok || difference < current {
		t.minDifference[sh] = difference
		t.primary[sh] = ancestor.Point
	}
}

func withPoint(s PointSet, p Point) PointSet {
	if s.index == nil {
		return NewPointSet(p)
	}
	s.add(p)
	return s
}

func hasDifference(entries []WeightedGeneralization, difference int) bool {
	for _, e := range entries {
		if e.Difference == difference {
			return true
		}
	}
	return false
}

func weigh(dims []*dimension.ContentDimension, p Point) Weight {
	w := make(Weight, 0, len(dims))
	for _, dim := range dims {
		value, _ := p.Coordinate(dim.ID())
		v, _ := dim.Value(value)
		w = append(w, DimensionWeight{Dimension: dim.ID(), Depth: v.Depth})
	}
	return w
}

// NormalizationBase is one more than the deepest value across dimensions.
func (g *Graph) NormalizationBase() int {
	return g.base
}

// AllowedSubspace returns the points of the graph.
func (g *Graph) AllowedSubspace() PointSet {
	return g.subspace
}

// WeightedPoints returns every allowed point with its weight, in zookeeper
// enumeration order.
func (g *Graph) WeightedPoints() []WeightedPoint {
	out := make([]WeightedPoint, len(g.weighted))
	for i, wp := range g.weighted {
		out[i] = WeightedPoint{Point: wp.Point, Weight: append(Weight(nil), wp.Weight...)}
	}
	return out
}

// WeightedPoint returns the weighted form of p.
func (g *Graph) WeightedPoint(p Point) (WeightedPoint, bool) {
	i, ok := g.byHash[p.Hash()]
	if !ok {
		return WeightedPoint{}, false
	}
	wp := g.weighted[i]
	return WeightedPoint{Point: wp.Point, Weight: append(Weight(nil), wp.Weight...)}, true
}

// RootGeneralizations returns the points without generalizations.
func (g *Graph) RootGeneralizations() PointSet {
	return g.roots
}

// IndexedGeneralizations returns all direct and transitive ancestors of p.
func (g *Graph) IndexedGeneralizations(p Point) PointSet {
	return g.generalizations[p.Hash()]
}

// IndexedSpecializations returns all direct and transitive descendants of p.
func (g *Graph) IndexedSpecializations(p Point) PointSet {
	return g.specializations[p.Hash()]
}

// WeightedGeneralizations returns the ancestors of p by ascending weight
// difference.
func (g *Graph) WeightedGeneralizations(p Point) []WeightedGeneralization {
	entries := g.weightedGeneralizations[p.Hash()]
	out := make([]WeightedGeneralization, len(entries))
	copy(out, entries)
	return out
}

// WeightedSpecializations returns the descendants of p grouped by ascending
// weight difference.
func (g *Graph) WeightedSpecializations(p Point) []WeightedSpecializations {
	entries := g.weightedSpecializations[p.Hash()]
	out := make([]WeightedSpecializations, len(entries))
	copy(out, entries)
	return out
}

// PrimaryGeneralization returns the nearest ancestor of p; false for roots
// and unknown points.
func (g *Graph) PrimaryGeneralization(p Point) (Point, bool) {
	primary, ok := g.primary[p.Hash()]
	return primary, ok
}

// SpecializationSet returns origin and all of its specializations, minus the
// points in excluded. The origin itself is never excluded; it is only left
// out when includeOrigin is false.
func (g *Graph) SpecializationSet(origin Point, includeOrigin bool, excluded PointSet) (PointSet, error) {
	if !g.subspace.Contains(origin) {
		return PointSet{}, PointNotFound(origin)
	}
	out := NewPointSet()
	if includeOrigin {
		out.add(origin)
	}
	for _, p := range g.specializations[origin.Hash()].points {
		if !excluded.Contains(p) {
			out.add(p)
		}
	}
	return out, nil
}

// VariantType classifies subject relative to reference.
func (g *Graph) VariantType(subject, reference Point) VariantType {
	switch {
	case subject.Equal(reference):
		return VariantTypeSame
	case g.IndexedGeneralizations(subject).Contains(reference):
		return VariantTypeSpecialization
	case g.IndexedSpecializations(subject).Contains(reference):
		return VariantTypeGeneralization
	default:
		return VariantTypePeer
	}
}

// VariantType describes how two points relate in the graph.
type VariantType string

const (
	VariantTypeSame           VariantType = "same"
	VariantTypeSpecialization VariantType = "specialization"
	VariantTypeGeneralization VariantType = "generalization"
	VariantTypePeer           VariantType = "peer"
)
