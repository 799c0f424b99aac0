package dimensionspace

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimension"
)

func TestZookeeperAllowedCombinations(t *testing.T) {
	zk, _ := sampleGraph(t)

	want := []Point{
		pt("mul", "default"), pt("mul", "premium"),
		pt("de", "default"), pt("de", "premium"),
		pt("gsw", "default"),
		pt("en", "default"), pt("en", "premium"),
	}
	if diff := cmp.Diff(pointStrings(want), pointStrings(zk.AllowedSubspace().Points())); diff != "" {
		t.Fatalf("allowed subspace mismatch (-want +got):\n%s", diff)
	}
	if got := len(zk.AllowedCombinations()); got != len(want) {
		t.Fatalf("combinations = %d, want %d", got, len(want))
	}
}

func TestZookeeperWithoutDimensions(t *testing.T) {
	src, err := dimension.NewSource()
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	zk := NewZookeeper(src)
	if zk.AllowedSubspace().Len() != 1 || !zk.AllowedSubspace().Contains(NewPoint(nil)) {
		t.Fatalf("subspace = %v, want the empty point", pointStrings(zk.AllowedSubspace().Points()))
	}
	g := NewBuilder(zk).Build()
	set, err := g.SpecializationSet(NewPoint(nil), true, PointSet{})
	if err != nil || set.Len() != 1 {
		t.Fatalf("specialization set = %v, %v", pointStrings(set.Points()), err)
	}
}

func TestLanguageScenario(t *testing.T) {
	src, err := dimension.NewSource(
		dimension.Definition{ID: "language", Values: []dimension.ValueDefinition{
			{Value: "en", Specializations: []dimension.ValueDefinition{{Value: "de"}}},
		}},
		dimension.Definition{ID: "audience", Values: []dimension.ValueDefinition{{Value: "default"}}},
	)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	g := NewBuilder(NewZookeeper(src)).Build()
	en, de := pt("en", "default"), pt("de", "default")

	if !g.IndexedGeneralizations(de).Contains(en) {
		t.Fatal("expected en to generalize de")
	}
	if primary, ok := g.PrimaryGeneralization(de); !ok || !primary.Equal(en) {
		t.Fatalf("primary(de) = %s, %v, want %s", primary, ok, en)
	}
	if diff := cmp.Diff(pointStrings([]Point{en}), pointStrings(g.RootGeneralizations().Points())); diff != "" {
		t.Fatalf("roots mismatch (-want +got):\n%s", diff)
	}
	set, err := g.SpecializationSet(en, true, PointSet{})
	if err != nil {
		t.Fatalf("specialization set: %v", err)
	}
	if !set.Equal(NewPointSet(en, de)) {
		t.Fatalf("specialization set = %v", pointStrings(set.Points()))
	}
}

func TestGraphDirectSpecializationsAreEdges(t *testing.T) {
	zk, g := sampleGraph(t)
	subspace := zk.AllowedSubspace()

	for _, p := range subspace.Points() {
		for _, dim := range zk.Source().Dimensions() {
			value, _ := p.Coordinate(dim.ID())
			for _, spec := range dim.Specializations(value) {
				q := p.Vary(dim.ID(), spec.Value)
				if !subspace.Contains(q) {
					if g.IndexedSpecializations(p).Contains(q) {
						t.Fatalf("%s outside the subspace recorded under %s", q, p)
					}
					continue
				}
				if !g.IndexedGeneralizations(q).Contains(p) {
					t.Fatalf("%s missing from generalizations of %s", p, q)
				}
				if !g.IndexedSpecializations(p).Contains(q) {
					t.Fatalf("%s missing from specializations of %s", q, p)
				}
			}
		}
	}
}

func TestGraphIsTransitiveAndAcyclic(t *testing.T) {
	zk, g := sampleGraph(t)

	for _, c := range zk.AllowedSubspace().Points() {
		if g.IndexedGeneralizations(c).Contains(c) {
			t.Fatalf("%s is its own ancestor", c)
		}
		for _, b := range g.IndexedGeneralizations(c).Points() {
			for _, a := range g.IndexedGeneralizations(b).Points() {
				if !g.IndexedGeneralizations(c).Contains(a) {
					t.Fatalf("%s -> %s -> %s not closed", a, b, c)
				}
				if !g.IndexedSpecializations(a).Contains(c) {
					t.Fatalf("%s missing from specializations of %s", c, a)
				}
			}
		}
	}

	// mul/default reaches gsw/default through de/default.
	if !g.IndexedGeneralizations(pt("gsw", "default")).Contains(pt("mul", "default")) {
		t.Fatal("expected transitive generalization")
	}
	if got := g.IndexedSpecializations(pt("mul", "default")).Len(); got != 6 {
		t.Fatalf("specializations of root = %d, want 6", got)
	}
}

func TestGraphPrimaryGeneralizationIsNearestAncestor(t *testing.T) {
	zk, g := sampleGraph(t)

	for _, p := range zk.AllowedSubspace().Points() {
		primary, ok := g.PrimaryGeneralization(p)
		isRoot := g.RootGeneralizations().Contains(p)
		if ok == isRoot {
			t.Fatalf("%s: primary present = %v, root = %v", p, ok, isRoot)
		}
		if !ok {
			continue
		}
		if !g.IndexedGeneralizations(p).Contains(primary) {
			t.Fatalf("primary %s is not an ancestor of %s", primary, p)
		}
		weighted := g.WeightedGeneralizations(p)
		for i := 1; i < len(weighted); i++ {
			if weighted[i-1].Difference >= weighted[i].Difference {
				t.Fatalf("%s: weighted generalizations not strictly ascending: %+v", p, weighted)
			}
		}
		if !weighted[0].Point.Equal(primary) {
			t.Fatalf("%s: smallest weighted %s, primary %s", p, weighted[0].Point, primary)
		}
	}
}

// de/premium has two direct generalizations. The one differing in the lower
// priority dimension is nearer and must win regardless of discovery order.
func TestGraphPrimaryGeneralizationPinned(t *testing.T) {
	_, g := sampleGraph(t)
	p := pt("de", "premium")

	if g.NormalizationBase() != 3 {
		t.Fatalf("base = %d, want 3", g.NormalizationBase())
	}
	primary, ok := g.PrimaryGeneralization(p)
	if !ok || !primary.Equal(pt("de", "default")) {
		t.Fatalf("primary = %s, want de/default", primary)
	}

	type entry struct {
		Difference int
		Point      string
	}
	var got []entry
	for _, wg := range g.WeightedGeneralizations(p) {
		got = append(got, entry{wg.Difference, wg.Point.String()})
	}
	want := []entry{
		{1, pt("de", "default").String()},
		{3, pt("mul", "premium").String()},
		{4, pt("mul", "default").String()},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("weighted generalizations mismatch (-want +got):\n%s", diff)
	}
}

func TestGraphWeightedSpecializations(t *testing.T) {
	_, g := sampleGraph(t)

	groups := g.WeightedSpecializations(pt("mul", "default"))
	var differences []int
	for _, grp := range groups {
		differences = append(differences, grp.Difference)
	}
	// premium (1), de|en (3), de|en premium (4), gsw (6)
	if diff := cmp.Diff([]int{1, 3, 4, 6}, differences); diff != "" {
		t.Fatalf("differences mismatch (-want +got):\n%s", diff)
	}
	if !groups[1].Points.Equal(NewPointSet(pt("de", "default"), pt("en", "default"))) {
		t.Fatalf("group 3 = %v", pointStrings(groups[1].Points.Points()))
	}
}

func TestGraphSpecializationSet(t *testing.T) {
	_, g := sampleGraph(t)
	de := pt("de", "default")

	with, err := g.SpecializationSet(de, true, PointSet{})
	if err != nil {
		t.Fatalf("specialization set: %v", err)
	}
	if !with.Equal(NewPointSet(de, pt("de", "premium"), pt("gsw", "default"))) {
		t.Fatalf("with origin = %v", pointStrings(with.Points()))
	}

	without, err := g.SpecializationSet(de, false, NewPointSet(pt("gsw", "default"), de))
	if err != nil {
		t.Fatalf("specialization set: %v", err)
	}
	if without.Contains(de) {
		t.Fatal("origin must be left out when not included")
	}
	if !without.Equal(NewPointSet(pt("de", "premium"))) {
		t.Fatalf("without origin = %v", pointStrings(without.Points()))
	}

	excludedOrigin, err := g.SpecializationSet(de, true, NewPointSet(de))
	if err != nil || !excludedOrigin.Contains(de) {
		t.Fatalf("origin must survive exclusion: %v, %v", pointStrings(excludedOrigin.Points()), err)
	}
}

func TestGraphSpecializationSetUnknownPoint(t *testing.T) {
	_, g := sampleGraph(t)

	for _, p := range []Point{pt("gsw", "premium"), pt("fr", "default")} {
		_, err := g.SpecializationSet(p, true, PointSet{})
		if !errors.Is(err, ErrPointNotFound) {
			t.Fatalf("%s: err = %v, want %v", p, err, ErrPointNotFound)
		}
	}
	if !g.IndexedGeneralizations(pt("fr", "default")).IsEmpty() {
		t.Fatal("unknown point should have no generalizations")
	}
	if _, ok := g.PrimaryGeneralization(pt("fr", "default")); ok {
		t.Fatal("unknown point should have no primary generalization")
	}
}

func TestGraphReadsAreIdempotent(t *testing.T) {
	zk, g := sampleGraph(t)

	for _, p := range zk.AllowedSubspace().Points() {
		first, _ := g.SpecializationSet(p, true, PointSet{})
		firstWeighted := g.WeightedGeneralizations(p)
		if len(firstWeighted) > 0 {
			firstWeighted[0].Difference = -1
		}
		second, _ := g.SpecializationSet(p, true, PointSet{})
		secondWeighted := g.WeightedGeneralizations(p)

		if diff := cmp.Diff(pointStrings(first.Points()), pointStrings(second.Points())); diff != "" {
			t.Fatalf("%s: specialization set changed (-first +second):\n%s", p, diff)
		}
		for _, wg := range secondWeighted {
			if wg.Difference < 0 {
				t.Fatalf("%s: caller mutation leaked into the graph", p)
			}
		}
		if !g.IndexedGeneralizations(p).Equal(g.IndexedGeneralizations(p)) {
			t.Fatalf("%s: generalizations changed between reads", p)
		}
	}
}

func TestGraphWeightedPoints(t *testing.T) {
	_, g := sampleGraph(t)

	wp, ok := g.WeightedPoint(pt("gsw", "default"))
	if !ok {
		t.Fatal("expected weighted point")
	}
	want := Weight{{Dimension: "language", Depth: 2}, {Dimension: "audience", Depth: 0}}
	if diff := cmp.Diff(want, wp.Weight); diff != "" {
		t.Fatalf("weight mismatch (-want +got):\n%s", diff)
	}
	if got := len(g.WeightedPoints()); got != 7 {
		t.Fatalf("weighted points = %d, want 7", got)
	}
	if _, ok := g.WeightedPoint(pt("gsw", "premium")); ok {
		t.Fatal("disallowed point should not be weighted")
	}
}

func TestGraphVariantType(t *testing.T) {
	_, g := sampleGraph(t)

	tests := []struct {
		subject, reference Point
		want               VariantType
	}{
		{pt("de", "default"), pt("de", "default"), VariantTypeSame},
		{pt("gsw", "default"), pt("mul", "default"), VariantTypeSpecialization},
		{pt("mul", "default"), pt("de", "premium"), VariantTypeGeneralization},
		{pt("en", "default"), pt("de", "default"), VariantTypePeer},
	}
	for _, tt := range tests {
		if got := g.VariantType(tt.subject, tt.reference); got != tt.want {
			t.Fatalf("VariantType(%s, %s) = %s, want %s", tt.subject, tt.reference, got, tt.want)
		}
	}
}

func TestPointNotFoundCarriesPoint(t *testing.T) {
	p := pt("fr", "default")

	err := PointNotFound(p)

	if !errors.Is(err, ErrPointNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrPointNotFound)
	}
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("err = %T, want *apperrors.Error", err)
	}
	if got := domainErr.Metadata["DimensionSpacePoint"]; got != p.String() {
		t.Fatalf("DimensionSpacePoint = %q, want %q", got, p.String())
	}
}
