package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimension"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/node"
)

const cs contentgraph.ContentStreamID = "cs"

func lang(v string) dimensionspace.Point {
	return dimensionspace.NewPoint(map[dimension.ID]string{"language": v})
}

func set(values ...string) dimensionspace.PointSet {
	points := make([]dimensionspace.Point, len(values))
	for i, v := range values {
		points[i] = lang(v)
	}
	return dimensionspace.NewPointSet(points...)
}

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	if err := g.CreateContentStream(cs); err != nil {
		t.Fatalf("create content stream: %v", err)
	}
	if err := g.AddRootNodeAggregate(cs, "root", "Test:Root", set("mul", "de", "en")); err != nil {
		t.Fatalf("add root: %v", err)
	}
	return g
}

func mustApply(t *testing.T, g *Graph, payload node.Payload) {
	t.Helper()
	evt, err := node.NewEvent(payload)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if err := g.Apply(context.Background(), evt); err != nil {
		t.Fatalf("apply %s: %v", evt.Type, err)
	}
}

func created(id, parent contentgraph.NodeAggregateID, name contentgraph.NodeName, at string, covered dimensionspace.PointSet) node.NodeAggregateWithNodeWasCreated {
	return node.NodeAggregateWithNodeWasCreated{
		ContentStreamID:             cs,
		NodeAggregateID:             id,
		NodeTypeName:                "Test:Page",
		OriginDimensionSpacePoint:   dimensionspace.NewOriginPoint(lang(at)),
		CoveredDimensionSpacePoints: covered,
		ParentNodeAggregateID:       parent,
		NodeName:                    name,
		Classification:              contentgraph.ClassificationRegular,
	}
}

func childIDs(t *testing.T, g *Graph, parent contentgraph.NodeAggregateID) []contentgraph.NodeAggregateID {
	t.Helper()
	children, err := g.FindChildNodeAggregates(context.Background(), cs, parent)
	if err != nil {
		t.Fatalf("find children: %v", err)
	}
	var out []contentgraph.NodeAggregateID
	for _, c := range children {
		out = append(out, c.ID)
	}
	return out
}

func TestApplyCreationKeepsSiblingOrder(t *testing.T) {
	g := newTestGraph(t)
	mustApply(t, g, created("b", "root", "b", "mul", set("mul", "de", "en")))
	c := created("a", "root", "a", "mul", set("mul", "de", "en"))
	c.SucceedingNodeAggregateID = "b"
	mustApply(t, g, c)
	mustApply(t, g, created("c", "root", "c", "mul", set("mul", "de", "en")))

	if diff := cmp.Diff([]contentgraph.NodeAggregateID{"a", "b", "c"}, childIDs(t, g, "root")); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
	parents, err := g.FindParentNodeAggregates(context.Background(), cs, "a")
	if err != nil || len(parents) != 1 || parents[0].ID != "root" {
		t.Fatalf("parents = %v, %v", parents, err)
	}
}

func TestApplyRejectsDuplicateAndUnknownStream(t *testing.T) {
	g := newTestGraph(t)
	mustApply(t, g, created("a", "root", "a", "mul", set("mul")))

	evt, err := node.NewEvent(created("a", "root", "a", "mul", set("mul")))
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if err := g.Apply(context.Background(), evt); !errors.Is(err, ErrNodeAggregateDuplicate) {
		t.Fatalf("error = %v, want duplicate", err)
	}

	other := created("x", "root", "x", "mul", set("mul"))
	other.ContentStreamID = "other"
	evt, err = node.NewEvent(other)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if err := g.Apply(context.Background(), evt); !errors.Is(err, ErrContentStreamUnknown) {
		t.Fatalf("error = %v, want unknown stream", err)
	}
}

func TestApplyRemovalCascadesAtRemovedPoints(t *testing.T) {
	g := newTestGraph(t)
	mustApply(t, g, created("page", "root", "page", "mul", set("mul", "de", "en")))
	mustApply(t, g, created("child", "page", "child", "mul", set("mul", "de", "en")))

	mustApply(t, g, node.NodeAggregateWasRemoved{
		ContentStreamID:                      cs,
		NodeAggregateID:                      "page",
		AffectedOccupiedDimensionSpacePoints: dimensionspace.NewOriginPointSet(dimensionspace.NewOriginPoint(lang("mul"))),
		AffectedCoveredDimensionSpacePoints:  set("de"),
	})

	ctx := context.Background()
	for _, id := range []contentgraph.NodeAggregateID{"page", "child"} {
		a, err := g.FindNodeAggregateByID(ctx, cs, id)
		if err != nil || a == nil {
			t.Fatalf("find %s: %v, %v", id, a, err)
		}
		if a.Covers(lang("de")) || !a.Covers(lang("en")) {
			t.Fatalf("%s coverage = %v", id, a.CoveredPoints())
		}
	}

	mustApply(t, g, node.NodeAggregateWasRemoved{
		ContentStreamID:                      cs,
		NodeAggregateID:                      "page",
		AffectedOccupiedDimensionSpacePoints: dimensionspace.NewOriginPointSet(dimensionspace.NewOriginPoint(lang("mul"))),
		AffectedCoveredDimensionSpacePoints:  set("mul", "en"),
	})
	for _, id := range []contentgraph.NodeAggregateID{"page", "child"} {
		if a, _ := g.FindNodeAggregateByID(ctx, cs, id); a != nil {
			t.Fatalf("expected %s to be gone, got %+v", id, a)
		}
	}
}

func TestApplyVariantMovesCoverage(t *testing.T) {
	g := newTestGraph(t)
	mustApply(t, g, created("page", "root", "page", "mul", set("mul", "de", "en")))
	mustApply(t, g, node.NodeSpecializationVariantWasCreated{
		ContentStreamID:        cs,
		NodeAggregateID:        "page",
		SourceOrigin:           dimensionspace.NewOriginPoint(lang("mul")),
		SpecializationOrigin:   dimensionspace.NewOriginPoint(lang("de")),
		SpecializationCoverage: set("de"),
	})

	ctx := context.Background()
	n, err := g.FindChildNodeByNameInSubgraph(ctx, cs, lang("de"), "root", "page")
	if err != nil || n == nil {
		t.Fatalf("find node: %v, %v", n, err)
	}
	if !n.Origin.Equal(dimensionspace.NewOriginPoint(lang("de"))) {
		t.Fatalf("origin at de = %s", n.Origin)
	}
	parent, err := g.FindParentNodeInSubgraph(ctx, cs, lang("de"), "page")
	if err != nil || parent == nil || parent.AggregateID != "root" {
		t.Fatalf("parent at de = %v, %v", parent, err)
	}
	byOrigin, err := g.FindParentNodeAggregateByChildOrigin(ctx, cs, "page", dimensionspace.NewOriginPoint(lang("de")))
	if err != nil || byOrigin == nil || byOrigin.ID != "root" {
		t.Fatalf("parent by origin = %v, %v", byOrigin, err)
	}
	a, _ := g.FindNodeAggregateByID(ctx, cs, "page")
	if got := a.CoverageByOccupant(dimensionspace.NewOriginPoint(lang("mul"))); !got.Equal(set("mul", "en")) {
		t.Fatalf("mul coverage = %v", got)
	}
}

func TestApplyRenameTypeChangeAndReferences(t *testing.T) {
	g := newTestGraph(t)
	mustApply(t, g, created("page", "root", "page", "mul", set("mul", "de", "en")))
	mustApply(t, g, node.NodeAggregateNameWasChanged{ContentStreamID: cs, NodeAggregateID: "page", NewNodeName: "start"})
	mustApply(t, g, node.NodeAggregateTypeWasChanged{ContentStreamID: cs, NodeAggregateID: "page", NewNodeTypeName: "Test:Folder"})
	refs := []command.ReferenceTarget{{TargetNodeAggregateID: "root", Properties: map[string]any{"weight": 1.0}}}
	mustApply(t, g, node.NodeReferencesWereSet{
		ContentStreamID:                          cs,
		SourceNodeAggregateID:                    "page",
		AffectedSourceOriginDimensionSpacePoints: dimensionspace.NewOriginPointSet(dimensionspace.NewOriginPoint(lang("mul"))),
		ReferenceName:                            "related",
		References:                               refs,
	})

	ctx := context.Background()
	a, _ := g.FindNodeAggregateByID(ctx, cs, "page")
	if a.Name != "start" || a.NodeTypeName != "Test:Folder" {
		t.Fatalf("aggregate = %+v", a)
	}
	byName, err := g.FindChildNodeByNameInSubgraph(ctx, cs, lang("en"), "root", "start")
	if err != nil || byName == nil || byName.AggregateID != "page" {
		t.Fatalf("child by name = %v, %v", byName, err)
	}
	occupied, err := g.OccupiedDimensionSpacePointsByChildNodeName(ctx, cs, "start", "root", dimensionspace.NewOriginPoint(lang("mul")), set("de", "fr"))
	if err != nil || !occupied.Equal(set("de")) {
		t.Fatalf("occupied = %v, %v", occupied, err)
	}
	if diff := cmp.Diff(refs, g.References(cs, "page", dimensionspace.NewOriginPoint(lang("mul")), "related")); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}
}

func TestContentStreamAndWorkspaceLookups(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	if err := g.AddWorkspace(contentgraph.Workspace{Name: "live", CurrentContentStreamID: cs}); err != nil {
		t.Fatalf("add workspace: %v", err)
	}
	if err := g.AddWorkspace(contentgraph.Workspace{Name: "user", CurrentContentStreamID: "missing"}); !errors.Is(err, ErrContentStreamUnknown) {
		t.Fatalf("error = %v, want unknown stream", err)
	}
	ws, err := g.FindWorkspaceByName(ctx, "live")
	if err != nil || ws == nil || ws.CurrentContentStreamID != cs {
		t.Fatalf("workspace = %v, %v", ws, err)
	}
	state, known, err := g.FindStateForContentStream(ctx, cs)
	if err != nil || !known || state != contentgraph.ContentStreamStateInUseByWorkspace {
		t.Fatalf("state = %s, %v, %v", state, known, err)
	}
	version, err := g.FindVersionForContentStream(ctx, cs)
	if err != nil || version != contentgraph.KnownVersion(0) {
		t.Fatalf("version = %+v, %v", version, err)
	}
	missing, err := g.FindVersionForContentStream(ctx, "missing")
	if err != nil || missing.Known {
		t.Fatalf("missing version = %+v, %v", missing, err)
	}

	evt, err := node.NewEvent(node.NodeAggregateTypeWasChanged{ContentStreamID: cs, NodeAggregateID: "root", NewNodeTypeName: "Test:Root"})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	evt.Version = 4
	if err := g.Apply(ctx, evt); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if version, _ := g.FindVersionForContentStream(ctx, cs); version.Value != 4 {
		t.Fatalf("version = %d, want 4", version.Value)
	}
}
