package node_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/node"
)

// referencingFixture has a source page at mul with a variant at de, target
// pages, a collection, and a page only present at en.
func referencingFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.create(t, "source", "Test:Page", rootID, "source", "mul", contentgraph.ClassificationRegular)
	f.apply(t, node.NodeSpecializationVariantWasCreated{
		ContentStreamID:        liveStream,
		NodeAggregateID:        "source",
		SourceOrigin:           origin("mul"),
		SpecializationOrigin:   origin("de"),
		SpecializationCoverage: points("de", "gsw"),
	})
	f.create(t, "target-a", "Test:Page", rootID, "target-a", "mul", contentgraph.ClassificationRegular)
	f.create(t, "target-b", "Test:Folder", rootID, "target-b", "mul", contentgraph.ClassificationRegular)
	f.create(t, "target-c", "Test:Folder", rootID, "target-c", "mul", contentgraph.ClassificationRegular)
	f.create(t, "collection", "Test:Collection", rootID, "collection", "mul", contentgraph.ClassificationRegular)
	f.create(t, "english", "Test:Page", rootID, "english", "en", contentgraph.ClassificationRegular)
	return f
}

func setReferences(at, name string, targets ...contentgraph.NodeAggregateID) command.SetNodeReferences {
	cmd := command.SetNodeReferences{
		WorkspaceName:         liveWorkspace,
		SourceNodeAggregateID: "source",
		SourceOrigin:          origin(at),
		ReferenceName:         name,
	}
	for _, target := range targets {
		cmd.References = append(cmd.References, command.ReferenceTarget{TargetNodeAggregateID: target})
	}
	return cmd
}

func TestSetNodeReferencesScopes(t *testing.T) {
	tests := []struct {
		name string
		cmd  command.SetNodeReferences
		want []string
	}{
		{"node scope", setReferences("de", "author", "target-a"), []string{"de"}},
		{"specializations scope from root origin", setReferences("mul", "related", "target-a", "target-b"), []string{"de", "mul"}},
		{"specializations scope from leaf origin", setReferences("de", "related", "target-a"), []string{"de"}},
		{"node aggregate scope", setReferences("de", "tags", "target-a"), []string{"de", "mul"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := referencingFixture(t)

			payloads := f.handle(t, tt.cmd)

			if len(payloads) != 1 {
				t.Fatalf("events = %d, want 1", len(payloads))
			}
			set := payloads[0].(*node.NodeReferencesWereSet)
			if diff := cmp.Diff(tt.want, pointValues(set.AffectedSourceOriginDimensionSpacePoints.ToPointSet())); diff != "" {
				t.Fatalf("affected origins mismatch (-want +got):\n%s", diff)
			}
			for _, at := range tt.want {
				got := f.graph.References(liveStream, "source", origin(at), tt.cmd.ReferenceName)
				if diff := cmp.Diff(tt.cmd.References, got); diff != "" {
					t.Fatalf("references at %s mismatch (-want +got):\n%s", at, diff)
				}
			}
		})
	}
}

func TestSetNodeReferencesClearsWithEmptyTargets(t *testing.T) {
	f := referencingFixture(t)
	f.handle(t, setReferences("mul", "author", "target-a"))

	payloads := f.handle(t, setReferences("mul", "author"))

	set := payloads[0].(*node.NodeReferencesWereSet)
	if set.References == nil || len(set.References) != 0 {
		t.Fatalf("references = %#v, want empty", set.References)
	}
	if got := f.graph.References(liveStream, "source", origin("mul"), "author"); len(got) != 0 {
		t.Fatalf("projected references = %v, want none", got)
	}
}

func TestSetNodeReferencesRejects(t *testing.T) {
	tests := []struct {
		name string
		cmd  command.SetNodeReferences
		want error
	}{
		{"source missing", func() command.SetNodeReferences {
			c := setReferences("mul", "author", "target-a")
			c.SourceNodeAggregateID = "missing"
			return c
		}(), node.ErrNodeAggregateNotFound},
		{"source is root", func() command.SetNodeReferences {
			c := setReferences("mul", "author", "target-a")
			c.SourceNodeAggregateID = rootID
			return c
		}(), node.ErrNodeAggregateIsRoot},
		{"source does not occupy origin", setReferences("gsw", "author", "target-a"), node.ErrNodeAggregateDoesNotOccupyPoint},
		{"reference not declared", setReferences("mul", "unknown", "target-a"), node.ErrReferenceNotDeclared},
		{"too many targets", setReferences("mul", "related", "target-a", "target-b", "target-c"), node.ErrReferenceCardinalityExceeded},
		{"target missing", setReferences("mul", "author", "missing"), node.ErrNodeAggregateNotFound},
		{"target is root", setReferences("mul", "author", rootID), node.ErrNodeAggregateIsRoot},
		{"target does not cover source point", setReferences("mul", "author", "english"), node.ErrNodeAggregateDoesNotCoverPoint},
		{"target type disallowed", setReferences("mul", "related", "collection"), node.ErrReferenceTargetTypeDisallowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := referencingFixture(t)
			f.reject(t, tt.cmd, tt.want)
		})
	}
}

func withProperties(cmd command.SetNodeReferences, properties map[string]any) command.SetNodeReferences {
	for i := range cmd.References {
		cmd.References[i].Properties = properties
	}
	return cmd
}

func TestSetNodeReferencesKeepsDeclaredProperties(t *testing.T) {
	f := referencingFixture(t)
	cmd := withProperties(setReferences("mul", "related", "target-a"), map[string]any{"note": "see also", "weight": float64(2)})

	f.handle(t, cmd)

	got := f.graph.References(liveStream, "source", origin("mul"), "related")
	if diff := cmp.Diff(cmd.References, got); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}
}

func TestSetNodeReferencesRejectsInvalidProperties(t *testing.T) {
	tests := []struct {
		name string
		cmd  command.SetNodeReferences
	}{
		{"undeclared property", withProperties(setReferences("mul", "related", "target-a"), map[string]any{"colour": "red"})},
		{"reference without properties", withProperties(setReferences("mul", "author", "target-a"), map[string]any{"note": "x"})},
		{"wrong type", withProperties(setReferences("mul", "related", "target-a"), map[string]any{"weight": "heavy"})},
		{"fractional integer", withProperties(setReferences("mul", "related", "target-a"), map[string]any{"weight": 1.5})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := referencingFixture(t)
			f.reject(t, tt.cmd, node.ErrReferencePropertyInvalid)
			if got := f.graph.References(liveStream, "source", origin("mul"), tt.cmd.ReferenceName); len(got) != 0 {
				t.Fatalf("projected references = %v, want none", got)
			}
		})
	}
}
