package node_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph/memory"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimension"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/node"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
)

const (
	liveWorkspace contentgraph.WorkspaceName   = "live"
	liveStream    contentgraph.ContentStreamID = "cs-live"
	rootID        contentgraph.NodeAggregateID = "root"
)

const nodeTypesYAML = `Test:Root:
  root: true
  constraints:
    nodeTypes:
      "*": true
Test:Content:
  abstract: true
Test:Text:
  superTypes: [Test:Content]
Test:Image:
  superTypes: [Test:Content]
Test:Collection:
  constraints:
    nodeTypes:
      "*": false
      Test:Content: true
Test:Teaser:
  childNodes:
    meta:
      type: Test:Collection
  constraints:
    nodeTypes:
      "*": false
Test:Document:
  abstract: true
  constraints:
    nodeTypes:
      "*": false
      Test:Document: true
  references:
    related:
      scope: specializations
      maxItems: 2
      constraints:
        nodeTypes:
          Test:Document: true
      properties:
        note:
          type: string
        weight:
          type: integer
    author:
    tags:
      scope: nodeAggregate
Test:Page:
  superTypes: [Test:Document]
  childNodes:
    main:
      type: Test:Collection
      constraints:
        nodeTypes:
          "*": true
          Test:Image: false
Test:Gallery:
  superTypes: [Test:Document]
  childNodes:
    main:
      type: Test:Collection
    teaser:
      type: Test:Teaser
Test:Folder:
  superTypes: [Test:Document]
`

// fixture is a live workspace over the language dimension
// mul > {de > gsw, en} with a root node covering every point.
type fixture struct {
	dims     *dimensionspace.Graph
	types    *nodetype.Manager
	graph    *memory.Graph
	handler  *node.Handler
	mintedNo int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	src, err := dimension.NewSource(dimension.Definition{ID: "language", Values: []dimension.ValueDefinition{
		{Value: "mul", Specializations: []dimension.ValueDefinition{
			{Value: "de", Specializations: []dimension.ValueDefinition{{Value: "gsw"}}},
			{Value: "en"},
		}},
	}})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	dims := dimensionspace.NewBuilder(dimensionspace.NewZookeeper(src)).Build()

	path := filepath.Join(t.TempDir(), "nodetypes.yaml")
	if err := os.WriteFile(path, []byte(nodeTypesYAML), 0o600); err != nil {
		t.Fatalf("write node types: %v", err)
	}
	types, err := nodetype.LoadFile(path)
	if err != nil {
		t.Fatalf("load node types: %v", err)
	}

	graph := memory.NewGraph()
	if err := graph.CreateContentStream(liveStream); err != nil {
		t.Fatalf("create content stream: %v", err)
	}
	if err := graph.AddWorkspace(contentgraph.Workspace{Name: liveWorkspace, CurrentContentStreamID: liveStream}); err != nil {
		t.Fatalf("add workspace: %v", err)
	}
	if err := graph.AddRootNodeAggregate(liveStream, rootID, "Test:Root", dims.AllowedSubspace()); err != nil {
		t.Fatalf("add root: %v", err)
	}

	f := &fixture{dims: dims, types: types, graph: graph}
	f.handler = &node.Handler{
		Graph:     dims,
		NodeTypes: types,
		Adapter:   graph,
		NewID: func() (string, error) {
			f.mintedNo++
			return fmt.Sprintf("minted-%d", f.mintedNo), nil
		},
	}
	return f
}

func lang(value string) dimensionspace.Point {
	return dimensionspace.NewPoint(map[dimension.ID]string{"language": value})
}

func origin(value string) dimensionspace.OriginPoint {
	return dimensionspace.NewOriginPoint(lang(value))
}

func points(values ...string) dimensionspace.PointSet {
	out := make([]dimensionspace.Point, len(values))
	for i, v := range values {
		out[i] = lang(v)
	}
	return dimensionspace.NewPointSet(out...)
}

// create projects a new node at the origin, covering the origin's
// specializations where the parent is present.
func (f *fixture) create(t *testing.T, id contentgraph.NodeAggregateID, typeName nodetype.Name, parentID contentgraph.NodeAggregateID, name contentgraph.NodeName, at string, classification contentgraph.Classification) {
	t.Helper()
	parent, err := f.graph.FindNodeAggregateByID(context.Background(), liveStream, parentID)
	if err != nil || parent == nil {
		t.Fatalf("find parent %s: %v", parentID, err)
	}
	specializations, err := f.dims.SpecializationSet(lang(at), true, dimensionspace.PointSet{})
	if err != nil {
		t.Fatalf("specialization set: %v", err)
	}
	f.apply(t, node.NodeAggregateWithNodeWasCreated{
		ContentStreamID:             liveStream,
		NodeAggregateID:             id,
		NodeTypeName:                typeName,
		OriginDimensionSpacePoint:   origin(at),
		CoveredDimensionSpacePoints: specializations.Intersect(parent.CoveredPoints()),
		ParentNodeAggregateID:       parentID,
		NodeName:                    name,
		Classification:              classification,
	})
}

func (f *fixture) apply(t *testing.T, payload node.Payload) {
	t.Helper()
	evt, err := node.NewEvent(payload)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if err := f.graph.Apply(context.Background(), evt); err != nil {
		t.Fatalf("apply %s: %v", evt.Type, err)
	}
}

// handle runs cmd and projects the resulting events.
func (f *fixture) handle(t *testing.T, cmd command.Command) []node.Payload {
	t.Helper()
	batch, err := cmd.Accept(context.Background(), f.handler)
	if err != nil {
		t.Fatalf("handle %s: %v", cmd.Type(), err)
	}
	if batch.StreamName != event.StreamName(string(liveStream)) {
		t.Fatalf("stream name = %q, want %q", batch.StreamName, event.StreamName(string(liveStream)))
	}
	if err := f.graph.ApplyAll(context.Background(), batch.Events); err != nil {
		t.Fatalf("apply events: %v", err)
	}
	return decodeAll(t, batch.Events)
}

func (f *fixture) reject(t *testing.T, cmd command.Command, want error) {
	t.Helper()
	_, err := cmd.Accept(context.Background(), f.handler)
	if !errors.Is(err, want) {
		t.Fatalf("handle %s: error = %v, want %v", cmd.Type(), err, want)
	}
}

func (f *fixture) aggregate(t *testing.T, id contentgraph.NodeAggregateID) *contentgraph.NodeAggregate {
	t.Helper()
	a, err := f.graph.FindNodeAggregateByID(context.Background(), liveStream, id)
	if err != nil {
		t.Fatalf("find %s: %v", id, err)
	}
	return a
}

func decodeAll(t *testing.T, events []event.Event) []node.Payload {
	t.Helper()
	out := make([]node.Payload, len(events))
	for i, evt := range events {
		payload, err := node.DecodePayload(evt)
		if err != nil {
			t.Fatalf("decode %s: %v", evt.Type, err)
		}
		out[i] = payload
	}
	return out
}

func eventTypes(payloads []node.Payload) []event.Type {
	out := make([]event.Type, len(payloads))
	for i, p := range payloads {
		out[i] = p.EventType()
	}
	return out
}

func pointValues(s dimensionspace.PointSet) []string {
	var out []string
	for _, p := range s.Points() {
		v, _ := p.Coordinate("language")
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
