// Package memory provides an in-memory content graph. It answers the
// contentgraph.Adapter queries and projects node events into itself.
package memory

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
)

var (
	// ErrContentStreamUnknown indicates an operation on a content stream that
	// was never created.
	ErrContentStreamUnknown = errors.New("content stream is unknown")
	// ErrContentStreamExists indicates a content stream created twice.
	ErrContentStreamExists = errors.New("content stream already exists")
	// ErrNodeAggregateUnknown indicates an event addressed to a missing aggregate.
	ErrNodeAggregateUnknown = errors.New("node aggregate is unknown")
	// ErrNodeAggregateDuplicate indicates a creation event for an existing id.
	ErrNodeAggregateDuplicate = errors.New("node aggregate already exists")
)

// Graph is a thread-safe in-memory content graph.
type Graph struct {
	mu         sync.RWMutex
	streams    map[contentgraph.ContentStreamID]*stream
	workspaces map[contentgraph.WorkspaceName]contentgraph.Workspace
}

type stream struct {
	state      contentgraph.ContentStreamState
	version    int
	aggregates map[contentgraph.NodeAggregateID]*aggregate
	// order is the sibling order of every aggregate in the stream.
	order []contentgraph.NodeAggregateID
}

type aggregate struct {
	id             contentgraph.NodeAggregateID
	nodeTypeName   nodetype.Name
	name           contentgraph.NodeName
	classification contentgraph.Classification
	variants       []*variant
	// parents maps covered point hashes to the parent aggregate there.
	parents map[string]contentgraph.NodeAggregateID
}

type variant struct {
	origin     dimensionspace.OriginPoint
	covered    dimensionspace.PointSet
	properties map[string]any
	references map[string][]command.ReferenceTarget
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		streams:    make(map[contentgraph.ContentStreamID]*stream),
		workspaces: make(map[contentgraph.WorkspaceName]contentgraph.Workspace),
	}
}

var _ contentgraph.Adapter = (*Graph)(nil)

// CreateContentStream adds an empty content stream at version 0.
func (g *Graph) CreateContentStream(id contentgraph.ContentStreamID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.streams[id]; ok {
		return fmt.Errorf("%w: %s", ErrContentStreamExists, id)
	}
	g.streams[id] = &stream{
		state:      contentgraph.ContentStreamStateCreated,
		aggregates: make(map[contentgraph.NodeAggregateID]*aggregate),
	}
	return nil
}

// SetContentStreamState moves a content stream to state.
func (g *Graph) SetContentStreamState(id contentgraph.ContentStreamID, state contentgraph.ContentStreamState) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.streams[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrContentStreamUnknown, id)
	}
	s.state = state
	return nil
}

// AddWorkspace points a workspace at an existing content stream and marks
// the stream as in use.
func (g *Graph) AddWorkspace(workspace contentgraph.Workspace) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.streams[workspace.CurrentContentStreamID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrContentStreamUnknown, workspace.CurrentContentStreamID)
	}
	s.state = contentgraph.ContentStreamStateInUseByWorkspace
	g.workspaces[workspace.Name] = workspace
	return nil
}

// AddRootNodeAggregate adds a root aggregate covering points.
func (g *Graph) AddRootNodeAggregate(contentStreamID contentgraph.ContentStreamID, id contentgraph.NodeAggregateID, nodeTypeName nodetype.Name, points dimensionspace.PointSet) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.streams[contentStreamID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrContentStreamUnknown, contentStreamID)
	}
	if _, exists := s.aggregates[id]; exists {
		return fmt.Errorf("%w: %s", ErrNodeAggregateDuplicate, id)
	}
	s.aggregates[id] = &aggregate{
		id:             id,
		nodeTypeName:   nodeTypeName,
		classification: contentgraph.ClassificationRoot,
		variants: []*variant{{
			origin:  dimensionspace.NewOriginPoint(dimensionspace.NewPoint(nil)),
			covered: points,
		}},
		parents: make(map[string]contentgraph.NodeAggregateID),
	}
	s.order = append(s.order, id)
	return nil
}

// References returns the targets of a reference held by the variant of an
// aggregate at origin.
func (g *Graph) References(contentStreamID contentgraph.ContentStreamID, id contentgraph.NodeAggregateID, origin dimensionspace.OriginPoint, name string) []command.ReferenceTarget {
	g.mu.RLock()
	defer g.mu.RUnlock()
	a := g.aggregate(contentStreamID, id)
	if a == nil {
		return nil
	}
	v := a.variantAt(origin)
	if v == nil {
		return nil
	}
	return slices.Clone(v.references[name])
}

// Properties returns the property values of the variant of an aggregate at
// origin.
func (g *Graph) Properties(contentStreamID contentgraph.ContentStreamID, id contentgraph.NodeAggregateID, origin dimensionspace.OriginPoint) map[string]any {
	g.mu.RLock()
	defer g.mu.RUnlock()
	a := g.aggregate(contentStreamID, id)
	if a == nil {
		return nil
	}
	v := a.variantAt(origin)
	if v == nil || v.properties == nil {
		return nil
	}
	out := make(map[string]any, len(v.properties))
	for k, value := range v.properties {
		out[k] = value
	}
	return out
}

func (g *Graph) aggregate(contentStreamID contentgraph.ContentStreamID, id contentgraph.NodeAggregateID) *aggregate {
	s, ok := g.streams[contentStreamID]
	if !ok {
		return nil
	}
	return s.aggregates[id]
}

func (a *aggregate) variantAt(origin dimensionspace.OriginPoint) *variant {
	for _, v := range a.variants {
		if v.origin.Equal(origin) {
			return v
		}
	}
	return nil
}

func (a *aggregate) variantCovering(p dimensionspace.Point) *variant {
	for _, v := range a.variants {
		if v.covered.Contains(p) {
			return v
		}
	}
	return nil
}

func (a *aggregate) snapshot(contentStreamID contentgraph.ContentStreamID) *contentgraph.NodeAggregate {
	out := &contentgraph.NodeAggregate{
		ContentStreamID: contentStreamID,
		ID:              a.id,
		NodeTypeName:    a.nodeTypeName,
		Name:            a.name,
		Classification:  a.classification,
		Occupations:     make([]contentgraph.Occupation, len(a.variants)),
	}
	for i, v := range a.variants {
		out.Occupations[i] = contentgraph.Occupation{Origin: v.origin, Covered: v.covered}
	}
	return out
}

func (a *aggregate) nodeAt(p dimensionspace.Point) *contentgraph.Node {
	v := a.variantCovering(p)
	if v == nil {
		return nil
	}
	return &contentgraph.Node{
		AggregateID:    a.id,
		NodeTypeName:   a.nodeTypeName,
		Name:           a.name,
		Classification: a.classification,
		Origin:         v.origin,
		SubgraphPoint:  p,
	}
}

// isChildOf reports whether parentID is a parent of a at any point.
func (a *aggregate) isChildOf(parentID contentgraph.NodeAggregateID) bool {
	for _, id := range a.parents {
		if id == parentID {
			return true
		}
	}
	return false
}

func (s *stream) children(parentID contentgraph.NodeAggregateID, keep func(*aggregate) bool) []*aggregate {
	var out []*aggregate
	for _, id := range s.order {
		a := s.aggregates[id]
		if a.isChildOf(parentID) && (keep == nil || keep(a)) {
			out = append(out, a)
		}
	}
	return out
}
