package memory

import (
	"context"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
)

// FindNodeAggregateByID implements contentgraph.Adapter.
func (g *Graph) FindNodeAggregateByID(_ context.Context, contentStreamID contentgraph.ContentStreamID, id contentgraph.NodeAggregateID) (*contentgraph.NodeAggregate, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	a := g.aggregate(contentStreamID, id)
	if a == nil {
		return nil, nil
	}
	return a.snapshot(contentStreamID), nil
}

// FindParentNodeAggregates implements contentgraph.Adapter.
func (g *Graph) FindParentNodeAggregates(_ context.Context, contentStreamID contentgraph.ContentStreamID, childID contentgraph.NodeAggregateID) ([]*contentgraph.NodeAggregate, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	child := g.aggregate(contentStreamID, childID)
	if child == nil {
		return nil, nil
	}
	s := g.streams[contentStreamID]
	var out []*contentgraph.NodeAggregate
	seen := make(map[contentgraph.NodeAggregateID]bool)
	for _, v := range child.variants {
		for _, p := range v.covered.Points() {
			parentID, ok := child.parents[p.Hash()]
			if !ok || seen[parentID] {
				continue
			}
			seen[parentID] = true
			if parent := s.aggregates[parentID]; parent != nil {
				out = append(out, parent.snapshot(contentStreamID))
			}
		}
	}
	return out, nil
}

// FindParentNodeAggregateByChildOrigin implements contentgraph.Adapter.
func (g *Graph) FindParentNodeAggregateByChildOrigin(_ context.Context, contentStreamID contentgraph.ContentStreamID, childID contentgraph.NodeAggregateID, childOrigin dimensionspace.OriginPoint) (*contentgraph.NodeAggregate, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	child := g.aggregate(contentStreamID, childID)
	if child == nil {
		return nil, nil
	}
	v := child.variantAt(childOrigin)
	if v == nil {
		return nil, nil
	}
	points := append([]dimensionspace.Point{childOrigin.ToPoint()}, v.covered.Points()...)
	for _, p := range points {
		if parentID, ok := child.parents[p.Hash()]; ok {
			if parent := g.streams[contentStreamID].aggregates[parentID]; parent != nil {
				return parent.snapshot(contentStreamID), nil
			}
		}
	}
	return nil, nil
}

// FindChildNodeAggregates implements contentgraph.Adapter.
func (g *Graph) FindChildNodeAggregates(_ context.Context, contentStreamID contentgraph.ContentStreamID, parentID contentgraph.NodeAggregateID) ([]*contentgraph.NodeAggregate, error) {
	return g.findChildren(contentStreamID, parentID, nil), nil
}

// FindTetheredChildNodeAggregates implements contentgraph.Adapter.
func (g *Graph) FindTetheredChildNodeAggregates(_ context.Context, contentStreamID contentgraph.ContentStreamID, parentID contentgraph.NodeAggregateID) ([]*contentgraph.NodeAggregate, error) {
	return g.findChildren(contentStreamID, parentID, func(a *aggregate) bool {
		return a.classification == contentgraph.ClassificationTethered
	}), nil
}

// FindChildNodeAggregatesByName implements contentgraph.Adapter.
func (g *Graph) FindChildNodeAggregatesByName(_ context.Context, contentStreamID contentgraph.ContentStreamID, parentID contentgraph.NodeAggregateID, name contentgraph.NodeName) ([]*contentgraph.NodeAggregate, error) {
	return g.findChildren(contentStreamID, parentID, func(a *aggregate) bool {
		return a.name == name
	}), nil
}

func (g *Graph) findChildren(contentStreamID contentgraph.ContentStreamID, parentID contentgraph.NodeAggregateID, keep func(*aggregate) bool) []*contentgraph.NodeAggregate {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.streams[contentStreamID]
	if !ok {
		return nil
	}
	var out []*contentgraph.NodeAggregate
	for _, a := range s.children(parentID, keep) {
		out = append(out, a.snapshot(contentStreamID))
	}
	return out
}

// OccupiedDimensionSpacePointsByChildNodeName implements contentgraph.Adapter.
// Hierarchy edges are kept per covered point, so the parent variant is
// implied by each point and parentOrigin is not consulted.
func (g *Graph) OccupiedDimensionSpacePointsByChildNodeName(_ context.Context, contentStreamID contentgraph.ContentStreamID, name contentgraph.NodeName, parentID contentgraph.NodeAggregateID, _ dimensionspace.OriginPoint, toCheck dimensionspace.PointSet) (dimensionspace.PointSet, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.streams[contentStreamID]
	if !ok {
		return dimensionspace.NewPointSet(), nil
	}
	var occupied []dimensionspace.Point
	for _, p := range toCheck.Points() {
		if s.childByNameAt(p, parentID, name) != nil {
			occupied = append(occupied, p)
		}
	}
	return dimensionspace.NewPointSet(occupied...), nil
}

// FindParentNodeInSubgraph implements contentgraph.Adapter.
func (g *Graph) FindParentNodeInSubgraph(_ context.Context, contentStreamID contentgraph.ContentStreamID, point dimensionspace.Point, childID contentgraph.NodeAggregateID) (*contentgraph.Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	child := g.aggregate(contentStreamID, childID)
	if child == nil {
		return nil, nil
	}
	parentID, ok := child.parents[point.Hash()]
	if !ok {
		return nil, nil
	}
	parent := g.streams[contentStreamID].aggregates[parentID]
	if parent == nil {
		return nil, nil
	}
	return parent.nodeAt(point), nil
}

// FindChildNodeByNameInSubgraph implements contentgraph.Adapter.
func (g *Graph) FindChildNodeByNameInSubgraph(_ context.Context, contentStreamID contentgraph.ContentStreamID, point dimensionspace.Point, parentID contentgraph.NodeAggregateID, name contentgraph.NodeName) (*contentgraph.Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.streams[contentStreamID]
	if !ok {
		return nil, nil
	}
	child := s.childByNameAt(point, parentID, name)
	if child == nil {
		return nil, nil
	}
	return child.nodeAt(point), nil
}

func (s *stream) childByNameAt(p dimensionspace.Point, parentID contentgraph.NodeAggregateID, name contentgraph.NodeName) *aggregate {
	hash := p.Hash()
	for _, id := range s.order {
		a := s.aggregates[id]
		if a.name == name && a.parents[hash] == parentID && a.variantCovering(p) != nil {
			return a
		}
	}
	return nil
}

// HasContentStream implements contentgraph.Adapter.
func (g *Graph) HasContentStream(_ context.Context, contentStreamID contentgraph.ContentStreamID) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.streams[contentStreamID]
	return ok, nil
}

// FindStateForContentStream implements contentgraph.Adapter.
func (g *Graph) FindStateForContentStream(_ context.Context, contentStreamID contentgraph.ContentStreamID) (contentgraph.ContentStreamState, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.streams[contentStreamID]
	if !ok {
		return "", false, nil
	}
	return s.state, true, nil
}

// FindVersionForContentStream implements contentgraph.Adapter.
func (g *Graph) FindVersionForContentStream(_ context.Context, contentStreamID contentgraph.ContentStreamID) (contentgraph.Version, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.streams[contentStreamID]
	if !ok {
		return contentgraph.Version{}, nil
	}
	return contentgraph.KnownVersion(s.version), nil
}

// FindWorkspaceByName implements contentgraph.Adapter.
func (g *Graph) FindWorkspaceByName(_ context.Context, name contentgraph.WorkspaceName) (*contentgraph.Workspace, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	workspace, ok := g.workspaces[name]
	if !ok {
		return nil, nil
	}
	return &workspace, nil
}
