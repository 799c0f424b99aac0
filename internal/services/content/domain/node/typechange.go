package node

import (
	"context"
	"fmt"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
)

// ChangeNodeAggregateType changes the type of every variant of an aggregate.
//
// With StrategyHappyPath the change is rejected when a child or grandchild
// would violate the new type's constraints. With StrategyDelete those
// descendants, and tethered children the new type no longer declares, are
// removed. Tethered children the new type declares are created where missing.
func (h *Handler) ChangeNodeAggregateType(ctx context.Context, cmd command.ChangeNodeAggregateType) (event.EventsToPublish, error) {
	s, err := h.openStream(ctx, cmd.WorkspaceName)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	newType, err := h.requireNodeType(cmd.NewNodeTypeName)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	aggregate, err := h.requireProjectedNodeAggregate(ctx, s.id, cmd.NodeAggregateID)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	if err := requireNodeAggregateNotRoot(aggregate); err != nil {
		return event.EventsToPublish{}, err
	}
	if err := requireNodeTypeNotRoot(newType); err != nil {
		return event.EventsToPublish{}, err
	}
	if err := requireNodeTypeNotAbstract(newType); err != nil {
		return event.EventsToPublish{}, err
	}
	for _, tn := range newType.TetheredNodes {
		tetheredType, err := h.requireNodeType(tn.Type)
		if err != nil {
			return event.EventsToPublish{}, err
		}
		if err := requireNodeTypeNotRoot(tetheredType); err != nil {
			return event.EventsToPublish{}, err
		}
	}

	parents, err := h.Adapter.FindParentNodeAggregates(ctx, s.id, aggregate.ID)
	if err != nil {
		return event.EventsToPublish{}, fmt.Errorf("find parents of %s: %w", aggregate.ID, err)
	}
	parentIDs := make([]contentgraph.NodeAggregateID, len(parents))
	for i, parent := range parents {
		parentIDs[i] = parent.ID
	}
	if err := h.requireConstraintsImposedByAncestors(ctx, s.id, newType.Name, aggregate.Name, parentIDs); err != nil {
		return event.EventsToPublish{}, err
	}

	children, err := h.Adapter.FindChildNodeAggregates(ctx, s.id, aggregate.ID)
	if err != nil {
		return event.EventsToPublish{}, fmt.Errorf("find children of %s: %w", aggregate.ID, err)
	}
	if cmd.Strategy == command.StrategyHappyPath {
		if err := h.requireDescendantsAllowed(ctx, s.id, newType.Name, children); err != nil {
			return event.EventsToPublish{}, err
		}
	}

	payloads := []Payload{NodeAggregateTypeWasChanged{
		ContentStreamID: s.id,
		NodeAggregateID: aggregate.ID,
		NewNodeTypeName: newType.Name,
	}}
	removed := make(map[contentgraph.NodeAggregateID]bool)
	if cmd.Strategy == command.StrategyDelete {
		removals, err := h.removeDisallowedDescendants(ctx, s.id, aggregate, newType.Name, children)
		if err != nil {
			return event.EventsToPublish{}, err
		}
		obsolete, err := h.removeObsoleteTetheredChildren(ctx, s.id, aggregate, newType)
		if err != nil {
			return event.EventsToPublish{}, err
		}
		for _, removal := range append(removals, obsolete...) {
			removed[removal.NodeAggregateID] = true
			payloads = append(payloads, removal)
		}
	}

	plan := h.newTetheredPlan(s.id, cmd.TetheredDescendantNodeAggregateIDs, removed)
	if err := plan.complete(ctx, aggregate, newType.Name); err != nil {
		return event.EventsToPublish{}, err
	}
	payloads = append(payloads, plan.payloads...)
	return s.publish(payloads)
}

func (h *Handler) requireDescendantsAllowed(ctx context.Context, contentStreamID contentgraph.ContentStreamID, newType nodetype.Name, children []*contentgraph.NodeAggregate) error {
	for _, child := range children {
		if !h.NodeTypes.AllowsChild(newType, string(child.Name), child.NodeTypeName) {
			return constraintViolation(newType, child.NodeTypeName, string(child.Name))
		}
	}
	for _, child := range children {
		grandchildren, err := h.Adapter.FindChildNodeAggregates(ctx, contentStreamID, child.ID)
		if err != nil {
			return fmt.Errorf("find children of %s: %w", child.ID, err)
		}
		for _, grandchild := range grandchildren {
			if !h.NodeTypes.AllowsGrandchild(newType, string(child.Name), grandchild.NodeTypeName) {
				return constraintViolation(newType, grandchild.NodeTypeName, string(child.Name))
			}
		}
	}
	return nil
}

func (h *Handler) removeDisallowedDescendants(ctx context.Context, contentStreamID contentgraph.ContentStreamID, aggregate *contentgraph.NodeAggregate, newType nodetype.Name, children []*contentgraph.NodeAggregate) ([]NodeAggregateWasRemoved, error) {
	var removals []NodeAggregateWasRemoved
	for _, child := range children {
		if !child.IsTethered() && !h.NodeTypes.AllowsChild(newType, string(child.Name), child.NodeTypeName) {
			removal, ok, err := h.removalBelow(ctx, contentStreamID, aggregate, child)
			if err != nil {
				return nil, err
			}
			if ok {
				removals = append(removals, removal)
			}
		}

		grandchildren, err := h.Adapter.FindChildNodeAggregates(ctx, contentStreamID, child.ID)
		if err != nil {
			return nil, fmt.Errorf("find children of %s: %w", child.ID, err)
		}
		for _, grandchild := range grandchildren {
			if child.Name == "" || h.NodeTypes.AllowsGrandchild(newType, string(child.Name), grandchild.NodeTypeName) {
				continue
			}
			removal, ok, err := h.removalBelow(ctx, contentStreamID, child, grandchild)
			if err != nil {
				return nil, err
			}
			if ok {
				removals = append(removals, removal)
			}
		}
	}
	return removals, nil
}

func (h *Handler) removeObsoleteTetheredChildren(ctx context.Context, contentStreamID contentgraph.ContentStreamID, aggregate *contentgraph.NodeAggregate, newType *nodetype.NodeType) ([]NodeAggregateWasRemoved, error) {
	tethered, err := h.Adapter.FindTetheredChildNodeAggregates(ctx, contentStreamID, aggregate.ID)
	if err != nil {
		return nil, fmt.Errorf("find tethered children of %s: %w", aggregate.ID, err)
	}
	var removals []NodeAggregateWasRemoved
	for _, child := range tethered {
		if _, declared := newType.TetheredNode(string(child.Name)); declared {
			continue
		}
		removal, ok, err := h.removalBelow(ctx, contentStreamID, aggregate, child)
		if err != nil {
			return nil, err
		}
		if ok {
			removals = append(removals, removal)
		}
	}
	return removals, nil
}

// removalBelow removes child at the points where parent is its parent. It
// reports false when child is nowhere below parent.
func (h *Handler) removalBelow(ctx context.Context, contentStreamID contentgraph.ContentStreamID, parent, child *contentgraph.NodeAggregate) (NodeAggregateWasRemoved, bool, error) {
	var points []dimensionspace.Point
	for _, p := range child.CoveredPoints().Points() {
		found, err := h.Adapter.FindParentNodeInSubgraph(ctx, contentStreamID, p, child.ID)
		if err != nil {
			return NodeAggregateWasRemoved{}, false, fmt.Errorf("find parent of %s at %s: %w", child.ID, p, err)
		}
		if found != nil && found.AggregateID == parent.ID {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return NodeAggregateWasRemoved{}, false, nil
	}
	covered := dimensionspace.NewPointSet(points...)

	var occupied []dimensionspace.OriginPoint
	for _, o := range child.Occupations {
		if !o.Covered.Intersect(covered).IsEmpty() {
			occupied = append(occupied, o.Origin)
		}
	}
	return NodeAggregateWasRemoved{
		ContentStreamID:                      contentStreamID,
		NodeAggregateID:                      child.ID,
		AffectedOccupiedDimensionSpacePoints: dimensionspace.NewOriginPointSet(occupied...),
		AffectedCoveredDimensionSpacePoints:  covered,
	}, true, nil
}
