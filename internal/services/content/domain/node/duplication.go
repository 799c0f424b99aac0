package node

import (
	"context"

	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
)

// CopyNodesRecursively creates a copy of a subtree snapshot below the target
// parent. Every copied node covers the same points: the specialization set of
// the target origin restricted to the parent's coverage.
func (h *Handler) CopyNodesRecursively(ctx context.Context, cmd command.CopyNodesRecursively) (event.EventsToPublish, error) {
	s, err := h.openStream(ctx, cmd.WorkspaceName)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	target := cmd.TargetOrigin.ToPoint()
	if err := h.requirePointToExist(target); err != nil {
		return event.EventsToPublish{}, err
	}
	rootType, err := h.requireNodeType(cmd.SourceSubtree.NodeTypeName)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	if err := requireNodeTypeNotRoot(rootType); err != nil {
		return event.EventsToPublish{}, err
	}
	if err := h.requireConstraintsImposedByAncestors(ctx, s.id, rootType.Name, cmd.TargetNodeName, []contentgraph.NodeAggregateID{cmd.TargetParentNodeAggregateID}); err != nil {
		return event.EventsToPublish{}, err
	}

	ids, err := h.copyIDs(cmd)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	for _, newID := range ids.order {
		if err := h.requireNodeAggregateNotToExist(ctx, s.id, newID); err != nil {
			return event.EventsToPublish{}, err
		}
	}

	parent, err := h.requireProjectedNodeAggregate(ctx, s.id, cmd.TargetParentNodeAggregateID)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	if cmd.TargetSucceedingSiblingNodeAggregateID != "" {
		if _, err := h.requireProjectedNodeAggregate(ctx, s.id, cmd.TargetSucceedingSiblingNodeAggregateID); err != nil {
			return event.EventsToPublish{}, err
		}
	}
	if err := requireCoverage(parent, target); err != nil {
		return event.EventsToPublish{}, err
	}

	specializations, err := h.Graph.SpecializationSet(target, true, dimensionspace.PointSet{})
	if err != nil {
		return event.EventsToPublish{}, err
	}
	covered := specializations.Intersect(parent.CoveredPoints())
	if err := h.requireNodeNameUnoccupied(ctx, s.id, cmd.TargetNodeName, parent.ID, cmd.TargetOrigin, covered); err != nil {
		return event.EventsToPublish{}, err
	}

	type pending struct {
		snapshot command.NodeSubtreeSnapshot
		parentID contentgraph.NodeAggregateID
		name     contentgraph.NodeName
		sibling  contentgraph.NodeAggregateID
	}
	var payloads []Payload
	stack := []pending{{
		snapshot: cmd.SourceSubtree,
		parentID: parent.ID,
		name:     cmd.TargetNodeName,
		sibling:  cmd.TargetSucceedingSiblingNodeAggregateID,
	}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		classification := current.snapshot.Classification
		if classification == "" {
			classification = contentgraph.ClassificationRegular
		}
		copyID := ids.bySource[current.snapshot.NodeAggregateID]
		payloads = append(payloads, NodeAggregateWithNodeWasCreated{
			ContentStreamID:             s.id,
			NodeAggregateID:             copyID,
			NodeTypeName:                current.snapshot.NodeTypeName,
			OriginDimensionSpacePoint:   cmd.TargetOrigin,
			CoveredDimensionSpacePoints: covered,
			ParentNodeAggregateID:       current.parentID,
			NodeName:                    current.name,
			InitialPropertyValues:       current.snapshot.PropertyValues,
			Classification:              classification,
			SucceedingNodeAggregateID:   current.sibling,
		})

		children := current.snapshot.ChildNodes
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, pending{
				snapshot: children[i],
				parentID: copyID,
				name:     children[i].NodeName,
			})
		}
	}
	return s.publish(payloads)
}

type copiedIDs struct {
	bySource map[contentgraph.NodeAggregateID]contentgraph.NodeAggregateID
	// order lists the copy ids in subtree pre-order.
	order []contentgraph.NodeAggregateID
}

// copyIDs assigns one copy id per source node: the mapped id if present,
// otherwise a minted one. Two source nodes never share a copy id.
func (h *Handler) copyIDs(cmd command.CopyNodesRecursively) (copiedIDs, error) {
	ids := copiedIDs{bySource: make(map[contentgraph.NodeAggregateID]contentgraph.NodeAggregateID)}
	assigned := make(map[contentgraph.NodeAggregateID]bool)
	stack := []command.NodeSubtreeSnapshot{cmd.SourceSubtree}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := ids.bySource[n.NodeAggregateID]; seen {
			return copiedIDs{}, aggregateError(apperrors.CodeNodeAggregateExists, "source node "+string(n.NodeAggregateID)+" appears twice in the subtree", string(n.NodeAggregateID))
		}
		copyID, ok := cmd.NodeAggregateIDMapping[n.NodeAggregateID]
		if !ok {
			minted, err := h.mintID()
			if err != nil {
				return copiedIDs{}, err
			}
			copyID = minted
		}
		if assigned[copyID] {
			return copiedIDs{}, aggregateError(apperrors.CodeNodeAggregateExists, "node aggregate "+string(copyID)+" is assigned to more than one copied node", string(copyID))
		}
		assigned[copyID] = true
		ids.bySource[n.NodeAggregateID] = copyID
		ids.order = append(ids.order, copyID)
		for i := len(n.ChildNodes) - 1; i >= 0; i-- {
			stack = append(stack, n.ChildNodes[i])
		}
	}
	return ids, nil
}
