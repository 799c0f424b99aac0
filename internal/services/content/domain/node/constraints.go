package node

import (
	"context"
	"fmt"

	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
)

func (h *Handler) requireContentStream(ctx context.Context, workspaceName contentgraph.WorkspaceName) (contentgraph.ContentStreamID, error) {
	workspace, err := h.Adapter.FindWorkspaceByName(ctx, workspaceName)
	if err != nil {
		return "", fmt.Errorf("find workspace %s: %w", workspaceName, err)
	}
	if workspace == nil {
		return "", apperrors.WithMetadata(apperrors.CodeWorkspaceNotFound, "workspace "+string(workspaceName)+" not found", map[string]string{"WorkspaceName": string(workspaceName)})
	}
	contentStreamID := workspace.CurrentContentStreamID
	exists, err := h.Adapter.HasContentStream(ctx, contentStreamID)
	if err != nil {
		return "", fmt.Errorf("find content stream %s: %w", contentStreamID, err)
	}
	if !exists {
		return "", contentStreamNotFound(contentStreamID)
	}
	state, known, err := h.Adapter.FindStateForContentStream(ctx, contentStreamID)
	if err != nil {
		return "", fmt.Errorf("find content stream state %s: %w", contentStreamID, err)
	}
	if known && state == contentgraph.ContentStreamStateClosed {
		return "", apperrors.WithMetadata(apperrors.CodeContentStreamClosed, "content stream "+string(contentStreamID)+" is closed", map[string]string{"ContentStreamID": string(contentStreamID)})
	}
	return contentStreamID, nil
}

func (h *Handler) expectedVersion(ctx context.Context, contentStreamID contentgraph.ContentStreamID) (int, error) {
	version, err := h.Adapter.FindVersionForContentStream(ctx, contentStreamID)
	if err != nil {
		return 0, fmt.Errorf("find content stream version %s: %w", contentStreamID, err)
	}
	if !version.Known {
		return 0, contentStreamNotFound(contentStreamID)
	}
	return version.Value, nil
}

func contentStreamNotFound(contentStreamID contentgraph.ContentStreamID) error {
	return apperrors.WithMetadata(apperrors.CodeContentStreamNotFound, "content stream "+string(contentStreamID)+" not found", map[string]string{"ContentStreamID": string(contentStreamID)})
}

func (h *Handler) requirePointToExist(p dimensionspace.Point) error {
	if !h.Graph.AllowedSubspace().Contains(p) {
		return dimensionspace.PointNotFound(p)
	}
	return nil
}

func (h *Handler) requireNodeType(name nodetype.Name) (*nodetype.NodeType, error) {
	t, ok := h.NodeTypes.Get(name)
	if !ok {
		return nil, nodeTypeNotFound(string(name))
	}
	return t, nil
}

func requireNodeTypeNotRoot(t *nodetype.NodeType) error {
	if t.Root {
		return apperrors.WithMetadata(apperrors.CodeNodeTypeIsRoot, "node type "+string(t.Name)+" is of type root", map[string]string{"NodeTypeName": string(t.Name)})
	}
	return nil
}

func requireNodeTypeNotAbstract(t *nodetype.NodeType) error {
	if t.Abstract {
		return apperrors.WithMetadata(apperrors.CodeNodeTypeIsAbstract, "node type "+string(t.Name)+" is abstract", map[string]string{"NodeTypeName": string(t.Name)})
	}
	return nil
}

// requireConstraintsImposedByAncestors checks a node of type childType named
// childName against each parent and each parent's parents. Parents and
// grandparents of unknown type impose nothing.
func (h *Handler) requireConstraintsImposedByAncestors(ctx context.Context, contentStreamID contentgraph.ContentStreamID, childType nodetype.Name, childName contentgraph.NodeName, parentIDs []contentgraph.NodeAggregateID) error {
	for _, parentID := range parentIDs {
		parent, err := h.requireProjectedNodeAggregate(ctx, contentStreamID, parentID)
		if err != nil {
			return err
		}
		if !parent.IsTethered() && h.NodeTypes.Has(parent.NodeTypeName) {
			if !h.NodeTypes.AllowsChild(parent.NodeTypeName, string(childName), childType) {
				return constraintViolation(parent.NodeTypeName, childType, string(childName))
			}
		}
		grandparents, err := h.Adapter.FindParentNodeAggregates(ctx, contentStreamID, parent.ID)
		if err != nil {
			return fmt.Errorf("find parents of %s: %w", parent.ID, err)
		}
		for _, grandparent := range grandparents {
			if !h.NodeTypes.Has(grandparent.NodeTypeName) {
				continue
			}
			if !h.NodeTypes.AllowsGrandchild(grandparent.NodeTypeName, string(parent.Name), childType) {
				return constraintViolation(grandparent.NodeTypeName, childType, string(parent.Name))
			}
		}
	}
	return nil
}

func constraintViolation(ancestorType, childType nodetype.Name, name string) error {
	return apperrors.WithMetadata(
		apperrors.CodeNodeConstraintViolation,
		fmt.Sprintf("node type %s does not allow %s below %q", ancestorType, childType, name),
		map[string]string{"NodeTypeName": string(ancestorType), "ChildNodeTypeName": string(childType), "NodeName": name},
	)
}

func (h *Handler) requireProjectedNodeAggregate(ctx context.Context, contentStreamID contentgraph.ContentStreamID, aggregateID contentgraph.NodeAggregateID) (*contentgraph.NodeAggregate, error) {
	aggregate, err := h.Adapter.FindNodeAggregateByID(ctx, contentStreamID, aggregateID)
	if err != nil {
		return nil, err
	}
	if aggregate == nil {
		return nil, aggregateError(apperrors.CodeNodeAggregateNotFound, "node aggregate "+string(aggregateID)+" not found", string(aggregateID))
	}
	return aggregate, nil
}

func (h *Handler) requireNodeAggregateNotToExist(ctx context.Context, contentStreamID contentgraph.ContentStreamID, aggregateID contentgraph.NodeAggregateID) error {
	aggregate, err := h.Adapter.FindNodeAggregateByID(ctx, contentStreamID, aggregateID)
	if err != nil {
		return err
	}
	if aggregate != nil {
		return aggregateError(apperrors.CodeNodeAggregateExists, "node aggregate "+string(aggregateID)+" already exists", string(aggregateID))
	}
	return nil
}

func requireNodeAggregateNotRoot(aggregate *contentgraph.NodeAggregate) error {
	if aggregate.IsRoot() {
		return aggregateError(apperrors.CodeNodeAggregateIsRoot, "node aggregate "+string(aggregate.ID)+" is root", string(aggregate.ID))
	}
	return nil
}

func requireNodeAggregateNotTethered(aggregate *contentgraph.NodeAggregate) error {
	if aggregate.IsTethered() {
		return aggregateError(apperrors.CodeNodeAggregateIsTethered, "node aggregate "+string(aggregate.ID)+" is tethered", string(aggregate.ID))
	}
	return nil
}

func requireCoverage(aggregate *contentgraph.NodeAggregate, p dimensionspace.Point) error {
	if !aggregate.Covers(p) {
		return aggregateError(apperrors.CodeNodeAggregateDoesNotCoverPoint, "node aggregate "+string(aggregate.ID)+" does not cover "+p.String(), string(aggregate.ID), "DimensionSpacePoint", p.String())
	}
	return nil
}

func requireOccupation(aggregate *contentgraph.NodeAggregate, origin dimensionspace.OriginPoint) error {
	if !aggregate.Occupies(origin) {
		return aggregateError(apperrors.CodeNodeAggregateDoesNotOccupyPoint, "node aggregate "+string(aggregate.ID)+" does not occupy "+origin.String(), string(aggregate.ID), "OriginDimensionSpacePoint", origin.String())
	}
	return nil
}

func requireNoOccupation(aggregate *contentgraph.NodeAggregate, origin dimensionspace.OriginPoint) error {
	if aggregate.Occupies(origin) {
		return aggregateError(apperrors.CodeNodeAggregateOccupiesPoint, "node aggregate "+string(aggregate.ID)+" already occupies "+origin.String(), string(aggregate.ID), "OriginDimensionSpacePoint", origin.String())
	}
	return nil
}

func (h *Handler) requireNodeNameUnoccupied(ctx context.Context, contentStreamID contentgraph.ContentStreamID, name contentgraph.NodeName, parentID contentgraph.NodeAggregateID, parentOrigin dimensionspace.OriginPoint, toCheck dimensionspace.PointSet) error {
	if name == "" {
		return nil
	}
	occupied, err := h.Adapter.OccupiedDimensionSpacePointsByChildNodeName(ctx, contentStreamID, name, parentID, parentOrigin, toCheck)
	if err != nil {
		return fmt.Errorf("find occupied names below %s: %w", parentID, err)
	}
	if !occupied.IsEmpty() {
		return apperrors.WithMetadata(
			apperrors.CodeNodeNameOccupied,
			fmt.Sprintf("node name %q is already occupied below %s", name, parentID),
			map[string]string{"NodeName": string(name), "ParentNodeAggregateID": string(parentID)},
		)
	}
	return nil
}
