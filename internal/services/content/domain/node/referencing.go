package node

import (
	"context"
	"fmt"
	"sort"

	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
)

// SetNodeReferences replaces the targets of a reference. The reference's
// scope decides which source origins the change applies to.
func (h *Handler) SetNodeReferences(ctx context.Context, cmd command.SetNodeReferences) (event.EventsToPublish, error) {
	s, err := h.openStream(ctx, cmd.WorkspaceName)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	sourcePoint := cmd.SourceOrigin.ToPoint()
	if err := h.requirePointToExist(sourcePoint); err != nil {
		return event.EventsToPublish{}, err
	}
	source, err := h.requireProjectedNodeAggregate(ctx, s.id, cmd.SourceNodeAggregateID)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	if err := requireNodeAggregateNotRoot(source); err != nil {
		return event.EventsToPublish{}, err
	}
	if err := requireOccupation(source, cmd.SourceOrigin); err != nil {
		return event.EventsToPublish{}, err
	}
	sourceType, err := h.requireNodeType(source.NodeTypeName)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	ref, ok := sourceType.Reference(cmd.ReferenceName)
	if !ok {
		return event.EventsToPublish{}, apperrors.WithMetadata(
			apperrors.CodeReferenceNotDeclared,
			fmt.Sprintf("node type %s does not declare reference %q", sourceType.Name, cmd.ReferenceName),
			map[string]string{"NodeTypeName": string(sourceType.Name), "ReferenceName": cmd.ReferenceName},
		)
	}
	if ref.MaxItems > 0 && len(cmd.References) > ref.MaxItems {
		return event.EventsToPublish{}, apperrors.WithMetadata(
			apperrors.CodeReferenceCardinalityExceeded,
			fmt.Sprintf("reference %q allows %d targets, got %d", ref.Name, ref.MaxItems, len(cmd.References)),
			map[string]string{"ReferenceName": ref.Name},
		)
	}

	for _, target := range cmd.References {
		targetAggregate, err := h.requireProjectedNodeAggregate(ctx, s.id, target.TargetNodeAggregateID)
		if err != nil {
			return event.EventsToPublish{}, err
		}
		if err := requireNodeAggregateNotRoot(targetAggregate); err != nil {
			return event.EventsToPublish{}, err
		}
		if err := requireCoverage(targetAggregate, sourcePoint); err != nil {
			return event.EventsToPublish{}, err
		}
		if !h.NodeTypes.AllowsReferenceTarget(ref, targetAggregate.NodeTypeName) {
			return event.EventsToPublish{}, apperrors.WithMetadata(
				apperrors.CodeReferenceTargetTypeDisallowed,
				fmt.Sprintf("reference %q does not allow targets of type %s", ref.Name, targetAggregate.NodeTypeName),
				map[string]string{"ReferenceName": ref.Name, "NodeTypeName": string(targetAggregate.NodeTypeName), "NodeAggregateID": string(targetAggregate.ID)},
			)
		}
		if err := validateReferenceProperties(ref, target.Properties); err != nil {
			return event.EventsToPublish{}, err
		}
	}

	affected, err := h.affectedSourceOrigins(ref.Scope, cmd.SourceOrigin, source.OccupiedPoints())
	if err != nil {
		return event.EventsToPublish{}, err
	}
	references := append([]command.ReferenceTarget{}, cmd.References...)
	return s.publish([]Payload{NodeReferencesWereSet{
		ContentStreamID:                          s.id,
		SourceNodeAggregateID:                    source.ID,
		AffectedSourceOriginDimensionSpacePoints: affected,
		ReferenceName:                            ref.Name,
		References:                               references,
	}})
}

func (h *Handler) affectedSourceOrigins(scope nodetype.ReferenceScope, origin dimensionspace.OriginPoint, occupied dimensionspace.OriginPointSet) (dimensionspace.OriginPointSet, error) {
	switch scope {
	case nodetype.ScopeSpecializations:
		specializations, err := h.Graph.SpecializationSet(origin.ToPoint(), true, dimensionspace.PointSet{})
		if err != nil {
			return dimensionspace.OriginPointSet{}, err
		}
		return dimensionspace.OriginPointSetFrom(specializations.Intersect(occupied.ToPointSet())), nil
	case nodetype.ScopeNodeAggregate:
		return occupied, nil
	default:
		return dimensionspace.NewOriginPointSet(origin), nil
	}
}

func validateReferenceProperties(ref nodetype.Reference, properties map[string]any) error {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		declared, ok := ref.Properties[name]
		if !ok {
			return apperrors.WithMetadata(
				apperrors.CodeReferencePropertyInvalid,
				fmt.Sprintf("reference %q does not declare property %q", ref.Name, name),
				map[string]string{"ReferenceName": ref.Name, "PropertyName": name},
			)
		}
		if value := properties[name]; value != nil && !declared.Accepts(value) {
			return apperrors.WithMetadata(
				apperrors.CodeReferencePropertyInvalid,
				fmt.Sprintf("reference property %q of %q expects %s, got %T", name, ref.Name, declared, value),
				map[string]string{"ReferenceName": ref.Name, "PropertyName": name},
			)
		}
	}
	return nil
}
