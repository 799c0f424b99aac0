package node

import (
	"context"
	"fmt"

	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
)

// CreateNodeVariant copies the variant at the source origin to the target
// origin, together with every tethered descendant in the same situation.
func (h *Handler) CreateNodeVariant(ctx context.Context, cmd command.CreateNodeVariant) (event.EventsToPublish, error) {
	s, err := h.openStream(ctx, cmd.WorkspaceName)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	aggregate, err := h.requireProjectedNodeAggregate(ctx, s.id, cmd.NodeAggregateID)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	if err := h.requirePointToExist(cmd.SourceOrigin.ToPoint()); err != nil {
		return event.EventsToPublish{}, err
	}
	if err := h.requirePointToExist(cmd.TargetOrigin.ToPoint()); err != nil {
		return event.EventsToPublish{}, err
	}
	if err := requireNodeAggregateNotRoot(aggregate); err != nil {
		return event.EventsToPublish{}, err
	}
	if err := requireNodeAggregateNotTethered(aggregate); err != nil {
		return event.EventsToPublish{}, err
	}
	if err := requireOccupation(aggregate, cmd.SourceOrigin); err != nil {
		return event.EventsToPublish{}, err
	}
	if err := requireNoOccupation(aggregate, cmd.TargetOrigin); err != nil {
		return event.EventsToPublish{}, err
	}
	parent, err := h.Adapter.FindParentNodeAggregateByChildOrigin(ctx, s.id, aggregate.ID, cmd.SourceOrigin)
	if err != nil {
		return event.EventsToPublish{}, fmt.Errorf("find parent of %s: %w", aggregate.ID, err)
	}
	if parent == nil {
		return event.EventsToPublish{}, aggregateError(apperrors.CodeNodeAggregateNotFound, "parent of node aggregate "+string(aggregate.ID)+" not found", string(aggregate.ID))
	}
	if err := requireCoverage(parent, cmd.TargetOrigin.ToPoint()); err != nil {
		return event.EventsToPublish{}, err
	}

	payloads, err := h.variantsWithTetheredDescendants(ctx, s.id, aggregate, cmd.SourceOrigin, cmd.TargetOrigin)
	if err != nil {
		return event.EventsToPublish{}, err
	}
	return s.publish(payloads)
}

// variantsWithTetheredDescendants varies aggregate and then, breadth first,
// each tethered descendant that occupies source but not target.
func (h *Handler) variantsWithTetheredDescendants(ctx context.Context, contentStreamID contentgraph.ContentStreamID, aggregate *contentgraph.NodeAggregate, source, target dimensionspace.OriginPoint) ([]Payload, error) {
	var payloads []Payload
	queue := []*contentgraph.NodeAggregate{aggregate}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		payload, _, err := h.variantPayload(contentStreamID, current, source, target)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)

		tethered, err := h.Adapter.FindTetheredChildNodeAggregates(ctx, contentStreamID, current.ID)
		if err != nil {
			return nil, fmt.Errorf("find tethered children of %s: %w", current.ID, err)
		}
		for _, child := range tethered {
			if child.Occupies(source) && !child.Occupies(target) {
				queue = append(queue, child)
			}
		}
	}
	return payloads, nil
}

// variantPayload describes a new variant of aggregate at target copied from
// source. The event type follows how target relates to source in the
// variation graph. The returned set is the new variant's coverage.
func (h *Handler) variantPayload(contentStreamID contentgraph.ContentStreamID, aggregate *contentgraph.NodeAggregate, source, target dimensionspace.OriginPoint) (Payload, dimensionspace.PointSet, error) {
	coverage, err := h.effectiveVisibility(target, aggregate)
	if err != nil {
		return nil, dimensionspace.PointSet{}, err
	}
	switch h.Graph.VariantType(target.ToPoint(), source.ToPoint()) {
	case dimensionspace.VariantTypeSpecialization:
		return NodeSpecializationVariantWasCreated{
			ContentStreamID:        contentStreamID,
			NodeAggregateID:        aggregate.ID,
			SourceOrigin:           source,
			SpecializationOrigin:   target,
			SpecializationCoverage: coverage,
		}, coverage, nil
	case dimensionspace.VariantTypeGeneralization:
		return NodeGeneralizationVariantWasCreated{
			ContentStreamID:        contentStreamID,
			NodeAggregateID:        aggregate.ID,
			SourceOrigin:           source,
			GeneralizationOrigin:   target,
			GeneralizationCoverage: coverage,
		}, coverage, nil
	default:
		return NodePeerVariantWasCreated{
			ContentStreamID: contentStreamID,
			NodeAggregateID: aggregate.ID,
			SourceOrigin:    source,
			PeerOrigin:      target,
			PeerCoverage:    coverage,
		}, coverage, nil
	}
}

// effectiveVisibility is the specialization set of target minus the
// specialization sets of the aggregate's variants below target.
func (h *Handler) effectiveVisibility(target dimensionspace.OriginPoint, aggregate *contentgraph.NodeAggregate) (dimensionspace.PointSet, error) {
	occupied := aggregate.OccupiedPoints().ToPointSet()
	excluded := dimensionspace.NewPointSet()
	for _, specialization := range h.Graph.IndexedSpecializations(target.ToPoint()).Intersect(occupied).Points() {
		set, err := h.Graph.SpecializationSet(specialization, true, dimensionspace.PointSet{})
		if err != nil {
			return dimensionspace.PointSet{}, err
		}
		excluded = excluded.Union(set)
	}
	return h.Graph.SpecializationSet(target.ToPoint(), true, excluded)
}

// withVariant returns a copy of aggregate with a variant at origin that takes
// over coverage from the existing variants.
func withVariant(aggregate *contentgraph.NodeAggregate, origin dimensionspace.OriginPoint, coverage dimensionspace.PointSet) *contentgraph.NodeAggregate {
	out := *aggregate
	out.Occupations = make([]contentgraph.Occupation, 0, len(aggregate.Occupations)+1)
	for _, o := range aggregate.Occupations {
		out.Occupations = append(out.Occupations, contentgraph.Occupation{Origin: o.Origin, Covered: o.Covered.Difference(coverage)})
	}
	out.Occupations = append(out.Occupations, contentgraph.Occupation{Origin: origin, Covered: coverage})
	return &out
}
