package node

import (
	"context"
	"fmt"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
)

// ChangeNodeAggregateName renames every variant of an aggregate. The name
// must be free below every variant of every parent.
func (h *Handler) ChangeNodeAggregateName(ctx context.Context, cmd command.ChangeNodeAggregateName) (event.EventsToPublish, error) {
	s, err := h.openStream(ctx, cmd.WorkspaceName)
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
	if err := requireNodeAggregateNotTethered(aggregate); err != nil {
		return event.EventsToPublish{}, err
	}

	// The aggregate itself holds its current name below every parent.
	if aggregate.Name != cmd.NewNodeName {
		parents, err := h.Adapter.FindParentNodeAggregates(ctx, s.id, aggregate.ID)
		if err != nil {
			return event.EventsToPublish{}, fmt.Errorf("find parents of %s: %w", aggregate.ID, err)
		}
		for _, parent := range parents {
			for _, origin := range parent.OccupiedPoints().Origins() {
				if err := h.requireNodeNameUnoccupied(ctx, s.id, cmd.NewNodeName, parent.ID, origin, parent.CoveredPoints()); err != nil {
					return event.EventsToPublish{}, err
				}
			}
		}
	}

	return s.publish([]Payload{NodeAggregateNameWasChanged{
		ContentStreamID: s.id,
		NodeAggregateID: aggregate.ID,
		NewNodeName:     cmd.NewNodeName,
	}})
}
