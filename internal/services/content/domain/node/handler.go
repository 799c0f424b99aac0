package node

import (
	"context"
	"fmt"

	"github.com/louisbranch/contentrepository/internal/platform/id"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
)

// Handler turns node commands into events.
//
// Graph and NodeTypes are immutable and may be shared. Adapter is only read.
type Handler struct {
	Graph     *dimensionspace.Graph
	NodeTypes *nodetype.Manager
	Adapter   contentgraph.Adapter
	// NewID mints node aggregate ids. Defaults to id.NewID.
	NewID func() (string, error)
}

var _ command.Visitor = (*Handler)(nil)

func (h *Handler) mintID() (contentgraph.NodeAggregateID, error) {
	newID := h.NewID
	if newID == nil {
		newID = id.NewID
	}
	value, err := newID()
	if err != nil {
		return "", fmt.Errorf("mint node aggregate id: %w", err)
	}
	return contentgraph.NodeAggregateID(value), nil
}

// stream is the content stream a command writes to, with the version its
// events must be published against.
type stream struct {
	id      contentgraph.ContentStreamID
	version int
}

func (h *Handler) openStream(ctx context.Context, workspace contentgraph.WorkspaceName) (stream, error) {
	contentStreamID, err := h.requireContentStream(ctx, workspace)
	if err != nil {
		return stream{}, err
	}
	version, err := h.expectedVersion(ctx, contentStreamID)
	if err != nil {
		return stream{}, err
	}
	return stream{id: contentStreamID, version: version}, nil
}

func (s stream) publish(payloads []Payload) (event.EventsToPublish, error) {
	events := make([]event.Event, 0, len(payloads))
	for _, payload := range payloads {
		evt, err := NewEvent(payload)
		if err != nil {
			return event.EventsToPublish{}, err
		}
		events = append(events, evt)
	}
	return event.EventsToPublish{
		StreamName:      event.StreamName(string(s.id)),
		Events:          events,
		ExpectedVersion: s.version,
	}, nil
}
