package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/contentrepository/internal/platform/requestctx"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
)

var (
	// ErrEventRegistryRequired indicates a missing event registry.
	ErrEventRegistryRequired = errors.New("event registry is required")
	// ErrNodeHandlerRequired indicates a missing command handler set.
	ErrNodeHandlerRequired = errors.New("node command handler is required")
	// ErrSinkRequired indicates a missing publication sink.
	ErrSinkRequired = errors.New("event sink is required")
)

// Outcomes reported to Metrics.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeFailed   = "failed"
)

const tracerName = "github.com/louisbranch/contentrepository/internal/services/content/domain/engine"

// Sink publishes a batch atomically. It fails with event.ErrConcurrencyConflict
// when the stream is no longer at the batch's expected version, and returns
// the stored events with their assigned versions.
type Sink interface {
	Publish(ctx context.Context, batch event.EventsToPublish) ([]event.Event, error)
}

// Applier projects published events.
type Applier interface {
	Apply(ctx context.Context, evt event.Event) error
}

// Metrics records command outcomes and published events.
type Metrics interface {
	CommandHandled(commandType string, outcome string)
	EventsPublished(events []event.Event)
}

// Handler validates, dispatches, and publishes commands.
type Handler struct {
	Events  *event.Registry
	Nodes   command.Visitor
	Sink    Sink
	Applier Applier
	Metrics Metrics
	Tracer  trace.Tracer
	Now     func() time.Time
}

// Handle runs cmd and returns the published events. Metadata fields left
// empty are taken from the request context. Handlers never retry; a
// concurrency conflict is returned to the caller as is.
func (h Handler) Handle(ctx context.Context, cmd command.Command, meta command.Metadata) (_ []event.Event, err error) {
	if h.Events == nil {
		return nil, ErrEventRegistryRequired
	}
	if h.Nodes == nil {
		return nil, ErrNodeHandlerRequired
	}
	if h.Sink == nil {
		return nil, ErrSinkRequired
	}

	commandType := string(cmd.Type())
	ctx, span := h.tracer().Start(ctx, "contentrepository.command", trace.WithAttributes(
		attribute.String("contentrepository.command.type", commandType),
	))
	outcome := OutcomeFailed
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("contentrepository.command.outcome", outcome))
		span.End()
		if h.Metrics != nil {
			h.Metrics.CommandHandled(commandType, outcome)
		}
	}()

	if err := cmd.Validate(); err != nil {
		outcome = OutcomeRejected
		return nil, err
	}
	batch, err := cmd.Accept(ctx, h.Nodes)
	if err != nil {
		outcome = OutcomeRejected
		return nil, err
	}
	span.SetAttributes(
		attribute.String("contentrepository.stream", batch.StreamName),
		attribute.Int("contentrepository.expected_version", batch.ExpectedVersion),
	)

	if meta.CorrelationID == "" {
		meta.CorrelationID = requestctx.CorrelationIDFromContext(ctx)
	}
	if meta.InitiatingUserID == "" {
		meta.InitiatingUserID = requestctx.UserIDFromContext(ctx)
	}
	now := h.Now
	if now == nil {
		now = time.Now
	}
	stamped := now().UTC()
	for i := range batch.Events {
		batch.Events[i].Timestamp = stamped
		batch.Events[i].CommandType = commandType
		batch.Events[i].CorrelationID = meta.CorrelationID
		batch.Events[i].InitiatingUserID = meta.InitiatingUserID
	}
	batch, err = h.Events.ValidateBatch(batch)
	if err != nil {
		return nil, fmt.Errorf("validate %s events: %w", commandType, err)
	}
	if len(batch.Events) == 0 {
		outcome = OutcomeAccepted
		return nil, nil
	}

	published, err := h.Sink.Publish(ctx, batch)
	if err != nil {
		if errors.Is(err, event.ErrConcurrencyConflict) {
			outcome = OutcomeConflict
		}
		return nil, err
	}
	outcome = OutcomeAccepted
	if h.Metrics != nil {
		h.Metrics.EventsPublished(published)
	}

	if h.Applier != nil {
		for _, evt := range published {
			if err := h.Applier.Apply(ctx, evt); err != nil {
				return published, wrapNonRetryable(fmt.Errorf("apply %s version %d: %w", evt.Type, evt.Version, err))
			}
		}
	}
	return published, nil
}

func (h Handler) tracer() trace.Tracer {
	if h.Tracer != nil {
		return h.Tracer
	}
	return otel.Tracer(tracerName)
}
