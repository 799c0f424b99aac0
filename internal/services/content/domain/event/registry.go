package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/contentrepository/internal/services/content/core/encoding"
)

var (
	// ErrTypeRequired indicates a missing event type.
	ErrTypeRequired = errors.New("event type is required")
	// ErrTypeUnknown indicates an unregistered event type.
	ErrTypeUnknown = errors.New("event type is not registered")
	// ErrStreamNameRequired indicates a missing stream name.
	ErrStreamNameRequired = errors.New("stream name is required")
	// ErrStreamMismatch indicates an event addressed to another content stream.
	ErrStreamMismatch = errors.New("event content stream does not match its stream")
	// ErrContentStreamIDRequired indicates a missing content stream id.
	ErrContentStreamIDRequired = errors.New("content stream id is required")
	// ErrNodeAggregateIDRequired indicates a missing node aggregate id.
	ErrNodeAggregateIDRequired = errors.New("node aggregate id is required")
	// ErrTimestampRequired indicates a missing timestamp.
	ErrTimestampRequired = errors.New("event timestamp is required")
	// ErrPayloadInvalid indicates malformed payload JSON.
	ErrPayloadInvalid = errors.New("payload json must be valid")
)

// PayloadValidator validates a canonical payload JSON document.
type PayloadValidator func(json.RawMessage) error

// Definition registers metadata for an event type.
type Definition struct {
	Type            Type
	ValidatePayload PayloadValidator
}

// Registry stores event definitions and validates events before publication.
type Registry struct {
	definitions map[Type]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[Type]Definition)}
}

// Register adds a new event type definition.
func (r *Registry) Register(def Definition) error {
	if r == nil {
		return errors.New("registry is required")
	}
	def.Type = Type(strings.TrimSpace(string(def.Type)))
	if def.Type == "" {
		return ErrTypeRequired
	}
	if r.definitions == nil {
		r.definitions = make(map[Type]Definition)
	}
	if _, exists := r.definitions[def.Type]; exists {
		return fmt.Errorf("event type already registered: %s", def.Type)
	}
	r.definitions[def.Type] = def
	return nil
}

// ValidateForPublish validates and normalizes an event before publication.
func (r *Registry) ValidateForPublish(evt Event) (Event, error) {
	evt.Type = Type(strings.TrimSpace(string(evt.Type)))
	if evt.Type == "" {
		return Event{}, ErrTypeRequired
	}
	def, ok := r.definitions[evt.Type]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrTypeUnknown, evt.Type)
	}
	evt.StreamName = strings.TrimSpace(evt.StreamName)
	if evt.StreamName == "" {
		return Event{}, ErrStreamNameRequired
	}
	evt.ContentStreamID = strings.TrimSpace(evt.ContentStreamID)
	if evt.ContentStreamID == "" {
		return Event{}, ErrContentStreamIDRequired
	}
	if evt.StreamName != StreamName(evt.ContentStreamID) {
		return Event{}, ErrStreamMismatch
	}
	evt.NodeAggregateID = strings.TrimSpace(evt.NodeAggregateID)
	if evt.NodeAggregateID == "" {
		return Event{}, ErrNodeAggregateIDRequired
	}
	if evt.Timestamp.IsZero() {
		return Event{}, ErrTimestampRequired
	}

	if len(evt.PayloadJSON) == 0 {
		evt.PayloadJSON = []byte("{}")
	}
	if !json.Valid(evt.PayloadJSON) {
		return Event{}, ErrPayloadInvalid
	}
	canonical, err := encoding.CanonicalJSON(json.RawMessage(evt.PayloadJSON))
	if err != nil {
		return Event{}, fmt.Errorf("canonical payload json: %w", err)
	}
	evt.PayloadJSON = canonical
	if def.ValidatePayload != nil {
		if err := def.ValidatePayload(json.RawMessage(evt.PayloadJSON)); err != nil {
			return Event{}, fmt.Errorf("payload invalid for %s: %w", evt.Type, err)
		}
	}
	return evt, nil
}

// ValidateBatch validates every event of a batch and addresses it to the
// batch stream.
func (r *Registry) ValidateBatch(batch EventsToPublish) (EventsToPublish, error) {
	if strings.TrimSpace(batch.StreamName) == "" {
		return EventsToPublish{}, ErrStreamNameRequired
	}
	validated := make([]Event, 0, len(batch.Events))
	for i, evt := range batch.Events {
		if evt.StreamName == "" {
			evt.StreamName = batch.StreamName
		}
		if evt.StreamName != batch.StreamName {
			return EventsToPublish{}, fmt.Errorf("event %d: %w", i, ErrStreamMismatch)
		}
		normalized, err := r.ValidateForPublish(evt)
		if err != nil {
			return EventsToPublish{}, fmt.Errorf("event %d: %w", i, err)
		}
		validated = append(validated, normalized)
	}
	batch.Events = validated
	return batch, nil
}

// Definition returns the definition for an event type.
func (r *Registry) Definition(eventType Type) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	def, ok := r.definitions[Type(strings.TrimSpace(string(eventType)))]
	return def, ok
}

// ListDefinitions returns a stable, sorted snapshot of registered definitions.
func (r *Registry) ListDefinitions() []Definition {
	if r == nil || len(r.definitions) == 0 {
		return nil
	}
	definitions := make([]Definition, 0, len(r.definitions))
	for _, definition := range r.definitions {
		definitions = append(definitions, definition)
	}
	sort.Slice(definitions, func(i, j int) bool {
		return string(definitions[i].Type) < string(definitions[j].Type)
	})
	return definitions
}
