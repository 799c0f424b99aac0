package node_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/node"
)

func TestNewEventAddressesContentStream(t *testing.T) {
	evt, err := node.NewEvent(node.NodeAggregateTypeWasChanged{ContentStreamID: liveStream, NodeAggregateID: "home", NewNodeTypeName: "Test:Page"})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if evt.StreamName != "ContentStream:cs-live" || evt.ContentStreamID != "cs-live" || evt.NodeAggregateID != "home" {
		t.Fatalf("event envelope = %+v", evt)
	}
	if got, want := string(evt.PayloadJSON), `{"contentStreamId":"cs-live","nodeAggregateId":"home","newNodeTypeName":"Test:Page"}`; got != want {
		t.Fatalf("payload = %s, want %s", got, want)
	}
}

func TestDecodePayloadRejectsUnknownType(t *testing.T) {
	_, err := node.DecodePayload(event.Event{Type: "SomethingElse", PayloadJSON: []byte(`{}`)})
	if !errors.Is(err, event.ErrTypeUnknown) {
		t.Fatalf("error = %v, want unknown type", err)
	}
}

func TestRegisterEventsValidatesPayloads(t *testing.T) {
	registry := event.NewRegistry()
	if err := node.RegisterEvents(registry); err != nil {
		t.Fatalf("register events: %v", err)
	}
	var registered []event.Type
	for _, def := range registry.ListDefinitions() {
		registered = append(registered, def.Type)
	}
	if len(registered) != len(node.EventTypes()) {
		t.Fatalf("registered %d types, want %d", len(registered), len(node.EventTypes()))
	}

	valid, err := node.NewEvent(node.NodeAggregateNameWasChanged{ContentStreamID: liveStream, NodeAggregateID: "home", NewNodeName: "start"})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if _, err := registry.ValidateBatch(event.EventsToPublish{StreamName: valid.StreamName, Events: []event.Event{stamp(valid)}}); err != nil {
		t.Fatalf("validate valid event: %v", err)
	}

	tests := []struct {
		name    string
		payload node.Payload
	}{
		{"creation without coverage", node.NodeAggregateWithNodeWasCreated{ContentStreamID: liveStream, NodeAggregateID: "n", NodeTypeName: "Test:Page", ParentNodeAggregateID: rootID, Classification: contentgraph.ClassificationRegular}},
		{"rename without name", node.NodeAggregateNameWasChanged{ContentStreamID: liveStream, NodeAggregateID: "n"}},
		{"removal without points", node.NodeAggregateWasRemoved{ContentStreamID: liveStream, NodeAggregateID: "n"}},
		{"references without origins", node.NodeReferencesWereSet{ContentStreamID: liveStream, SourceNodeAggregateID: "n", ReferenceName: "author"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := node.NewEvent(tt.payload)
			if err != nil {
				t.Fatalf("new event: %v", err)
			}
			if _, err := registry.ValidateForPublish(stamp(evt)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDecodePayloadRoundTripsPoints(t *testing.T) {
	want := node.NodeSpecializationVariantWasCreated{
		ContentStreamID:        liveStream,
		NodeAggregateID:        "home",
		SourceOrigin:           origin("mul"),
		SpecializationOrigin:   origin("de"),
		SpecializationCoverage: points("de", "gsw"),
	}
	evt, err := node.NewEvent(want)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	decoded, err := node.DecodePayload(evt)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(&want, decoded); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func stamp(evt event.Event) event.Event {
	evt.Timestamp = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return evt
}
