package node

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/command"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/contentgraph"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimensionspace"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
	"github.com/louisbranch/contentrepository/internal/services/content/domain/nodetype"
)

const (
	EventTypeNodeAggregateWithNodeWasCreated     event.Type = "NodeAggregateWithNodeWasCreated"
	EventTypeNodeAggregateWasRemoved             event.Type = "NodeAggregateWasRemoved"
	EventTypeNodeAggregateTypeWasChanged         event.Type = "NodeAggregateTypeWasChanged"
	EventTypeNodeReferencesWereSet               event.Type = "NodeReferencesWereSet"
	EventTypeNodeAggregateNameWasChanged         event.Type = "NodeAggregateNameWasChanged"
	EventTypeNodeSpecializationVariantWasCreated event.Type = "NodeSpecializationVariantWasCreated"
	EventTypeNodeGeneralizationVariantWasCreated event.Type = "NodeGeneralizationVariantWasCreated"
	EventTypeNodePeerVariantWasCreated           event.Type = "NodePeerVariantWasCreated"
)

// Payload is the body of one of the events this package emits.
type Payload interface {
	EventType() event.Type
	address() (contentgraph.ContentStreamID, contentgraph.NodeAggregateID)
	validate() error
}

// NodeAggregateWithNodeWasCreated records a new aggregate with its first node.
type NodeAggregateWithNodeWasCreated struct {
	ContentStreamID             contentgraph.ContentStreamID `json:"contentStreamId"`
	NodeAggregateID             contentgraph.NodeAggregateID `json:"nodeAggregateId"`
	NodeTypeName                nodetype.Name                `json:"nodeTypeName"`
	OriginDimensionSpacePoint   dimensionspace.OriginPoint   `json:"originDimensionSpacePoint"`
	CoveredDimensionSpacePoints dimensionspace.PointSet      `json:"coveredDimensionSpacePoints"`
	ParentNodeAggregateID       contentgraph.NodeAggregateID `json:"parentNodeAggregateId"`
	NodeName                    contentgraph.NodeName        `json:"nodeName,omitempty"`
	InitialPropertyValues       map[string]any               `json:"initialPropertyValues,omitempty"`
	Classification              contentgraph.Classification  `json:"nodeAggregateClassification"`
	SucceedingNodeAggregateID   contentgraph.NodeAggregateID `json:"succeedingNodeAggregateId,omitempty"`
}

// NodeAggregateWasRemoved records the removal of an aggregate at a set of
// covered points, descendants included.
type NodeAggregateWasRemoved struct {
	ContentStreamID                      contentgraph.ContentStreamID   `json:"contentStreamId"`
	NodeAggregateID                      contentgraph.NodeAggregateID   `json:"nodeAggregateId"`
	AffectedOccupiedDimensionSpacePoints dimensionspace.OriginPointSet `json:"affectedOccupiedDimensionSpacePoints"`
	AffectedCoveredDimensionSpacePoints  dimensionspace.PointSet       `json:"affectedCoveredDimensionSpacePoints"`
}

// NodeAggregateTypeWasChanged records a type change of every variant.
type NodeAggregateTypeWasChanged struct {
	ContentStreamID contentgraph.ContentStreamID `json:"contentStreamId"`
	NodeAggregateID contentgraph.NodeAggregateID `json:"nodeAggregateId"`
	NewNodeTypeName nodetype.Name                `json:"newNodeTypeName"`
}

// NodeReferencesWereSet records the new targets of a reference across the
// affected source origins.
type NodeReferencesWereSet struct {
	ContentStreamID                          contentgraph.ContentStreamID   `json:"contentStreamId"`
	SourceNodeAggregateID                    contentgraph.NodeAggregateID   `json:"sourceNodeAggregateId"`
	AffectedSourceOriginDimensionSpacePoints dimensionspace.OriginPointSet `json:"affectedSourceOriginDimensionSpacePoints"`
	ReferenceName                            string                         `json:"referenceName"`
	References                               []command.ReferenceTarget      `json:"references"`
}

// NodeAggregateNameWasChanged records a rename of every variant.
type NodeAggregateNameWasChanged struct {
	ContentStreamID contentgraph.ContentStreamID `json:"contentStreamId"`
	NodeAggregateID contentgraph.NodeAggregateID `json:"nodeAggregateId"`
	NewNodeName     contentgraph.NodeName        `json:"newNodeName"`
}

// NodeSpecializationVariantWasCreated records a variant at a more specific origin.
type NodeSpecializationVariantWasCreated struct {
	ContentStreamID        contentgraph.ContentStreamID `json:"contentStreamId"`
	NodeAggregateID        contentgraph.NodeAggregateID `json:"nodeAggregateId"`
	SourceOrigin           dimensionspace.OriginPoint   `json:"sourceOrigin"`
	SpecializationOrigin   dimensionspace.OriginPoint   `json:"specializationOrigin"`
	SpecializationCoverage dimensionspace.PointSet      `json:"specializationCoverage"`
}

// NodeGeneralizationVariantWasCreated records a variant at a more general origin.
type NodeGeneralizationVariantWasCreated struct {
	ContentStreamID        contentgraph.ContentStreamID `json:"contentStreamId"`
	NodeAggregateID        contentgraph.NodeAggregateID `json:"nodeAggregateId"`
	SourceOrigin           dimensionspace.OriginPoint   `json:"sourceOrigin"`
	GeneralizationOrigin   dimensionspace.OriginPoint   `json:"generalizationOrigin"`
	GeneralizationCoverage dimensionspace.PointSet      `json:"generalizationCoverage"`
}

// NodePeerVariantWasCreated records a variant at an unrelated origin.
type NodePeerVariantWasCreated struct {
	ContentStreamID contentgraph.ContentStreamID `json:"contentStreamId"`
	NodeAggregateID contentgraph.NodeAggregateID `json:"nodeAggregateId"`
	SourceOrigin    dimensionspace.OriginPoint   `json:"sourceOrigin"`
	PeerOrigin      dimensionspace.OriginPoint   `json:"peerOrigin"`
	PeerCoverage    dimensionspace.PointSet      `json:"peerCoverage"`
}

func (NodeAggregateWithNodeWasCreated) EventType() event.Type {
	return EventTypeNodeAggregateWithNodeWasCreated
}
func (NodeAggregateWasRemoved) EventType() event.Type { return EventTypeNodeAggregateWasRemoved }
func (NodeAggregateTypeWasChanged) EventType() event.Type {
	return EventTypeNodeAggregateTypeWasChanged
}
func (NodeReferencesWereSet) EventType() event.Type { return EventTypeNodeReferencesWereSet }
func (NodeAggregateNameWasChanged) EventType() event.Type {
	return EventTypeNodeAggregateNameWasChanged
}
func (NodeSpecializationVariantWasCreated) EventType() event.Type {
	return EventTypeNodeSpecializationVariantWasCreated
}
func (NodeGeneralizationVariantWasCreated) EventType() event.Type {
	return EventTypeNodeGeneralizationVariantWasCreated
}
func (NodePeerVariantWasCreated) EventType() event.Type { return EventTypeNodePeerVariantWasCreated }

func (p NodeAggregateWithNodeWasCreated) address() (contentgraph.ContentStreamID, contentgraph.NodeAggregateID) {
	return p.ContentStreamID, p.NodeAggregateID
}
func (p NodeAggregateWasRemoved) address() (contentgraph.ContentStreamID, contentgraph.NodeAggregateID) {
	return p.ContentStreamID, p.NodeAggregateID
}
func (p NodeAggregateTypeWasChanged) address() (contentgraph.ContentStreamID, contentgraph.NodeAggregateID) {
	return p.ContentStreamID, p.NodeAggregateID
}
func (p NodeReferencesWereSet) address() (contentgraph.ContentStreamID, contentgraph.NodeAggregateID) {
	return p.ContentStreamID, p.SourceNodeAggregateID
}
func (p NodeAggregateNameWasChanged) address() (contentgraph.ContentStreamID, contentgraph.NodeAggregateID) {
	return p.ContentStreamID, p.NodeAggregateID
}
func (p NodeSpecializationVariantWasCreated) address() (contentgraph.ContentStreamID, contentgraph.NodeAggregateID) {
	return p.ContentStreamID, p.NodeAggregateID
}
func (p NodeGeneralizationVariantWasCreated) address() (contentgraph.ContentStreamID, contentgraph.NodeAggregateID) {
	return p.ContentStreamID, p.NodeAggregateID
}
func (p NodePeerVariantWasCreated) address() (contentgraph.ContentStreamID, contentgraph.NodeAggregateID) {
	return p.ContentStreamID, p.NodeAggregateID
}

var errCoverageRequired = errors.New("covered dimension space points are required")

func (p NodeAggregateWithNodeWasCreated) validate() error {
	if p.NodeTypeName == "" {
		return errors.New("node type name is required")
	}
	if p.CoveredDimensionSpacePoints.IsEmpty() {
		return errCoverageRequired
	}
	if p.Classification != contentgraph.ClassificationRoot && p.ParentNodeAggregateID == "" {
		return errors.New("parent node aggregate id is required")
	}
	return nil
}

func (p NodeAggregateWasRemoved) validate() error {
	if p.AffectedCoveredDimensionSpacePoints.IsEmpty() {
		return errCoverageRequired
	}
	return nil
}

func (p NodeAggregateTypeWasChanged) validate() error {
	if p.NewNodeTypeName == "" {
		return errors.New("new node type name is required")
	}
	return nil
}

func (p NodeReferencesWereSet) validate() error {
	if p.ReferenceName == "" {
		return errors.New("reference name is required")
	}
	if p.AffectedSourceOriginDimensionSpacePoints.Len() == 0 {
		return errors.New("affected source origins are required")
	}
	return nil
}

func (p NodeAggregateNameWasChanged) validate() error {
	if p.NewNodeName == "" {
		return errors.New("new node name is required")
	}
	return nil
}

func (p NodeSpecializationVariantWasCreated) validate() error {
	if p.SpecializationCoverage.IsEmpty() {
		return errCoverageRequired
	}
	return nil
}

func (p NodeGeneralizationVariantWasCreated) validate() error {
	if p.GeneralizationCoverage.IsEmpty() {
		return errCoverageRequired
	}
	return nil
}

func (p NodePeerVariantWasCreated) validate() error {
	if p.PeerCoverage.IsEmpty() {
		return errCoverageRequired
	}
	return nil
}

// NewEvent wraps a payload into an event addressed to its content stream.
func NewEvent(payload Payload) (event.Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return event.Event{}, fmt.Errorf("encode %s: %w", payload.EventType(), err)
	}
	contentStreamID, nodeAggregateID := payload.address()
	return event.Event{
		StreamName:      event.StreamName(string(contentStreamID)),
		Type:            payload.EventType(),
		ContentStreamID: string(contentStreamID),
		NodeAggregateID: string(nodeAggregateID),
		PayloadJSON:     data,
	}, nil
}

func newPayload(eventType event.Type) (Payload, bool) {
	switch eventType {
	case EventTypeNodeAggregateWithNodeWasCreated:
		return &NodeAggregateWithNodeWasCreated{}, true
	case EventTypeNodeAggregateWasRemoved:
		return &NodeAggregateWasRemoved{}, true
	case EventTypeNodeAggregateTypeWasChanged:
		return &NodeAggregateTypeWasChanged{}, true
	case EventTypeNodeReferencesWereSet:
		return &NodeReferencesWereSet{}, true
	case EventTypeNodeAggregateNameWasChanged:
		return &NodeAggregateNameWasChanged{}, true
	case EventTypeNodeSpecializationVariantWasCreated:
		return &NodeSpecializationVariantWasCreated{}, true
	case EventTypeNodeGeneralizationVariantWasCreated:
		return &NodeGeneralizationVariantWasCreated{}, true
	case EventTypeNodePeerVariantWasCreated:
		return &NodePeerVariantWasCreated{}, true
	default:
		return nil, false
	}
}

// DecodePayload decodes the payload of an event emitted by this package. The
// result is a pointer to the concrete payload type.
func DecodePayload(evt event.Event) (Payload, error) {
	payload, ok := newPayload(evt.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", event.ErrTypeUnknown, evt.Type)
	}
	if err := json.Unmarshal(evt.PayloadJSON, payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", evt.Type, err)
	}
	return payload, nil
}

// EventTypes lists every event type this package emits.
func EventTypes() []event.Type {
	return []event.Type{
		EventTypeNodeAggregateWithNodeWasCreated,
		EventTypeNodeAggregateWasRemoved,
		EventTypeNodeAggregateTypeWasChanged,
		EventTypeNodeReferencesWereSet,
		EventTypeNodeAggregateNameWasChanged,
		EventTypeNodeSpecializationVariantWasCreated,
		EventTypeNodeGeneralizationVariantWasCreated,
		EventTypeNodePeerVariantWasCreated,
	}
}

// RegisterEvents registers every event type with payload validation.
func RegisterEvents(registry *event.Registry) error {
	for _, eventType := range EventTypes() {
		eventType := eventType
		err := registry.Register(event.Definition{
			Type: eventType,
			ValidatePayload: func(raw json.RawMessage) error {
				payload, _ := newPayload(eventType)
				if err := json.Unmarshal(raw, payload); err != nil {
					return err
				}
				contentStreamID, nodeAggregateID := payload.address()
				if contentStreamID == "" || nodeAggregateID == "" {
					return errors.New("content stream and node aggregate ids are required")
				}
				return payload.validate()
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
