package event

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
)

// ErrConcurrencyConflict indicates a batch published against a stream that
// moved past the batch's expected version.
var ErrConcurrencyConflict = apperrors.New(apperrors.CodeConcurrencyConflict, "content stream version does not match the expected version")

// Type identifies an event type, e.g. "NodeAggregateWithNodeWasCreated".
type Type string

// Event is the canonical event envelope.
type Event struct {
	StreamName string
	// Version is the position in the stream, assigned on publish.
	Version         int
	Type            Type
	ContentStreamID string
	NodeAggregateID string
	Timestamp       time.Time
	// CommandType names the command the event was derived from.
	CommandType      string
	CorrelationID    string
	InitiatingUserID string
	PayloadJSON      []byte
	// Hash is the content hash of the payload, assigned on publish.
	Hash string
}

// EventsToPublish is one atomic batch for a stream. Publication fails when
// the stream is no longer at ExpectedVersion.
type EventsToPublish struct {
	StreamName      string
	Events          []Event
	ExpectedVersion int
}

const contentStreamPrefix = "ContentStream:"

// StreamName returns the event stream of a content stream.
func StreamName(contentStreamID string) string {
	return contentStreamPrefix + contentStreamID
}

// ContentStreamIDFromStreamName reverses StreamName.
func ContentStreamIDFromStreamName(streamName string) (string, bool) {
	if !strings.HasPrefix(streamName, contentStreamPrefix) {
		return "", false
	}
	return strings.TrimPrefix(streamName, contentStreamPrefix), true
}
