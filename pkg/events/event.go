package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the contract for everything published on the bus.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewDocumentCompleted signals that a document finished indexing.
func NewDocumentCompleted(documentId, userId uuid.UUID, chunkCount int) Event {
	return BaseEvent{
		Type: "DOCUMENT_COMPLETED",
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"user_id":     userId.String(),
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentFailed signals that processing stopped with an error.
func NewDocumentFailed(documentId, userId uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: "DOCUMENT_FAILED",
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"user_id":     userId.String(),
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}
