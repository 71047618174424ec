package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/status-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMessageCreated   EventType = "message_created"
	EventMessageResponded EventType = "message_responded"
	EventMessageArchived  EventType = "message_archived"
	EventStatusUpdated    EventType = "status_updated"
)

// Actor identifies who caused an event. Client submissions carry no email.
type Actor struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	MessageID string      `json:"messageId,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, messageID string, actor Actor, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		MessageID: messageID,
		Actor:     actor,
		Timestamp: at,
		Payload:   payload,
	}
}

// MessageCreatedPayload payload.
type MessageCreatedPayload struct {
	Name        string                 `json:"name"`
	Priority    domain.MessagePriority `json:"priority"`
	Category    string                 `json:"category"`
	TextPreview string                 `json:"textPreview"`
}

// MessageRespondedPayload payload.
type MessageRespondedPayload struct {
	Responder   string `json:"responder"`
	TextPreview string `json:"textPreview"`
}

// MessageArchivedPayload payload.
type MessageArchivedPayload struct {
	ArchivedAt time.Time `json:"archivedAt"`
}

// StatusUpdatedPayload payload.
type StatusUpdatedPayload struct {
	OldProgress int    `json:"oldProgress"`
	NewProgress int    `json:"newProgress"`
	OldPhase    string `json:"oldPhase"`
	NewPhase    string `json:"newPhase"`
	Status      string `json:"status"`
	Source      string `json:"source"`
}

// Preview shortens free text for notifications.
func Preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
