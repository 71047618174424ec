package domain

import (
	"strings"
	"time"
)

// MessageStatus enumerates lifecycle states for a client message.
type MessageStatus string

const (
	MessageStatusNew       MessageStatus = "new"
	MessageStatusResponded MessageStatus = "responded"
	MessageStatusArchived  MessageStatus = "archived"
)

// MessagePriority enumerates urgency levels chosen by the sender.
type MessagePriority string

const (
	PriorityLow    MessagePriority = "low"
	PriorityNormal MessagePriority = "normal"
	PriorityHigh   MessagePriority = "high"
	PriorityUrgent MessagePriority = "urgent"
)

const (
	DefaultSenderName = "Anonymous"
	DefaultCategory   = "general"
	DefaultResponder  = "Development Team"
)

// Message is a client or staff note embedded in the live-data document.
type Message struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Text        string          `json:"text"`
	Email       *string         `json:"email"`
	Priority    MessagePriority `json:"priority"`
	Category    string          `json:"category"`
	Timestamp   time.Time       `json:"timestamp"`
	Status      MessageStatus   `json:"status"`
	Read        bool            `json:"read"`
	Responded   bool            `json:"responded"`
	Responses   []Response      `json:"responses,omitempty"`
	LastUpdated *time.Time      `json:"lastUpdated,omitempty"`
	ArchivedAt  *time.Time      `json:"archivedAt,omitempty"`
}

// Response is a staff reply attached to a message.
type Response struct {
	Text      string    `json:"text"`
	Responder string    `json:"responder"`
	Timestamp time.Time `json:"timestamp"`
}

// NormalizePriority maps free input onto a known priority, falling back to normal.
func NormalizePriority(raw string) MessagePriority {
	switch p := MessagePriority(strings.ToLower(strings.TrimSpace(raw))); p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p
	default:
		return PriorityNormal
	}
}

// MarkRead flags the message as read.
func (m *Message) MarkRead(now time.Time) {
	m.Read = true
	m.touch(now)
}

// AddResponse appends a reply and moves the message to responded unless it is archived.
func (m *Message) AddResponse(text, responder string, now time.Time) Response {
	if strings.TrimSpace(responder) == "" {
		responder = DefaultResponder
	}
	resp := Response{Text: text, Responder: strings.TrimSpace(responder), Timestamp: now}
	m.Responses = append(m.Responses, resp)
	m.Responded = true
	if m.Status != MessageStatusArchived {
		m.Status = MessageStatusResponded
	}
	m.touch(now)
	return resp
}

// Archive soft-deletes the message. It reports false when it was already archived.
func (m *Message) Archive(now time.Time) bool {
	if m.Status == MessageStatusArchived {
		return false
	}
	m.Status = MessageStatusArchived
	m.ArchivedAt = &now
	m.touch(now)
	return true
}

func (m *Message) touch(now time.Time) {
	m.LastUpdated = &now
}

func (m Message) clone() Message {
	if m.Email != nil {
		email := *m.Email
		m.Email = &email
	}
	if m.Responses != nil {
		m.Responses = append([]Response{}, m.Responses...)
	}
	if m.LastUpdated != nil {
		at := *m.LastUpdated
		m.LastUpdated = &at
	}
	if m.ArchivedAt != nil {
		at := *m.ArchivedAt
		m.ArchivedAt = &at
	}
	return m
}
