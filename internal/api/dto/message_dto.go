package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spec-kit/status-portal/internal/domain"
)

// MessageID accepts an id sent either as a JSON string or a JSON number.
type MessageID string

func (id *MessageID) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		*id = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*id = MessageID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("message id must be a string or number")
	}
	*id = MessageID(n.String())
	return nil
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Name     string `json:"name"`
	Text     string `json:"text"`
	Email    string `json:"email"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

// ManageMessageRequest payload for PUT and DELETE /messages/manage.
type ManageMessageRequest struct {
	ID           MessageID `json:"id"`
	MessageID    MessageID `json:"messageId"`
	Action       string    `json:"action"`
	ResponseText string    `json:"responseText"`
	Responder    string    `json:"responder"`
}

// TargetID returns the message id, falling back to the messageId alias.
func (r ManageMessageRequest) TargetID() string {
	if r.ID != "" {
		return string(r.ID)
	}
	return string(r.MessageID)
}

// MessageListQuery captures query filters for GET /messages.
type MessageListQuery struct {
	Status   string
	Priority string
	Category string
	Limit    int
	Offset   int
}

// Pagination describes the window of a listing.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// MessageListResponse is the body of GET /messages.
type MessageListResponse struct {
	Success     bool             `json:"success"`
	Messages    []domain.Message `json:"messages"`
	Count       int              `json:"count"`
	Pagination  Pagination       `json:"pagination"`
	LastUpdated time.Time        `json:"lastUpdated"`
	Degraded    bool             `json:"degraded,omitempty"`
}

// MessageResponse wraps a single message.
type MessageResponse struct {
	Success bool           `json:"success"`
	Data    domain.Message `json:"data"`
}
