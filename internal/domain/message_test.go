package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePriority(t *testing.T) {
	tests := map[string]MessagePriority{
		"low":      PriorityLow,
		" HIGH ":   PriorityHigh,
		"urgent":   PriorityUrgent,
		"normal":   PriorityNormal,
		"":         PriorityNormal,
		"critical": PriorityNormal,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePriority(in), "input %q", in)
	}
}

func TestMessage_AddResponse(t *testing.T) {
	now := time.Date(2025, 8, 11, 9, 55, 53, 0, time.UTC)
	msg := Message{ID: "1", Status: MessageStatusNew}

	resp := msg.AddResponse("on it", "", now)

	assert.Equal(t, DefaultResponder, resp.Responder)
	require.Len(t, msg.Responses, 1)
	assert.True(t, msg.Responded)
	assert.Equal(t, MessageStatusResponded, msg.Status)
	require.NotNil(t, msg.LastUpdated)
	assert.Equal(t, now, *msg.LastUpdated)
}

func TestMessage_AddResponseKeepsArchived(t *testing.T) {
	now := time.Now().UTC()
	msg := Message{ID: "1", Status: MessageStatusArchived}

	msg.AddResponse("late reply", "Dana", now)

	assert.Equal(t, MessageStatusArchived, msg.Status)
	assert.Equal(t, "Dana", msg.Responses[0].Responder)
}

func TestMessage_ArchiveIsIdempotent(t *testing.T) {
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	msg := Message{ID: "1", Status: MessageStatusNew}

	assert.True(t, msg.Archive(first))
	assert.False(t, msg.Archive(first.Add(time.Hour)))
	assert.Equal(t, MessageStatusArchived, msg.Status)
	require.NotNil(t, msg.ArchivedAt)
	assert.Equal(t, first, *msg.ArchivedAt)
}
