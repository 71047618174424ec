package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_PublishReachesAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string

	d.Subscribe(EventMessageCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventMessageCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventStatusUpdated, func(ctx context.Context, e Event) error {
		calls = append(calls, "status")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventMessageCreated, "1", Actor{}, time.Now(), nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), NewEvent(EventMessageArchived, "1", Actor{}, time.Now(), nil)))
}

func TestNewEvent_AssignsID(t *testing.T) {
	a := NewEvent(EventStatusUpdated, "", Actor{Email: "pm@example.com"}, time.Now(), nil)
	b := NewEvent(EventStatusUpdated, "", Actor{}, time.Now(), nil)
	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 10))
	assert.Equal(t, "héll...", Preview("héllo world", 4))
}
