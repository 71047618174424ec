package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/status-portal/internal/domain"
)

func sampleDocument() *domain.LiveDataDocument {
	now := time.Date(2025, 8, 11, 9, 55, 53, 138000000, time.UTC)
	doc := domain.NewDocument(domain.StandardDefaults(), now)
	email := "zeb@example.com"
	doc.PrependMessage(domain.Message{
		ID:        "1754906153138",
		Name:      "API Test",
		Text:      "Testing the messaging system",
		Email:     &email,
		Priority:  domain.PriorityHigh,
		Category:  "test",
		Timestamp: now,
		Status:    domain.MessageStatusNew,
	})
	return doc
}

// runRepositoryContract exercises the behavior every backend must share.
func runRepositoryContract(t *testing.T, repo DocumentRepository) {
	t.Helper()
	ctx := context.Background()

	snap, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Exists, "fresh repository must report a missing document")
	assert.Empty(t, snap.Revision)

	doc := sampleDocument()
	rev1, err := repo.Save(ctx, doc, "")
	require.NoError(t, err)
	require.NotEmpty(t, rev1)

	snap, err = repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, snap.Exists)
	assert.Equal(t, rev1, snap.Revision)
	require.Len(t, snap.Document.Messages, 1)
	assert.Equal(t, "1754906153138", snap.Document.Messages[0].ID)
	assert.Equal(t, "INEX", snap.Document.Client)

	_, err = repo.Save(ctx, doc, "")
	assert.ErrorIs(t, err, ErrConflict, "create-only save must fail once the document exists")

	_, err = repo.Save(ctx, doc, "not-the-revision")
	assert.ErrorIs(t, err, ErrConflict)

	doc.Progress = 40
	rev2, err := repo.Save(ctx, doc, rev1)
	require.NoError(t, err)
	assert.NotEqual(t, rev1, rev2)

	_, err = repo.Save(ctx, doc, rev1)
	assert.ErrorIs(t, err, ErrConflict, "stale revision must be rejected")

	// save(load()) leaves subsequent loads unchanged
	before, err := repo.Load(ctx)
	require.NoError(t, err)
	_, err = repo.Save(ctx, before.Document, before.Revision)
	require.NoError(t, err)
	after, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Document, after.Document)
	assert.Equal(t, 40, after.Document.Progress)
}

func TestMemoryRepository_Contract(t *testing.T) {
	runRepositoryContract(t, NewMemoryRepository())
}

func TestMemoryRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryRepository().Load(ctx)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}
