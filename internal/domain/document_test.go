package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument_DefaultShape(t *testing.T) {
	now := time.Now().UTC()
	doc := NewDocument(StandardDefaults(), now)

	assert.Equal(t, 0, doc.Progress)
	assert.Equal(t, "Phase 1", doc.Phase)
	assert.Equal(t, "Discovery Phase", doc.PhaseName)
	assert.Equal(t, "INEX", doc.Client)
	assert.Len(t, doc.Phases, 7)
	assert.Equal(t, PhaseStatusActive, doc.Phases[0].Status)
	assert.Empty(t, doc.Messages)
	assert.Equal(t, now, doc.LastUpdated)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"messages":[]`)
	assert.Contains(t, string(raw), `"updates":[]`)
}

func TestDocumentDefaults_Merge(t *testing.T) {
	merged := DocumentDefaults{Client: "Acme", Phases: []PhaseDetail{{Name: "Only"}}}.Merge(StandardDefaults())

	assert.Equal(t, "Acme", merged.Client)
	assert.Equal(t, "Cochran Full Stack Solutions", merged.Owner)
	require.Len(t, merged.Phases, 1)
	assert.Equal(t, "Only", merged.Phases[0].Name)
}

func TestLiveDataDocument_CloneIsDeep(t *testing.T) {
	doc := NewDocument(StandardDefaults(), time.Now().UTC())
	doc.PrependMessage(Message{ID: "1", Text: "hello", Status: MessageStatusNew})

	email := "a@example.com"
	doc.Messages[0].Email = &email

	clone := doc.Clone()
	clone.Messages[0].Text = "changed"
	*clone.Messages[0].Email = "b@example.com"
	clone.Phases[0].Name = "changed"

	assert.Equal(t, "hello", doc.Messages[0].Text)
	assert.Equal(t, "a@example.com", *doc.Messages[0].Email)
	assert.Equal(t, "Discovery", doc.Phases[0].Name)
	assert.Equal(t, 0, clone.FindMessage("1"))
	assert.Equal(t, -1, clone.FindMessage("2"))
}
