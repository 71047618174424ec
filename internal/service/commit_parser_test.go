package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommitMessage(t *testing.T) {
	tests := []struct {
		message     string
		typ         string
		description string
		phase       string
		progress    *int
	}{
		{"feat: Complete design system - Phase: Design - Progress: 40%", "feat", "Complete design system", "Design", ptr(40)},
		{"FIX: header overlap - Progress: 55%", "fix", "header overlap", "", ptr(55)},
		{"chore: bump deps - Phase: Shell", "chore", "bump deps", "Shell", nil},
		{"[Phase Design] Color palette finalized - Progress: 60%", "update", "Color palette finalized", "Design", ptr(60)},
		{"Phase Design: Typography system complete - 80%", "update", "Typography system complete", "Design", ptr(80)},
		{"Wire up contact form - 65%", "update", "Wire up contact form", "", ptr(65)},
		{"Just a regular commit", "update", "Just a regular commit", "", nil},
		{"Phase 3: shell ready\n\nlonger body - 99%", "update", "shell ready", "3", nil},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := ParseCommitMessage(tt.message)
			assert.Equal(t, tt.typ, got.Type)
			assert.Equal(t, tt.description, got.Description)
			assert.Equal(t, tt.phase, got.Phase)
			assert.Equal(t, tt.progress, got.Progress)
			assert.Equal(t, tt.phase != "" || tt.progress != nil, got.Valid())
		})
	}
}
