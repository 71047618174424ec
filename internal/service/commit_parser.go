package service

import (
	"regexp"
	"strconv"
	"strings"
)

// CommitProgress is the progress information found in a commit message.
type CommitProgress struct {
	Type        string
	Description string
	Phase       string
	Progress    *int
}

// Valid reports whether the commit carries a phase or a progress value.
func (c CommitProgress) Valid() bool {
	return c.Phase != "" || c.Progress != nil
}

var (
	// feat: description - Phase: X - Progress: Y%
	conventionalCommit = regexp.MustCompile(`(?i)^(feat|fix|docs|style|refactor|test|chore):\s*(.+?)(?:\s*-\s*Phase:\s*(\w+))?(?:\s*-\s*Progress:\s*(\d+)%)?$`)
	// [Phase X] description - Progress: Y%
	bracketCommit = regexp.MustCompile(`(?i)^\[Phase\s*(\w+)\]\s*(.+?)(?:\s*-\s*Progress:\s*(\d+)%)?$`)
	// Phase X: description - Y%
	phaseCommit = regexp.MustCompile(`(?i)^Phase\s*(\w+):\s*(.+?)(?:\s*-\s*(\d+)%)?$`)
	// description - Y%
	progressCommit = regexp.MustCompile(`(?i)^(.+?)(?:\s*-\s*(\d+)%)?$`)
)

// ParseCommitMessage extracts progress information from the first line of a
// commit message. Patterns are tried from most to least specific.
func ParseCommitMessage(message string) CommitProgress {
	line := strings.TrimSpace(strings.SplitN(message, "\n", 2)[0])
	out := CommitProgress{Type: "update"}

	if m := conventionalCommit.FindStringSubmatch(line); m != nil {
		out.Type = strings.ToLower(m[1])
		out.Description = strings.TrimSpace(m[2])
		out.Phase = m[3]
		out.Progress = parsePercent(m[4])
		return out
	}
	if m := bracketCommit.FindStringSubmatch(line); m != nil {
		out.Phase = m[1]
		out.Description = strings.TrimSpace(m[2])
		out.Progress = parsePercent(m[3])
		return out
	}
	if m := phaseCommit.FindStringSubmatch(line); m != nil {
		out.Phase = m[1]
		out.Description = strings.TrimSpace(m[2])
		out.Progress = parsePercent(m[3])
		return out
	}
	if m := progressCommit.FindStringSubmatch(line); m != nil {
		out.Description = strings.TrimSpace(m[1])
		out.Progress = parsePercent(m[2])
	}
	return out
}

func parsePercent(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
