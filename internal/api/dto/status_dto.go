package dto

import (
	"time"

	"github.com/spec-kit/status-portal/internal/domain"
)

// StatusUpdateRequest payload for POST /status-update. Progress is decoded as
// a float so that fractional values can be rejected explicitly.
type StatusUpdateRequest struct {
	Progress    *float64             `json:"progress"`
	Phase       *string              `json:"phase"`
	Status      *string              `json:"status"`
	PhaseName   *string              `json:"phaseName"`
	ETA         *string              `json:"eta"`
	Scope       *string              `json:"scope"`
	Owner       *string              `json:"owner"`
	Client      *string              `json:"client"`
	Phases      []domain.PhaseDetail `json:"phases"`
	Updates     []domain.UpdateEntry `json:"updates"`
	NextActions []string             `json:"nextActions"`
}

// CommitRequest payload for POST /status-update/commit.
type CommitRequest struct {
	Message string `json:"message"`
	Hash    string `json:"hash"`
	Author  string `json:"author"`
}

// StatusView is the document without its message list.
type StatusView struct {
	Progress    int                  `json:"progress"`
	Phase       string               `json:"phase"`
	PhaseName   string               `json:"phaseName"`
	Status      string               `json:"status"`
	LastUpdated time.Time            `json:"lastUpdated"`
	ETA         string               `json:"eta"`
	Scope       string               `json:"scope"`
	Owner       string               `json:"owner"`
	Client      string               `json:"client"`
	Phases      []domain.PhaseDetail `json:"phases"`
	Updates     []domain.UpdateEntry `json:"updates"`
	NextActions []string             `json:"nextActions"`
}

// NewStatusView projects the public status fields of doc.
func NewStatusView(doc *domain.LiveDataDocument) StatusView {
	return StatusView{
		Progress:    doc.Progress,
		Phase:       doc.Phase,
		PhaseName:   doc.PhaseName,
		Status:      doc.Status,
		LastUpdated: doc.LastUpdated,
		ETA:         doc.ETA,
		Scope:       doc.Scope,
		Owner:       doc.Owner,
		Client:      doc.Client,
		Phases:      doc.Phases,
		Updates:     doc.Updates,
		NextActions: doc.NextActions,
	}
}

// CommitResponse reports what a commit changed.
type CommitResponse struct {
	Success bool       `json:"success"`
	Parsed  CommitInfo `json:"parsed"`
	Data    StatusView `json:"data"`
}

// CommitInfo echoes the parsed commit.
type CommitInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Phase       string `json:"phase,omitempty"`
	Progress    *int   `json:"progress,omitempty"`
}
