package domain

import (
	"time"
)

// PhaseDetail describes one project phase as shown on the status page.
type PhaseDetail struct {
	Name     string   `json:"name" yaml:"name"`
	Progress int      `json:"progress" yaml:"progress"`
	Status   string   `json:"status" yaml:"status"`
	Tasks    []string `json:"tasks,omitempty" yaml:"tasks"`
}

// Phase status labels used by the progress tracker.
const (
	PhaseStatusPending  = "pending"
	PhaseStatusActive   = "active"
	PhaseStatusComplete = "complete"
)

// UpdateEntry is one changelog line of the status page.
type UpdateEntry struct {
	Date        string `json:"date,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Phase       string `json:"phase,omitempty"`
}

// LiveDataDocument is the single persisted aggregate holding project status and messages.
type LiveDataDocument struct {
	Progress    int           `json:"progress"`
	Phase       string        `json:"phase"`
	PhaseName   string        `json:"phaseName"`
	Status      string        `json:"status"`
	LastUpdated time.Time     `json:"lastUpdated"`
	ETA         string        `json:"eta"`
	Scope       string        `json:"scope"`
	Owner       string        `json:"owner"`
	Client      string        `json:"client"`
	Phases      []PhaseDetail `json:"phases"`
	Updates     []UpdateEntry `json:"updates"`
	NextActions []string      `json:"nextActions"`
	Messages    []Message     `json:"messages"`
}

// DocumentDefaults holds the fallback values of a freshly created document.
type DocumentDefaults struct {
	Phase       string        `yaml:"phase"`
	PhaseName   string        `yaml:"phaseName"`
	Status      string        `yaml:"status"`
	ETA         string        `yaml:"eta"`
	Scope       string        `yaml:"scope"`
	Owner       string        `yaml:"owner"`
	Client      string        `yaml:"client"`
	Phases      []PhaseDetail `yaml:"phases"`
	NextActions []string      `yaml:"nextActions"`
}

// StandardDefaults returns the built-in fallbacks.
func StandardDefaults() DocumentDefaults {
	names := []string{"Discovery", "Design", "Shell", "Features", "Integration", "Testing", "Launch"}
	phases := make([]PhaseDetail, 0, len(names))
	for i, name := range names {
		status := PhaseStatusPending
		if i == 0 {
			status = PhaseStatusActive
		}
		phases = append(phases, PhaseDetail{Name: name, Status: status})
	}
	return DocumentDefaults{
		Phase:     "Phase 1",
		PhaseName: "Discovery Phase",
		Status:    "Project kickoff",
		ETA:       "Sep 11-18, 2025",
		Scope:     "Scope v1.0",
		Owner:     "Cochran Full Stack Solutions",
		Client:    "INEX",
		Phases:    phases,
	}
}

// Merge fills empty fields of d from fallback.
func (d DocumentDefaults) Merge(fallback DocumentDefaults) DocumentDefaults {
	pick := func(v, f string) string {
		if v == "" {
			return f
		}
		return v
	}
	out := DocumentDefaults{
		Phase:       pick(d.Phase, fallback.Phase),
		PhaseName:   pick(d.PhaseName, fallback.PhaseName),
		Status:      pick(d.Status, fallback.Status),
		ETA:         pick(d.ETA, fallback.ETA),
		Scope:       pick(d.Scope, fallback.Scope),
		Owner:       pick(d.Owner, fallback.Owner),
		Client:      pick(d.Client, fallback.Client),
		Phases:      d.Phases,
		NextActions: d.NextActions,
	}
	if out.Phases == nil {
		out.Phases = fallback.Phases
	}
	if out.NextActions == nil {
		out.NextActions = fallback.NextActions
	}
	return out
}

// NewDocument builds the default document shape.
func NewDocument(defaults DocumentDefaults, now time.Time) *LiveDataDocument {
	doc := &LiveDataDocument{
		Phase:       defaults.Phase,
		PhaseName:   defaults.PhaseName,
		Status:      defaults.Status,
		LastUpdated: now,
		ETA:         defaults.ETA,
		Scope:       defaults.Scope,
		Owner:       defaults.Owner,
		Client:      defaults.Client,
		Phases:      append([]PhaseDetail{}, defaults.Phases...),
		Updates:     []UpdateEntry{},
		NextActions: append([]string{}, defaults.NextActions...),
		Messages:    []Message{},
	}
	return doc
}

// Normalize replaces nil collections so the document always serializes with arrays.
func (d *LiveDataDocument) Normalize() {
	if d.Phases == nil {
		d.Phases = []PhaseDetail{}
	}
	if d.Updates == nil {
		d.Updates = []UpdateEntry{}
	}
	if d.NextActions == nil {
		d.NextActions = []string{}
	}
	if d.Messages == nil {
		d.Messages = []Message{}
	}
}

// FindMessage returns the index of the message with id, or -1.
func (d *LiveDataDocument) FindMessage(id string) int {
	for i := range d.Messages {
		if d.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// PrependMessage inserts msg at the head of the list.
func (d *LiveDataDocument) PrependMessage(msg Message) {
	d.Messages = append([]Message{msg}, d.Messages...)
}

// Clone returns a deep copy.
func (d *LiveDataDocument) Clone() *LiveDataDocument {
	out := *d
	out.Phases = make([]PhaseDetail, len(d.Phases))
	for i, p := range d.Phases {
		p.Tasks = append([]string(nil), p.Tasks...)
		out.Phases[i] = p
	}
	out.Updates = append([]UpdateEntry{}, d.Updates...)
	out.NextActions = append([]string{}, d.NextActions...)
	out.Messages = make([]Message, len(d.Messages))
	for i, m := range d.Messages {
		out.Messages[i] = m.clone()
	}
	return &out
}
