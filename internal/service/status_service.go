package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/status-portal/internal/domain"
	"github.com/spec-kit/status-portal/internal/events"
	apperrors "github.com/spec-kit/status-portal/pkg/util/errorutil"
)

const maxUpdateEntries = 50

// StatusService manages the project status fields of the live-data document.
type StatusService struct {
	store      *DocumentStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// StatusDependencies bundles collaborators for the status service.
type StatusDependencies struct {
	Store      *DocumentStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// StatusUpdateInput is a status patch. Progress, Phase and Status are
// mandatory; nil optional fields leave the stored value untouched.
type StatusUpdateInput struct {
	Progress    *int
	Phase       *string
	Status      *string
	PhaseName   *string
	ETA         *string
	Scope       *string
	Owner       *string
	Client      *string
	Phases      []domain.PhaseDetail
	Updates     []domain.UpdateEntry
	NextActions []string
	Actor       events.Actor
}

// CommitInput carries one commit to feed the progress tracker.
type CommitInput struct {
	Message string
	Hash    string
	Author  string
	Actor   events.Actor
}

// CommitResult reports what a commit changed.
type CommitResult struct {
	Parsed   CommitProgress
	Document *domain.LiveDataDocument
}

// NewStatusService constructs the service.
func NewStatusService(deps StatusDependencies) *StatusService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// GetStatus returns the current document, or the default one when storage
// is unavailable.
func (s *StatusService) GetStatus(ctx context.Context) (*domain.LiveDataDocument, error) {
	doc, err := s.store.Read(ctx)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.CodeStorageUnavailable) {
			return nil, err
		}
		s.logger.Warn("serving default status document", zap.Error(err))
		return s.store.Defaults(), nil
	}
	return doc, nil
}

// UpdateStatus validates and merges a status patch.
func (s *StatusService) UpdateStatus(ctx context.Context, input StatusUpdateInput) (*domain.LiveDataDocument, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var before domain.LiveDataDocument
	doc, err := s.store.Mutate(ctx, func(doc *domain.LiveDataDocument, now time.Time) error {
		before = *doc
		doc.Progress = *input.Progress
		doc.Phase = strings.TrimSpace(*input.Phase)
		doc.Status = strings.TrimSpace(*input.Status)
		assign(&doc.PhaseName, input.PhaseName)
		assign(&doc.ETA, input.ETA)
		assign(&doc.Scope, input.Scope)
		assign(&doc.Owner, input.Owner)
		assign(&doc.Client, input.Client)
		if input.Phases != nil {
			doc.Phases = input.Phases
		}
		if input.Updates != nil {
			doc.Updates = input.Updates
		}
		if input.NextActions != nil {
			doc.NextActions = input.NextActions
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, &before, doc, input.Actor, "manual")
	return doc, nil
}

// ApplyCommit moves progress and phase forward from a commit message and
// records the commit in the update history.
func (s *StatusService) ApplyCommit(ctx context.Context, input CommitInput) (*CommitResult, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewFieldError("message", "commit message is required")
	}
	parsed := ParseCommitMessage(input.Message)
	if !parsed.Valid() {
		return nil, apperrors.NewValidationError("commit message carries no phase or progress", map[string]any{
			"field": "message",
		})
	}

	var before domain.LiveDataDocument
	doc, err := s.store.Mutate(ctx, func(doc *domain.LiveDataDocument, now time.Time) error {
		before = *doc
		phaseLabel := doc.Phase
		if parsed.Phase != "" {
			if advancePhase(doc, parsed.Phase) {
				phaseLabel = doc.Phase
			} else {
				s.logger.Warn("commit names unknown phase", zap.String("phase", parsed.Phase))
			}
		}
		if parsed.Progress != nil {
			doc.Progress = clampPercent(*parsed.Progress)
		}

		entry := domain.UpdateEntry{
			Date:        now.Format("Jan 2"),
			Title:       parsed.Description,
			Description: commitDescription(input),
			Status:      "Update",
			Phase:       phaseLabel,
		}
		if parsed.Progress != nil {
			entry.Status = fmt.Sprintf("%d%%", clampPercent(*parsed.Progress))
		}
		doc.Updates = append([]domain.UpdateEntry{entry}, doc.Updates...)
		if len(doc.Updates) > maxUpdateEntries {
			doc.Updates = doc.Updates[:maxUpdateEntries]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, &before, doc, input.Actor, "commit")
	return &CommitResult{Parsed: parsed, Document: doc}, nil
}

func (s *StatusService) publishStatus(ctx context.Context, before, after *domain.LiveDataDocument, actor events.Actor, source string) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(events.EventStatusUpdated, "", actor, after.LastUpdated, events.StatusUpdatedPayload{
		OldProgress: before.Progress,
		NewProgress: after.Progress,
		OldPhase:    before.Phase,
		NewPhase:    after.Phase,
		Status:      after.Status,
		Source:      source,
	})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event delivery failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (in StatusUpdateInput) validate() error {
	if in.Progress == nil {
		return apperrors.NewFieldError("progress", "progress is required")
	}
	if *in.Progress < 0 || *in.Progress > 100 {
		return apperrors.NewFieldError("progress", "progress must be between 0 and 100")
	}
	if in.Phase == nil || strings.TrimSpace(*in.Phase) == "" {
		return apperrors.NewFieldError("phase", "phase is required")
	}
	if in.Status == nil || strings.TrimSpace(*in.Status) == "" {
		return apperrors.NewFieldError("status", "status is required")
	}
	return nil
}

// advancePhase marks the named phase active and the currently active one
// complete. ref is either a phase name or its 1-based position.
func advancePhase(doc *domain.LiveDataDocument, ref string) bool {
	target := -1
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(doc.Phases) {
			target = n - 1
		}
	} else {
		for i, p := range doc.Phases {
			if strings.EqualFold(p.Name, ref) {
				target = i
				break
			}
		}
	}
	if target < 0 {
		return false
	}

	for i := range doc.Phases {
		if i != target && doc.Phases[i].Status == domain.PhaseStatusActive {
			doc.Phases[i].Status = domain.PhaseStatusComplete
			doc.Phases[i].Progress = 100
		}
	}
	if doc.Phases[target].Status != domain.PhaseStatusActive {
		doc.Phases[target].Status = domain.PhaseStatusActive
		doc.Phases[target].Progress = 0
	}
	doc.Phase = fmt.Sprintf("Phase %d", target+1)
	doc.PhaseName = doc.Phases[target].Name + " Phase"
	return true
}

func commitDescription(in CommitInput) string {
	var parts []string
	if hash := strings.TrimSpace(in.Hash); hash != "" {
		if len(hash) > 8 {
			hash = hash[:8]
		}
		parts = append(parts, "commit "+hash)
	}
	if author := strings.TrimSpace(in.Author); author != "" {
		parts = append(parts, "by "+author)
	}
	return strings.Join(parts, " ")
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
