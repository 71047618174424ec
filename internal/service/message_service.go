package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/status-portal/internal/domain"
	"github.com/spec-kit/status-portal/internal/events"
	apperrors "github.com/spec-kit/status-portal/pkg/util/errorutil"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
	previewLength    = 140
)

// MessageAction enumerates staff operations on a message.
type MessageAction string

const (
	ActionMarkRead    MessageAction = "markRead"
	ActionAddResponse MessageAction = "addResponse"
)

// MessageService manages client messages inside the live-data document.
type MessageService struct {
	store      *DocumentStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// MessageDependencies bundles collaborators for the message service.
type MessageDependencies struct {
	Store      *DocumentStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// MessageCreateInput describes a client submission.
type MessageCreateInput struct {
	Name     string
	Text     string
	Email    string
	Priority string
	Category string
}

// MessageFilter narrows a listing; empty fields match everything.
type MessageFilter struct {
	Status   string
	Priority string
	Category string
	Limit    int
	Offset   int
}

// MessageUpdateInput describes a staff action on one message.
type MessageUpdateInput struct {
	Action       MessageAction
	ResponseText string
	Responder    string
	Actor        events.Actor
}

// MessagePage is one page of a filtered listing.
type MessagePage struct {
	Items       []domain.Message
	Total       int
	Limit       int
	Offset      int
	LastUpdated time.Time
	Degraded    bool
}

// HasMore reports whether items exist past this page.
func (p MessagePage) HasMore() bool {
	return p.Offset+len(p.Items) < p.Total
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ListMessages returns messages in stored order, newest first. When storage is
// unavailable the listing degrades to an empty page.
func (s *MessageService) ListMessages(ctx context.Context, filter MessageFilter) (*MessagePage, error) {
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	page := &MessagePage{Items: []domain.Message{}, Limit: limit, Offset: offset}

	doc, err := s.store.Read(ctx)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.CodeStorageUnavailable) {
			return nil, err
		}
		s.logger.Warn("listing messages from default document", zap.Error(err))
		page.LastUpdated = s.store.now()
		page.Degraded = true
		return page, nil
	}
	page.LastUpdated = doc.LastUpdated

	matched := make([]domain.Message, 0, len(doc.Messages))
	for _, msg := range doc.Messages {
		if filter.matches(msg) {
			matched = append(matched, msg)
		}
	}
	page.Total = len(matched)
	if offset < len(matched) {
		end := offset + limit
		if end > len(matched) {
			end = len(matched)
		}
		page.Items = matched[offset:end]
	}
	return page, nil
}

// CreateMessage validates and prepends a new message.
func (s *MessageService) CreateMessage(ctx context.Context, input MessageCreateInput) (*domain.Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.NewFieldError("text", "message text is required")
	}

	var created domain.Message
	_, err := s.store.Mutate(ctx, func(doc *domain.LiveDataDocument, now time.Time) error {
		created = domain.Message{
			ID:        nextMessageID(doc, now),
			Name:      strings.TrimSpace(input.Name),
			Text:      text,
			Priority:  domain.NormalizePriority(input.Priority),
			Category:  strings.TrimSpace(input.Category),
			Timestamp: now,
			Status:    domain.MessageStatusNew,
		}
		if created.Name == "" {
			created.Name = domain.DefaultSenderName
		}
		if created.Category == "" {
			created.Category = domain.DefaultCategory
		}
		if email := strings.TrimSpace(input.Email); email != "" {
			created.Email = &email
		}
		doc.PrependMessage(created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventMessageCreated, created.ID, events.Actor{Name: created.Name}, created.Timestamp,
		events.MessageCreatedPayload{
			Name:        created.Name,
			Priority:    created.Priority,
			Category:    created.Category,
			TextPreview: events.Preview(created.Text, previewLength),
		}))
	return &created, nil
}

// UpdateMessage applies a staff action to the message with id.
func (s *MessageService) UpdateMessage(ctx context.Context, id string, input MessageUpdateInput) (*domain.Message, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewFieldError("id", "message id is required")
	}
	responseText := strings.TrimSpace(input.ResponseText)
	switch input.Action {
	case ActionMarkRead:
	case ActionAddResponse:
		if responseText == "" {
			return nil, apperrors.NewFieldError("responseText", "response text is required")
		}
	default:
		return nil, apperrors.NewValidationError("unknown action", map[string]any{
			"field":   "action",
			"allowed": []MessageAction{ActionMarkRead, ActionAddResponse},
		})
	}

	var (
		updated  domain.Message
		response domain.Response
	)
	_, err := s.store.Mutate(ctx, func(doc *domain.LiveDataDocument, now time.Time) error {
		idx := doc.FindMessage(id)
		if idx < 0 {
			return apperrors.NewNotFound("message", map[string]any{"id": id})
		}
		msg := &doc.Messages[idx]
		switch input.Action {
		case ActionMarkRead:
			msg.MarkRead(now)
		case ActionAddResponse:
			response = msg.AddResponse(responseText, input.Responder, now)
		}
		updated = *msg
		return nil
	})
	if err != nil {
		return nil, err
	}

	if input.Action == ActionAddResponse {
		s.publish(ctx, events.NewEvent(events.EventMessageResponded, updated.ID, input.Actor, response.Timestamp,
			events.MessageRespondedPayload{
				Responder:   response.Responder,
				TextPreview: events.Preview(response.Text, previewLength),
			}))
	}
	return &updated, nil
}

// ArchiveMessage soft-deletes the message with id. Archiving twice is a no-op
// that keeps the first archive time.
func (s *MessageService) ArchiveMessage(ctx context.Context, id string, actor events.Actor) (*domain.Message, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewFieldError("id", "message id is required")
	}

	var (
		archived domain.Message
		changed  bool
	)
	_, err := s.store.Mutate(ctx, func(doc *domain.LiveDataDocument, now time.Time) error {
		idx := doc.FindMessage(id)
		if idx < 0 {
			return apperrors.NewNotFound("message", map[string]any{"id": id})
		}
		changed = doc.Messages[idx].Archive(now)
		archived = doc.Messages[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(ctx, events.NewEvent(events.EventMessageArchived, archived.ID, actor, *archived.ArchivedAt,
			events.MessageArchivedPayload{ArchivedAt: *archived.ArchivedAt}))
	}
	return &archived, nil
}

func (s *MessageService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.String("message_id", event.MessageID),
			zap.Error(err))
	}
}

func (f MessageFilter) matches(msg domain.Message) bool {
	if f.Status != "" && string(msg.Status) != f.Status {
		return false
	}
	if f.Priority != "" && string(msg.Priority) != f.Priority {
		return false
	}
	if f.Category != "" && msg.Category != f.Category {
		return false
	}
	return true
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// nextMessageID derives the id from the creation time in milliseconds,
// stepping forward until it is unused.
func nextMessageID(doc *domain.LiveDataDocument, now time.Time) string {
	candidate := now.UnixMilli()
	for doc.FindMessage(strconv.FormatInt(candidate, 10)) >= 0 {
		candidate++
	}
	return strconv.FormatInt(candidate, 10)
}
