package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/status-portal/internal/config"
	"github.com/spec-kit/status-portal/internal/events"
)

// Notifier delivers an event to people or systems outside the service.
type Notifier interface {
	Notify(ctx context.Context, event events.Event) error
}

// NotificationService forwards domain events to the configured notifiers.
type NotificationService struct {
	logger    *zap.Logger
	notifiers []Notifier
}

// NewNotificationService creates the service. The log notifier is always
// present; a webhook notifier is added when a URL is configured.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig, client *http.Client) *NotificationService {
	notifiers := []Notifier{&LogNotifier{logger: logger, emailTo: cfg.EmailTo}}
	if strings.TrimSpace(cfg.WebhookURL) != "" {
		notifiers = append(notifiers, NewWebhookNotifier(cfg.WebhookURL, client))
	}
	return &NotificationService{
		logger:    logger,
		notifiers: notifiers,
	}
}

// EventTypes lists the events worth notifying about.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventMessageCreated,
		events.EventMessageResponded,
		events.EventMessageArchived,
		events.EventStatusUpdated,
	}
}

// Deliver hands the event to every notifier. Failures are logged only.
func (n *NotificationService) Deliver(ctx context.Context, event events.Event) {
	for _, notifier := range n.notifiers {
		if err := notifier.Notify(ctx, event); err != nil {
			n.logger.Warn("notification delivery failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}

// LogNotifier stands in for email delivery by logging the event.
type LogNotifier struct {
	logger  *zap.Logger
	emailTo string
}

func (l *LogNotifier) Notify(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("message_id", event.MessageID),
		zap.Any("payload", event.Payload),
	}
	if l.emailTo != "" {
		fields = append(fields, zap.String("email_to", l.emailTo))
	}
	l.logger.Info("notification", fields...)
	return nil
}

// WebhookNotifier POSTs each event as JSON.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier builds the notifier. A nil client gets a short timeout.
func NewWebhookNotifier(url string, client *http.Client) *WebhookNotifier {
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	return &WebhookNotifier{url: url, client: client}
}

func (w *WebhookNotifier) Notify(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}
