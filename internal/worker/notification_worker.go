package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/status-portal/internal/events"
	"github.com/spec-kit/status-portal/internal/service"
)

const (
	defaultQueueSize       = 64
	defaultDeliveryTimeout = 5 * time.Second
)

// NotificationWorker moves notification delivery off the request path.
// Events are queued by the dispatcher and delivered by one goroutine.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	queue         chan events.Event
	timeout       time.Duration

	stopOnce sync.Once
	done     chan struct{}
	mu       sync.RWMutex
	stopped  bool
}

// NewNotificationWorker builds a worker with a bounded queue.
func NewNotificationWorker(notifications *service.NotificationService, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &NotificationWorker{
		notifications: notifications,
		logger:        logger,
		queue:         make(chan events.Event, queueSize),
		timeout:       defaultDeliveryTimeout,
		done:          make(chan struct{}),
	}
}

// StartNotificationWorker subscribes the worker to the dispatcher and starts delivery.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	w := NewNotificationWorker(notifications, logger, defaultQueueSize)
	for _, eventType := range notifications.EventTypes() {
		dispatcher.Subscribe(eventType, w.Enqueue)
	}
	go w.run()
	return w
}

// Enqueue accepts an event without blocking. A full queue drops the event.
func (w *NotificationWorker) Enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

// Stop drains queued events and waits for the delivery goroutine to exit.
func (w *NotificationWorker) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		close(w.queue)
		w.mu.Unlock()
		<-w.done
	})
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for event := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		w.notifications.Deliver(ctx, event)
		cancel()
	}
}
