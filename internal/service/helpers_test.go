package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spec-kit/status-portal/internal/domain"
	"github.com/spec-kit/status-portal/internal/events"
	"github.com/spec-kit/status-portal/internal/repository"
)

var testEpoch = time.Date(2025, 9, 11, 9, 0, 0, 0, time.UTC)

// fixedClock returns a clock that advances one millisecond per call.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	}
}

func newTestStore(t *testing.T, repo repository.DocumentRepository) *DocumentStore {
	t.Helper()
	return NewDocumentStore(StoreDependencies{
		Repository:  repo,
		Defaults:    domain.StandardDefaults(),
		MaxAttempts: 3,
		Clock:       fixedClock(testEpoch),
	})
}

// conflictingRepository fails the first n saves with a revision conflict.
type conflictingRepository struct {
	repository.DocumentRepository
	remaining atomic.Int32
	saves     atomic.Int32
}

func newConflictingRepository(inner repository.DocumentRepository, conflicts int32) *conflictingRepository {
	r := &conflictingRepository{DocumentRepository: inner}
	r.remaining.Store(conflicts)
	return r
}

func (r *conflictingRepository) Save(ctx context.Context, doc *domain.LiveDataDocument, rev string) (string, error) {
	r.saves.Add(1)
	if r.remaining.Add(-1) >= 0 {
		return "", repository.ErrConflict
	}
	return r.DocumentRepository.Save(ctx, doc, rev)
}

// downRepository simulates an unreachable medium.
type downRepository struct{}

func (downRepository) Name() string { return "down" }

func (downRepository) Load(ctx context.Context) (*repository.Snapshot, error) {
	return nil, errors.Join(repository.ErrStorageUnavailable, errors.New("dial tcp: connection refused"))
}

func (downRepository) Save(ctx context.Context, doc *domain.LiveDataDocument, rev string) (string, error) {
	return "", errors.Join(repository.ErrStorageUnavailable, errors.New("dial tcp: connection refused"))
}

// slowRepository blocks until the context ends.
type slowRepository struct{ downRepository }

func (slowRepository) Load(ctx context.Context) (*repository.Snapshot, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// gatedRepository holds every Load until the gate opens or the context ends.
type gatedRepository struct {
	repository.DocumentRepository
	gate  chan struct{}
	loads atomic.Int32
}

func newGatedRepository(inner repository.DocumentRepository) *gatedRepository {
	return &gatedRepository{DocumentRepository: inner, gate: make(chan struct{})}
}

func (r *gatedRepository) Load(ctx context.Context) (*repository.Snapshot, error) {
	r.loads.Add(1)
	select {
	case <-r.gate:
		return r.DocumentRepository.Load(ctx)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}
