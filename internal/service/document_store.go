package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/status-portal/internal/domain"
	"github.com/spec-kit/status-portal/internal/observability"
	"github.com/spec-kit/status-portal/internal/repository"
	apperrors "github.com/spec-kit/status-portal/pkg/util/errorutil"
)

const (
	defaultIOTimeout   = 5 * time.Second
	defaultMaxAttempts = 3
)

// MutateFunc edits the loaded document in place. Returning an error aborts the
// mutation without saving.
type MutateFunc func(doc *domain.LiveDataDocument, now time.Time) error

// DocumentStore serializes every read-modify-write of the live-data document.
// Mutations hold one process-wide lock and retry on revision conflicts so that
// writers on other processes cannot cause a lost update.
type DocumentStore struct {
	repo        repository.DocumentRepository
	defaults    domain.DocumentDefaults
	ioTimeout   time.Duration
	maxAttempts int
	clock       func() time.Time
	logger      *zap.Logger
	metrics     *observability.Metrics

	mu    sync.Mutex
	reads singleflight.Group
}

// StoreDependencies bundles collaborators of the document store.
type StoreDependencies struct {
	Repository  repository.DocumentRepository
	Defaults    domain.DocumentDefaults
	IOTimeout   time.Duration
	MaxAttempts int
	Clock       func() time.Time
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// NewDocumentStore constructs the store.
func NewDocumentStore(deps StoreDependencies) *DocumentStore {
	s := &DocumentStore{
		repo:        deps.Repository,
		defaults:    deps.Defaults,
		ioTimeout:   deps.IOTimeout,
		maxAttempts: deps.MaxAttempts,
		clock:       deps.Clock,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
	}
	if s.ioTimeout <= 0 {
		s.ioTimeout = defaultIOTimeout
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = defaultMaxAttempts
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.defaults.Phase == "" {
		s.defaults = domain.StandardDefaults()
	}
	return s
}

// Backend names the repository behind the store.
func (s *DocumentStore) Backend() string {
	return s.repo.Name()
}

// Defaults returns a fresh default document.
func (s *DocumentStore) Defaults() *domain.LiveDataDocument {
	return domain.NewDocument(s.defaults, s.now())
}

// Read returns a private copy of the current document. A missing document is
// created with the default shape; failing to persist it is not an error for
// the reader.
//
// Concurrent readers share one load. The shared load is detached from any
// single caller's cancellation and bounded by the I/O timeout instead; each
// caller stops waiting when its own context ends.
func (s *DocumentStore) Read(ctx context.Context) (*domain.LiveDataDocument, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := s.reads.DoChan("document", func() (interface{}, error) {
		snap, err := s.load(flightCtx)
		if err != nil {
			return nil, err
		}
		if snap.Exists {
			return snap.Document, nil
		}
		return s.createIfMissing(flightCtx)
	})

	select {
	case <-ctx.Done():
		return nil, s.translate(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, s.translate(res.Err)
		}
		return res.Val.(*domain.LiveDataDocument).Clone(), nil
	}
}

// Mutate loads the document, applies fn and saves the result conditionally.
// On a revision conflict the whole cycle is repeated, up to the configured
// number of attempts.
func (s *DocumentStore) Mutate(ctx context.Context, fn MutateFunc) (*domain.LiveDataDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; ; attempt++ {
		snap, err := s.load(ctx)
		if err != nil {
			return nil, s.translate(err)
		}

		now := s.now()
		doc := snap.Document
		if !snap.Exists {
			doc = domain.NewDocument(s.defaults, now)
		}
		doc.Normalize()
		if err := fn(doc, now); err != nil {
			return nil, err
		}
		doc.LastUpdated = now

		_, err = s.save(ctx, doc, snap.Revision)
		if err == nil {
			return doc, nil
		}
		if errors.Is(err, repository.ErrConflict) && attempt < s.maxAttempts {
			s.metrics.RecordConflictRetry(s.repo.Name())
			s.logger.Warn("document revision conflict, retrying",
				zap.String("backend", s.repo.Name()),
				zap.Int("attempt", attempt))
			continue
		}
		return nil, s.translate(err)
	}
}

// Ping performs a bounded load for readiness probes.
func (s *DocumentStore) Ping(ctx context.Context) error {
	_, err := s.load(ctx)
	return err
}

func (s *DocumentStore) createIfMissing(ctx context.Context) (*domain.LiveDataDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Exists {
		return snap.Document, nil
	}

	doc := domain.NewDocument(s.defaults, s.now())
	if _, err := s.save(ctx, doc, ""); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			snap, err := s.load(ctx)
			if err == nil && snap.Exists {
				return snap.Document, nil
			}
		}
		s.logger.Warn("could not persist default document",
			zap.String("backend", s.repo.Name()),
			zap.Error(err))
	}
	return doc, nil
}

func (s *DocumentStore) load(ctx context.Context) (*repository.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.ioTimeout)
	defer cancel()

	snap, err := s.repo.Load(ctx)
	s.metrics.RecordStoreOp(s.repo.Name(), "load", opResult(err))
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *DocumentStore) save(ctx context.Context, doc *domain.LiveDataDocument, expectedRevision string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.ioTimeout)
	defer cancel()

	rev, err := s.repo.Save(ctx, doc, expectedRevision)
	s.metrics.RecordStoreOp(s.repo.Name(), "save", opResult(err))
	return rev, err
}

// translate maps backend failures onto API errors; causes stay wrapped for logs.
func (s *DocumentStore) translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return apperrors.NewConflict("document was modified concurrently, please retry",
			map[string]any{"attempts": s.maxAttempts})
	case errors.Is(err, repository.ErrStorageUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return apperrors.NewStorageUnavailable(err)
	default:
		return apperrors.NewInternalError(err)
	}
}

func (s *DocumentStore) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

func opResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, repository.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
