package repository

import (
	"context"
	"strconv"
	"sync"

	"github.com/spec-kit/status-portal/internal/domain"
)

// MemoryRepository keeps the encoded document in process memory.
type MemoryRepository struct {
	mu       sync.Mutex
	raw      []byte
	revision int64
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Name() string { return "memory" }

func (r *MemoryRepository) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("memory load", err)
	}
	r.mu.Lock()
	raw, rev := r.raw, r.revision
	r.mu.Unlock()

	if raw == nil {
		return &Snapshot{}, nil
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, unavailable("memory load", err)
	}
	return &Snapshot{Document: doc, Revision: strconv.FormatInt(rev, 10), Exists: true}, nil
}

func (r *MemoryRepository) Save(ctx context.Context, doc *domain.LiveDataDocument, expectedRevision string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", unavailable("memory save", err)
	}
	raw, err := encodeDocument(doc)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	current := ""
	if r.raw != nil {
		current = strconv.FormatInt(r.revision, 10)
	}
	if current != expectedRevision {
		return "", ErrConflict
	}
	r.raw = raw
	r.revision++
	return strconv.FormatInt(r.revision, 10), nil
}
