package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spec-kit/status-portal/internal/domain"
)

var (
	// ErrConflict reports that the stored revision no longer matches the one the write was based on.
	ErrConflict = errors.New("document revision conflict")
	// ErrStorageUnavailable reports that the medium could not be reached or read.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Snapshot is one read of the live-data document.
type Snapshot struct {
	Document *domain.LiveDataDocument
	// Revision identifies the stored content; empty when nothing is stored yet.
	Revision string
	Exists   bool
}

// DocumentRepository persists the single live-data document as a whole.
//
// Save must be atomic from the caller's view. An empty expectedRevision means
// "create only"; a stale one yields ErrConflict and nothing is written.
type DocumentRepository interface {
	Name() string
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, doc *domain.LiveDataDocument, expectedRevision string) (string, error)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

func encodeDocument(doc *domain.LiveDataDocument) ([]byte, error) {
	doc.Normalize()
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(raw, '\n'), nil
}

func decodeDocument(raw []byte) (*domain.LiveDataDocument, error) {
	var doc domain.LiveDataDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

func contentRevision(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
