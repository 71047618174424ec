package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/status-portal/internal/domain"
)

// FileRepository stores the document as a JSON file on persistent disk.
// The revision is the SHA-256 of the file bytes.
//
// The revision check and the rename are serialized by an in-process mutex
// only, so the file must be owned by a single process. Deployments running
// several replicas against shared storage should use a remote backend.
type FileRepository struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileRepository builds a repository for the given path.
func NewFileRepository(path string, logger *zap.Logger) *FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileRepository{path: path, logger: logger}
}

func (r *FileRepository) Name() string { return "file" }

func (r *FileRepository) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("file load", err)
	}
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, unavailable("file load", err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, unavailable("file load", err)
	}
	return &Snapshot{Document: doc, Revision: contentRevision(raw), Exists: true}, nil
}

func (r *FileRepository) Save(ctx context.Context, doc *domain.LiveDataDocument, expectedRevision string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", unavailable("file save", err)
	}
	raw, err := encodeDocument(doc)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.currentRevision()
	if err != nil {
		return "", unavailable("file save", err)
	}
	if current != expectedRevision {
		return "", ErrConflict
	}
	if err := r.writeAtomically(raw); err != nil {
		return "", unavailable("file save", err)
	}
	return contentRevision(raw), nil
}

func (r *FileRepository) currentRevision() (string, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return contentRevision(raw), nil
}

// writeAtomically replaces the file through a synced temp file and rename.
func (r *FileRepository) writeAtomically(raw []byte) error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create document dir: %w", err)
		}
	}

	pendingFile, err := renameio.NewPendingFile(r.path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending document file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			r.logger.Debug("cleanup pending document file", zap.Error(err))
		}
	}()

	if _, err := pendingFile.Write(raw); err != nil {
		return fmt.Errorf("write document data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace document file: %w", err)
	}
	return nil
}
