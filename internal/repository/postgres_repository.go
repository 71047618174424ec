package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/status-portal/internal/domain"
)

// pgExecutor is the subset of pgxpool.Pool the repository needs.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores the document as one JSONB row guarded by an integer revision.
type PostgresRepository struct {
	db  pgExecutor
	key string
}

// NewPostgresRepository builds the repository over an open pool.
func NewPostgresRepository(db pgExecutor, key string) *PostgresRepository {
	return &PostgresRepository{db: db, key: key}
}

func (r *PostgresRepository) Name() string { return "postgres" }

func (r *PostgresRepository) Load(ctx context.Context) (*Snapshot, error) {
	const query = `SELECT body, revision FROM live_documents WHERE key=$1`

	var (
		body     []byte
		revision int64
	)
	err := r.db.QueryRow(ctx, query, r.key).Scan(&body, &revision)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, unavailable("postgres load", err)
	}
	doc, err := decodeDocument(body)
	if err != nil {
		return nil, unavailable("postgres load", err)
	}
	return &Snapshot{Document: doc, Revision: strconv.FormatInt(revision, 10), Exists: true}, nil
}

func (r *PostgresRepository) Save(ctx context.Context, doc *domain.LiveDataDocument, expectedRevision string) (string, error) {
	body, err := encodeDocument(doc)
	if err != nil {
		return "", err
	}

	if expectedRevision == "" {
		const insert = `
        INSERT INTO live_documents (key, body, revision)
        VALUES ($1,$2,1)
        ON CONFLICT (key) DO NOTHING`
		tag, err := r.db.Exec(ctx, insert, r.key, body)
		if err != nil {
			return "", unavailable("postgres save", err)
		}
		if tag.RowsAffected() == 0 {
			return "", ErrConflict
		}
		return "1", nil
	}

	expected, err := strconv.ParseInt(expectedRevision, 10, 64)
	if err != nil {
		return "", ErrConflict
	}
	const update = `
        UPDATE live_documents SET body=$2, revision=revision+1, updated_at=now()
        WHERE key=$1 AND revision=$3
        RETURNING revision`
	var next int64
	err = r.db.QueryRow(ctx, update, r.key, body, expected).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrConflict
	}
	if err != nil {
		return "", unavailable("postgres save", err)
	}
	return strconv.FormatInt(next, 10), nil
}
