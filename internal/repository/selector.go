package repository

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/status-portal/internal/config"
	"github.com/spec-kit/status-portal/internal/persistence"
)

// Opened is the repository chosen for this process plus the cleanup of any
// connection it owns.
type Opened struct {
	Repository DocumentRepository
	Close      func()
}

// Open builds the single repository instance used by every read and write path.
func Open(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *zap.Logger) (*Opened, error) {
	noop := func() {}
	storage := cfg.Storage

	switch storage.Backend {
	case config.BackendMemory:
		return &Opened{Repository: NewMemoryRepository(), Close: noop}, nil
	case config.BackendFile:
		return &Opened{Repository: NewFileRepository(storage.File.Path, logger), Close: noop}, nil
	case config.BackendGitHub:
		return &Opened{Repository: NewGitHubRepository(storage.GitHub, httpClient), Close: noop}, nil
	case config.BackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &Opened{Repository: NewPostgresRepository(pg.Pool, storage.Postgres.DocumentKey), Close: pg.Close}, nil
	case config.BackendRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		return &Opened{Repository: NewRedisRepository(rdb.Client, storage.Redis.Key), Close: rdb.Close}, nil
	case config.BackendS3:
		client, err := NewS3Client(ctx, storage.S3)
		if err != nil {
			return nil, err
		}
		return &Opened{Repository: NewS3Repository(client, storage.S3.Bucket, storage.S3.Key), Close: noop}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", storage.Backend)
	}
}
