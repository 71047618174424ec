package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/status-portal/internal/domain"
)

const (
	redisBodyField     = "body"
	redisRevisionField = "revision"
)

// RedisRepository keeps the document in a hash of body and revision, written
// under WATCH so a concurrent writer aborts the transaction.
type RedisRepository struct {
	client *redis.Client
	key    string
}

// NewRedisRepository builds the repository over an existing client.
func NewRedisRepository(client *redis.Client, key string) *RedisRepository {
	return &RedisRepository{client: client, key: key}
}

func (r *RedisRepository) Name() string { return "redis" }

func (r *RedisRepository) Load(ctx context.Context) (*Snapshot, error) {
	vals, err := r.client.HMGet(ctx, r.key, redisBodyField, redisRevisionField).Result()
	if err != nil {
		return nil, unavailable("redis load", err)
	}
	body, ok := vals[0].(string)
	if !ok {
		return &Snapshot{}, nil
	}
	rev, _ := vals[1].(string)

	doc, err := decodeDocument([]byte(body))
	if err != nil {
		return nil, unavailable("redis load", err)
	}
	return &Snapshot{Document: doc, Revision: rev, Exists: true}, nil
}

func (r *RedisRepository) Save(ctx context.Context, doc *domain.LiveDataDocument, expectedRevision string) (string, error) {
	body, err := encodeDocument(doc)
	if err != nil {
		return "", err
	}

	var next string
	txf := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, r.key, redisRevisionField).Result()
		if errors.Is(err, redis.Nil) {
			current = ""
		} else if err != nil {
			return err
		}
		if current != expectedRevision {
			return ErrConflict
		}

		n, _ := strconv.ParseInt(current, 10, 64)
		next = strconv.FormatInt(n+1, 10)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.key, redisBodyField, body, redisRevisionField, next)
			return nil
		})
		return err
	}

	err = r.client.Watch(ctx, txf, r.key)
	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, ErrConflict), errors.Is(err, redis.TxFailedErr):
		return "", ErrConflict
	default:
		return "", unavailable("redis save", err)
	}
}
