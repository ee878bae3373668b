package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	dErrors "healthcred/pkg/domain-errors"
	"healthcred/pkg/platform/sentinel"
)

const keyPrefix = "blob:"

// RedisStore persists blobs in Redis keyed by content hash. Keys carry no
// TTL; uploaded documents outlive the workflow that produced them.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, data []byte) (string, error) {
	hash := HashOf(data)
	if err := s.client.SetNX(ctx, keyPrefix+hash, data, 0).Err(); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUploadFailed, "store blob")
	}
	return hash, nil
}

func (s *RedisStore) Get(ctx context.Context, contentHash string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+contentHash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	return data, nil
}
