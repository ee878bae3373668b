package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "wallet:session:"
	userKeyPrefix    = "wallet:user:"
)

// RedisStore persists sessions in Redis with a TTL. The per-user index key
// shares the session TTL so both expire together.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	previous, err := s.client.GetSet(ctx, userKeyPrefix+session.UserID.String(), session.ID.String()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("index session: %w", err)
	}
	if previous != "" && previous != session.ID.String() {
		if delErr := s.client.Del(ctx, sessionKeyPrefix+previous).Err(); delErr != nil {
			return fmt.Errorf("drop previous session: %w", delErr)
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.ID.String(), payload, ttl)
	pipe.Expire(ctx, userKeyPrefix+session.UserID.String(), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, sessionID id.SessionID) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+sessionID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) FindByUser(ctx context.Context, userID id.UserID) (*Session, error) {
	raw, err := s.client.Get(ctx, userKeyPrefix+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session index: %w", err)
	}

	sessionID, err := id.ParseSessionID(raw)
	if err != nil {
		return nil, fmt.Errorf("parse indexed session id: %w", err)
	}
	return s.Find(ctx, sessionID)
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	session, err := s.Find(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+sessionID.String())
	pipe.Del(ctx, userKeyPrefix+session.UserID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
