package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces session keys in a shared Redis.
const DefaultKeyPrefix = "taskflow:session:"

// RedisRepository stores sessions as JSON values, one key per user.
type RedisRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRepository creates a repository on client. A zero ttl stores keys
// without expiry.
func NewRedisRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisRepository) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

// Get loads the user's session, or nil if there is none.
func (r *RedisRepository) Get(ctx context.Context, userID int64) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("session get error: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session unmarshal error: %w", err)
	}
	return &s, nil
}

// Set stores s for the user, replacing any previous session.
func (r *RedisRepository) Set(ctx context.Context, userID int64, s *Session) error {
	if s == nil {
		return r.Clear(ctx, userID)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session marshal error: %w", err)
	}

	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("session set error: %w", err)
	}
	return nil
}

// Clear removes the user's session.
func (r *RedisRepository) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("session delete error: %w", err)
	}
	return nil
}

// Ping checks if the Redis connection is healthy.
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}

var _ Repository = (*RedisRepository)(nil)
