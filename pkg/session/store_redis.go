package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/lumenhq/console/pkg/observability"
)

const redisKeyPrefix = "console:session:"

// RedisStore keeps sessions in Redis so multiple replicas can share
// logins. Expiry is delegated to Redis key TTLs; there is no sweep.
type RedisStore struct {
	client *redis.Client
	logger *observability.Logger
}

// NewRedisStore connects to Redis with the given URL (redis://host:port/db)
func NewRedisStore(ctx context.Context, redisURL string, logger *observability.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, logger: logger}, nil
}

// Client exposes the underlying connection for health checks
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Create stores a session with a TTL matching its expiry
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if err := s.client.Set(ctx, redisKeyPrefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get returns the session for id, or ErrNotFound once the key has expired
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("dropping undecodable session")
		}
		s.client.Del(ctx, redisKeyPrefix+id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close releases the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
