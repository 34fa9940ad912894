package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CacheService is a small JSON cache used for published-assessment lookups
// on the evaluation hot path.
type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

type redisCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, logger *slog.Logger) CacheService {
	return &redisCache{
		client: client,
		logger: logger,
	}
}

func (r *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", "key", key, "error", err)
		return err
	}
	return nil
}

func (r *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		r.logger.Warn("cache get failed", "key", key, "error", err)
		return err
	}
	return json.Unmarshal(payload, dest)
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// NoopCache satisfies CacheService when no Redis is configured.
type NoopCache struct{}

func (NoopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (NoopCache) Get(ctx context.Context, key string, dest interface{}) error {
	return ErrCacheMiss
}

func (NoopCache) Delete(ctx context.Context, key string) error {
	return nil
}
