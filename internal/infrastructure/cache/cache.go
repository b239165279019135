package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/multibrand-site/internal/config"
	"github.com/redis/go-redis/v9"
)

// Cache is a string key-value cache with per-entry TTL.
// Get returns "" with a nil error on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// NewRedisClient connects to Redis when REDIS_ADDR is set.
// It returns nil when Redis is not configured or unreachable so callers fall back to memory.
func NewRedisClient(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		slog.Info("redis not configured, using memory cache")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, using memory cache", "addr", cfg.RedisAddr, "error", err)
		_ = rdb.Close()
		return nil
	}
	slog.Info("connected to redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return rdb
}

// New returns a Redis-backed cache, or a memory cache when client is nil.
func New(client *redis.Client) Cache {
	if client == nil {
		return NewMemory()
	}
	return &redisCache{client: client}
}

type redisCache struct {
	client *redis.Client
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

type item struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// Memory is an in-process Cache. Expired entries are dropped on read.
type Memory struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]item), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if !ok {
		return "", nil
	}
	if !it.expiresAt.IsZero() && !m.now().Before(it.expiresAt) {
		delete(m.items, key)
		return "", nil
	}
	return it.value, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	it := item{value: value}
	if ttl > 0 {
		it.expiresAt = m.now().Add(ttl)
	}
	m.items[key] = it
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}
