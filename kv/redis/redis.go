package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/memorygo/kv"
)

// RedisStore implements kv.Store using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ kv.Store = (*RedisStore)(nil)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Optional key namespace, e.g. "tenant-a:"
	TTL      time.Duration // Expiration for keys and lists, default 0 (no expiration)
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	return &RedisStore{
		client: client,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
	}
}

// NewRedisStoreWithClient wraps an existing client, useful when the
// application already maintains a connection pool.
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

// Set stores a value under a key.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, kv.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return data, nil
}

// Delete removes a key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// ListPush prepends a value to the list stored under key.
func (s *RedisStore) ListPush(ctx context.Context, key string, value string) error {
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, s.key(key), value)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(key), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push to list %s: %w", key, err)
	}
	return nil
}

// ListRange returns list elements between start and stop inclusive.
func (s *RedisStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := s.client.LRange(ctx, s.key(key), start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to range list %s: %w", key, err)
	}
	return vals, nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
