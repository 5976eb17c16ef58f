package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStateStore implements StateStore using Redis. Useful for kiosk
// deployments where a site-local Redis instance outlives the client process.
type RedisStateStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisStateConfig holds configuration for the Redis state store.
type RedisStateConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisStateStore creates a Redis-backed state store.
func NewRedisStateStore(cfg RedisStateConfig) (*RedisStateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "vtz:state"
	}

	log.Printf("[RedisStateStore] Initialized - DB:%d, prefix:%s", cfg.DB, keyPrefix)
	return &RedisStateStore{client: client, keyPrefix: keyPrefix}, nil
}

func (s *RedisStateStore) fullKey(key string) string {
	return s.keyPrefix + ":" + key
}

// Get retrieves a snapshot by key.
func (s *RedisStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get state %q: %w", key, err)
	}
	return value, nil
}

// Set rewrites the snapshot under key wholesale. Snapshots never expire;
// the engine owns their lifecycle.
func (s *RedisStateStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.fullKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set state %q: %w", key, err)
	}
	return nil
}

// Delete removes a snapshot by key.
func (s *RedisStateStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete state %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStateStore) Close() error {
	return s.client.Close()
}

var _ StateStore = (*RedisStateStore)(nil)
