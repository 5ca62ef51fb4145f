// Package cache provides an optional redis-backed cache for the dashboard
// aggregates. When no address is configured the noop store is used and
// every lookup misses.
package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type redisStore struct {
	rdb *goredis.Client
}

// NewRedisStore connects to addr and verifies the connection with a ping.
func NewRedisStore(addr string) (Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{rdb: rdb}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	_ = s.rdb.Set(ctx, key, value, ttl).Err()
}

type noopStore struct{}

// NewNoopStore returns a store that never hits.
func NewNoopStore() Store {
	return noopStore{}
}

func (noopStore) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }

func (noopStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {}
