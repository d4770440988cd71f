// Package redisstore is a BlobStore backed by Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/storage"
)

const keyNamespace = "storefront"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
}

// Store keeps blobs under "storefront:<name>" with an optional TTL.
type Store struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// New parses url, connects and verifies connectivity.
func New(ctx context.Context, url string, ttl time.Duration) (*Store, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{store: raw, raw: raw, ttl: ttl}, nil
}

func (s *Store) key(name string) string { return keyNamespace + ":" + name }

func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	b, err := s.store.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", name, err)
	}
	return b, nil
}

func (s *Store) Set(ctx context.Context, name string, body []byte) error {
	if err := s.store.Set(ctx, s.key(name), body, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	return nil
}

// Ping exposes the health-check surface.
func (s *Store) Ping(ctx context.Context) error {
	return s.store.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
