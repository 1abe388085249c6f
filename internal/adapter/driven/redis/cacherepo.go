// Package redis implements the kvcache.Backend over a Redis server, for
// deployments where the tracker runs on multiple devices sharing one cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fittrack-app/fittrack/internal/adapter/driven/kvcache"
)

// Compile-time interface satisfaction check.
var _ kvcache.Backend = (*CacheRepo)(nil)

// CacheRepo is the Redis implementation of the kvcache.Backend interface.
// Entries are stored without a Redis-side TTL: expiry lives in the kvcache
// envelope so read-time eviction behaves the same on every backend.
type CacheRepo struct {
	client *redis.Client
}

// NewCacheRepo connects to the Redis server at redisURL and verifies the
// connection before returning.
func NewCacheRepo(redisURL string) (*CacheRepo, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &CacheRepo{client: client}, nil
}

// NewCacheRepoWithClient creates a CacheRepo from an existing client.
// Intended for tests.
func NewCacheRepoWithClient(client *redis.Client) *CacheRepo {
	return &CacheRepo{client: client}
}

// Put stores or replaces the value for key.
func (r *CacheRepo) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("put cache entry %q: %w", key, err)
	}
	return nil
}

// Fetch returns the value for key, reporting found=false when absent.
func (r *CacheRepo) Fetch(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetch cache entry %q: %w", key, err)
	}
	return value, true, nil
}

// Delete removes the entry for key. Deleting an absent key is not an error.
func (r *CacheRepo) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete cache entry %q: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix, iterating
// with SCAN so large keyspaces are not blocked.
func (r *CacheRepo) DeletePrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("delete cache entry %q: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache entries with prefix %q: %w", prefix, err)
	}
	return nil
}

// Close closes the underlying Redis connection.
func (r *CacheRepo) Close() error {
	return r.client.Close()
}
