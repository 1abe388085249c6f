// Package kvcache implements the CacheStore port: an expiring JSON key-value
// cache over a pluggable persistent backend, with a silent in-memory fallback
// when the backend is unavailable.
package kvcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fittrack-app/fittrack/internal/domain/port/driven"
)

// Namespace prefixes every key before it reaches the backend, so Clear can
// wipe the application's own entries without touching unrelated data in a
// shared store.
const Namespace = "fittrack:"

// Backend is the persistent store underneath the cache. Implementations
// store opaque bytes; expiry and envelope handling live in the cache itself
// so semantics are identical across backends.
type Backend interface {
	Put(ctx context.Context, key string, value []byte) error
	Fetch(ctx context.Context, key string) (value []byte, found bool, err error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// entry is the stored envelope around every cached value.
type entry struct {
	Data      json.RawMessage `json:"data"`
	WrittenAt time.Time       `json:"written_at"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// Compile-time interface satisfaction check.
var _ driven.CacheStore = (*Cache)(nil)

// Cache is the CacheStore implementation. A nil backend means memory-only
// operation from the start (degraded from construction).
type Cache struct {
	backend  Backend
	degraded atomic.Bool

	mu  sync.RWMutex
	mem map[string][]byte
}

// New creates a Cache over the given backend. Pass nil to run purely in
// memory.
func New(backend Backend) *Cache {
	c := &Cache{
		backend: backend,
		mem:     make(map[string][]byte),
	}
	if backend == nil {
		c.degraded.Store(true)
	}
	return c
}

// Set stores value under key with an optional ttl (0 = never expires).
// Backend failures degrade to the in-memory map; an error is returned only
// if marshaling fails, since the in-memory path itself cannot fail.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %q: %w", key, err)
	}

	now := time.Now().UTC()
	e := entry{Data: data, WrittenAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		e.ExpiresAt = &exp
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal cache entry for %q: %w", key, err)
	}

	nk := Namespace + key
	if !c.degraded.Load() {
		err := c.backend.Put(ctx, nk, raw)
		if err == nil {
			return nil
		}
		c.degrade("put", key, err)
	}

	c.mu.Lock()
	c.mem[nk] = raw
	c.mu.Unlock()
	return nil
}

// Get unmarshals the cached value for key into dest. Missing, malformed, and
// expired entries all report false; expired entries are removed on the way.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	nk := Namespace + key

	raw, found := c.fetch(ctx, nk)
	if !found {
		return false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		slog.Warn("malformed cache entry, treating as miss", "key", key, "error", err)
		_ = c.Remove(ctx, key)
		return false
	}

	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		_ = c.Remove(ctx, key)
		return false
	}

	if err := json.Unmarshal(e.Data, dest); err != nil {
		slog.Warn("cache value does not match requested type, treating as miss", "key", key, "error", err)
		return false
	}
	return true
}

// Remove deletes the entry for key from whichever stores hold it.
func (c *Cache) Remove(ctx context.Context, key string) error {
	nk := Namespace + key

	c.mu.Lock()
	delete(c.mem, nk)
	c.mu.Unlock()

	if c.degraded.Load() {
		return nil
	}
	if err := c.backend.Delete(ctx, nk); err != nil {
		c.degrade("delete", key, err)
	}
	return nil
}

// Clear removes all entries under the application namespace. Keys outside
// the namespace are never touched.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	for k := range c.mem {
		delete(c.mem, k)
	}
	c.mu.Unlock()

	if c.degraded.Load() {
		return nil
	}
	if err := c.backend.DeletePrefix(ctx, Namespace); err != nil {
		c.degrade("clear", "", err)
	}
	return nil
}

// Degraded reports whether the cache has fallen back to memory-only mode.
func (c *Cache) Degraded() bool {
	return c.degraded.Load()
}

// fetch reads the raw envelope for a namespaced key, falling back to memory
// when the backend is gone.
func (c *Cache) fetch(ctx context.Context, nk string) ([]byte, bool) {
	if !c.degraded.Load() {
		raw, found, err := c.backend.Fetch(ctx, nk)
		if err == nil {
			return raw, found
		}
		c.degrade("fetch", nk, err)
	}

	c.mu.RLock()
	raw, ok := c.mem[nk]
	c.mu.RUnlock()
	return raw, ok
}

// degrade marks the backend unusable. Availability wins over durability:
// entries already persisted become unreachable until restart, but every
// operation keeps working against the in-memory map.
func (c *Cache) degrade(op, key string, err error) {
	if c.degraded.CompareAndSwap(false, true) {
		slog.Warn("cache backend unavailable, falling back to in-memory store",
			"op", op,
			"key", key,
			"error", err,
		)
	}
}
