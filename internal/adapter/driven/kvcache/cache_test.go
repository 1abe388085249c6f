package kvcache_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fittrack-app/fittrack/internal/adapter/driven/kvcache"
)

// --- Mock backend ---

type mockBackend struct {
	mu   sync.Mutex
	data map[string][]byte

	failAll bool // When true, every operation returns an error.
	puts    int
	fetches int
}

func newMockBackend() *mockBackend {
	return &mockBackend{data: make(map[string][]byte)}
}

func (b *mockBackend) Put(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts++
	if b.failAll {
		return errors.New("disk full")
	}
	b.data[key] = value
	return nil
}

func (b *mockBackend) Fetch(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches++
	if b.failAll {
		return nil, false, errors.New("disk gone")
	}
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *mockBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failAll {
		return errors.New("disk gone")
	}
	delete(b.data, key)
	return nil
}

func (b *mockBackend) DeletePrefix(_ context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failAll {
		return errors.New("disk gone")
	}
	for k := range b.data {
		if strings.HasPrefix(k, prefix) {
			delete(b.data, k)
		}
	}
	return nil
}

func (b *mockBackend) raw(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	return v, ok
}

// --- Tests ---

func TestSetGetRoundTrip(t *testing.T) {
	backend := newMockBackend()
	cache := kvcache.New(backend)
	ctx := context.Background()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, cache.Set(ctx, "rec:1", record{Name: "morning run", Count: 3}, 0))

	var got record
	require.True(t, cache.Get(ctx, "rec:1", &got))
	assert.Equal(t, "morning run", got.Name)
	assert.Equal(t, 3, got.Count)
	assert.False(t, cache.Degraded())
}

func TestGetMissingKey(t *testing.T) {
	cache := kvcache.New(newMockBackend())

	var got string
	assert.False(t, cache.Get(context.Background(), "never-set", &got))
}

func TestExpiredEntryIsRemovedOnRead(t *testing.T) {
	backend := newMockBackend()
	cache := kvcache.New(backend)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", "value", 5*time.Millisecond))

	// Before expiry the value is readable.
	var got string
	require.True(t, cache.Get(ctx, "short", &got))
	assert.Equal(t, "value", got)

	time.Sleep(20 * time.Millisecond)

	// After expiry the read reports a miss and removes the entry.
	assert.False(t, cache.Get(ctx, "short", &got))
	_, stillThere := backend.raw(kvcache.Namespace + "short")
	assert.False(t, stillThere, "expired entry should be removed from the backend")
}

func TestEntryWithoutTTLNeverExpires(t *testing.T) {
	cache := kvcache.New(newMockBackend())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "forever", 42, 0))
	time.Sleep(10 * time.Millisecond)

	var got int
	require.True(t, cache.Get(ctx, "forever", &got))
	assert.Equal(t, 42, got)
}

func TestClearOnlyRemovesNamespacedKeys(t *testing.T) {
	backend := newMockBackend()
	cache := kvcache.New(backend)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "mine", "a", 0))
	// Simulate an unrelated application sharing the backend.
	require.NoError(t, backend.Put(ctx, "othertool:config", []byte(`{}`)))

	require.NoError(t, cache.Clear(ctx))

	var got string
	assert.False(t, cache.Get(ctx, "mine", &got))
	_, survived := backend.raw("othertool:config")
	assert.True(t, survived, "keys outside the namespace must survive Clear")
}

func TestBackendFailureDegradesToMemory(t *testing.T) {
	backend := newMockBackend()
	backend.failAll = true
	cache := kvcache.New(backend)
	ctx := context.Background()

	// Set succeeds via the in-memory fallback despite the dead backend.
	require.NoError(t, cache.Set(ctx, "k", "v", 0))
	assert.True(t, cache.Degraded())

	var got string
	require.True(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, "v", got)

	// Once degraded, the backend is no longer consulted.
	before := backend.puts
	require.NoError(t, cache.Set(ctx, "k2", "v2", 0))
	assert.Equal(t, before, backend.puts)
}

func TestNilBackendIsDegradedFromStart(t *testing.T) {
	cache := kvcache.New(nil)
	ctx := context.Background()

	assert.True(t, cache.Degraded())
	require.NoError(t, cache.Set(ctx, "k", 1, 0))

	var got int
	require.True(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, 1, got)
}

func TestMalformedEntryIsTreatedAsMiss(t *testing.T) {
	backend := newMockBackend()
	cache := kvcache.New(backend)
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, kvcache.Namespace+"bad", []byte("not json")))

	var got string
	assert.False(t, cache.Get(ctx, "bad", &got))
	_, stillThere := backend.raw(kvcache.Namespace + "bad")
	assert.False(t, stillThere, "malformed entry should be removed")
}

func TestRemove(t *testing.T) {
	cache := kvcache.New(newMockBackend())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", 0))
	require.NoError(t, cache.Remove(ctx, "k"))

	var got string
	assert.False(t, cache.Get(ctx, "k", &got))
}
