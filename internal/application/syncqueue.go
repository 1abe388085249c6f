// Package application contains the use-case services: the sync queue, the
// reconciler that drains it, the connectivity-driven sync loop, and the
// data orchestrator the UI talks to.
package application

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fittrack-app/fittrack/internal/domain/model"
	"github.com/fittrack-app/fittrack/internal/domain/port/driven"
)

// syncQueueKey is the fixed cache key holding the serialized queue. The list
// is always persisted whole, never item by item, so a crash can never leave
// a torn queue behind.
const syncQueueKey = "syncqueue"

// SyncQueue is the durable FIFO list of mutations pending application to the
// remote service. It is persisted through the cache store on every change.
type SyncQueue struct {
	cache driven.CacheStore
	mu    sync.Mutex
}

// NewSyncQueue creates a SyncQueue persisted through the given cache store.
func NewSyncQueue(cache driven.CacheStore) *SyncQueue {
	return &SyncQueue{cache: cache}
}

// Enqueue appends a new pending mutation and persists the whole list.
func (q *SyncQueue) Enqueue(ctx context.Context, action model.SyncAction, collection string, payload json.RawMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.load(ctx)
	items = append(items, model.SyncItem{
		ID:            uuid.NewString(),
		SchemaVersion: model.SyncSchemaVersion,
		Action:        action,
		Collection:    collection,
		Payload:       payload,
		EnqueuedAt:    time.Now().UTC(),
		RetryCount:    0,
	})
	return q.persist(ctx, items)
}

// PeekAll returns a FIFO snapshot of the queue, recomputed from storage on
// every call. Mutating the returned slice does not affect the queue.
func (q *SyncQueue) PeekAll(ctx context.Context) []model.SyncItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// Len returns the number of pending items.
func (q *SyncQueue) Len(ctx context.Context) int {
	return len(q.PeekAll(ctx))
}

// commitDrain atomically replaces the first processed items of the queue
// with survivors, keeping anything enqueued while the drain pass was
// running. Only the reconciler calls this, and at most one drain runs at a
// time, so the current list is always the drained snapshot plus a tail of
// newly enqueued items.
func (q *SyncQueue) commitDrain(ctx context.Context, processed int, survivors []model.SyncItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	current := q.load(ctx)
	if processed > len(current) {
		processed = len(current)
	}
	next := append(survivors, current[processed:]...)
	return q.persist(ctx, next)
}

// load reads the persisted list; a missing or malformed entry is an empty
// queue.
func (q *SyncQueue) load(ctx context.Context) []model.SyncItem {
	var items []model.SyncItem
	if !q.cache.Get(ctx, syncQueueKey, &items) {
		return nil
	}
	return items
}

// persist writes the whole list under the fixed key with no expiry.
func (q *SyncQueue) persist(ctx context.Context, items []model.SyncItem) error {
	if items == nil {
		items = []model.SyncItem{}
	}
	return q.cache.Set(ctx, syncQueueKey, items, 0)
}
