package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fittrack-app/fittrack/internal/domain/model"
)

// memCache is the minimal CacheStore needed for white-box queue tests.
type memCache struct {
	data map[string][]byte
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Get(_ context.Context, key string, dest any) bool {
	raw, ok := c.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *memCache) Remove(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memCache) Clear(_ context.Context) error {
	c.data = make(map[string][]byte)
	return nil
}

func (c *memCache) Degraded() bool { return false }

func TestCommitDrainKeepsItemsEnqueuedMidDrain(t *testing.T) {
	ctx := context.Background()
	queue := NewSyncQueue(&memCache{data: make(map[string][]byte)})

	require.NoError(t, queue.Enqueue(ctx, model.SyncActionUpdate, model.CollectionUsers, []byte(`{"n":"a"}`)))
	require.NoError(t, queue.Enqueue(ctx, model.SyncActionCreate, model.CollectionWeights, []byte(`{"n":"b"}`)))

	snapshot := queue.PeekAll(ctx)
	require.Len(t, snapshot, 2)

	// A write lands while the drain pass is still applying the snapshot.
	require.NoError(t, queue.Enqueue(ctx, model.SyncActionCreate, model.CollectionSessions, []byte(`{"n":"c"}`)))

	// The drain applied item a and kept item b for retry.
	survivor := snapshot[1]
	survivor.RetryCount = 1
	require.NoError(t, queue.commitDrain(ctx, len(snapshot), []model.SyncItem{survivor}))

	items := queue.PeekAll(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, model.CollectionWeights, items[0].Collection)
	assert.Equal(t, 1, items[0].RetryCount)
	assert.Equal(t, model.CollectionSessions, items[1].Collection, "mid-drain enqueue must survive the commit")
}

func TestCommitDrainWithEmptySurvivorsEmptiesQueue(t *testing.T) {
	ctx := context.Background()
	queue := NewSyncQueue(&memCache{data: make(map[string][]byte)})

	require.NoError(t, queue.Enqueue(ctx, model.SyncActionCreate, model.CollectionSessions, []byte(`{}`)))
	snapshot := queue.PeekAll(ctx)

	require.NoError(t, queue.commitDrain(ctx, len(snapshot), nil))
	assert.Empty(t, queue.PeekAll(ctx))
}
