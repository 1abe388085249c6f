package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutFetchRoundTrip(t *testing.T) {
	repo := NewCacheRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "fittrack:profile:u1", []byte(`{"a":1}`)))

	value, found, err := repo.Fetch(ctx, "fittrack:profile:u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte(`{"a":1}`), value)
}

func TestPutReplacesExistingValue(t *testing.T) {
	repo := NewCacheRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "k", []byte("old")))
	require.NoError(t, repo.Put(ctx, "k", []byte("new")))

	value, found, err := repo.Fetch(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("new"), value)
}

func TestFetchMissingKey(t *testing.T) {
	repo := NewCacheRepo(setupTestDB(t))

	_, found, err := repo.Fetch(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDelete(t *testing.T) {
	repo := NewCacheRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "k", []byte("v")))
	require.NoError(t, repo.Delete(ctx, "k"))

	_, found, err := repo.Fetch(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing key is not an error.
	require.NoError(t, repo.Delete(ctx, "k"))
}

func TestDeletePrefix(t *testing.T) {
	repo := NewCacheRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "fittrack:a", []byte("1")))
	require.NoError(t, repo.Put(ctx, "fittrack:b", []byte("2")))
	require.NoError(t, repo.Put(ctx, "other:c", []byte("3")))

	require.NoError(t, repo.DeletePrefix(ctx, "fittrack:"))

	_, found, err := repo.Fetch(ctx, "fittrack:a")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = repo.Fetch(ctx, "other:c")
	require.NoError(t, err)
	assert.True(t, found, "keys outside the prefix must survive")
}

func TestDeletePrefixEscapesWildcards(t *testing.T) {
	repo := NewCacheRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "a_b:x", []byte("1")))
	require.NoError(t, repo.Put(ctx, "aXb:y", []byte("2")))

	// "_" must match literally, not as a single-character wildcard.
	require.NoError(t, repo.DeletePrefix(ctx, "a_b:"))

	_, found, err := repo.Fetch(ctx, "aXb:y")
	require.NoError(t, err)
	assert.True(t, found)
}
