package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/memorygo/kv"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := NewSqliteStore(SqliteOptions{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSqliteStoreSetGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)

	assert.NoError(t, store.Set(ctx, "message:1", []byte("hello")))
	got, err := store.Get(ctx, "message:1")
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	// Upsert overwrites
	assert.NoError(t, store.Set(ctx, "message:1", []byte("world")))
	got, _ = store.Get(ctx, "message:1")
	assert.Equal(t, []byte("world"), got)

	assert.NoError(t, store.Delete(ctx, "message:1"))
	_, err = store.Get(ctx, "message:1")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestSqliteStoreList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	vals, err := store.ListRange(ctx, "l", 0, -1)
	assert.NoError(t, err)
	assert.Empty(t, vals)

	for _, v := range []string{"a", "b", "c"} {
		assert.NoError(t, store.ListPush(ctx, "l", v))
	}

	// Same newest-first ordering as the Redis backend
	vals, err = store.ListRange(ctx, "l", 0, -1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, vals)

	vals, err = store.ListRange(ctx, "l", 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, vals)

	vals, err = store.ListRange(ctx, "l", -1, -1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a"}, vals)

	// Delete removes the list too
	assert.NoError(t, store.Delete(ctx, "l"))
	vals, _ = store.ListRange(ctx, "l", 0, -1)
	assert.Empty(t, vals)
}
