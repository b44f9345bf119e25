package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/memorygo/kv"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)

	assert.NoError(t, s.Set(ctx, "k", []byte("v1")))
	got, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// Overwrite
	assert.NoError(t, s.Set(ctx, "k", []byte("v2")))
	got, _ = s.Get(ctx, "k")
	assert.Equal(t, []byte("v2"), got)

	assert.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)

	// Deleting a missing key is fine
	assert.NoError(t, s.Delete(ctx, "k"))
}

func TestMemoryStoreList(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Range over a missing list is empty, not an error
	vals, err := s.ListRange(ctx, "l", 0, -1)
	assert.NoError(t, err)
	assert.Empty(t, vals)

	for _, v := range []string{"a", "b", "c"} {
		assert.NoError(t, s.ListPush(ctx, "l", v))
	}

	// Push prepends: newest first
	vals, _ = s.ListRange(ctx, "l", 0, -1)
	assert.Equal(t, []string{"c", "b", "a"}, vals)

	vals, _ = s.ListRange(ctx, "l", 0, 1)
	assert.Equal(t, []string{"c", "b"}, vals)

	vals, _ = s.ListRange(ctx, "l", -2, -1)
	assert.Equal(t, []string{"b", "a"}, vals)
}
