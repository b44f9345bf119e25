package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/memorygo/vector"
)

func TestMemoryIndexQuery(t *testing.T) {
	idx := New()
	ctx := context.Background()

	err := idx.Upsert(ctx, []vector.Record{
		{ID: "a", Vector: []float32{1, 0, 0}, Metadata: map[string]any{"threadId": "t1"}},
		{ID: "b", Vector: []float32{0.9, 0.1, 0}, Metadata: map[string]any{"threadId": "t1"}},
		{ID: "c", Vector: []float32{0, 1, 0}, Metadata: map[string]any{"threadId": "t2"}},
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 2, nil)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryIndexFilter(t *testing.T) {
	idx := New()
	ctx := context.Background()

	idx.Upsert(ctx, []vector.Record{
		{ID: "a", Vector: []float32{1, 0}, Metadata: map[string]any{"threadId": "t1"}},
		{ID: "b", Vector: []float32{1, 0}, Metadata: map[string]any{"threadId": "t2"}},
	})

	results, err := idx.Query(ctx, []float32{1, 0}, 10, map[string]any{"threadId": "t2"})
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)

	// No match
	results, err = idx.Query(ctx, []float32{1, 0}, 10, map[string]any{"threadId": "t3"})
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryIndexUpsertAndDelete(t *testing.T) {
	idx := New()
	ctx := context.Background()

	idx.Upsert(ctx, []vector.Record{{ID: "a", Vector: []float32{1, 0}}})
	// Upsert overwrites
	idx.Upsert(ctx, []vector.Record{{ID: "a", Vector: []float32{0, 1}}})

	results, _ := idx.Query(ctx, []float32{0, 1}, 1, nil)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)

	assert.NoError(t, idx.Delete(ctx, []string{"a", "unknown"}))
	assert.Equal(t, 0, idx.Len())

	err := idx.Upsert(ctx, []vector.Record{{ID: "", Vector: []float32{1}}})
	assert.Error(t, err)
}
