package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/memorygo/vector"
)

func TestChromemIndex(t *testing.T) {
	idx, err := NewChromemIndex(ChromemOptions{Collection: "test"})
	require.NoError(t, err)

	ctx := context.Background()

	// Query on an empty collection is empty, not an error
	results, err := idx.Query(ctx, []float32{1, 0, 0}, 5, nil)
	assert.NoError(t, err)
	assert.Empty(t, results)

	err = idx.Upsert(ctx, []vector.Record{
		{ID: "a", Vector: []float32{1, 0, 0}, Metadata: map[string]any{"threadId": "t1", "contentPreview": "cats"}},
		{ID: "b", Vector: []float32{0, 1, 0}, Metadata: map[string]any{"threadId": "t1", "contentPreview": "dogs"}},
		{ID: "c", Vector: []float32{1, 0, 0}, Metadata: map[string]any{"threadId": "t2", "contentPreview": "birds"}},
	})
	require.NoError(t, err)

	// topK larger than the collection is clamped
	results, err = idx.Query(ctx, []float32{1, 0, 0}, 10, nil)
	assert.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)

	// Metadata filter scopes the search
	results, err = idx.Query(ctx, []float32{1, 0, 0}, 10, map[string]any{"threadId": "t2"})
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "c", results[0].ID)
	assert.Equal(t, "t2", results[0].Metadata["threadId"])

	// Delete
	assert.NoError(t, idx.Delete(ctx, []string{"a"}))
	results, err = idx.Query(ctx, []float32{1, 0, 0}, 10, map[string]any{"threadId": "t1"})
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}
