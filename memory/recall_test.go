package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/memorygo/embedding/hash"
	kvmem "github.com/smallnest/memorygo/kv/memory"
	"github.com/smallnest/memorygo/log"
	"github.com/smallnest/memorygo/vector"
)

// brokenIndex accepts writes but fails every query.
type brokenIndex struct{}

func (brokenIndex) Upsert(ctx context.Context, records []vector.Record) error { return nil }

func (brokenIndex) Query(ctx context.Context, vec []float32, topK int, filter map[string]any) ([]vector.QueryResult, error) {
	return nil, errors.New("index offline")
}

func (brokenIndex) Delete(ctx context.Context, ids []string) error { return nil }

// brokenEmbedder fails every call.
type brokenEmbedder struct{}

func (brokenEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("provider offline")
}

func (brokenEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("provider offline")
}

func (brokenEmbedder) Dimensions() int { return 4 }

func seedThread(t *testing.T, store *Store, contents []string) string {
	t.Helper()
	thread, err := store.CreateThread(context.Background(), nil)
	require.NoError(t, err)
	for _, c := range contents {
		_, err := store.AddMessage(context.Background(), thread.ID, c, RoleUser, TypeText, nil)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	store.Sync()
	return thread.ID
}

func TestSemanticRecallVectorHit(t *testing.T) {
	store, _ := newTestStore(t, nil)
	threadID := seedThread(t, store, []string{
		"good morning",
		"quantum entanglement experiments",
		"lunch plans for tomorrow",
		"weekend hiking trip",
		"budget review notes",
	})

	msgs, err := store.GetMessages(context.Background(), threadID, &GetMessagesOptions{
		SemanticQuery: "quantum entanglement experiments",
	})
	require.NoError(t, err)
	require.NotEmpty(t, msgs)

	contents := make([]string, len(msgs))
	for i, m := range msgs {
		contents[i] = m.Content
	}
	assert.Contains(t, contents, "quantum entanglement experiments")
	// Default MessageRange 4 pulls in two neighbors on each side
	assert.Contains(t, contents, "good morning")
	assert.Contains(t, contents, "lunch plans for tomorrow")
	assert.Contains(t, contents, "weekend hiking trip")

	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
	}
}

func TestSemanticRecallTextOverlapFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SemanticRecall = &SemanticRecallConfig{TopK: 2}
	cfg.Logger = log.NewNoOpLogger()

	store, err := NewStore(StoreOptions{
		KV:       kvmem.New(),
		Vector:   brokenIndex{},
		Embedder: hash.New(),
		Config:   cfg,
	})
	require.NoError(t, err)

	threadID := seedThread(t, store, []string{
		"I adopted two cats last spring",
		"the weather is terrible",
		"my cats knocked over a plant",
		"meeting moved to Thursday",
	})

	msgs, err := store.GetMessages(context.Background(), threadID, &GetMessagesOptions{
		SemanticQuery: "tell me about my cats",
	})
	require.NoError(t, err)
	require.NotEmpty(t, msgs)

	var found bool
	for _, m := range msgs {
		if m.Content == "my cats knocked over a plant" {
			found = true
		}
	}
	assert.True(t, found, "text-overlap fallback should surface cat messages")
}

func TestSemanticRecallEmbedderDownFallsBackToRecency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SemanticRecall = &SemanticRecallConfig{}
	cfg.LastMessages = 2
	cfg.Logger = log.NewNoOpLogger()

	store, err := NewStore(StoreOptions{
		KV:       kvmem.New(),
		Vector:   brokenIndex{},
		Embedder: brokenEmbedder{},
		Config:   cfg,
	})
	require.NoError(t, err)

	threadID := seedThread(t, store, []string{"a", "b", "c", "d"})

	msgs, err := store.GetMessages(context.Background(), threadID, &GetMessagesOptions{
		SemanticQuery: "anything",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "c", msgs[0].Content)
	assert.Equal(t, "d", msgs[1].Content)
}

func TestSemanticRecallEmptyThread(t *testing.T) {
	store, _ := newTestStore(t, nil)
	thread, _ := store.CreateThread(context.Background(), nil)

	msgs, err := store.GetMessages(context.Background(), thread.ID, &GetMessagesOptions{
		SemanticQuery: "anything at all",
	})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

// lowScoreIndex returns every mirrored ID with a fixed score and counts
// queries, so threshold behavior can be pinned down.
type lowScoreIndex struct {
	mu      sync.Mutex
	ids     []string
	queries int
	score   float64
}

func (idx *lowScoreIndex) Upsert(ctx context.Context, records []vector.Record) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, r := range records {
		idx.ids = append(idx.ids, r.ID)
	}
	return nil
}

func (idx *lowScoreIndex) Query(ctx context.Context, vec []float32, topK int, filter map[string]any) ([]vector.QueryResult, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.queries++

	results := make([]vector.QueryResult, 0, len(idx.ids))
	for _, id := range idx.ids {
		if len(results) == topK {
			break
		}
		results = append(results, vector.QueryResult{ID: id, Score: idx.score})
	}
	return results, nil
}

func (idx *lowScoreIndex) Delete(ctx context.Context, ids []string) error { return nil }

func TestSemanticRecallRelaxedRetry(t *testing.T) {
	// Hits score below the 0.7 threshold but above the relaxed 0.56
	idx := &lowScoreIndex{score: 0.65}

	cfg := DefaultConfig()
	cfg.SemanticRecall = &SemanticRecallConfig{}
	cfg.Logger = log.NewNoOpLogger()

	store, err := NewStore(StoreOptions{
		KV:       kvmem.New(),
		Vector:   idx,
		Embedder: hash.New(),
		Config:   cfg,
	})
	require.NoError(t, err)

	threadID := seedThread(t, store, []string{"alpha", "beta", "gamma"})

	msgs, err := store.GetMessages(context.Background(), threadID, &GetMessagesOptions{
		SemanticQuery: "beta",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msgs)

	// The strict query found nothing, the relaxed retry recovered the hits
	idx.mu.Lock()
	queries := idx.queries
	idx.mu.Unlock()
	assert.Equal(t, 2, queries)
}

func TestSemanticRecallConfigDefaults(t *testing.T) {
	cfg := &SemanticRecallConfig{}
	cfg.normalize()
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 4, cfg.MessageRange)
	assert.Equal(t, 0.7, cfg.Threshold)
	assert.Equal(t, 50, cfg.ScanLimit)
}

func TestPreprocessQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"what did I say about the budget?", "say about budget?"},
		{"tell me about my cats", "about my cats"},
		{"budget", "budget"},
		// Stripping everything falls back to the raw query
		{"what is that", "what is that"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, preprocessQuery(tt.in), "query %q", tt.in)
	}
}

func TestTextOverlapScore(t *testing.T) {
	// Full word overlap plus substring bonus
	assert.InDelta(t, 1.2, textOverlapScore("cats", "I love cats"), 0.001)
	// Half the query words present, no substring match
	assert.InDelta(t, 0.5, textOverlapScore("cats dogs", "dogs bark loudly"), 0.001)
	assert.Equal(t, 0.0, textOverlapScore("", "anything"))
	assert.Equal(t, 0.0, textOverlapScore("zebra", "no match here"))
}
