// Package memory provides an in-process vector.Index for tests and local
// development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/smallnest/memorygo/vector"
)

// MemoryIndex is an in-process implementation of vector.Index using brute
// force cosine similarity.
type MemoryIndex struct {
	mu      sync.RWMutex
	records map[string]vector.Record
}

var _ vector.Index = (*MemoryIndex)(nil)

// New creates an empty in-process index.
func New() *MemoryIndex {
	return &MemoryIndex{records: make(map[string]vector.Record)}
}

// Upsert inserts or overwrites records by ID.
func (idx *MemoryIndex) Upsert(ctx context.Context, records []vector.Record) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record with empty id")
		}
		idx.records[r.ID] = r
	}
	return nil
}

// Query returns up to topK hits ordered by descending cosine similarity.
func (idx *MemoryIndex) Query(ctx context.Context, vec []float32, topK int, filter map[string]any) ([]vector.QueryResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]vector.QueryResult, 0, len(idx.records))
	for _, r := range idx.records {
		if !matchesFilter(r.Metadata, filter) {
			continue
		}
		results = append(results, vector.QueryResult{
			ID:       r.ID,
			Score:    vector.CosineSimilarity(vec, r.Vector),
			Metadata: r.Metadata,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Delete removes records by ID, ignoring unknown IDs.
func (idx *MemoryIndex) Delete(ctx context.Context, ids []string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, id := range ids {
		delete(idx.records, id)
	}
	return nil
}

// Len returns the number of stored records.
func (idx *MemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

func matchesFilter(metadata, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok || fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}
