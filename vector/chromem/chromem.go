// Package chromem provides a vector.Index backed by chromem-go, a pure-Go
// embedded vector database. It needs no external service, which makes it a
// good production default for single-process deployments.
package chromem

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/smallnest/memorygo/vector"
)

// ChromemIndex implements vector.Index on a chromem-go collection.
type ChromemIndex struct {
	db  *chromem.DB
	col *chromem.Collection
}

var _ vector.Index = (*ChromemIndex)(nil)

// ChromemOptions configuration for the chromem backend
type ChromemOptions struct {
	Collection string // Collection name, default "messages"
	Path       string // Optional persistence directory; empty keeps data in memory
}

// NewChromemIndex creates a new chromem-backed index.
func NewChromemIndex(opts ChromemOptions) (*ChromemIndex, error) {
	name := opts.Collection
	if name == "" {
		name = "messages"
	}

	var db *chromem.DB
	if opts.Path != "" {
		var err error
		db, err = chromem.NewPersistentDB(opts.Path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open persistent db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	// Embeddings are always supplied by the caller, so no embedding func.
	col, err := db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	return &ChromemIndex{db: db, col: col}, nil
}

// Upsert inserts or overwrites records by ID.
func (idx *ChromemIndex) Upsert(ctx context.Context, records []vector.Record) error {
	for _, r := range records {
		doc := chromem.Document{
			ID:        r.ID,
			Content:   stringMeta(r.Metadata, "contentPreview"),
			Embedding: r.Vector,
			Metadata:  toStringMap(r.Metadata),
		}
		if err := idx.col.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("failed to add document %s: %w", r.ID, err)
		}
	}
	return nil
}

// Query returns up to topK hits ordered by descending cosine similarity.
func (idx *ChromemIndex) Query(ctx context.Context, vec []float32, topK int, filter map[string]any) ([]vector.QueryResult, error) {
	// chromem rejects nResults larger than the collection size.
	if n := idx.col.Count(); topK > n {
		topK = n
	}
	if topK <= 0 {
		return []vector.QueryResult{}, nil
	}

	hits, err := idx.col.QueryEmbedding(ctx, vec, topK, toStringMap(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query failed: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, vector.QueryResult{
			ID:       h.ID,
			Score:    float64(h.Similarity),
			Metadata: toAnyMap(h.Metadata),
		})
	}
	return results, nil
}

// Delete removes records by ID.
func (idx *ChromemIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := idx.col.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("chromem delete failed: %w", err)
	}
	return nil
}

func toStringMap(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

func toAnyMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func stringMeta(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}
