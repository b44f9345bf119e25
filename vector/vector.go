package vector

import (
	"context"
	"math"
)

// Record is a vector plus its metadata, keyed by ID.
type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// QueryResult is a single similarity hit. Score is only populated on query
// results.
type QueryResult struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// Index is the vector index contract.
//
// Upsert overwrites records with matching IDs. Query returns up to topK hits
// ordered by descending score; filter entries must all match a record's
// metadata (equality on the string form) for it to qualify. Delete ignores
// unknown IDs.
type Index interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vec []float32, topK int, filter map[string]any) ([]QueryResult, error)
	Delete(ctx context.Context, ids []string) error
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
