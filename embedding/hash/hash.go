// Package hash provides a deterministic offline embedding.Provider.
//
// Vectors are generated from an FNV hash of the text, so the same text always
// produces the same unit vector without any model or network dependency. It
// is the fallback provider for tests and air-gapped deployments: identical
// texts match exactly, but unrelated texts carry no semantic relationship.
package hash

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/smallnest/memorygo/embedding"
)

// DefaultDimensions matches the all-MiniLM-L6-v2 embedding size.
const DefaultDimensions = 384

// HashProvider is a deterministic, hash-based embedding provider.
type HashProvider struct {
	dimensions int
}

var _ embedding.Provider = (*HashProvider)(nil)

// New creates a provider with DefaultDimensions.
func New() *HashProvider {
	return NewWithDimensions(DefaultDimensions)
}

// NewWithDimensions creates a provider with a custom vector size.
func NewWithDimensions(dimensions int) *HashProvider {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashProvider{dimensions: dimensions}
}

// Embed creates a deterministic unit vector from the text hash.
func (p *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))

	// LCG seeded by the hash fills the vector
	seed := h.Sum64()
	vec := make([]float32, p.dimensions)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	return normalize(vec), nil
}

// EmbedBatch embeds each text sequentially; hashing is cheap enough that
// chunked concurrency buys nothing here.
func (p *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (p *HashProvider) Dimensions() int {
	return p.dimensions
}

func normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
