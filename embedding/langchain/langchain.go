// Package langchain adapts langchaingo embedders to embedding.Provider, so
// any model langchaingo supports can back semantic recall.
package langchain

import (
	"context"

	lcembeddings "github.com/tmc/langchaingo/embeddings"

	"github.com/smallnest/memorygo/embedding"
)

// LangChainProvider wraps a langchaingo embeddings.Embedder.
type LangChainProvider struct {
	embedder   lcembeddings.Embedder
	dimensions int
}

var _ embedding.Provider = (*LangChainProvider)(nil)

// NewLangChainProvider creates an adapter around a langchaingo embedder.
// dimensions must match the wrapped model's output size.
func NewLangChainProvider(embedder lcembeddings.Embedder, dimensions int) *LangChainProvider {
	return &LangChainProvider{embedder: embedder, dimensions: dimensions}
}

// Embed returns the embedding for a single text.
func (p *LangChainProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out, nil
}

// EmbedBatch embeds multiple texts through the wrapped embedder.
func (p *LangChainProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(vecs))
	for i, vec := range vecs {
		out[i] = make([]float32, len(vec))
		for j, v := range vec {
			out[i][j] = float32(v)
		}
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (p *LangChainProvider) Dimensions() int {
	return p.dimensions
}
