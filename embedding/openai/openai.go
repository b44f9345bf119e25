// Package openai provides an embedding.Provider backed by the OpenAI
// embeddings API.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smallnest/memorygo/embedding"
)

// OpenAIProvider implements embedding.Provider on the OpenAI API.
type OpenAIProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

var _ embedding.Provider = (*OpenAIProvider)(nil)

// OpenAIOptions configuration for the OpenAI embeddings client
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string                // Optional, for OpenAI-compatible endpoints
	Model      openai.EmbeddingModel // Default text-embedding-3-small
	Dimensions int                   // Default 1536 (text-embedding-3-small)
}

// NewOpenAIProvider creates a new OpenAI embedding provider.
func NewOpenAIProvider(opts OpenAIOptions) *OpenAIProvider {
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = openai.SmallEmbedding3
	}
	dimensions := opts.Dimensions
	if dimensions <= 0 {
		dimensions = 1536
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		dimensions: dimensions,
	}
}

// Embed returns the embedding for a single text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds multiple texts in one API call.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}
