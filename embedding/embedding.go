package embedding

import (
	"context"
	"fmt"
	"sync"
)

// DefaultBatchChunkSize bounds how many texts are embedded concurrently.
const DefaultBatchChunkSize = 16

// Provider is the text embedding capability.
type Provider interface {
	// Embed returns a fixed-dimension vector for the text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds multiple texts, preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// Batch embeds texts through p in chunks of DefaultBatchChunkSize. Items
// within a chunk are embedded concurrently; chunks run sequentially to bound
// peak concurrency against the provider.
//
// Providers with a native batch endpoint should implement EmbedBatch
// directly; Batch is for providers that only expose single-text embedding.
func Batch(ctx context.Context, p Provider, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	for lo := 0; lo < len(texts); lo += DefaultBatchChunkSize {
		hi := lo + DefaultBatchChunkSize
		if hi > len(texts) {
			hi = len(texts)
		}

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			firstErr error
		)
		for i := lo; i < hi; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				vec, err := p.Embed(ctx, texts[i])
				mu.Lock()
				defer mu.Unlock()
				if err != nil && firstErr == nil {
					firstErr = fmt.Errorf("failed to embed text %d: %w", i, err)
					return
				}
				vectors[i] = vec
			}(i)
		}
		wg.Wait()

		if firstErr != nil {
			return nil, firstErr
		}
	}
	return vectors, nil
}
