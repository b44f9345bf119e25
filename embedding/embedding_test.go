package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingProvider struct {
	mu      sync.Mutex
	current int32
	peak    int32
	failOn  string
}

func (p *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	cur := atomic.AddInt32(&p.current, 1)
	defer atomic.AddInt32(&p.current, -1)

	p.mu.Lock()
	if cur > p.peak {
		p.peak = cur
	}
	p.mu.Unlock()

	if text == p.failOn {
		return nil, errors.New("boom")
	}
	return []float32{float32(len(text))}, nil
}

func (p *countingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return Batch(ctx, p, texts)
}

func (p *countingProvider) Dimensions() int { return 1 }

func TestBatchPreservesOrder(t *testing.T) {
	p := &countingProvider{}

	texts := make([]string, 40)
	for i := range texts {
		texts[i] = fmt.Sprintf("%0*d", i+1, 0) // length i+1
	}

	vectors, err := Batch(context.Background(), p, texts)
	assert.NoError(t, err)
	assert.Len(t, vectors, 40)
	for i, vec := range vectors {
		assert.Equal(t, float32(i+1), vec[0])
	}

	// Concurrency never exceeds one chunk
	assert.LessOrEqual(t, p.peak, int32(DefaultBatchChunkSize))
}

func TestBatchError(t *testing.T) {
	p := &countingProvider{failOn: "bad"}

	_, err := Batch(context.Background(), p, []string{"ok", "bad", "ok"})
	assert.Error(t, err)
}

func TestBatchEmpty(t *testing.T) {
	p := &countingProvider{}
	vectors, err := Batch(context.Background(), p, nil)
	assert.NoError(t, err)
	assert.Empty(t, vectors)
}
