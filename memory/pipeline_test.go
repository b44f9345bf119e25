package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/memorygo/log"
)

type stubProcessor struct {
	name string
	fn   func(ctx context.Context, messages []Message) ([]Message, error)
}

func (p *stubProcessor) Name() string { return p.name }

func (p *stubProcessor) Process(ctx context.Context, messages []Message) ([]Message, error) {
	return p.fn(ctx, messages)
}

func appendTag(name, tag string) *stubProcessor {
	return &stubProcessor{
		name: name,
		fn: func(ctx context.Context, messages []Message) ([]Message, error) {
			out := make([]Message, len(messages))
			for i, m := range messages {
				c := m.Clone()
				c.Content += tag
				out[i] = c
			}
			return out, nil
		},
	}
}

func TestPipelineRunsInOrder(t *testing.T) {
	p := NewPipeline(log.NewNoOpLogger(), appendTag("first", "-a"), appendTag("second", "-b"))
	require.Equal(t, 2, p.Len())

	out := p.Run(context.Background(), []Message{{ID: "1", Content: "msg"}})
	require.Len(t, out, 1)
	assert.Equal(t, "msg-a-b", out[0].Content)
}

func TestPipelineSkipsFailingStage(t *testing.T) {
	failing := &stubProcessor{
		name: "boom",
		fn: func(ctx context.Context, messages []Message) ([]Message, error) {
			return nil, errors.New("no thanks")
		},
	}
	p := NewPipeline(log.NewNoOpLogger(), appendTag("first", "-a"), failing, appendTag("last", "-b"))

	out := p.Run(context.Background(), []Message{{ID: "1", Content: "msg"}})
	require.Len(t, out, 1)
	assert.Equal(t, "msg-a-b", out[0].Content)
}

func TestPipelineSkipsPanickingStage(t *testing.T) {
	panicking := &stubProcessor{
		name: "kaboom",
		fn: func(ctx context.Context, messages []Message) ([]Message, error) {
			panic("unexpected shape")
		},
	}
	p := NewPipeline(log.NewNoOpLogger(), panicking, appendTag("after", "-ok"))

	out := p.Run(context.Background(), []Message{{ID: "1", Content: "msg"}})
	require.Len(t, out, 1)
	assert.Equal(t, "msg-ok", out[0].Content)
}

func TestPipelineEmpty(t *testing.T) {
	p := NewPipeline(nil)
	assert.Equal(t, 0, p.Len())

	in := []Message{{ID: "1", Content: "untouched"}}
	out := p.Run(context.Background(), in)
	assert.Equal(t, in, out)
}
