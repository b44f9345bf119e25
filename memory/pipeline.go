package memory

import (
	"context"

	"github.com/smallnest/memorygo/log"
)

// Processor is a single message-list transform. Implementations must keep
// message IDs stable for any message they pass through unmodified, and must
// not reorder messages unless their documented contract says so.
type Processor interface {
	// Name identifies the processor in logs.
	Name() string

	// Process transforms the message list. The input slice must not be
	// mutated in place; annotate copies instead.
	Process(ctx context.Context, messages []Message) ([]Message, error)
}

// Pipeline applies processors strictly in configured order, feeding each
// one's output to the next. A stage that errors or panics is skipped — its
// input passes through unchanged and the failure is logged — so one
// misbehaving processor cannot block context assembly.
type Pipeline struct {
	processors []Processor
	logger     log.Logger
}

// NewPipeline creates a pipeline over the given processors.
func NewPipeline(logger log.Logger, processors ...Processor) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{processors: processors, logger: logger}
}

// Len returns the number of configured processors.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// Run applies every processor in order and returns the final message list.
func (p *Pipeline) Run(ctx context.Context, messages []Message) []Message {
	for _, proc := range p.processors {
		messages = p.runStage(ctx, proc, messages)
	}
	return messages
}

func (p *Pipeline) runStage(ctx context.Context, proc Processor, in []Message) (out []Message) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("processor %s panicked: %v", proc.Name(), r)
			out = in
		}
	}()

	result, err := proc.Process(ctx, in)
	if err != nil {
		p.logger.Error("processor %s failed: %v", proc.Name(), err)
		return in
	}
	return result
}
