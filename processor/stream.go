package processor

import (
	"context"
	"strings"
	"time"

	"github.com/smallnest/memorygo/memory"
)

// TransformFunc rewrites a single message.
type TransformFunc func(msg memory.Message) memory.Message

// Transformer applies a function to every message in the flow.
type Transformer struct {
	name string
	fn   TransformFunc
}

var _ memory.Processor = (*Transformer)(nil)

// NewTransformer creates a named transformer.
func NewTransformer(name string, fn TransformFunc) *Transformer {
	return &Transformer{name: name, fn: fn}
}

// Name implements memory.Processor.
func (t *Transformer) Name() string { return t.name }

// Process implements memory.Processor.
func (t *Transformer) Process(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	out := make([]memory.Message, len(messages))
	for i, msg := range messages {
		out[i] = t.fn(msg.Clone())
	}
	return out, nil
}

// FilterFunc reports whether a message stays in the flow.
type FilterFunc func(msg memory.Message) bool

// Filter drops messages the predicate rejects.
type Filter struct {
	name string
	keep FilterFunc
}

var _ memory.Processor = (*Filter)(nil)

// NewFilter creates a named filter.
func NewFilter(name string, keep FilterFunc) *Filter {
	return &Filter{name: name, keep: keep}
}

// Name implements memory.Processor.
func (f *Filter) Name() string { return f.name }

// Process implements memory.Processor.
func (f *Filter) Process(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	out := make([]memory.Message, 0, len(messages))
	for _, msg := range messages {
		if f.keep(msg) {
			out = append(out, msg)
		}
	}
	return out, nil
}

// AggregateFunc collapses a buffered group into one message.
type AggregateFunc func(key string, group []memory.Message) memory.Message

// AggregatorOptions configuration for the aggregator
type AggregatorOptions struct {
	// KeyFunc groups consecutive messages. Default groups by role.
	KeyFunc func(msg memory.Message) string

	// MaxCount flushes a group when it reaches this size. Default 5.
	MaxCount int

	// Window flushes a group when it spans more than this duration. Zero
	// disables the time bound.
	Window time.Duration

	// Aggregate collapses a group. The default concatenates contents, and
	// wraps tool-role groups as a single tool-result.
	Aggregate AggregateFunc
}

// Aggregator buffers consecutive messages sharing a grouping key and
// collapses each full group into one message. Groups flush when the key
// changes, the count threshold is reached, or the group's time span exceeds
// the window. Single-message groups pass through untouched.
type Aggregator struct {
	opts AggregatorOptions
}

var _ memory.Processor = (*Aggregator)(nil)

// NewAggregator creates an aggregator.
func NewAggregator(opts AggregatorOptions) *Aggregator {
	if opts.KeyFunc == nil {
		opts.KeyFunc = func(msg memory.Message) string { return string(msg.Role) }
	}
	if opts.MaxCount <= 0 {
		opts.MaxCount = 5
	}
	if opts.Aggregate == nil {
		opts.Aggregate = defaultAggregate
	}
	return &Aggregator{opts: opts}
}

// Name implements memory.Processor.
func (a *Aggregator) Name() string { return "aggregator" }

// Process implements memory.Processor.
func (a *Aggregator) Process(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	var out []memory.Message
	var group []memory.Message
	key := ""

	flush := func() {
		if len(group) == 0 {
			return
		}
		if len(group) == 1 {
			out = append(out, group[0])
		} else {
			out = append(out, a.opts.Aggregate(key, group))
		}
		group = nil
	}

	for _, msg := range messages {
		k := a.opts.KeyFunc(msg)
		if len(group) > 0 {
			spanExceeded := a.opts.Window > 0 &&
				msg.CreatedAt.Sub(group[0].CreatedAt) > a.opts.Window
			if k != key || len(group) >= a.opts.MaxCount || spanExceeded {
				flush()
			}
		}
		key = k
		group = append(group, msg)
	}
	flush()
	return out, nil
}

// defaultAggregate concatenates group contents. Tool groups become a single
// tool-result message.
func defaultAggregate(key string, group []memory.Message) memory.Message {
	contents := make([]string, len(group))
	for i, msg := range group {
		contents[i] = msg.Content
	}

	combined := group[0].Clone()
	combined.Content = strings.Join(contents, "\n")
	if combined.Metadata == nil {
		combined.Metadata = make(map[string]any)
	}
	combined.Metadata["aggregated"] = len(group)

	if group[0].Role == memory.RoleTool {
		combined.Type = memory.TypeToolResult
	}
	return combined
}
