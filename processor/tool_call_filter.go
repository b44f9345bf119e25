package processor

import (
	"context"
	"regexp"
	"strings"

	"github.com/smallnest/memorygo/memory"
)

// toolTraceRe matches fenced code blocks that carry tool invocation traces
// inside regular text content.
var toolTraceRe = regexp.MustCompile("(?s)```(?:tool|tool_call|tool-call|tool_result|tool-result)\\n.*?```\\n?")

// ToolCallFilter removes tool-call and tool-result messages from retrieved
// context. With an exclude list only the named tools are removed; without one
// every tool message is removed. Text messages pass through with embedded
// tool traces stripped out of their content.
type ToolCallFilter struct {
	exclude map[string]bool
}

var _ memory.Processor = (*ToolCallFilter)(nil)

// NewToolCallFilter creates a filter. A nil or empty exclude list removes all
// tool messages.
func NewToolCallFilter(exclude []string) *ToolCallFilter {
	f := &ToolCallFilter{}
	if len(exclude) > 0 {
		f.exclude = make(map[string]bool, len(exclude))
		for _, name := range exclude {
			f.exclude[name] = true
		}
	}
	return f
}

// Name implements memory.Processor.
func (f *ToolCallFilter) Name() string { return "tool_call_filter" }

// Process implements memory.Processor.
func (f *ToolCallFilter) Process(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	out := make([]memory.Message, 0, len(messages))
	for _, msg := range messages {
		if f.isToolMessage(msg) {
			if f.exclude == nil || f.exclude[msg.Name] {
				continue
			}
		}
		if msg.Type == memory.TypeText && strings.Contains(msg.Content, "```") {
			stripped := toolTraceRe.ReplaceAllString(msg.Content, "")
			if stripped != msg.Content {
				c := msg.Clone()
				c.Content = strings.TrimSpace(stripped)
				msg = c
			}
		}
		out = append(out, msg)
	}
	return out, nil
}

func (f *ToolCallFilter) isToolMessage(msg memory.Message) bool {
	return msg.Role == memory.RoleTool ||
		msg.Type == memory.TypeToolCall ||
		msg.Type == memory.TypeToolResult
}
