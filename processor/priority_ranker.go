package processor

import (
	"context"
	"sort"
	"strings"

	"github.com/smallnest/memorygo/memory"
)

// PriorityRankerOptions configuration for the priority ranker
type PriorityRankerOptions struct {
	// MaxMessages is the total budget. Default 10.
	MaxMessages int

	// PreserveRecentN most recent messages are always kept. Default 3.
	PreserveRecentN int

	// PreserveSystem keeps every system message regardless of score.
	PreserveSystem bool

	// Keywords boost messages mentioning them.
	Keywords []string

	// RoleWeights and TypeWeights override the default scoring weights.
	RoleWeights map[memory.Role]float64
	TypeWeights map[memory.MessageType]float64
}

// PriorityRanker trims a message list to a budget, always keeping system
// messages and the most recent N, then filling the remaining slots with the
// highest-scoring older messages. The result is chronological.
//
// Scores combine role weight, type weight, recency, content length and
// keyword hits; all components are normalized to [0, 1] before weighting.
type PriorityRanker struct {
	opts PriorityRankerOptions
}

var _ memory.Processor = (*PriorityRanker)(nil)

var defaultRoleWeights = map[memory.Role]float64{
	memory.RoleSystem:    1.0,
	memory.RoleUser:      0.8,
	memory.RoleAssistant: 0.6,
	memory.RoleTool:      0.3,
}

var defaultTypeWeights = map[memory.MessageType]float64{
	memory.TypeText:       1.0,
	memory.TypeToolCall:   0.5,
	memory.TypeToolResult: 0.5,
}

// NewPriorityRanker creates a ranker.
func NewPriorityRanker(opts PriorityRankerOptions) *PriorityRanker {
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = 10
	}
	if opts.PreserveRecentN <= 0 {
		opts.PreserveRecentN = 3
	}
	if opts.RoleWeights == nil {
		opts.RoleWeights = defaultRoleWeights
	}
	if opts.TypeWeights == nil {
		opts.TypeWeights = defaultTypeWeights
	}
	return &PriorityRanker{opts: opts}
}

// Name implements memory.Processor.
func (p *PriorityRanker) Name() string { return "priority_ranker" }

// Process implements memory.Processor.
func (p *PriorityRanker) Process(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	if len(messages) <= p.opts.MaxMessages {
		return messages, nil
	}

	preserved := make(map[int]bool)
	recentStart := len(messages) - p.opts.PreserveRecentN
	if recentStart < 0 {
		recentStart = 0
	}
	for i := recentStart; i < len(messages); i++ {
		preserved[i] = true
	}
	if p.opts.PreserveSystem {
		for i, msg := range messages {
			if msg.Role == memory.RoleSystem {
				preserved[i] = true
			}
		}
	}

	budget := p.opts.MaxMessages - len(preserved)

	type scored struct {
		index int
		score float64
	}
	var candidates []scored
	maxLen := 0
	for i, msg := range messages {
		if !preserved[i] && len(msg.Content) > maxLen {
			maxLen = len(msg.Content)
		}
	}
	for i := range messages {
		if preserved[i] {
			continue
		}
		candidates = append(candidates, scored{index: i, score: p.score(messages, i, maxLen)})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if budget < 0 {
		budget = 0
	}
	if budget > len(candidates) {
		budget = len(candidates)
	}
	for _, c := range candidates[:budget] {
		preserved[c.index] = true
	}

	out := make([]memory.Message, 0, len(preserved))
	for i, msg := range messages {
		if preserved[i] {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (p *PriorityRanker) score(messages []memory.Message, i, maxLen int) float64 {
	msg := messages[i]

	recency := 0.0
	if len(messages) > 1 {
		recency = float64(i) / float64(len(messages)-1)
	}

	length := 0.0
	if maxLen > 0 {
		length = float64(len(msg.Content)) / float64(maxLen)
	}

	keyword := 0.0
	if len(p.opts.Keywords) > 0 {
		content := strings.ToLower(msg.Content)
		hits := 0
		for _, kw := range p.opts.Keywords {
			if strings.Contains(content, strings.ToLower(kw)) {
				hits++
			}
		}
		keyword = float64(hits) / float64(len(p.opts.Keywords))
	}

	return 0.3*p.opts.RoleWeights[msg.Role] +
		0.1*p.opts.TypeWeights[msg.Type] +
		0.3*recency +
		0.1*length +
		0.2*keyword
}
