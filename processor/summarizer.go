package processor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/smallnest/memorygo/memory"
)

// ContextualSummarizerOptions configuration for the summarizer
type ContextualSummarizerOptions struct {
	// MaxMessages triggers summarization when exceeded. Default 50.
	MaxMessages int

	// SummaryInterval is how many old messages each summary replaces.
	// Default 10.
	SummaryInterval int

	// PreserveRecentN most recent messages are never summarized. Default 10.
	PreserveRecentN int
}

// ContextualSummarizer replaces chunks of old messages with one synthetic
// system message each, carrying the chunk's time range, per-role counts and
// top content keywords. No model call is involved; summaries are purely
// extractive.
type ContextualSummarizer struct {
	opts ContextualSummarizerOptions
}

var _ memory.Processor = (*ContextualSummarizer)(nil)

// NewContextualSummarizer creates a summarizer.
func NewContextualSummarizer(opts ContextualSummarizerOptions) *ContextualSummarizer {
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = 50
	}
	if opts.SummaryInterval <= 0 {
		opts.SummaryInterval = 10
	}
	if opts.PreserveRecentN <= 0 {
		opts.PreserveRecentN = 10
	}
	return &ContextualSummarizer{opts: opts}
}

// Name implements memory.Processor.
func (s *ContextualSummarizer) Name() string { return "contextual_summarizer" }

// Process implements memory.Processor.
func (s *ContextualSummarizer) Process(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	if len(messages) <= s.opts.MaxMessages {
		return messages, nil
	}

	cut := len(messages) - s.opts.PreserveRecentN
	if cut < 0 {
		cut = 0
	}
	old, recent := messages[:cut], messages[cut:]

	out := make([]memory.Message, 0, len(old)/s.opts.SummaryInterval+len(recent)+1)
	for start := 0; start < len(old); start += s.opts.SummaryInterval {
		end := start + s.opts.SummaryInterval
		if end > len(old) {
			end = len(old)
		}
		out = append(out, s.summarize(old[start:end]))
	}
	out = append(out, recent...)
	return out, nil
}

func (s *ContextualSummarizer) summarize(chunk []memory.Message) memory.Message {
	first, last := chunk[0], chunk[len(chunk)-1]

	roleCounts := make(map[memory.Role]int)
	for _, msg := range chunk {
		roleCounts[msg.Role]++
	}
	roles := make([]string, 0, len(roleCounts))
	for role := range roleCounts {
		roles = append(roles, string(role))
	}
	sort.Strings(roles)
	roleParts := make([]string, len(roles))
	for i, role := range roles {
		roleParts[i] = fmt.Sprintf("%s %d", role, roleCounts[memory.Role(role)])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[Summary of %d messages from %s to %s] Roles: %s.",
		len(chunk),
		first.CreatedAt.Format("2006-01-02 15:04"),
		last.CreatedAt.Format("2006-01-02 15:04"),
		strings.Join(roleParts, ", "))
	if keywords := topKeywords(chunk, 5); len(keywords) > 0 {
		fmt.Fprintf(&sb, " Topics: %s.", strings.Join(keywords, ", "))
	}

	return memory.Message{
		ID:        uuid.NewString(),
		ThreadID:  first.ThreadID,
		Role:      memory.RoleSystem,
		Type:      memory.TypeText,
		Content:   sb.String(),
		CreatedAt: last.CreatedAt,
		Metadata: map[string]any{
			"summary":          true,
			"summarizedCount":  len(chunk),
			"summarizedFromId": first.ID,
			"summarizedToId":   last.ID,
		},
	}
}

// keywordStopwords are excluded from summary topic extraction.
var keywordStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"have": true, "i": true, "in": true, "is": true, "it": true, "me": true,
	"my": true, "not": true, "of": true, "on": true, "or": true, "so": true,
	"that": true, "the": true, "this": true, "to": true, "was": true,
	"we": true, "with": true, "you": true,
}

// topKeywords returns the n most frequent non-stopword words across the
// chunk, most frequent first, ties broken alphabetically.
func topKeywords(chunk []memory.Message, n int) []string {
	freq := make(map[string]int)
	for _, msg := range chunk {
		for _, w := range strings.Fields(strings.ToLower(msg.Content)) {
			w = strings.Trim(w, ".,!?;:\"'()")
			if len(w) < 3 || keywordStopwords[w] {
				continue
			}
			freq[w]++
		}
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}
