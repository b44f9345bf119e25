package processor

import (
	"context"
	"regexp"
	"strings"

	"github.com/smallnest/memorygo/memory"
)

// entityPatterns are the built-in extraction patterns, keyed by entity kind.
var entityPatterns = map[string]*regexp.Regexp{
	"email":  regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.-]+\b`),
	"url":    regexp.MustCompile(`\bhttps?://[^\s<>"]+`),
	"phone":  regexp.MustCompile(`\+?\d[\d().-]{7,}\d`),
	"date":   regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	"time":   regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?\b`),
	"number": regexp.MustCompile(`\b\d+(?:\.\d+)?\b`),
	"person": regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`),
	"org":    regexp.MustCompile(`\b[A-Z][\w&]*(?: [A-Z][\w&]*)* (?:Inc|Corp|LLC|Ltd)\.?`),
}

// EntityExtractor annotates messages with pattern-matched entities: emails,
// URLs, phone numbers, dates, times, numbers, capitalized person names, org
// suffixes, plus caller-supplied custom term lists. It never drops or
// reorders messages; extracted entities land in Metadata under "entities".
type EntityExtractor struct {
	custom map[string][]string
}

var _ memory.Processor = (*EntityExtractor)(nil)

// NewEntityExtractor creates an extractor. Custom terms map an entity kind to
// the literal terms to look for, matched case-insensitively.
func NewEntityExtractor(customTerms map[string][]string) *EntityExtractor {
	return &EntityExtractor{custom: customTerms}
}

// Name implements memory.Processor.
func (e *EntityExtractor) Name() string { return "entity_extractor" }

// Process implements memory.Processor.
func (e *EntityExtractor) Process(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	out := make([]memory.Message, len(messages))
	for i, msg := range messages {
		entities := e.extract(msg.Content)
		if len(entities) == 0 {
			out[i] = msg
			continue
		}
		c := msg.Clone()
		if c.Metadata == nil {
			c.Metadata = make(map[string]any)
		}
		c.Metadata["entities"] = entities
		out[i] = c
	}
	return out, nil
}

func (e *EntityExtractor) extract(content string) map[string][]string {
	entities := make(map[string][]string)

	for kind, re := range entityPatterns {
		matches := re.FindAllString(content, -1)
		if len(matches) > 0 {
			entities[kind] = dedupeStrings(matches)
		}
	}

	lower := strings.ToLower(content)
	for kind, terms := range e.custom {
		var found []string
		for _, term := range terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				found = append(found, term)
			}
		}
		if len(found) > 0 {
			entities[kind] = dedupeStrings(append(entities[kind], found...))
		}
	}

	if len(entities) == 0 {
		return nil
	}
	return entities
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
