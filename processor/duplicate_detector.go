package processor

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/smallnest/memorygo/memory"
)

// DefaultDuplicateThreshold is used when no threshold is configured.
const DefaultDuplicateThreshold = 0.8

// longContentLen is the boundary above which edit distance gets too
// expensive and character-frequency cosine takes over.
const longContentLen = 1000

// DuplicateDetector drops messages whose content is too similar to a message
// already kept. Duplicate clusters keep either their oldest or newest member,
// and the surviving set is returned in chronological order. Running the
// detector twice gives the same result as running it once.
type DuplicateDetector struct {
	threshold      float64
	preserveNewest bool
}

var _ memory.Processor = (*DuplicateDetector)(nil)

// NewDuplicateDetector creates a detector. A non-positive threshold falls
// back to DefaultDuplicateThreshold.
func NewDuplicateDetector(threshold float64, preserveNewest bool) *DuplicateDetector {
	if threshold <= 0 {
		threshold = DefaultDuplicateThreshold
	}
	return &DuplicateDetector{threshold: threshold, preserveNewest: preserveNewest}
}

// Name implements memory.Processor.
func (d *DuplicateDetector) Name() string { return "duplicate_detector" }

// Process implements memory.Processor.
func (d *DuplicateDetector) Process(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	if len(messages) < 2 {
		return messages, nil
	}

	type entry struct {
		index int
		norm  string
	}
	order := make([]entry, len(messages))
	for i, msg := range messages {
		order[i] = entry{index: i, norm: normalizeContent(msg.Content)}
	}
	if d.preserveNewest {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	var kept []entry
	for _, cand := range order {
		dup := false
		for _, k := range kept {
			if contentSimilarity(cand.norm, k.norm) >= d.threshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, cand)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].index < kept[j].index })
	out := make([]memory.Message, len(kept))
	for i, k := range kept {
		out[i] = messages[k.index]
	}
	return out, nil
}

// normalizeContent lowercases and collapses whitespace so formatting
// differences do not hide duplicates.
func normalizeContent(content string) string {
	return strings.Join(strings.Fields(strings.ToLower(content)), " ")
}

// contentSimilarity scores two normalized strings in [0, 1]. Exact matches
// score 1, one string extending the other counts as a near-duplicate, long
// strings use character-frequency cosine, everything else edit distance.
func contentSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.9
	}
	if len(a) >= longContentLen || len(b) >= longContentLen {
		return charFrequencyCosine(a, b)
	}

	dist := levenshtein.ComputeDistance(a, b)
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return 1 - float64(dist)/float64(longer)
}

func charFrequencyCosine(a, b string) float64 {
	fa := charFrequencies(a)
	fb := charFrequencies(b)

	var dot, na, nb float64
	for r, ca := range fa {
		if cb, ok := fb[r]; ok {
			dot += float64(ca) * float64(cb)
		}
		na += float64(ca) * float64(ca)
	}
	for _, cb := range fb {
		nb += float64(cb) * float64(cb)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func charFrequencies(s string) map[rune]int {
	freq := make(map[rune]int)
	for _, r := range s {
		freq[r]++
	}
	return freq
}
