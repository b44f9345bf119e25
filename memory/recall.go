package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/smallnest/memorygo/log"
)

// recallEngine turns a free-text query into a ranked, context-expanded
// subset of a thread's messages.
//
// Strategies are tried sequentially, never in parallel, to avoid duplicate
// vector-store load: a threshold-filtered index query, a relaxed retry with
// double topK and a lowered threshold, then a deterministic text-overlap
// scorer over recent messages. Only an empty thread yields an empty result.
type recallEngine struct {
	store  *Store
	cfg    SemanticRecallConfig
	logger log.Logger
}

func newRecallEngine(store *Store, cfg SemanticRecallConfig) *recallEngine {
	return &recallEngine{store: store, cfg: cfg, logger: store.logger}
}

func (e *recallEngine) recall(ctx context.Context, threadID string, chronoIDs []string, query string) ([]Message, error) {
	if len(chronoIDs) == 0 {
		return []Message{}, nil
	}

	q := preprocessQuery(query)

	vec, err := e.store.embedder.Embed(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w: %v", ErrProviderUnavailable, err)
	}

	filter := map[string]any{"threadId": threadID}

	hitIDs := e.vectorStrategy(ctx, "index query", vec, e.cfg.TopK, e.cfg.Threshold, filter, chronoIDs)
	if len(hitIDs) == 0 {
		hitIDs = e.vectorStrategy(ctx, "relaxed retry", vec, e.cfg.TopK*2, e.cfg.Threshold*0.8, filter, chronoIDs)
	}
	if len(hitIDs) == 0 {
		hitIDs, err = e.textOverlapStrategy(ctx, chronoIDs, query)
		if err != nil {
			return nil, err
		}
	}

	return e.expand(ctx, chronoIDs, hitIDs)
}

// vectorStrategy runs one index query shape. Failures are logged and return
// no hits so the next strategy can take over.
func (e *recallEngine) vectorStrategy(ctx context.Context, name string, vec []float32, topK int, threshold float64, filter map[string]any, chronoIDs []string) []string {
	results, err := e.store.index.Query(ctx, vec, topK, filter)
	if err != nil {
		e.logger.Warn("recall strategy %q failed: %v", name, err)
		return nil
	}

	known := make(map[string]bool, len(chronoIDs))
	for _, id := range chronoIDs {
		known[id] = true
	}

	var ids []string
	for _, r := range results {
		if r.Score < threshold {
			continue
		}
		// Stale index entries may reference deleted messages
		if !known[r.ID] {
			continue
		}
		ids = append(ids, r.ID)
	}
	if len(ids) > 0 {
		e.logger.Debug("recall strategy %q returned %d hits", name, len(ids))
	}
	return ids
}

// textOverlapStrategy is the last-resort scorer: word-overlap ratio plus an
// exact-substring bonus and a small recency bonus, over the most recent
// ScanLimit messages. It always produces hits for a non-empty thread.
func (e *recallEngine) textOverlapStrategy(ctx context.Context, chronoIDs []string, query string) ([]string, error) {
	scanIDs := chronoIDs
	if len(scanIDs) > e.cfg.ScanLimit {
		scanIDs = scanIDs[len(scanIDs)-e.cfg.ScanLimit:]
	}

	msgs, err := e.store.rawMessages(ctx, scanIDs)
	if err != nil {
		return nil, err
	}

	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, 0, len(msgs))
	for i, msg := range msgs {
		recency := 0.0
		if len(msgs) > 1 {
			recency = 0.1 * float64(i) / float64(len(msgs)-1)
		}
		ranked = append(ranked, scored{
			id:    msg.ID,
			score: textOverlapScore(query, msg.Content) + recency,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > e.cfg.TopK {
		ranked = ranked[:e.cfg.TopK]
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.id
	}
	e.logger.Debug("recall strategy %q returned %d hits", "text overlap", len(ids))
	return ids, nil
}

// expand widens each hit with half of MessageRange on each side by thread
// position, deduplicates, and returns the combined set in chronological
// order. Callers expect chronological coherence; relevance only decides
// which messages were selected.
func (e *recallEngine) expand(ctx context.Context, chronoIDs []string, hitIDs []string) ([]Message, error) {
	position := make(map[string]int, len(chronoIDs))
	for i, id := range chronoIDs {
		position[id] = i
	}

	half := e.cfg.MessageRange / 2
	selected := make(map[int]bool)
	for _, id := range hitIDs {
		pos, ok := position[id]
		if !ok {
			continue
		}
		for i := pos - half; i <= pos+half; i++ {
			if i >= 0 && i < len(chronoIDs) {
				selected[i] = true
			}
		}
	}

	positions := make([]int, 0, len(selected))
	for i := range selected {
		positions = append(positions, i)
	}
	sort.Ints(positions)

	ids := make([]string, len(positions))
	for i, pos := range positions {
		ids[i] = chronoIDs[pos]
	}

	msgs, err := e.store.rawMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	sortChronological(msgs)
	return msgs, nil
}

// queryStopwords are stripped from recall queries before embedding.
var queryStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "can": true, "did": true,
	"do": true, "does": true, "how": true, "i": true, "is": true, "me": true,
	"of": true, "or": true, "please": true, "tell": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "what": true,
	"when": true, "where": true, "which": true, "who": true, "why": true,
	"you": true,
}

// preprocessQuery strips filler words. If too little survives, the raw query
// is used instead.
func preprocessQuery(query string) string {
	words := strings.Fields(query)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !queryStopwords[strings.ToLower(strings.Trim(w, ".,!?"))] {
			kept = append(kept, w)
		}
	}
	stripped := strings.Join(kept, " ")
	if len(stripped) < 3 {
		return query
	}
	return stripped
}

// textOverlapScore computes word-overlap ratio relative to the query, plus a
// bonus for an exact substring match.
func textOverlapScore(query, content string) float64 {
	qwords := wordSet(query)
	cwords := wordSet(content)
	if len(qwords) == 0 {
		return 0
	}

	overlap := 0
	for w := range qwords {
		if cwords[w] {
			overlap++
		}
	}
	score := float64(overlap) / float64(len(qwords))

	if strings.Contains(strings.ToLower(content), strings.ToLower(strings.TrimSpace(query))) {
		score += 0.2
	}
	return score
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(w, ".,!?;:\"'")] = true
	}
	return set
}
