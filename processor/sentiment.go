package processor

import (
	"context"
	"strings"

	"github.com/smallnest/memorygo/memory"
)

var positiveLexicon = map[string]bool{
	"amazing": true, "awesome": true, "best": true, "excellent": true,
	"fantastic": true, "glad": true, "good": true, "great": true,
	"happy": true, "helpful": true, "like": true, "love": true,
	"nice": true, "perfect": true, "thanks": true, "wonderful": true,
}

var negativeLexicon = map[string]bool{
	"angry": true, "annoying": true, "awful": true, "bad": true,
	"broken": true, "hate": true, "horrible": true, "poor": true,
	"sad": true, "terrible": true, "useless": true, "worst": true,
	"wrong": true,
}

var negationWords = map[string]bool{
	"no": true, "not": true, "never": true, "nothing": true,
	"don't": true, "dont": true, "isn't": true, "isnt": true,
	"wasn't": true, "wasnt": true, "won't": true, "wont": true,
	"can't": true, "cant": true,
}

var intensifiers = map[string]float64{
	"absolutely": 2.0, "extremely": 2.0, "really": 1.5, "so": 1.3,
	"totally": 1.8, "very": 1.5, "slightly": 0.5, "somewhat": 0.7,
}

// SentimentAnalyzer scores message content with a small lexicon, honoring
// negations ("not good") and intensifiers ("very good") within a two-word
// lookback. Annotation only; messages are never dropped or reordered. The
// score lands in Metadata under "sentiment" as {"score", "label"} with score
// in [-1, 1] and label positive/negative/neutral.
type SentimentAnalyzer struct{}

var _ memory.Processor = (*SentimentAnalyzer)(nil)

// NewSentimentAnalyzer creates an analyzer.
func NewSentimentAnalyzer() *SentimentAnalyzer {
	return &SentimentAnalyzer{}
}

// Name implements memory.Processor.
func (a *SentimentAnalyzer) Name() string { return "sentiment_analyzer" }

// Process implements memory.Processor.
func (a *SentimentAnalyzer) Process(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	out := make([]memory.Message, len(messages))
	for i, msg := range messages {
		score, hits := scoreSentiment(msg.Content)
		if hits == 0 {
			out[i] = msg
			continue
		}
		c := msg.Clone()
		if c.Metadata == nil {
			c.Metadata = make(map[string]any)
		}
		c.Metadata["sentiment"] = map[string]any{
			"score": score,
			"label": sentimentLabel(score),
		}
		out[i] = c
	}
	return out, nil
}

// scoreSentiment returns the normalized score and how many lexicon words
// were seen.
func scoreSentiment(content string) (float64, int) {
	tokens := strings.Fields(strings.ToLower(content))
	for i, tok := range tokens {
		tokens[i] = strings.Trim(tok, ".,!?;:\"'()")
	}

	total := 0.0
	hits := 0
	for i, tok := range tokens {
		polarity := 0.0
		if positiveLexicon[tok] {
			polarity = 1
		} else if negativeLexicon[tok] {
			polarity = -1
		}
		if polarity == 0 {
			continue
		}
		hits++

		weight := 1.0
		for back := i - 1; back >= 0 && back >= i-2; back-- {
			if negationWords[tokens[back]] {
				polarity = -polarity
			}
			if mult, ok := intensifiers[tokens[back]]; ok {
				weight *= mult
			}
		}
		total += polarity * weight
	}
	if hits == 0 {
		return 0, 0
	}

	score := total / float64(hits)
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score, hits
}

func sentimentLabel(score float64) string {
	switch {
	case score > 0.1:
		return "positive"
	case score < -0.1:
		return "negative"
	default:
		return "neutral"
	}
}
