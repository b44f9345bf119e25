package processor

import (
	"context"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/smallnest/memorygo/memory"
)

// DefaultTokenEncoding is the tokenizer used when none is configured.
const DefaultTokenEncoding = "cl100k_base"

// TokenLimiterOptions configuration for the token limiter
type TokenLimiterOptions struct {
	// Limit is the token budget for the whole message list. Required.
	Limit int

	// Encoding names the tiktoken encoding. Default cl100k_base.
	Encoding string

	// CountFunc overrides token counting, mainly for tests. When unset the
	// tiktoken encoding is used, with a len/4 heuristic if the encoding
	// cannot be loaded.
	CountFunc func(text string) int
}

// TokenLimiter evicts the oldest messages until the list fits a token
// budget. The kept messages are the most recent ones, in original order.
// Re-running on an already-fitting list is a no-op.
type TokenLimiter struct {
	limit    int
	encoding string
	count    func(text string) int

	once sync.Once
	enc  *tiktoken.Tiktoken
}

var _ memory.Processor = (*TokenLimiter)(nil)

// NewTokenLimiter creates a token limiter.
func NewTokenLimiter(opts TokenLimiterOptions) *TokenLimiter {
	if opts.Encoding == "" {
		opts.Encoding = DefaultTokenEncoding
	}
	return &TokenLimiter{
		limit:    opts.Limit,
		encoding: opts.Encoding,
		count:    opts.CountFunc,
	}
}

// Name implements memory.Processor.
func (p *TokenLimiter) Name() string { return "token_limiter" }

// Process implements memory.Processor.
func (p *TokenLimiter) Process(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	if p.limit <= 0 || len(messages) == 0 {
		return messages, nil
	}

	counts := make([]int, len(messages))
	total := 0
	for i, msg := range messages {
		counts[i] = p.countTokens(msg.Content)
		total += counts[i]
	}
	if total <= p.limit {
		return messages, nil
	}

	// Keep the largest suffix of recent messages that fits the budget.
	kept := 0
	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		if kept+counts[i] > p.limit {
			break
		}
		kept += counts[i]
		start = i
	}
	return messages[start:], nil
}

// CountTokens returns the token count for a piece of text using the
// configured counter.
func (p *TokenLimiter) CountTokens(text string) int {
	return p.countTokens(text)
}

func (p *TokenLimiter) countTokens(text string) int {
	if p.count != nil {
		return p.count(text)
	}

	p.once.Do(func() {
		enc, err := tiktoken.GetEncoding(p.encoding)
		if err == nil {
			p.enc = enc
		}
	})
	if p.enc != nil {
		return len(p.enc.Encode(text, nil, nil))
	}
	return heuristicTokenCount(text)
}

// heuristicTokenCount approximates tokens as len/4, the usual rule of thumb
// for English text.
func heuristicTokenCount(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		n = 1
	}
	return n
}
