package processor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/memorygo/memory"
)

func TestSummarizerReplacesOldChunks(t *testing.T) {
	msgs := makeMessages(15)
	s := NewContextualSummarizer(ContextualSummarizerOptions{
		MaxMessages:     10,
		SummaryInterval: 5,
		PreserveRecentN: 5,
	})

	out, err := s.Process(context.Background(), msgs)
	require.NoError(t, err)
	// 10 old messages become 2 summaries, 5 recent survive
	require.Len(t, out, 7)

	for i := 0; i < 2; i++ {
		assert.Equal(t, memory.RoleSystem, out[i].Role)
		assert.True(t, out[i].Metadata["summary"].(bool))
		assert.Equal(t, 5, out[i].Metadata["summarizedCount"])
		assert.Contains(t, out[i].Content, "Summary of 5 messages")
	}
	assert.Equal(t, "msg-10", out[2].ID)
	assert.Equal(t, "msg-14", out[6].ID)
}

func TestSummarizerUnderThresholdIsNoOp(t *testing.T) {
	msgs := makeMessages(10)
	s := NewContextualSummarizer(ContextualSummarizerOptions{MaxMessages: 10})

	out, err := s.Process(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, msgs, out)
}

func TestSummarizerContent(t *testing.T) {
	msgs := makeMessages(12)
	for i := 0; i < 6; i++ {
		msgs[i].Content = "kubernetes cluster upgrade planning session notes"
	}
	s := NewContextualSummarizer(ContextualSummarizerOptions{
		MaxMessages:     8,
		SummaryInterval: 6,
		PreserveRecentN: 6,
	})

	out, err := s.Process(context.Background(), msgs)
	require.NoError(t, err)
	require.Len(t, out, 7)

	summary := out[0].Content
	assert.Contains(t, summary, "Roles: assistant 3, user 3")
	assert.Contains(t, summary, "kubernetes")
	assert.Contains(t, strings.ToLower(summary), "topics")
}

func TestTopKeywords(t *testing.T) {
	msgs := []memory.Message{
		{Content: "redis redis redis cache"},
		{Content: "the cache layer uses redis"},
	}
	kws := topKeywords(msgs, 2)
	require.Len(t, kws, 2)
	assert.Equal(t, "redis", kws[0])
	assert.Equal(t, "cache", kws[1])
}
