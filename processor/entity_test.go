package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/memorygo/memory"
)

func TestEntityExtractorPatterns(t *testing.T) {
	msgs := []memory.Message{
		{ID: "1", Content: "Email alice@example.com or visit https://example.com/docs by 2026-03-15 at 14:30"},
	}

	e := NewEntityExtractor(nil)
	out, err := e.Process(context.Background(), msgs)
	require.NoError(t, err)

	entities, ok := out[0].Metadata["entities"].(map[string][]string)
	require.True(t, ok)
	assert.Equal(t, []string{"alice@example.com"}, entities["email"])
	assert.Equal(t, []string{"https://example.com/docs"}, entities["url"])
	assert.Equal(t, []string{"2026-03-15"}, entities["date"])
	assert.Contains(t, entities["time"], "14:30")
}

func TestEntityExtractorPersonAndOrg(t *testing.T) {
	msgs := []memory.Message{
		{ID: "1", Content: "Grace Hopper joined Acme Corp last year"},
	}

	e := NewEntityExtractor(nil)
	out, err := e.Process(context.Background(), msgs)
	require.NoError(t, err)

	entities := out[0].Metadata["entities"].(map[string][]string)
	assert.Contains(t, entities["person"], "Grace Hopper")
	assert.Contains(t, entities["org"], "Acme Corp")
}

func TestEntityExtractorCustomTerms(t *testing.T) {
	msgs := []memory.Message{
		{ID: "1", Content: "we deployed the billing-service to staging"},
	}

	e := NewEntityExtractor(map[string][]string{
		"service": {"billing-service", "auth-service"},
	})
	out, err := e.Process(context.Background(), msgs)
	require.NoError(t, err)

	entities := out[0].Metadata["entities"].(map[string][]string)
	assert.Equal(t, []string{"billing-service"}, entities["service"])
}

func TestEntityExtractorNoEntities(t *testing.T) {
	msgs := []memory.Message{{ID: "1", Content: "nothing to see here"}}

	e := NewEntityExtractor(nil)
	out, err := e.Process(context.Background(), msgs)
	require.NoError(t, err)
	assert.Nil(t, out[0].Metadata)
	// Untouched messages are passed through, not cloned
	assert.Equal(t, msgs[0], out[0])
}
