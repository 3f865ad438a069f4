package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scholarly-backend/internal/model"
)

func TestRankSectionsByKeywords(t *testing.T) {
	sections := []model.Section{
		{Title: "Introduction", Content: "Recurrent networks process sequences step by step."},
		{Title: "Attention", Content: "Multi-head attention projects queries, keys and values. Attention weights come from softmax."},
		{Title: "Training", Content: "The model trains with label smoothing and a warmup schedule."},
	}

	context := RankSectionsByKeywords(sections, "How does multi-head attention work?", 2)

	assert.Contains(t, context, "[Attention]")
	assert.Contains(t, context, "Multi-head attention")
	// The best match comes first.
	assert.Less(t, 0, len(context))
	assert.NotContains(t, context, "label smoothing")
}

func TestRankSectionsByKeywordsNoSections(t *testing.T) {
	assert.Empty(t, RankSectionsByKeywords(nil, "anything", 3))
}

func TestRankSectionsTruncatesLongSections(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'a'
	}
	sections := []model.Section{
		{Title: "Long", Content: "attention " + string(long)},
	}

	context := RankSectionsByKeywords(sections, "attention", 1)

	assert.LessOrEqual(t, len(context), 900)
}

func TestKeywordsDropStopWordsAndShortTokens(t *testing.T) {
	words := keywords("What is the role of an encoder in a transformer?")

	assert.Contains(t, words, "role")
	assert.Contains(t, words, "encoder")
	assert.Contains(t, words, "transformer")
	assert.NotContains(t, words, "what")
	assert.NotContains(t, words, "the")
	assert.NotContains(t, words, "is")
}
