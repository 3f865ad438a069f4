package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
)

type fakeSummarizer struct {
	calls int
	fail  bool
}

func (f *fakeSummarizer) SummarizeSection(title, content string) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("model unavailable")
	}
	return "summary of " + title, nil
}

func (f *fakeSummarizer) SummarizePaper(title, overview string) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("model unavailable")
	}
	return "overall summary of " + title, nil
}

func (f *fakeSummarizer) ExtractKeyFindings(text string) ([]string, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("model unavailable")
	}
	return []string{"transformers outperform recurrent models", "attention enables parallel training"}, nil
}

func (f *fakeSummarizer) AssessDifficulty(sample string) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("model unavailable")
	}
	return model.DifficultyAdvanced, nil
}

func summaryFixtures() *fakePaperRepo {
	paperRepo := newFakePaperRepo()
	paperRepo.papers["paper-1"] = &model.Paper{
		ID:     "paper-1",
		UserID: "user-1",
		Title:  "Attention Is All You Need",
		Status: model.PaperStatusReady,
	}
	long := strings.Repeat("Scaled dot-product attention computes weights over queries and keys. ", 8)
	paperRepo.sections["paper-1"] = []model.Section{
		{ID: "sec-intro", PaperID: "paper-1", Title: "Introduction", Content: long},
		{ID: "sec-note", PaperID: "paper-1", Title: "Notation", Content: "See appendix."},
		{ID: "sec-model", PaperID: "paper-1", Title: "Model Architecture", Content: strings.Repeat("Encoder stacks six identical layers. ", 3)},
		{ID: "sec-results", PaperID: "paper-1", Title: "Results", Content: long},
	}
	return paperRepo
}

func TestGetSummaryGeneratesAndCaches(t *testing.T) {
	paperRepo := summaryFixtures()
	summarizer := &fakeSummarizer{}
	svc := NewSummaryService(paperRepo, summarizer)

	summary, err := svc.GetSummary("paper-1")
	require.NoError(t, err)

	assert.Equal(t, "paper-1", summary.PaperID)
	assert.Equal(t, "overall summary of Attention Is All You Need", summary.OverallSummary)
	assert.Len(t, summary.KeyFindings, 2)
	assert.Equal(t, model.DifficultyAdvanced, summary.DifficultyLevel)

	// Section summaries are keyed by section id. Tiny sections are not
	// worth a model call, mid-sized ones pass through as-is.
	assert.Equal(t, "summary of Introduction", summary.Summaries["sec-intro"])
	assert.Equal(t, "Section content too short to summarize.", summary.Summaries["sec-note"])
	assert.Equal(t, strings.TrimSpace(strings.Repeat("Encoder stacks six identical layers. ", 3)), summary.Summaries["sec-model"])

	// The second call serves the cached row without touching the model.
	generated := summarizer.calls
	again, err := svc.GetSummary("paper-1")
	require.NoError(t, err)
	assert.Equal(t, summary.ID, again.ID)
	assert.Equal(t, generated, summarizer.calls)
}

func TestRegenerateSummaryDropsCache(t *testing.T) {
	paperRepo := summaryFixtures()
	summarizer := &fakeSummarizer{}
	svc := NewSummaryService(paperRepo, summarizer)

	first, err := svc.GetSummary("paper-1")
	require.NoError(t, err)
	generated := summarizer.calls

	second, err := svc.RegenerateSummary("paper-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Greater(t, summarizer.calls, generated)
}

func TestGetSummaryDegradesWhenModelFails(t *testing.T) {
	paperRepo := summaryFixtures()
	svc := NewSummaryService(paperRepo, &fakeSummarizer{fail: true})

	summary, err := svc.GetSummary("paper-1")
	require.NoError(t, err)

	assert.Equal(t, "Unable to generate summary at this time.", summary.OverallSummary)
	assert.Equal(t, []string{"Key findings not available."}, summary.KeyFindings)
	assert.Equal(t, model.DifficultyIntermediate, summary.DifficultyLevel)
	// Long sections degrade to a truncated excerpt.
	assert.True(t, strings.HasSuffix(summary.Summaries["sec-intro"], "..."))
}

func TestGetSummaryRequiresReadyPaper(t *testing.T) {
	paperRepo := summaryFixtures()
	paperRepo.papers["paper-1"].Status = model.PaperStatusProcessing
	svc := NewSummaryService(paperRepo, &fakeSummarizer{})

	_, err := svc.GetSummary("paper-1")
	assert.Error(t, err)

	_, err = svc.GetSummary("no-such-paper")
	assert.ErrorIs(t, err, repository.ErrPaperNotFound)
}
