package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarly-backend/internal/model"
)

func testConcepts() []model.Concept {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return []model.Concept{
		{ID: "c-attention", PaperID: "paper-1", Name: "Attention", CreatedAt: created},
		{ID: "c-softmax", PaperID: "paper-1", Name: "Softmax", CreatedAt: created},
		{ID: "c-posenc", PaperID: "paper-1", Name: "Positional Encoding", CreatedAt: created},
	}
}

func resultAt(day int, scores map[string]float64) model.QuizResult {
	return model.QuizResult{
		UserID:      "user-1",
		PaperID:     "paper-1",
		Scores:      scores,
		SubmittedAt: time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC),
	}
}

func TestAggregateMasteryColdStart(t *testing.T) {
	masteries := AggregateMastery("paper-1", testConcepts(), nil)

	require.Len(t, masteries, 3)
	for _, m := range masteries {
		assert.Equal(t, 0.0, m.MasteryLevel)
		assert.Equal(t, 0, m.TimesQuizzed)
		assert.Nil(t, m.LastReviewed)
	}
	assert.Equal(t, 0, CompletionPercentage(masteries))
}

func TestAggregateMasteryMeansObservations(t *testing.T) {
	results := []model.QuizResult{
		resultAt(2, map[string]float64{"c-attention": 1.0}),
		resultAt(3, map[string]float64{"c-attention": 0.0}),
		resultAt(4, map[string]float64{"c-attention": 1.0}),
	}

	masteries := AggregateMastery("paper-1", testConcepts(), results)

	require.Len(t, masteries, 3)
	attention := masteries[0]
	assert.Equal(t, "c-attention", attention.ConceptID)
	assert.InDelta(t, 2.0/3.0, attention.MasteryLevel, 1e-6)
	assert.Equal(t, 3, attention.TimesQuizzed)
	require.NotNil(t, attention.LastReviewed)
	assert.Equal(t, 4, attention.LastReviewed.Day())

	// Untested concepts stay at zero.
	assert.Equal(t, 0.0, masteries[1].MasteryLevel)
	assert.Equal(t, 0.0, masteries[2].MasteryLevel)
}

func TestAggregateMasteryIsIdempotent(t *testing.T) {
	results := []model.QuizResult{
		resultAt(2, map[string]float64{"c-attention": 1.0, "c-softmax": 0.5}),
		resultAt(3, map[string]float64{"c-attention": 0.5}),
	}

	first := AggregateMastery("paper-1", testConcepts(), results)
	second := AggregateMastery("paper-1", testConcepts(), results)

	assert.Equal(t, first, second)
}

func TestAggregateMasteryIgnoresUnknownConcepts(t *testing.T) {
	results := []model.QuizResult{
		resultAt(2, map[string]float64{"c-deleted": 1.0, "c-attention": 1.0}),
	}

	masteries := AggregateMastery("paper-1", testConcepts(), results)

	require.Len(t, masteries, 3)
	assert.Equal(t, 1.0, masteries[0].MasteryLevel)
	for _, m := range masteries {
		assert.NotEqual(t, "c-deleted", m.ConceptID)
	}
}

func TestCompletionPercentageRounds(t *testing.T) {
	concepts := testConcepts()[:2]
	results := []model.QuizResult{
		resultAt(2, map[string]float64{"c-attention": 1.0, "c-softmax": 0.5}),
	}

	masteries := AggregateMastery("paper-1", concepts, results)
	// (1.0 + 0.5) / 2 = 0.75
	assert.Equal(t, 75, CompletionPercentage(masteries))
}

func TestClassifyMasteryThresholds(t *testing.T) {
	assert.Equal(t, model.MasteryMastered, model.ClassifyMastery(0.8, 1))
	assert.Equal(t, model.MasteryInProgress, model.ClassifyMastery(0.7999, 5))
	assert.Equal(t, model.MasteryStruggling, model.ClassifyMastery(0.4, 2))
	// Untested concepts are in progress, not struggling.
	assert.Equal(t, model.MasteryInProgress, model.ClassifyMastery(0.0, 0))
}

func TestRetentionFromMastery(t *testing.T) {
	now := time.Now()
	masteries := []model.ConceptMastery{
		{ConceptID: "a", MasteryLevel: 0.9, TimesQuizzed: 3, LastReviewed: &now},
		{ConceptID: "b", MasteryLevel: 0.6, TimesQuizzed: 2},
		{ConceptID: "c", MasteryLevel: 0.2, TimesQuizzed: 1},
		{ConceptID: "d", MasteryLevel: 0.0, TimesQuizzed: 0},
	}

	stats := RetentionFromMastery(masteries)

	assert.Equal(t, 1, stats.ConceptsMastered)
	assert.Equal(t, 2, stats.ConceptsInProgress)
	assert.Equal(t, 1, stats.ConceptsStruggling)
	assert.InDelta(t, 0.25, stats.OverallRetention, 1e-9)
	assert.InDelta(t, (0.9+0.6+0.2)/4, stats.AverageConfidence, 1e-9)
}

func TestRetentionFromMasteryEmpty(t *testing.T) {
	stats := RetentionFromMastery(nil)
	assert.Zero(t, stats.OverallRetention)
	assert.Zero(t, stats.ConceptsMastered)
}

func TestAverageQuizScore(t *testing.T) {
	assert.Zero(t, AverageQuizScore(nil))

	results := []model.QuizResult{
		{ScorePercentage: 80},
		{ScorePercentage: 60},
	}
	assert.InDelta(t, 70.0, AverageQuizScore(results), 1e-9)
}
