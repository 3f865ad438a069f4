package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarly-backend/internal/model"
)

func gradableQuiz() *model.Quiz {
	return &model.Quiz{
		ID:      "quiz-1",
		PaperID: "paper-1",
		UserID:  "user-1",
		Questions: []model.Question{
			{ID: "q1", ConceptID: "c-attention", CorrectAnswer: "Softmax"},
			{ID: "q2", ConceptID: "c-attention", CorrectAnswer: "Query"},
			{ID: "q3", ConceptID: "c-posenc", CorrectAnswer: "Sine and cosine"},
			{ID: "q4", ConceptID: "c-softmax", CorrectAnswer: "True"},
		},
	}
}

func TestGradeQuizScoresAndConceptAverages(t *testing.T) {
	quiz := gradableQuiz()
	answers := map[string]string{
		"q1": "softmax",          // correct, case-insensitive
		"q2": "  Query  ",        // correct, whitespace-insensitive
		"q3": "learned vectors",  // wrong
		"q4": "true",             // correct
	}

	result := GradeQuiz(quiz, answers)

	assert.Equal(t, 4, result.TotalQuestions)
	assert.Equal(t, 3, result.CorrectAnswers)
	assert.InDelta(t, 75.0, result.ScorePercentage, 1e-9)

	assert.InDelta(t, 1.0, result.Scores["c-attention"], 1e-9)
	assert.InDelta(t, 0.0, result.Scores["c-posenc"], 1e-9)
	assert.InDelta(t, 1.0, result.Scores["c-softmax"], 1e-9)

	assert.ElementsMatch(t, []string{"c-posenc"}, result.WeakConcepts)
	assert.ElementsMatch(t, []string{"c-attention", "c-softmax"}, result.StrongConcepts)

	require.Len(t, result.Answers, 4)
	assert.True(t, result.Answers[0].IsCorrect)
	assert.False(t, result.Answers[2].IsCorrect)
}

func TestGradeQuizMissingAnswersAreWrong(t *testing.T) {
	quiz := gradableQuiz()

	result := GradeQuiz(quiz, map[string]string{})

	assert.Equal(t, 0, result.CorrectAnswers)
	assert.Zero(t, result.ScorePercentage)
	assert.ElementsMatch(t, []string{"c-attention", "c-posenc", "c-softmax"}, result.WeakConcepts)
	assert.Empty(t, result.StrongConcepts)
}

func TestGradeQuizPartialConceptScoreIsWeakNotStrong(t *testing.T) {
	quiz := gradableQuiz()
	answers := map[string]string{"q1": "softmax"} // one of two attention questions

	result := GradeQuiz(quiz, answers)

	// 0.5 sits below the weak cutoff.
	assert.InDelta(t, 0.5, result.Scores["c-attention"], 1e-9)
	assert.Contains(t, result.WeakConcepts, "c-attention")
	assert.NotContains(t, result.StrongConcepts, "c-attention")
}

func TestIdentifyWeakConceptsUnions(t *testing.T) {
	results := []model.QuizResult{
		{WeakConcepts: []string{"c-a", "c-b"}},
		{WeakConcepts: []string{"c-b", "c-c"}},
	}

	weak := IdentifyWeakConcepts(results)

	assert.Equal(t, []string{"c-a", "c-b", "c-c"}, weak)
}

func TestIdentifyWeakConceptsEmpty(t *testing.T) {
	assert.Empty(t, IdentifyWeakConcepts(nil))
}

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, "softmax", normalizeAnswer("  SoftMax "))
	assert.Equal(t, "", normalizeAnswer("   "))
}

func TestQuestionDifficultyFor(t *testing.T) {
	assert.Equal(t, "easy", questionDifficultyFor(model.DifficultyBeginner))
	assert.Equal(t, "medium", questionDifficultyFor(model.DifficultyIntermediate))
	assert.Equal(t, "hard", questionDifficultyFor(model.DifficultyAdvanced))
	assert.Equal(t, "medium", questionDifficultyFor(""))
}

func TestFilterConcepts(t *testing.T) {
	concepts := testConcepts()

	filtered := filterConcepts(concepts, []string{"c-posenc", "c-attention"})

	require.Len(t, filtered, 2)
	assert.Equal(t, "c-attention", filtered[0].ID)
	assert.Equal(t, "c-posenc", filtered[1].ID)
}

func TestConceptContextPicksMentioningSections(t *testing.T) {
	sections := []model.Section{
		{Title: "Intro", Content: "Recurrent models process tokens sequentially."},
		{Title: "Attention", Content: "Scaled dot-product attention uses softmax over key similarities."},
	}

	context := conceptContext(sections, "Attention")

	assert.Contains(t, context, "softmax over key similarities")
	assert.NotContains(t, context, "Recurrent models")
}
