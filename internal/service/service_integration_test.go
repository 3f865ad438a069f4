package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarly-backend/internal/model"
)

func seedFakes() (*fakePaperRepo, *fakeQuizRepo, *fakeProgressRepo) {
	paperRepo := newFakePaperRepo()
	quizRepo := newFakeQuizRepo()
	progressRepo := newFakeProgressRepo()

	paperRepo.papers["paper-1"] = &model.Paper{
		ID:        "paper-1",
		UserID:    "user-1",
		Title:     "Attention Is All You Need",
		Status:    model.PaperStatusReady,
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	paperRepo.concepts["paper-1"] = []model.Concept{
		{ID: "c-a", PaperID: "paper-1", Name: "Concept A", ImportanceScore: 0.9},
		{ID: "c-b", PaperID: "paper-1", Name: "Concept B", ImportanceScore: 0.5},
	}
	return paperRepo, quizRepo, progressRepo
}

func TestMasteryServicePaperProgress(t *testing.T) {
	paperRepo, quizRepo, progressRepo := seedFakes()

	quizRepo.results = []model.QuizResult{
		{
			UserID:          "user-1",
			PaperID:         "paper-1",
			Scores:          map[string]float64{"c-a": 1.0, "c-b": 0.5},
			ScorePercentage: 75,
			SubmittedAt:     time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC),
		},
	}
	progressRepo.sessions["s1"] = &model.StudySession{
		ID:        "s1",
		UserID:    "user-1",
		PaperID:   "paper-1",
		StartTime: time.Date(2025, 3, 2, 11, 0, 0, 0, time.UTC),
		Duration:  1800,
	}

	svc := NewMasteryService(paperRepo, quizRepo, progressRepo)

	progress, err := svc.PaperProgress("user-1", "paper-1")
	require.NoError(t, err)

	assert.Equal(t, 75, progress.CompletionPercentage)
	assert.Equal(t, 1, progress.QuizAttempts)
	assert.InDelta(t, 75.0, progress.AverageQuizScore, 1e-9)
	assert.Equal(t, 1800, progress.TotalStudyTime)
	require.NotNil(t, progress.LastStudied)
	require.Len(t, progress.ConceptsMastery, 2)
	assert.InDelta(t, 1.0, progress.ConceptsMastery[0].MasteryLevel, 1e-9)
	assert.InDelta(t, 0.5, progress.ConceptsMastery[1].MasteryLevel, 1e-9)
}

func TestMasteryServiceUnknownPaper(t *testing.T) {
	paperRepo, quizRepo, progressRepo := seedFakes()
	svc := NewMasteryService(paperRepo, quizRepo, progressRepo)

	_, err := svc.PaperProgress("user-1", "paper-missing")
	assert.Error(t, err)
}

func TestApplyQuizResultCreatesAndUpdatesUnderstandings(t *testing.T) {
	_, _, progressRepo := seedFakes()

	s := &spacedRepetitionService{
		progressRepo: progressRepo,
		now:          func() time.Time { return testNow },
	}

	result := model.QuizResult{
		ID:      "r1",
		UserID:  "user-1",
		PaperID: "paper-1",
		Scores:  map[string]float64{"c-a": 1.0, "c-b": 0.0},
	}
	require.NoError(t, s.ApplyQuizResult(result))

	strong, err := progressRepo.GetUnderstanding("user-1", "c-a")
	require.NoError(t, err)
	assert.Equal(t, 6, strong.IntervalDays)
	assert.InDelta(t, 2.6, strong.EaseFactor, 1e-9)
	assert.Equal(t, 1, strong.TimesQuizzed)

	weak, err := progressRepo.GetUnderstanding("user-1", "c-b")
	require.NoError(t, err)
	assert.Equal(t, 1, weak.IntervalDays)
	assert.InDelta(t, 2.3, weak.EaseFactor, 1e-9)
	assert.Zero(t, weak.CorrectAnswers)

	// A second submission updates in place rather than duplicating.
	require.NoError(t, s.ApplyQuizResult(result))
	strong, err = progressRepo.GetUnderstanding("user-1", "c-a")
	require.NoError(t, err)
	assert.Equal(t, 2, strong.TimesQuizzed)
	assert.Equal(t, 2, strong.TimesReviewed)
}

func TestApplyQuizResultPropagatesLoadFailures(t *testing.T) {
	_, _, progressRepo := seedFakes()

	s := &spacedRepetitionService{
		progressRepo: progressRepo,
		now:          func() time.Time { return testNow },
	}

	result := model.QuizResult{
		ID:      "r1",
		UserID:  "user-1",
		PaperID: "paper-1",
		Scores:  map[string]float64{"c-a": 1.0},
	}
	require.NoError(t, s.ApplyQuizResult(result))

	// A load failure is not a first encounter; the existing schedule must
	// survive untouched.
	progressRepo.loadErr = errors.New("connection reset")
	err := s.ApplyQuizResult(result)
	require.Error(t, err)
	assert.ErrorContains(t, err, "c-a")

	progressRepo.loadErr = nil
	u, err := progressRepo.GetUnderstanding("user-1", "c-a")
	require.NoError(t, err)
	assert.Equal(t, 1, u.TimesQuizzed)
	assert.Equal(t, 6, u.IntervalDays)
}

func TestProgressServiceSummary(t *testing.T) {
	paperRepo, quizRepo, progressRepo := seedFakes()

	quizRepo.results = []model.QuizResult{
		{
			UserID:          "user-1",
			PaperID:         "paper-1",
			Scores:          map[string]float64{"c-a": 1.0, "c-b": 0.9},
			ScorePercentage: 95,
			SubmittedAt:     testNow.AddDate(0, 0, -1),
		},
	}
	progressRepo.sessions["s1"] = &model.StudySession{
		ID: "s1", UserID: "user-1", PaperID: "paper-1",
		StartTime: testNow.Add(-2 * time.Hour), Duration: 3600,
	}
	progressRepo.sessions["s2"] = &model.StudySession{
		ID: "s2", UserID: "user-1", PaperID: "paper-1",
		StartTime: testNow.AddDate(0, 0, -1), Duration: 1200,
	}

	mastery := NewMasteryService(paperRepo, quizRepo, progressRepo)
	svc := &progressService{
		paperRepo:    paperRepo,
		quizRepo:     quizRepo,
		progressRepo: progressRepo,
		mastery:      mastery,
		now:          func() time.Time { return testNow },
	}

	summary, err := svc.Summary("user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalPapersStudied)
	assert.Equal(t, 1, summary.PapersMastered) // (1.0+0.9)/2 = 95%
	assert.Equal(t, 2, summary.TotalConcepts)
	assert.Equal(t, 2, summary.ConceptsLearned)
	assert.InDelta(t, 95.0, summary.AverageQuizScore, 1e-9)
	assert.Equal(t, 2, summary.StudyStreak)
	assert.Equal(t, 4800, summary.TotalStudyTime)
	assert.Len(t, summary.RecentActivity, 2)
	require.NotEmpty(t, summary.Insights)
	assert.Equal(t, model.InsightAchievement, summary.Insights[0].Type)
}

func TestStartAndEndSession(t *testing.T) {
	paperRepo, quizRepo, progressRepo := seedFakes()
	mastery := NewMasteryService(paperRepo, quizRepo, progressRepo)

	start := testNow
	current := start
	svc := &progressService{
		paperRepo:    paperRepo,
		quizRepo:     quizRepo,
		progressRepo: progressRepo,
		mastery:      mastery,
		now:          func() time.Time { return current },
	}

	session, err := svc.StartSession("user-1", "paper-1")
	require.NoError(t, err)
	assert.Equal(t, start, session.StartTime)

	current = start.Add(45 * time.Minute)
	require.NoError(t, svc.EndSession(session.ID))

	stored := progressRepo.sessions[session.ID]
	require.NotNil(t, stored.EndTime)
	assert.Equal(t, 2700, stored.Duration)

	_, err = svc.StartSession("user-1", "paper-missing")
	assert.Error(t, err)
}
