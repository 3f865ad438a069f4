package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
)

// ProgressService composes cross-paper summaries and tracks study sessions.
type ProgressService interface {
	Summary(userID string) (*model.ProgressSummary, error)
	StartSession(userID, paperID string) (*model.StudySession, error)
	EndSession(sessionID string) error
}

type progressService struct {
	paperRepo    repository.PaperRepository
	quizRepo     repository.QuizRepository
	progressRepo repository.ProgressRepository
	mastery      MasteryService
	now          func() time.Time
}

func NewProgressService(paperRepo repository.PaperRepository, quizRepo repository.QuizRepository, progressRepo repository.ProgressRepository, mastery MasteryService) ProgressService {
	return &progressService{
		paperRepo:    paperRepo,
		quizRepo:     quizRepo,
		progressRepo: progressRepo,
		mastery:      mastery,
		now:          time.Now,
	}
}

func (s *progressService) Summary(userID string) (*model.ProgressSummary, error) {
	papers, err := s.paperRepo.GetPapersByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load papers: %w", err)
	}

	summary := &model.ProgressSummary{
		UserID:             userID,
		TotalPapersStudied: len(papers),
	}

	for _, paper := range papers {
		progress, err := s.mastery.PaperProgress(userID, paper.ID)
		if err != nil {
			return nil, err
		}

		summary.TotalStudyTime += progress.TotalStudyTime
		if progress.CompletionPercentage >= 80 {
			summary.PapersMastered++
		}
		for _, cm := range progress.ConceptsMastery {
			summary.TotalConcepts++
			if cm.MasteryLevel >= model.MasteredThreshold {
				summary.ConceptsLearned++
			}
		}
	}

	results, err := s.quizRepo.GetResultsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz results: %w", err)
	}
	summary.AverageQuizScore = AverageQuizScore(results)

	sessions, err := s.progressRepo.GetSessionsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load study sessions: %w", err)
	}

	now := s.now().UTC()
	summary.StudyStreak = StudyStreak(sessions, now)

	weekAgo := now.AddDate(0, 0, -7)
	for _, session := range sessions {
		if !session.StartTime.Before(weekAgo) {
			summary.RecentActivity = append(summary.RecentActivity, session)
		}
	}

	summary.Insights = GenerateInsights(results, sessions, now)

	return summary, nil
}

func (s *progressService) StartSession(userID, paperID string) (*model.StudySession, error) {
	if _, err := s.paperRepo.GetPaperByID(paperID); err != nil {
		return nil, err
	}
	session := &model.StudySession{
		ID:        uuid.New().String(),
		UserID:    userID,
		PaperID:   paperID,
		StartTime: s.now().UTC(),
	}
	if err := s.progressRepo.CreateStudySession(session); err != nil {
		return nil, fmt.Errorf("failed to create study session: %w", err)
	}
	return session, nil
}

func (s *progressService) EndSession(sessionID string) error {
	return s.progressRepo.EndStudySession(sessionID, s.now().UTC())
}

// StudyStreak counts consecutive calendar days of study ending today (UTC).
// The streak is 0 unless the user studied today: a session yesterday with
// none today does not count.
func StudyStreak(sessions []model.StudySession, now time.Time) int {
	if len(sessions) == 0 {
		return 0
	}

	today := truncateToDay(now.UTC())

	// Collapse sessions to their calendar days.
	days := make(map[time.Time]bool, len(sessions))
	for _, session := range sessions {
		days[truncateToDay(session.StartTime.UTC())] = true
	}

	if !days[today] {
		return 0
	}

	streak := 1
	for days[today.AddDate(0, 0, -streak)] {
		streak++
	}
	return streak
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GenerateInsights evaluates a fixed rule list in order, capped at five
// results.
func GenerateInsights(results []model.QuizResult, sessions []model.StudySession, now time.Time) []model.LearningInsight {
	var insights []model.LearningInsight

	if len(results) > 0 {
		avg := AverageQuizScore(results)
		if avg >= 80 {
			insights = append(insights, model.LearningInsight{
				Type:      model.InsightAchievement,
				Message:   fmt.Sprintf("Excellent quiz performance! Average score: %.1f%%", avg),
				Action:    "You're mastering the material!",
				Timestamp: now,
			})
		} else if avg < 60 {
			insights = append(insights, model.LearningInsight{
				Type:      model.InsightSuggestion,
				Message:   fmt.Sprintf("Quiz scores could improve. Current average: %.1f%%", avg),
				Action:    "Try reviewing weak concepts and using the tutor chat.",
				Timestamp: now,
			})
		}
	}

	if len(sessions) >= 3 {
		insights = append(insights, model.LearningInsight{
			Type:      model.InsightAchievement,
			Message:   fmt.Sprintf("Great consistency! You've completed %d study sessions.", len(sessions)),
			Action:    "Keep up the excellent study habits!",
			Timestamp: now,
		})
	}

	if len(insights) == 0 {
		insights = append(insights, model.LearningInsight{
			Type:      model.InsightSuggestion,
			Message:   "Start your learning journey!",
			Action:    "Take a quiz to begin tracking your progress.",
			Timestamp: now,
		})
	}

	if len(insights) > 5 {
		insights = insights[:5]
	}
	return insights
}
