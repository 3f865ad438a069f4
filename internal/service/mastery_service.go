package service

import (
	"fmt"
	"math"
	"time"

	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
)

// MasteryService derives per-concept mastery and per-paper progress from
// the append-only quiz-result history. Nothing here is incremental: every
// read replays the full history, so a retried or concurrent submission can
// never corrupt the aggregate.
type MasteryService interface {
	ConceptMasteries(userID, paperID string) ([]model.ConceptMastery, error)
	PaperProgress(userID, paperID string) (*model.UserProgress, error)
	RetentionStats(userID, paperID string) (*model.RetentionStats, error)
}

type masteryService struct {
	paperRepo    repository.PaperRepository
	quizRepo     repository.QuizRepository
	progressRepo repository.ProgressRepository
}

func NewMasteryService(paperRepo repository.PaperRepository, quizRepo repository.QuizRepository, progressRepo repository.ProgressRepository) MasteryService {
	return &masteryService{
		paperRepo:    paperRepo,
		quizRepo:     quizRepo,
		progressRepo: progressRepo,
	}
}

func (s *masteryService) ConceptMasteries(userID, paperID string) ([]model.ConceptMastery, error) {
	if _, err := s.paperRepo.GetPaperByID(paperID); err != nil {
		return nil, err
	}
	concepts, err := s.paperRepo.GetConceptsByPaper(paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load concepts: %w", err)
	}
	results, err := s.quizRepo.GetResultsByUserAndPaper(userID, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz results: %w", err)
	}
	return AggregateMastery(paperID, concepts, results), nil
}

func (s *masteryService) PaperProgress(userID, paperID string) (*model.UserProgress, error) {
	paper, err := s.paperRepo.GetPaperByID(paperID)
	if err != nil {
		return nil, err
	}
	concepts, err := s.paperRepo.GetConceptsByPaper(paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load concepts: %w", err)
	}
	results, err := s.quizRepo.GetResultsByUserAndPaper(userID, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz results: %w", err)
	}
	sessions, err := s.progressRepo.GetSessionsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load study sessions: %w", err)
	}

	masteries := AggregateMastery(paperID, concepts, results)

	progress := &model.UserProgress{
		UserID:               userID,
		PaperID:              paperID,
		ConceptsMastery:      masteries,
		CompletionPercentage: CompletionPercentage(masteries),
		QuizAttempts:         len(results),
		AverageQuizScore:     AverageQuizScore(results),
		StartedAt:            paper.CreatedAt,
	}

	for _, session := range sessions {
		if session.PaperID != paperID {
			continue
		}
		progress.TotalStudyTime += session.Duration
		if progress.LastStudied == nil || session.StartTime.After(*progress.LastStudied) {
			t := session.StartTime
			progress.LastStudied = &t
		}
	}

	return progress, nil
}

func (s *masteryService) RetentionStats(userID, paperID string) (*model.RetentionStats, error) {
	masteries, err := s.ConceptMasteries(userID, paperID)
	if err != nil {
		return nil, err
	}
	stats := RetentionFromMastery(masteries)
	return &stats, nil
}

// AggregateMastery folds the full quiz-result history into one
// ConceptMastery per concept of the paper. Mastery is the mean of every
// per-concept score observation across all results; a concept never tested
// still appears with zero mastery. Score entries referencing concept ids
// that are not in the current concept set are ignored: the graph may have
// been regenerated since the result was recorded.
func AggregateMastery(paperID string, concepts []model.Concept, results []model.QuizResult) []model.ConceptMastery {
	type observation struct {
		scores []float64
		last   time.Time
	}
	observations := make(map[string]*observation, len(concepts))
	for _, concept := range concepts {
		observations[concept.ID] = &observation{}
	}

	for _, result := range results {
		for conceptID, score := range result.Scores {
			obs, known := observations[conceptID]
			if !known {
				continue
			}
			obs.scores = append(obs.scores, score)
			if result.SubmittedAt.After(obs.last) {
				obs.last = result.SubmittedAt
			}
		}
	}

	masteries := make([]model.ConceptMastery, 0, len(concepts))
	for _, concept := range concepts {
		obs := observations[concept.ID]
		mastery := model.ConceptMastery{
			ConceptID:        concept.ID,
			ConceptName:      concept.Name,
			PaperID:          paperID,
			FirstEncountered: concept.CreatedAt,
		}
		if n := len(obs.scores); n > 0 {
			mastery.MasteryLevel = mean(obs.scores)
			mastery.TimesQuizzed = n
			mastery.TimesReviewed = n
			last := obs.last
			mastery.LastReviewed = &last
		}
		masteries = append(masteries, mastery)
	}
	return masteries
}

// CompletionPercentage is the rounded mean mastery across all concept
// records, as a 0-100 integer.
func CompletionPercentage(masteries []model.ConceptMastery) int {
	if len(masteries) == 0 {
		return 0
	}
	var total float64
	for _, m := range masteries {
		total += m.MasteryLevel
	}
	return int(math.Round(total / float64(len(masteries)) * 100))
}

func AverageQuizScore(results []model.QuizResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var total float64
	for _, r := range results {
		total += r.ScorePercentage
	}
	return total / float64(len(results))
}

// RetentionFromMastery classifies every concept record through the shared
// threshold policy and reports the counts. Average confidence on this path
// is the mean mastery level.
func RetentionFromMastery(masteries []model.ConceptMastery) model.RetentionStats {
	stats := model.RetentionStats{}
	total := len(masteries)
	if total == 0 {
		return stats
	}

	var confidenceSum float64
	for _, m := range masteries {
		confidenceSum += m.MasteryLevel
		switch model.ClassifyMastery(m.MasteryLevel, m.TimesQuizzed) {
		case model.MasteryMastered:
			stats.ConceptsMastered++
		case model.MasteryStruggling:
			stats.ConceptsStruggling++
		}
	}
	stats.ConceptsInProgress = total - stats.ConceptsMastered - stats.ConceptsStruggling
	stats.OverallRetention = float64(stats.ConceptsMastered) / float64(total)
	stats.AverageConfidence = confidenceSum / float64(total)
	return stats
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
