package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
	"scholarly-backend/utilities"
)

// SM-2 constants
const (
	MinEaseFactor     = 1.3
	InitialEaseFactor = 2.5
)

// SpacedRepetitionService schedules concept reviews with an SM-2 variant
// whose recall quality is derived from quiz scores instead of self-reports.
type SpacedRepetitionService interface {
	UpdateConceptUnderstanding(u model.ConceptUnderstanding, result model.QuizResult, conceptID string) model.ConceptUnderstanding
	ConceptsDueForReview(us []model.ConceptUnderstanding, includeNew bool) []string
	PrioritizeConceptsForReview(us []model.ConceptUnderstanding, maxConcepts int) []string
	CalculateRetention(us []model.ConceptUnderstanding) model.RetentionStats
	PredictForgettingCurve(u model.ConceptUnderstanding, daysAhead int) []model.RetentionPoint

	ApplyQuizResult(result model.QuizResult) error
	DueForReview(userID, paperID string) ([]string, error)
	ReviewQueue(userID string, maxConcepts int) ([]string, error)
	Understandings(userID, paperID string) ([]model.ConceptUnderstanding, error)
	ForgettingCurve(userID, conceptID string, daysAhead int) ([]model.RetentionPoint, error)
}

type spacedRepetitionService struct {
	progressRepo repository.ProgressRepository
	now          func() time.Time
}

func NewSpacedRepetitionService(progressRepo repository.ProgressRepository) SpacedRepetitionService {
	return &spacedRepetitionService{
		progressRepo: progressRepo,
		now:          time.Now,
	}
}

// InitSpacedRepetitionEventListeners wires the scheduler to quiz
// submissions: every graded result updates the understanding records for
// the concepts it scored, off the request path.
func InitSpacedRepetitionEventListeners(srs SpacedRepetitionService) {
	utilities.GlobalEventBus.Subscribe(utilities.EventQuizSubmitted, func(data interface{}) {
		result, ok := data.(model.QuizResult)
		if !ok {
			utilities.Warn("quiz_submitted event carried unexpected payload %T", data)
			return
		}
		if err := srs.ApplyQuizResult(result); err != nil {
			utilities.Error("failed to apply quiz result %s to review schedule: %v", result.ID, err)
		}
	})
}

// UpdateConceptUnderstanding applies one graded review event. When the
// result carries no score for the concept this is a no-op returning the
// input unchanged.
func (s *spacedRepetitionService) UpdateConceptUnderstanding(u model.ConceptUnderstanding, result model.QuizResult, conceptID string) model.ConceptUnderstanding {
	score, ok := result.Scores[conceptID]
	if !ok {
		return u
	}

	u.TimesQuizzed++
	if score >= 0.5 { // 50% counts as "correct" for multi-question concepts
		u.CorrectAnswers++
	}

	u = s.sm2(u, scoreToQuality(score))

	u.ConfidenceLevel = math.Min(float64(u.CorrectAnswers)/float64(u.TimesQuizzed), 1.0)

	// Recomputed every update, not latched: a later poor quiz can pull
	// confidence back under the bar and flip this off again.
	u.IsUnderstood = u.ConfidenceLevel >= 0.8 && u.TimesQuizzed >= 2

	return u
}

func (s *spacedRepetitionService) sm2(u model.ConceptUnderstanding, quality int) model.ConceptUnderstanding {
	if quality < 3 {
		// Failed recall: restart the interval. The ease reset is a fixed
		// step down from the initial ease, not a decrement of the current
		// one.
		u.IntervalDays = 1
		u.EaseFactor = math.Max(InitialEaseFactor-0.2, MinEaseFactor)
	} else {
		q := float64(quality)
		u.EaseFactor = math.Max(u.EaseFactor+(0.1-(5-q)*(0.08+(5-q)*0.02)), MinEaseFactor)

		if u.IntervalDays == 1 {
			u.IntervalDays = 6
		} else {
			u.IntervalDays = int(float64(u.IntervalDays) * u.EaseFactor)
		}
	}

	now := s.now().UTC()
	next := now.AddDate(0, 0, u.IntervalDays)
	u.LastReviewed = &now
	u.NextReview = &next
	u.TimesReviewed++

	return u
}

// scoreToQuality converts a 0-1 concept score to the SM-2 0-5 quality
// scale.
//
//	5: perfect recall
//	4: correct with hesitation
//	3: correct with difficulty
//	2: incorrect but remembered
//	1: incorrect, familiar
//	0: complete blackout
func scoreToQuality(score float64) int {
	switch {
	case score >= 0.95:
		return 5
	case score >= 0.8:
		return 4
	case score >= 0.6:
		return 3
	case score >= 0.4:
		return 2
	case score >= 0.2:
		return 1
	default:
		return 0
	}
}

// ConceptsDueForReview returns the concept ids whose next review has
// arrived. Never-reviewed concepts are due by default when includeNew is
// set.
func (s *spacedRepetitionService) ConceptsDueForReview(us []model.ConceptUnderstanding, includeNew bool) []string {
	now := s.now().UTC()
	var due []string
	for _, u := range us {
		if u.LastReviewed == nil {
			if includeNew {
				due = append(due, u.ConceptID)
			}
			continue
		}
		if u.NextReview != nil && !u.NextReview.After(now) {
			due = append(due, u.ConceptID)
		}
	}
	return due
}

// PrioritizeConceptsForReview ranks concepts by urgency: overdue-ness,
// low confidence, stalled progress, and never-quizzed. Ties keep input
// order (stable sort, no secondary key).
func (s *spacedRepetitionService) PrioritizeConceptsForReview(us []model.ConceptUnderstanding, maxConcepts int) []string {
	now := s.now().UTC()

	type scored struct {
		conceptID string
		score     float64
	}
	ranked := make([]scored, 0, len(us))

	for _, u := range us {
		score := 0.0

		if u.NextReview != nil {
			daysOverdue := int(now.Sub(*u.NextReview).Hours() / 24)
			if daysOverdue > 0 {
				score += math.Min(float64(daysOverdue), 10)
			}
		} else {
			// Never reviewed - high priority
			score += 8
		}

		score += (1.0 - u.ConfidenceLevel) * 5

		if !u.IsUnderstood && u.TimesReviewed > 0 {
			score += 3
		}

		if u.TimesQuizzed == 0 {
			score += 2
		}

		ranked = append(ranked, scored{conceptID: u.ConceptID, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if maxConcepts > 0 && len(ranked) > maxConcepts {
		ranked = ranked[:maxConcepts]
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.conceptID
	}
	return ids
}

// CalculateRetention reports aggregate retention over understanding
// records. Classification runs through the same threshold policy as the
// mastery path so the two endpoints can never diverge.
func (s *spacedRepetitionService) CalculateRetention(us []model.ConceptUnderstanding) model.RetentionStats {
	stats := model.RetentionStats{}
	total := len(us)
	if total == 0 {
		return stats
	}

	var confidenceSum float64
	for _, u := range us {
		confidenceSum += u.ConfidenceLevel
		switch model.ClassifyMastery(u.ConfidenceLevel, u.TimesQuizzed) {
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

// PredictForgettingCurve samples predicted retention every 5 days out to
// daysAhead using R(t) = confidence * e^(-t/strength). Display heuristic
// only; the scheduler never reads it.
func (s *spacedRepetitionService) PredictForgettingCurve(u model.ConceptUnderstanding, daysAhead int) []model.RetentionPoint {
	if u.LastReviewed == nil {
		return nil
	}

	strength := math.Max(float64(u.IntervalDays)*u.EaseFactor/2, 1)

	var points []model.RetentionPoint
	for day := 0; day <= daysAhead; day += 5 {
		retention := u.ConfidenceLevel * math.Exp(-float64(day)/strength)
		points = append(points, model.RetentionPoint{
			Date:               u.LastReviewed.AddDate(0, 0, day),
			DaysSinceReview:    day,
			PredictedRetention: math.Min(retention, 1.0),
		})
	}
	return points
}

// ApplyQuizResult loads or creates the understanding record for every
// concept the result scored and runs one review update on each.
func (s *spacedRepetitionService) ApplyQuizResult(result model.QuizResult) error {
	for conceptID := range result.Scores {
		u, err := s.progressRepo.GetUnderstanding(result.UserID, conceptID)
		switch {
		case errors.Is(err, repository.ErrUnderstandingNotFound):
			u = &model.ConceptUnderstanding{
				UserID:       result.UserID,
				ConceptID:    conceptID,
				PaperID:      result.PaperID,
				EaseFactor:   InitialEaseFactor,
				IntervalDays: 1,
			}
		case err != nil:
			// A transient load failure must not reset the concept's
			// schedule to first-encounter defaults.
			return fmt.Errorf("failed to load understanding for concept %s: %w", conceptID, err)
		}
		updated := s.UpdateConceptUnderstanding(*u, result, conceptID)
		updated.ID = u.ID
		if err := s.progressRepo.SaveUnderstanding(&updated); err != nil {
			return fmt.Errorf("failed to save understanding for concept %s: %w", conceptID, err)
		}
	}
	return nil
}

func (s *spacedRepetitionService) DueForReview(userID, paperID string) ([]string, error) {
	us, err := s.progressRepo.GetUnderstandingsByUserAndPaper(userID, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load understandings: %w", err)
	}
	return s.ConceptsDueForReview(us, true), nil
}

func (s *spacedRepetitionService) ReviewQueue(userID string, maxConcepts int) ([]string, error) {
	us, err := s.progressRepo.GetUnderstandingsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load understandings: %w", err)
	}
	return s.PrioritizeConceptsForReview(us, maxConcepts), nil
}

func (s *spacedRepetitionService) Understandings(userID, paperID string) ([]model.ConceptUnderstanding, error) {
	return s.progressRepo.GetUnderstandingsByUserAndPaper(userID, paperID)
}

func (s *spacedRepetitionService) ForgettingCurve(userID, conceptID string, daysAhead int) ([]model.RetentionPoint, error) {
	u, err := s.progressRepo.GetUnderstanding(userID, conceptID)
	if err != nil {
		return nil, fmt.Errorf("no review history for concept %s: %w", conceptID, err)
	}
	return s.PredictForgettingCurve(*u, daysAhead), nil
}
