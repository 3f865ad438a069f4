package model

import "time"

// Mastery classifications. A concept is mastered at 0.8 and above,
// struggling below 0.5 once it has been quizzed at least once, and in
// progress otherwise. Every endpoint that reports a classification must go
// through ClassifyMastery so the cutoffs cannot drift apart.
const (
	MasteryMastered   = "mastered"
	MasteryInProgress = "in_progress"
	MasteryStruggling = "struggling"

	MasteredThreshold   = 0.8
	StrugglingThreshold = 0.5
)

func ClassifyMastery(level float64, timesQuizzed int) string {
	switch {
	case level >= MasteredThreshold:
		return MasteryMastered
	case level < StrugglingThreshold && timesQuizzed > 0:
		return MasteryStruggling
	default:
		return MasteryInProgress
	}
}

// ConceptMastery is derived, never stored: it is recomputed from the full
// quiz-result history on every read. MasteryLevel is the mean of all
// per-question correctness observations tagged to the concept.
type ConceptMastery struct {
	ConceptID        string     `json:"concept_id"`
	ConceptName      string     `json:"concept_name"`
	PaperID          string     `json:"paper_id"`
	MasteryLevel     float64    `json:"mastery_level"`
	TimesQuizzed     int        `json:"times_quizzed"`
	TimesReviewed    int        `json:"times_reviewed"`
	LastReviewed     *time.Time `json:"last_reviewed,omitempty"`
	FirstEncountered time.Time  `json:"first_encountered"`
}

// UserProgress is derived per (user, paper) from the quiz-result history and
// the paper's concept set.
type UserProgress struct {
	UserID               string           `json:"user_id"`
	PaperID              string           `json:"paper_id"`
	CompletionPercentage int              `json:"completion_percentage"`
	TotalStudyTime       int              `json:"total_study_time"`
	ConceptsMastery      []ConceptMastery `json:"concepts_mastery"`
	QuizAttempts         int              `json:"quiz_attempts"`
	AverageQuizScore     float64          `json:"average_quiz_score"`
	LastStudied          *time.Time       `json:"last_studied,omitempty"`
	StartedAt            time.Time        `json:"started_at"`
}

type RetentionStats struct {
	OverallRetention   float64 `json:"overall_retention"`
	ConceptsMastered   int     `json:"concepts_mastered"`
	ConceptsInProgress int     `json:"concepts_in_progress"`
	ConceptsStruggling int     `json:"concepts_struggling"`
	AverageConfidence  float64 `json:"average_confidence"`
}

// RetentionPoint is one sample of the forgetting-curve projection. The curve
// is a display heuristic only; scheduling decisions never consume it.
type RetentionPoint struct {
	Date               time.Time `json:"date"`
	DaysSinceReview    int       `json:"days_since_review"`
	PredictedRetention float64   `json:"predicted_retention"`
}

// Learning insight types
const (
	InsightAchievement = "achievement"
	InsightSuggestion  = "suggestion"
)

type LearningInsight struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Action    string    `json:"action,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ProgressSummary struct {
	UserID             string            `json:"user_id"`
	TotalPapersStudied int               `json:"total_papers_studied"`
	TotalStudyTime     int               `json:"total_study_time"`
	PapersMastered     int               `json:"papers_mastered"`
	ConceptsLearned    int               `json:"concepts_learned"`
	TotalConcepts      int               `json:"total_concepts"`
	AverageQuizScore   float64           `json:"average_quiz_score"`
	StudyStreak        int               `json:"study_streak"`
	RecentActivity     []StudySession    `json:"recent_activity"`
	Insights           []LearningInsight `json:"insights"`
}
