package model

import "time"

type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Password  string    `json:"password,omitempty"` // Exclude from JSON responses
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Paper statuses
const (
	PaperStatusProcessing = "processing"
	PaperStatusReady      = "ready"
	PaperStatusError      = "error"
)

type Paper struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"index"`
	Filename    string     `json:"filename" gorm:"not null"`
	Title       string     `json:"title"`
	Status      string     `json:"status" gorm:"default:'processing'"` // processing, ready, error
	TotalPages  int        `json:"total_pages"`
	Sections    []Section  `json:"sections" gorm:"foreignKey:PaperID"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Section struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	PaperID   string    `json:"paper_id" gorm:"index"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	PageStart int       `json:"page_start"`
	PageEnd   int       `json:"page_end"`
	CreatedAt time.Time `json:"created_at"`
}

// PaperSummary is the cached LLM summary of a paper: one row per paper,
// replaced wholesale on regeneration.
type PaperSummary struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	PaperID          string    `json:"paper_id" gorm:"uniqueIndex"`
	OverallSummary   string    `json:"overall_summary"`
	KeyFindingsRaw   string    `json:"-" gorm:"column:key_findings"`      // JSON array of strings
	SectionSummaries string    `json:"-" gorm:"column:section_summaries"` // JSON map section_id -> summary
	DifficultyLevel  string    `json:"difficulty_level" gorm:"default:'intermediate'"` // beginner, intermediate, advanced
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	KeyFindings []string          `json:"key_findings" gorm:"-"`
	Summaries   map[string]string `json:"section_summaries" gorm:"-"`
}

// Concept difficulty tiers
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

type Concept struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	PaperID         string    `json:"paper_id" gorm:"index"`
	Name            string    `json:"name" gorm:"not null"`
	Definition      string    `json:"definition"`
	Explanation     string    `json:"explanation"`
	Difficulty      string    `json:"difficulty" gorm:"default:'intermediate'"` // beginner, intermediate, advanced
	ImportanceScore float64   `json:"importance_score" gorm:"default:0.5"`      // 0-1, how central this concept is
	CreatedAt       time.Time `json:"created_at"`
}

type ConceptEdge struct {
	ID               uint    `json:"id" gorm:"primaryKey"`
	PaperID          string  `json:"paper_id" gorm:"index"`
	SourceID         string  `json:"source_id"`
	TargetID         string  `json:"target_id"`
	RelationshipType string  `json:"relationship_type"` // prerequisite, related
	Strength         float64 `json:"strength" gorm:"default:1.0"`
}

type Quiz struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	PaperID        string     `json:"paper_id" gorm:"index"`
	UserID         string     `json:"user_id" gorm:"index"`
	Title          string     `json:"title"`
	TotalQuestions int        `json:"total_questions"`
	Difficulty     string     `json:"difficulty"` // easy, medium, hard
	IsAdaptive     bool       `json:"is_adaptive"`
	Questions      []Question `json:"questions" gorm:"foreignKey:QuizID"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Question struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	QuizID        string    `json:"quiz_id" gorm:"index"`
	ConceptID     string    `json:"concept_id"`
	PaperID       string    `json:"paper_id"`
	Type          string    `json:"type"`       // multiple_choice, true_false, short_answer
	Difficulty    string    `json:"difficulty"` // easy, medium, hard
	Text          string    `json:"question" gorm:"not null"`
	Choices       string    `json:"-" gorm:"column:choices"` // JSON array of choices
	CorrectAnswer string    `json:"correct_answer" gorm:"not null"`
	Explanation   string    `json:"explanation"`
	CreatedAt     time.Time `json:"created_at"`

	Options []string `json:"options" gorm:"-"`
}

// QuizResult is the graded outcome of one quiz submission. Rows are
// append-only per (user, paper); mastery is always recomputed from the full
// history rather than mutated in place.
type QuizResult struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	QuizID          string    `json:"quiz_id"`
	UserID          string    `json:"user_id" gorm:"index:idx_results_user_paper"`
	PaperID         string    `json:"paper_id" gorm:"index:idx_results_user_paper"`
	AnswersJSON     string    `json:"-" gorm:"column:answers"`         // JSON array of QuizAnswer
	ConceptScores   string    `json:"-" gorm:"column:concept_scores"`  // JSON map concept_id -> avg score
	WeakConceptsRaw string    `json:"-" gorm:"column:weak_concepts"`   // JSON array of concept ids
	StrongRaw       string    `json:"-" gorm:"column:strong_concepts"` // JSON array of concept ids
	ScorePercentage float64   `json:"score_percentage"`
	TotalQuestions  int       `json:"total_questions"`
	CorrectAnswers  int       `json:"correct_answers"`
	TimeTaken       int       `json:"time_taken"`
	SubmittedAt     time.Time `json:"submitted_at"`

	Answers        []QuizAnswer       `json:"answers" gorm:"-"`
	Scores         map[string]float64 `json:"concept_scores" gorm:"-"`
	WeakConcepts   []string           `json:"weak_concepts" gorm:"-"`
	StrongConcepts []string           `json:"strong_concepts" gorm:"-"`
}

type QuizAnswer struct {
	QuestionID string `json:"question_id"`
	UserAnswer string `json:"user_answer"`
	IsCorrect  bool   `json:"is_correct"`
	ConceptID  string `json:"concept_id"`
}

// ConceptUnderstanding is the spaced-repetition state for one
// (user, concept) pair. Created with SM-2 defaults on first encounter and
// mutated once per graded review event.
type ConceptUnderstanding struct {
	ID              uint       `json:"-" gorm:"primaryKey"`
	UserID          string     `json:"user_id" gorm:"index:idx_understanding_user_concept,unique"`
	ConceptID       string     `json:"concept_id" gorm:"index:idx_understanding_user_concept,unique"`
	PaperID         string     `json:"paper_id" gorm:"index"`
	IsUnderstood    bool       `json:"is_understood"`
	ConfidenceLevel float64    `json:"confidence_level"` // 0-1
	TimesReviewed   int        `json:"times_reviewed"`
	TimesQuizzed    int        `json:"times_quizzed"`
	CorrectAnswers  int        `json:"correct_answers"`
	LastReviewed    *time.Time `json:"last_reviewed,omitempty"`
	NextReview      *time.Time `json:"next_review,omitempty"`
	EaseFactor      float64    `json:"ease_factor" gorm:"default:2.5"`
	IntervalDays    int        `json:"interval_days" gorm:"default:1"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type StudySession struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	UserID           string     `json:"user_id" gorm:"index"`
	PaperID          string     `json:"paper_id"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	Duration         int        `json:"duration"` // seconds
	QuizTaken        bool       `json:"quiz_taken"`
	ChatInteractions int        `json:"chat_interactions"`
}

type ChatSession struct {
	ID        string        `json:"id" gorm:"primaryKey"`
	UserID    string        `json:"user_id" gorm:"index"`
	PaperID   string        `json:"paper_id"`
	Mode      string        `json:"mode" gorm:"default:'socratic'"` // socratic, direct
	Messages  []ChatMessage `json:"messages" gorm:"foreignKey:SessionID"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type ChatMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"index"`
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
