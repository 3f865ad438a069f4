package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scholarly-backend/internal/llm"
	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
	"scholarly-backend/utilities"
)

// Weak/strong cutoffs applied to per-concept averages when grading one
// submission.
const (
	weakConceptCutoff   = 0.7
	strongConceptCutoff = 0.9
)

type QuizService interface {
	GenerateQuiz(userID, paperID string, numQuestions int, difficulty string, focusConcepts []string) (*model.Quiz, error)
	GenerateAdaptiveQuiz(userID, paperID string, numQuestions int) (*model.Quiz, error)
	GetQuiz(quizID string) (*model.Quiz, error)
	SubmitQuiz(userID, quizID string, answers map[string]string, timeTaken int) (*model.QuizResult, error)
	GetResults(userID, paperID string) ([]model.QuizResult, error)
}

type quizService struct {
	paperRepo repository.PaperRepository
	quizRepo  repository.QuizRepository
	llmClient *llm.OllamaClient
	now       func() time.Time
}

func NewQuizService(paperRepo repository.PaperRepository, quizRepo repository.QuizRepository, llmClient *llm.OllamaClient) QuizService {
	return &quizService{
		paperRepo: paperRepo,
		quizRepo:  quizRepo,
		llmClient: llmClient,
		now:       time.Now,
	}
}

func (s *quizService) GenerateQuiz(userID, paperID string, numQuestions int, difficulty string, focusConcepts []string) (*model.Quiz, error) {
	if _, err := s.paperRepo.GetPaperByID(paperID); err != nil {
		return nil, err
	}
	concepts, err := s.paperRepo.GetConceptsByPaper(paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load concepts: %w", err)
	}
	if len(concepts) == 0 {
		return nil, errors.New("no concepts available for this paper")
	}

	if len(focusConcepts) > 0 {
		concepts = filterConcepts(concepts, focusConcepts)
	}
	if numQuestions > len(concepts) {
		numQuestions = len(concepts)
	}

	// Concepts arrive ordered by importance; quiz the most central ones.
	selected := concepts[:numQuestions]

	sections, err := s.paperRepo.GetSectionsByPaper(paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}

	quiz := &model.Quiz{
		ID:         uuid.New().String(),
		PaperID:    paperID,
		UserID:     userID,
		Difficulty: difficulty,
		CreatedAt:  s.now().UTC(),
	}

	for _, concept := range selected {
		questionDifficulty := difficulty
		if questionDifficulty == "" {
			questionDifficulty = questionDifficultyFor(concept.Difficulty)
		}

		generated, err := s.llmClient.GenerateQuestion(
			concept.Name, concept.Definition,
			conceptContext(sections, concept.Name), questionDifficulty)
		if err != nil {
			utilities.Warn("skipping question for concept %s: %v", concept.ID, err)
			continue
		}

		quiz.Questions = append(quiz.Questions, model.Question{
			ID:            uuid.New().String(),
			QuizID:        quiz.ID,
			ConceptID:     concept.ID,
			PaperID:       paperID,
			Type:          generated.Type,
			Difficulty:    questionDifficulty,
			Text:          generated.Question,
			Options:       generated.Options,
			CorrectAnswer: generated.CorrectAnswer,
			Explanation:   generated.Explanation,
		})
	}

	if len(quiz.Questions) == 0 {
		return nil, errors.New("failed to generate any questions")
	}

	quiz.TotalQuestions = len(quiz.Questions)
	quiz.Title = fmt.Sprintf("Concept Check Quiz - %d Questions", quiz.TotalQuestions)

	if err := s.quizRepo.CreateQuiz(quiz); err != nil {
		return nil, fmt.Errorf("failed to save quiz: %w", err)
	}
	return quiz, nil
}

// GenerateAdaptiveQuiz focuses on concepts the user has been scoring poorly
// on, padded with untested concepts when there are not enough weak ones.
func (s *quizService) GenerateAdaptiveQuiz(userID, paperID string, numQuestions int) (*model.Quiz, error) {
	pastResults, err := s.quizRepo.GetResultsByUserAndPaper(userID, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz results: %w", err)
	}
	if len(pastResults) == 0 {
		return s.GenerateQuiz(userID, paperID, numQuestions, "", nil)
	}

	concepts, err := s.paperRepo.GetConceptsByPaper(paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load concepts: %w", err)
	}

	focus := IdentifyWeakConcepts(pastResults)
	weakSet := make(map[string]bool, len(focus))
	for _, id := range focus {
		weakSet[id] = true
	}
	for _, concept := range concepts {
		if len(focus) >= numQuestions {
			break
		}
		if !weakSet[concept.ID] {
			focus = append(focus, concept.ID)
		}
	}

	quiz, err := s.GenerateQuiz(userID, paperID, numQuestions, "", focus)
	if err != nil {
		return nil, err
	}
	quiz.IsAdaptive = true
	quiz.Title = "Adaptive Quiz - Focus on Weak Areas"
	return quiz, nil
}

func (s *quizService) GetQuiz(quizID string) (*model.Quiz, error) {
	return s.quizRepo.GetQuizByID(quizID)
}

// SubmitQuiz grades a submission against the stored correct answers,
// averages per-question correctness into concept scores, and appends the
// result to the user-paper history. The append is the only write; mastery
// itself is recomputed on read.
func (s *quizService) SubmitQuiz(userID, quizID string, answers map[string]string, timeTaken int) (*model.QuizResult, error) {
	quiz, err := s.quizRepo.GetQuizByID(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.UserID != userID {
		return nil, errors.New("quiz belongs to another user")
	}

	result := GradeQuiz(quiz, answers)
	result.ID = uuid.New().String()
	result.UserID = userID
	result.TimeTaken = timeTaken
	result.SubmittedAt = s.now().UTC()

	if err := s.quizRepo.AppendResult(result); err != nil {
		return nil, fmt.Errorf("failed to store quiz result: %w", err)
	}

	utilities.GlobalEventBus.Publish(utilities.EventQuizSubmitted, *result)

	return result, nil
}

func (s *quizService) GetResults(userID, paperID string) ([]model.QuizResult, error) {
	return s.quizRepo.GetResultsByUserAndPaper(userID, paperID)
}

// GradeQuiz scores each answer by normalized string match and averages the
// per-question observations into one score per concept.
func GradeQuiz(quiz *model.Quiz, answers map[string]string) *model.QuizResult {
	result := &model.QuizResult{
		QuizID:         quiz.ID,
		PaperID:        quiz.PaperID,
		TotalQuestions: len(quiz.Questions),
		Scores:         make(map[string]float64),
	}

	rawScores := make(map[string][]float64)

	for _, question := range quiz.Questions {
		userAnswer := answers[question.ID]
		isCorrect := normalizeAnswer(userAnswer) == normalizeAnswer(question.CorrectAnswer)
		if isCorrect {
			result.CorrectAnswers++
		}

		result.Answers = append(result.Answers, model.QuizAnswer{
			QuestionID: question.ID,
			UserAnswer: userAnswer,
			IsCorrect:  isCorrect,
			ConceptID:  question.ConceptID,
		})

		if question.ConceptID != "" {
			score := 0.0
			if isCorrect {
				score = 1.0
			}
			rawScores[question.ConceptID] = append(rawScores[question.ConceptID], score)
		}
	}

	for conceptID, scores := range rawScores {
		avg := mean(scores)
		result.Scores[conceptID] = avg
		if avg < weakConceptCutoff {
			result.WeakConcepts = append(result.WeakConcepts, conceptID)
		} else if avg >= strongConceptCutoff {
			result.StrongConcepts = append(result.StrongConcepts, conceptID)
		}
	}

	if result.TotalQuestions > 0 {
		result.ScorePercentage = float64(result.CorrectAnswers) / float64(result.TotalQuestions) * 100
	}
	return result
}

// IdentifyWeakConcepts unions the weak-concept lists of past results.
func IdentifyWeakConcepts(results []model.QuizResult) []string {
	seen := make(map[string]bool)
	var weak []string
	for _, result := range results {
		for _, conceptID := range result.WeakConcepts {
			if !seen[conceptID] {
				seen[conceptID] = true
				weak = append(weak, conceptID)
			}
		}
	}
	return weak
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func questionDifficultyFor(conceptDifficulty string) string {
	switch conceptDifficulty {
	case model.DifficultyBeginner:
		return "easy"
	case model.DifficultyAdvanced:
		return "hard"
	default:
		return "medium"
	}
}

func filterConcepts(concepts []model.Concept, ids []string) []model.Concept {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var filtered []model.Concept
	for _, concept := range concepts {
		if idSet[concept.ID] {
			filtered = append(filtered, concept)
		}
	}
	return filtered
}

// conceptContext pulls the section excerpts that mention the concept, as a
// cheap stand-in for semantic retrieval.
func conceptContext(sections []model.Section, conceptName string) string {
	var builder strings.Builder
	needle := strings.ToLower(conceptName)
	for _, section := range sections {
		if !strings.Contains(strings.ToLower(section.Content), needle) {
			continue
		}
		excerpt := section.Content
		if len(excerpt) > 1200 {
			excerpt = excerpt[:1200]
		}
		builder.WriteString(excerpt)
		builder.WriteString("\n")
		if builder.Len() > 3600 {
			break
		}
	}
	return builder.String()
}
