package repository

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"scholarly-backend/internal/db"
	"scholarly-backend/internal/model"
	"scholarly-backend/utilities"
)

var ErrQuizNotFound = errors.New("quiz not found")

type QuizRepository interface {
	CreateQuiz(quiz *model.Quiz) error
	GetQuizByID(quizID string) (*model.Quiz, error)
	AppendResult(result *model.QuizResult) error
	GetResultsByUserAndPaper(userID, paperID string) ([]model.QuizResult, error)
	GetResultsByUser(userID string) ([]model.QuizResult, error)
}

type quizRepository struct{}

func NewQuizRepository() QuizRepository {
	return &quizRepository{}
}

func (r *quizRepository) CreateQuiz(quiz *model.Quiz) error {
	for i := range quiz.Questions {
		if quiz.Questions[i].Options != nil {
			raw, err := json.Marshal(quiz.Questions[i].Options)
			if err != nil {
				return err
			}
			quiz.Questions[i].Choices = string(raw)
		}
	}
	return db.GetDB().Create(quiz).Error
}

func (r *quizRepository) GetQuizByID(quizID string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := db.GetDB().Preload("Questions").Where("id = ?", quizID).First(&quiz).Error
	if err != nil {
		return nil, ErrQuizNotFound
	}
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		if q.Choices != "" {
			if err := json.Unmarshal([]byte(q.Choices), &q.Options); err != nil {
				utilities.Warn("question %s has unreadable choices, serving without options: %v", q.ID, err)
			}
		}
	}
	return &quiz, nil
}

// AppendResult is the single serialization point for a user-paper history:
// one graded submission becomes exactly one row, inside a transaction.
func (r *quizRepository) AppendResult(result *model.QuizResult) error {
	if err := encodeQuizResult(result); err != nil {
		return err
	}
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		return tx.Model(&model.StudySession{}).
			Where("user_id = ? AND paper_id = ? AND end_time IS NULL", result.UserID, result.PaperID).
			Update("quiz_taken", true).Error
	})
}

func (r *quizRepository) GetResultsByUserAndPaper(userID, paperID string) ([]model.QuizResult, error) {
	var rows []model.QuizResult
	err := db.GetDB().
		Where("user_id = ? AND paper_id = ?", userID, paperID).
		Order("submitted_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return decodeQuizResults(rows), nil
}

func (r *quizRepository) GetResultsByUser(userID string) ([]model.QuizResult, error) {
	var rows []model.QuizResult
	err := db.GetDB().
		Where("user_id = ?", userID).
		Order("submitted_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return decodeQuizResults(rows), nil
}

func encodeQuizResult(result *model.QuizResult) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return err
	}
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return err
	}
	weak, err := json.Marshal(result.WeakConcepts)
	if err != nil {
		return err
	}
	strong, err := json.Marshal(result.StrongConcepts)
	if err != nil {
		return err
	}
	result.AnswersJSON = string(answers)
	result.ConceptScores = string(scores)
	result.WeakConceptsRaw = string(weak)
	result.StrongRaw = string(strong)
	return nil
}

// decodeQuizResults rebuilds the typed fields from the stored JSON columns.
// A row that cannot be decoded is skipped with a warning so one corrupt
// record never poisons a whole history.
func decodeQuizResults(rows []model.QuizResult) []model.QuizResult {
	results := make([]model.QuizResult, 0, len(rows))
	for i := range rows {
		if err := decodeQuizResult(&rows[i]); err != nil {
			utilities.Warn("skipping corrupted quiz result %s: %v", rows[i].ID, err)
			continue
		}
		results = append(results, rows[i])
	}
	return results
}

func decodeQuizResult(row *model.QuizResult) error {
	if row.ConceptScores != "" {
		if err := json.Unmarshal([]byte(row.ConceptScores), &row.Scores); err != nil {
			return err
		}
	}
	if row.AnswersJSON != "" {
		if err := json.Unmarshal([]byte(row.AnswersJSON), &row.Answers); err != nil {
			return err
		}
	}
	if row.WeakConceptsRaw != "" {
		if err := json.Unmarshal([]byte(row.WeakConceptsRaw), &row.WeakConcepts); err != nil {
			return err
		}
	}
	if row.StrongRaw != "" {
		if err := json.Unmarshal([]byte(row.StrongRaw), &row.StrongConcepts); err != nil {
			return err
		}
	}
	return nil
}
