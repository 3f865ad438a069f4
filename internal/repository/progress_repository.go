package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scholarly-backend/internal/db"
	"scholarly-backend/internal/model"
)

// ErrUnderstandingNotFound marks a (user, concept) pair with no review
// history yet. Callers create the initial record on this error only; any
// other error from GetUnderstanding is a real failure.
var ErrUnderstandingNotFound = errors.New("concept understanding not found")

type ProgressRepository interface {
	GetUnderstanding(userID, conceptID string) (*model.ConceptUnderstanding, error)
	GetUnderstandingsByUserAndPaper(userID, paperID string) ([]model.ConceptUnderstanding, error)
	GetUnderstandingsByUser(userID string) ([]model.ConceptUnderstanding, error)
	SaveUnderstanding(u *model.ConceptUnderstanding) error

	CreateStudySession(session *model.StudySession) error
	EndStudySession(sessionID string, endTime time.Time) error
	GetSessionsByUser(userID string) ([]model.StudySession, error)
}

type progressRepository struct{}

func NewProgressRepository() ProgressRepository {
	return &progressRepository{}
}

func (r *progressRepository) GetUnderstanding(userID, conceptID string) (*model.ConceptUnderstanding, error) {
	var u model.ConceptUnderstanding
	err := db.GetDB().Where("user_id = ? AND concept_id = ?", userID, conceptID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnderstandingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *progressRepository) GetUnderstandingsByUserAndPaper(userID, paperID string) ([]model.ConceptUnderstanding, error) {
	var us []model.ConceptUnderstanding
	err := db.GetDB().
		Where("user_id = ? AND paper_id = ?", userID, paperID).
		Order("created_at asc").
		Find(&us).Error
	return us, err
}

func (r *progressRepository) GetUnderstandingsByUser(userID string) ([]model.ConceptUnderstanding, error) {
	var us []model.ConceptUnderstanding
	err := db.GetDB().
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&us).Error
	return us, err
}

// SaveUnderstanding upserts on the (user, concept) unique index so a repeat
// review updates the existing row.
func (r *progressRepository) SaveUnderstanding(u *model.ConceptUnderstanding) error {
	return db.GetDB().Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "concept_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_understood", "confidence_level", "times_reviewed", "times_quizzed",
			"correct_answers", "last_reviewed", "next_review", "ease_factor",
			"interval_days", "updated_at",
		}),
	}).Create(u).Error
}

func (r *progressRepository) CreateStudySession(session *model.StudySession) error {
	return db.GetDB().Create(session).Error
}

func (r *progressRepository) EndStudySession(sessionID string, endTime time.Time) error {
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		var session model.StudySession
		if err := tx.Where("id = ?", sessionID).First(&session).Error; err != nil {
			return err
		}
		duration := int(endTime.Sub(session.StartTime).Seconds())
		if duration < 0 {
			duration = 0
		}
		return tx.Model(&session).Updates(map[string]interface{}{
			"end_time": endTime,
			"duration": duration,
		}).Error
	})
}

func (r *progressRepository) GetSessionsByUser(userID string) ([]model.StudySession, error) {
	var sessions []model.StudySession
	err := db.GetDB().
		Where("user_id = ?", userID).
		Order("start_time desc").
		Find(&sessions).Error
	return sessions, err
}
