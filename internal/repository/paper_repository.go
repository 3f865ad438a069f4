package repository

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"scholarly-backend/internal/db"
	"scholarly-backend/internal/model"
	"scholarly-backend/utilities"
)

// ErrPaperNotFound is returned when a paper id does not exist; controllers
// map it to 404.
var ErrPaperNotFound = errors.New("paper not found")

// ErrSummaryNotFound marks a paper whose summary has not been generated
// yet; the summary service generates and caches one on this error.
var ErrSummaryNotFound = errors.New("paper summary not found")

type PaperRepository interface {
	CreatePaper(paper *model.Paper) error
	GetPaperByID(paperID string) (*model.Paper, error)
	GetPapersByUser(userID string) ([]model.Paper, error)
	UpdatePaperStatus(paperID, status string) error
	SaveExtraction(paperID string, sections []model.Section, concepts []model.Concept, edges []model.ConceptEdge) error
	GetSectionsByPaper(paperID string) ([]model.Section, error)
	GetConceptsByPaper(paperID string) ([]model.Concept, error)
	GetEdgesByPaper(paperID string) ([]model.ConceptEdge, error)
	GetSummary(paperID string) (*model.PaperSummary, error)
	SaveSummary(summary *model.PaperSummary) error
	DeleteSummary(paperID string) error
	DeletePaper(paperID string) error
}

type paperRepository struct{}

func NewPaperRepository() PaperRepository {
	return &paperRepository{}
}

func (r *paperRepository) CreatePaper(paper *model.Paper) error {
	return db.GetDB().Create(paper).Error
}

func (r *paperRepository) GetPaperByID(paperID string) (*model.Paper, error) {
	var paper model.Paper
	err := db.GetDB().Preload("Sections").Where("id = ?", paperID).First(&paper).Error
	if err != nil {
		return nil, ErrPaperNotFound
	}
	return &paper, nil
}

func (r *paperRepository) GetPapersByUser(userID string) ([]model.Paper, error) {
	var papers []model.Paper
	err := db.GetDB().Where("user_id = ?", userID).Order("created_at desc").Find(&papers).Error
	return papers, err
}

func (r *paperRepository) UpdatePaperStatus(paperID, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == model.PaperStatusReady {
		updates["processed_at"] = time.Now().UTC()
	}
	return db.GetDB().Model(&model.Paper{}).Where("id = ?", paperID).Updates(updates).Error
}

// SaveExtraction stores the extraction output for a paper in one
// transaction, replacing any previous concept graph. Re-extraction may drop
// concepts that old quiz results still reference; aggregation ignores those
// ids rather than failing.
func (r *paperRepository) SaveExtraction(paperID string, sections []model.Section, concepts []model.Concept, edges []model.ConceptEdge) error {
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("paper_id = ?", paperID).Delete(&model.Section{}).Error; err != nil {
			return err
		}
		if err := tx.Where("paper_id = ?", paperID).Delete(&model.Concept{}).Error; err != nil {
			return err
		}
		if err := tx.Where("paper_id = ?", paperID).Delete(&model.ConceptEdge{}).Error; err != nil {
			return err
		}
		if len(sections) > 0 {
			if err := tx.Create(&sections).Error; err != nil {
				return err
			}
		}
		if len(concepts) > 0 {
			if err := tx.Create(&concepts).Error; err != nil {
				return err
			}
		}
		if len(edges) > 0 {
			if err := tx.Create(&edges).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *paperRepository) GetSectionsByPaper(paperID string) ([]model.Section, error) {
	var sections []model.Section
	err := db.GetDB().Where("paper_id = ?", paperID).Order("page_start asc").Find(&sections).Error
	return sections, err
}

func (r *paperRepository) GetConceptsByPaper(paperID string) ([]model.Concept, error) {
	var concepts []model.Concept
	err := db.GetDB().Where("paper_id = ?", paperID).Order("importance_score desc").Find(&concepts).Error
	return concepts, err
}

func (r *paperRepository) GetEdgesByPaper(paperID string) ([]model.ConceptEdge, error) {
	var edges []model.ConceptEdge
	err := db.GetDB().Where("paper_id = ?", paperID).Find(&edges).Error
	return edges, err
}

func (r *paperRepository) GetSummary(paperID string) (*model.PaperSummary, error) {
	var summary model.PaperSummary
	err := db.GetDB().Where("paper_id = ?", paperID).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := decodeSummary(&summary); err != nil {
		utilities.Warn("summary for paper %s is unreadable, regenerating: %v", paperID, err)
		return nil, ErrSummaryNotFound
	}
	return &summary, nil
}

// SaveSummary replaces any previous summary for the paper so regeneration
// never leaves two cached rows.
func (r *paperRepository) SaveSummary(summary *model.PaperSummary) error {
	if err := encodeSummary(summary); err != nil {
		return err
	}
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("paper_id = ?", summary.PaperID).Delete(&model.PaperSummary{}).Error; err != nil {
			return err
		}
		return tx.Create(summary).Error
	})
}

func (r *paperRepository) DeleteSummary(paperID string) error {
	return db.GetDB().Where("paper_id = ?", paperID).Delete(&model.PaperSummary{}).Error
}

// DeletePaper removes the paper row and everything extracted from it.
func (r *paperRepository) DeletePaper(paperID string) error {
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&model.Section{}, &model.Concept{}, &model.ConceptEdge{}, &model.PaperSummary{},
		} {
			if err := tx.Where("paper_id = ?", paperID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", paperID).Delete(&model.Paper{}).Error
	})
}

func encodeSummary(summary *model.PaperSummary) error {
	findings, err := json.Marshal(summary.KeyFindings)
	if err != nil {
		return err
	}
	sections, err := json.Marshal(summary.Summaries)
	if err != nil {
		return err
	}
	summary.KeyFindingsRaw = string(findings)
	summary.SectionSummaries = string(sections)
	return nil
}

func decodeSummary(summary *model.PaperSummary) error {
	if summary.KeyFindingsRaw != "" {
		if err := json.Unmarshal([]byte(summary.KeyFindingsRaw), &summary.KeyFindings); err != nil {
			return err
		}
	}
	if summary.SectionSummaries != "" {
		if err := json.Unmarshal([]byte(summary.SectionSummaries), &summary.Summaries); err != nil {
			return err
		}
	}
	return nil
}
