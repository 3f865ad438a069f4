package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"scholarly-backend/internal/llm"
	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
	"scholarly-backend/utilities"
)

// TextExtractor turns an uploaded document into plain text. Real PDF
// parsing is delegated to an external tool; anything satisfying this
// interface can be plugged in.
type TextExtractor interface {
	ExtractText(path string) (string, int, error)
}

// ConceptExtractor produces the concept set for a paper. Satisfied by the
// Ollama client.
type ConceptExtractor interface {
	ExtractConcepts(title, text string) ([]llm.ExtractedConcept, error)
}

type ConceptGraph struct {
	PaperID  string              `json:"paper_id"`
	Concepts []model.Concept     `json:"concepts"`
	Edges    []model.ConceptEdge `json:"edges"`
}

type PaperService interface {
	UploadPaper(userID, filename string, data []byte) (*model.Paper, error)
	GetPaper(paperID string) (*model.Paper, error)
	GetPapersByUser(userID string) ([]model.Paper, error)
	GetConceptGraph(paperID string) (*ConceptGraph, error)
	GetSections(paperID string) ([]model.Section, error)
	DownloadPath(paperID string) (path, filename string, err error)
	DeletePaper(paperID string) error
}

type paperService struct {
	paperRepo  repository.PaperRepository
	texts      TextExtractor
	extractor  ConceptExtractor
	workingDir string
}

func NewPaperService(paperRepo repository.PaperRepository, texts TextExtractor, extractor ConceptExtractor, workingDir string) PaperService {
	return &paperService{
		paperRepo:  paperRepo,
		texts:      texts,
		extractor:  extractor,
		workingDir: workingDir,
	}
}

// UploadPaper stores the document and kicks off extraction in the
// background; the paper stays in "processing" until the concept graph is
// ready.
func (s *paperService) UploadPaper(userID, filename string, data []byte) (*model.Paper, error) {
	paper := &model.Paper{
		ID:       uuid.New().String(),
		UserID:   userID,
		Filename: filename,
		Title:    strings.TrimSuffix(filename, filepath.Ext(filename)),
		Status:   model.PaperStatusProcessing,
	}

	dir := filepath.Join(s.workingDir, "papers")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create papers directory: %w", err)
	}
	path := s.storedPath(paper)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to store paper: %w", err)
	}

	if err := s.paperRepo.CreatePaper(paper); err != nil {
		return nil, fmt.Errorf("failed to create paper record: %w", err)
	}

	go s.processPaper(paper.ID, paper.Title, path)

	return paper, nil
}

func (s *paperService) processPaper(paperID, title, path string) {
	text, pages, err := s.texts.ExtractText(path)
	if err != nil {
		utilities.Error("text extraction failed for paper %s: %v", paperID, err)
		s.markFailed(paperID)
		return
	}

	sections := splitSections(paperID, text, pages)

	extracted, err := s.extractor.ExtractConcepts(title, text)
	if err != nil {
		utilities.Error("concept extraction failed for paper %s: %v", paperID, err)
		s.markFailed(paperID)
		return
	}

	concepts, edges := buildConceptGraph(paperID, extracted)

	if err := s.paperRepo.SaveExtraction(paperID, sections, concepts, edges); err != nil {
		utilities.Error("failed to save extraction for paper %s: %v", paperID, err)
		s.markFailed(paperID)
		return
	}
	if err := s.paperRepo.UpdatePaperStatus(paperID, model.PaperStatusReady); err != nil {
		utilities.Error("failed to mark paper %s ready: %v", paperID, err)
		return
	}

	utilities.Info("paper %s processed: %d sections, %d concepts", paperID, len(sections), len(concepts))
	utilities.GlobalEventBus.Publish(utilities.EventPaperProcessed, paperID)
}

func (s *paperService) markFailed(paperID string) {
	if err := s.paperRepo.UpdatePaperStatus(paperID, model.PaperStatusError); err != nil {
		utilities.Error("failed to mark paper %s errored: %v", paperID, err)
	}
}

func (s *paperService) GetPaper(paperID string) (*model.Paper, error) {
	return s.paperRepo.GetPaperByID(paperID)
}

func (s *paperService) GetPapersByUser(userID string) ([]model.Paper, error) {
	return s.paperRepo.GetPapersByUser(userID)
}

func (s *paperService) GetConceptGraph(paperID string) (*ConceptGraph, error) {
	if _, err := s.paperRepo.GetPaperByID(paperID); err != nil {
		return nil, err
	}
	concepts, err := s.paperRepo.GetConceptsByPaper(paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load concepts: %w", err)
	}
	edges, err := s.paperRepo.GetEdgesByPaper(paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}
	return &ConceptGraph{PaperID: paperID, Concepts: concepts, Edges: edges}, nil
}

func (s *paperService) GetSections(paperID string) ([]model.Section, error) {
	if _, err := s.paperRepo.GetPaperByID(paperID); err != nil {
		return nil, err
	}
	return s.paperRepo.GetSectionsByPaper(paperID)
}

// DownloadPath resolves the stored file for a paper. The file is checked on
// disk so a missing upload surfaces as an error instead of an empty
// download.
func (s *paperService) DownloadPath(paperID string) (string, string, error) {
	paper, err := s.paperRepo.GetPaperByID(paperID)
	if err != nil {
		return "", "", err
	}
	path := s.storedPath(paper)
	if _, err := os.Stat(path); err != nil {
		return "", "", fmt.Errorf("stored file for paper %s is missing: %w", paperID, err)
	}
	return path, paper.Filename, nil
}

// DeletePaper removes the stored file and every row derived from the paper,
// cached summary included.
func (s *paperService) DeletePaper(paperID string) error {
	paper, err := s.paperRepo.GetPaperByID(paperID)
	if err != nil {
		return err
	}
	if err := os.Remove(s.storedPath(paper)); err != nil && !os.IsNotExist(err) {
		utilities.Warn("failed to remove stored file for paper %s: %v", paperID, err)
	}
	return s.paperRepo.DeletePaper(paperID)
}

// storedPath is the canonical on-disk location for an uploaded paper.
func (s *paperService) storedPath(paper *model.Paper) string {
	return filepath.Join(s.workingDir, "papers", paper.ID+filepath.Ext(paper.Filename))
}

// buildConceptGraph assigns ids to extracted concepts and resolves
// prerequisite names into edges. Prerequisites naming unknown concepts are
// dropped.
func buildConceptGraph(paperID string, extracted []llm.ExtractedConcept) ([]model.Concept, []model.ConceptEdge) {
	now := time.Now().UTC()
	concepts := make([]model.Concept, 0, len(extracted))
	byName := make(map[string]string, len(extracted))

	for _, e := range extracted {
		difficulty := e.Difficulty
		switch difficulty {
		case model.DifficultyBeginner, model.DifficultyIntermediate, model.DifficultyAdvanced:
		default:
			difficulty = model.DifficultyIntermediate
		}
		importance := e.Importance
		if importance <= 0 || importance > 1 {
			importance = 0.5
		}
		concept := model.Concept{
			ID:              uuid.New().String(),
			PaperID:         paperID,
			Name:            e.Name,
			Definition:      e.Definition,
			Explanation:     e.Explanation,
			Difficulty:      difficulty,
			ImportanceScore: importance,
			CreatedAt:       now,
		}
		concepts = append(concepts, concept)
		byName[strings.ToLower(e.Name)] = concept.ID
	}

	var edges []model.ConceptEdge
	for i, e := range extracted {
		for _, prereq := range e.Prerequisites {
			sourceID, ok := byName[strings.ToLower(prereq)]
			if !ok || sourceID == concepts[i].ID {
				continue
			}
			edges = append(edges, model.ConceptEdge{
				PaperID:          paperID,
				SourceID:         sourceID,
				TargetID:         concepts[i].ID,
				RelationshipType: "prerequisite",
				Strength:         1.0,
			})
		}
	}
	return concepts, edges
}

// splitSections chunks the raw text into coarse sections on blank lines.
// Proper section detection belongs to the external extractor; this keeps
// retrieval usable for plain-text uploads.
func splitSections(paperID, text string, pages int) []model.Section {
	now := time.Now().UTC()
	blocks := strings.Split(text, "\n\n")

	var sections []model.Section
	var current strings.Builder
	flush := func() {
		content := strings.TrimSpace(current.String())
		current.Reset()
		if content == "" {
			return
		}
		title := content
		if idx := strings.IndexByte(title, '\n'); idx > 0 {
			title = title[:idx]
		}
		if len(title) > 80 {
			title = title[:80]
		}
		sections = append(sections, model.Section{
			ID:        uuid.New().String(),
			PaperID:   paperID,
			Title:     title,
			Content:   content,
			PageStart: len(sections) + 1,
			PageEnd:   len(sections) + 1,
			CreatedAt: now,
		})
	}

	for _, block := range blocks {
		current.WriteString(block)
		current.WriteString("\n\n")
		if current.Len() >= 2000 {
			flush()
		}
	}
	flush()

	if pages > 0 && len(sections) > 0 {
		per := pages / len(sections)
		if per < 1 {
			per = 1
		}
		for i := range sections {
			sections[i].PageStart = i*per + 1
			sections[i].PageEnd = (i + 1) * per
		}
	}
	return sections
}

// PlainTextExtractor reads the stored file as UTF-8 text. It stands in for
// a real PDF text extractor in local setups and for tests.
type PlainTextExtractor struct{}

func (PlainTextExtractor) ExtractText(path string) (string, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	text := string(data)
	pages := len(text)/3000 + 1
	return text, pages, nil
}
