package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
	"scholarly-backend/utilities"
)

// PaperSummarizer is the LLM surface the summary pipeline needs. Satisfied
// by the Ollama client.
type PaperSummarizer interface {
	SummarizeSection(title, content string) (string, error)
	SummarizePaper(title, overview string) (string, error)
	ExtractKeyFindings(text string) ([]string, error)
	AssessDifficulty(sample string) (string, error)
}

// SummaryService generates and caches one summary per paper. GetSummary
// serves the cached row when present; Regenerate drops the cache first so
// a fresh pass always runs.
type SummaryService interface {
	GetSummary(paperID string) (*model.PaperSummary, error)
	RegenerateSummary(paperID string) (*model.PaperSummary, error)
}

type summaryService struct {
	paperRepo  repository.PaperRepository
	summarizer PaperSummarizer
}

func NewSummaryService(paperRepo repository.PaperRepository, summarizer PaperSummarizer) SummaryService {
	return &summaryService{paperRepo: paperRepo, summarizer: summarizer}
}

func (s *summaryService) GetSummary(paperID string) (*model.PaperSummary, error) {
	if summary, err := s.paperRepo.GetSummary(paperID); err == nil {
		return summary, nil
	}
	return s.generate(paperID)
}

func (s *summaryService) RegenerateSummary(paperID string) (*model.PaperSummary, error) {
	if err := s.paperRepo.DeleteSummary(paperID); err != nil {
		return nil, fmt.Errorf("failed to clear cached summary: %w", err)
	}
	return s.generate(paperID)
}

func (s *summaryService) generate(paperID string) (*model.PaperSummary, error) {
	paper, err := s.paperRepo.GetPaperByID(paperID)
	if err != nil {
		return nil, err
	}
	if paper.Status != model.PaperStatusReady {
		return nil, fmt.Errorf("paper %s is not ready for summarization", paperID)
	}

	sections, err := s.paperRepo.GetSectionsByPaper(paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}

	summary := &model.PaperSummary{
		ID:              uuid.New().String(),
		PaperID:         paperID,
		OverallSummary:  s.overallSummary(paper.Title, sections),
		KeyFindings:     s.keyFindings(sections),
		Summaries:       s.sectionSummaries(sections),
		DifficultyLevel: s.assessDifficulty(sections),
	}

	if err := s.paperRepo.SaveSummary(summary); err != nil {
		return nil, fmt.Errorf("failed to cache summary: %w", err)
	}
	return summary, nil
}

// sectionSummaries summarizes each section individually. Sections too short
// to be worth an LLM call pass through, and an LLM failure degrades to a
// truncated excerpt instead of failing the whole summary.
func (s *summaryService) sectionSummaries(sections []model.Section) map[string]string {
	summaries := make(map[string]string, len(sections))
	for _, section := range sections {
		content := strings.TrimSpace(section.Content)
		switch {
		case len(content) < 50:
			summaries[section.ID] = "Section content too short to summarize."
		case len(content) < 200:
			summaries[section.ID] = content
		default:
			text, err := s.summarizer.SummarizeSection(section.Title, content)
			if err != nil {
				utilities.Warn("failed to summarize section %s: %v", section.ID, err)
				text = content[:200] + "..."
			}
			summaries[section.ID] = text
		}
	}
	return summaries
}

func (s *summaryService) overallSummary(title string, sections []model.Section) string {
	var overview strings.Builder
	for i, section := range sections {
		if i >= 5 {
			break
		}
		overview.WriteString("## " + section.Title + "\n")
		overview.WriteString(head(section.Content, 500) + "\n\n")
	}

	text, err := s.summarizer.SummarizePaper(title, overview.String())
	if err != nil {
		utilities.Warn("failed to generate overall summary: %v", err)
		return "Unable to generate summary at this time."
	}
	return text
}

// keyFindings prefers results-oriented sections and falls back to sampling
// all of them.
func (s *summaryService) keyFindings(sections []model.Section) []string {
	var relevant strings.Builder
	for _, section := range sections {
		title := strings.ToLower(section.Title)
		if strings.Contains(title, "result") || strings.Contains(title, "finding") ||
			strings.Contains(title, "conclusion") || strings.Contains(title, "discussion") {
			relevant.WriteString(head(section.Content, 3000) + "\n\n")
		}
	}
	if relevant.Len() == 0 {
		for _, section := range sections {
			relevant.WriteString(head(section.Content, 1000) + " ")
		}
	}
	if len(strings.TrimSpace(relevant.String())) < 100 {
		return []string{"Key findings not available."}
	}

	findings, err := s.summarizer.ExtractKeyFindings(relevant.String())
	if err != nil || len(findings) == 0 {
		if err != nil {
			utilities.Warn("failed to extract key findings: %v", err)
		}
		return []string{"Key findings not available."}
	}
	return findings
}

func (s *summaryService) assessDifficulty(sections []model.Section) string {
	var sample strings.Builder
	for i, section := range sections {
		if i >= 3 {
			break
		}
		sample.WriteString(head(section.Content, 1000) + "\n\n")
	}
	if len(strings.TrimSpace(sample.String())) < 100 {
		return model.DifficultyIntermediate
	}

	level, err := s.summarizer.AssessDifficulty(sample.String())
	if err != nil {
		utilities.Warn("failed to assess difficulty: %v", err)
		return model.DifficultyIntermediate
	}
	return level
}

func head(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
