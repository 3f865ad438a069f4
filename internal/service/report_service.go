package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
)

// ReportService renders a user's progress summary as a downloadable PDF.
type ReportService interface {
	GenerateProgressReport(userID string) (string, error)
}

type reportService struct {
	userRepo   repository.UserRepository
	paperRepo  repository.PaperRepository
	mastery    MasteryService
	progress   ProgressService
	workingDir string
}

func NewReportService(userRepo repository.UserRepository, paperRepo repository.PaperRepository, mastery MasteryService, progress ProgressService, workingDir string) ReportService {
	return &reportService{
		userRepo:   userRepo,
		paperRepo:  paperRepo,
		mastery:    mastery,
		progress:   progress,
		workingDir: workingDir,
	}
}

// GenerateProgressReport writes the PDF under the working directory and
// returns its path.
func (s *reportService) GenerateProgressReport(userID string) (string, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user: %w", err)
	}
	summary, err := s.progress.Summary(userID)
	if err != nil {
		return "", fmt.Errorf("failed to build summary: %w", err)
	}
	papers, err := s.paperRepo.GetPapersByUser(userID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch papers: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 18)
	pdf.AddPage()

	pdf.Cell(40, 10, "Study Progress Report")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 8, fmt.Sprintf("Student: %s", user.FullName))
	pdf.Ln(6)
	pdf.Cell(40, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(40, 8, "Overview")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	overview := []string{
		fmt.Sprintf("Papers studied: %d (mastered: %d)", summary.TotalPapersStudied, summary.PapersMastered),
		fmt.Sprintf("Concepts learned: %d of %d", summary.ConceptsLearned, summary.TotalConcepts),
		fmt.Sprintf("Average quiz score: %.1f%%", summary.AverageQuizScore),
		fmt.Sprintf("Study streak: %d day(s)", summary.StudyStreak),
		fmt.Sprintf("Total study time: %s", formatDuration(summary.TotalStudyTime)),
	}
	for _, line := range overview {
		pdf.Cell(40, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(5)

	for _, paper := range papers {
		if paper.Status != model.PaperStatusReady {
			continue
		}
		progress, err := s.mastery.PaperProgress(userID, paper.ID)
		if err != nil {
			continue
		}

		pdf.SetFont("Arial", "B", 13)
		pdf.MultiCell(0, 8, paper.Title, "", "L", false)
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(40, 7, fmt.Sprintf("Completion: %d%%  |  Quiz attempts: %d  |  Average score: %.1f%%",
			progress.CompletionPercentage, progress.QuizAttempts, progress.AverageQuizScore))
		pdf.Ln(9)

		for _, cm := range progress.ConceptsMastery {
			label := model.ClassifyMastery(cm.MasteryLevel, cm.TimesQuizzed)
			pdf.Cell(40, 6, fmt.Sprintf("  - %s: %.0f%% (%s)", cm.ConceptName, cm.MasteryLevel*100, label))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	if len(summary.Insights) > 0 {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(40, 8, "Insights")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		for _, insight := range summary.Insights {
			pdf.MultiCell(0, 6, fmt.Sprintf("- %s", insight.Message), "", "L", false)
		}
	}

	dir := filepath.Join(s.workingDir, "reports")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	outputPath := filepath.Join(dir, fmt.Sprintf("progress_%s_%d.pdf", userID, time.Now().Unix()))
	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return "", fmt.Errorf("failed to save PDF: %w", err)
	}
	return outputPath, nil
}

func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
