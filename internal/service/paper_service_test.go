package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarly-backend/internal/llm"
	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
)

func TestBuildConceptGraph(t *testing.T) {
	extracted := []llm.ExtractedConcept{
		{Name: "Attention", Definition: "Weighted value lookup", Difficulty: "intermediate", Importance: 0.9},
		{Name: "Multi-Head Attention", Difficulty: "advanced", Importance: 0.8, Prerequisites: []string{"attention"}},
		{Name: "Transformer", Prerequisites: []string{"Multi-Head Attention", "Unknown Concept"}},
	}

	concepts, edges := buildConceptGraph("paper-1", extracted)

	require.Len(t, concepts, 3)
	for _, c := range concepts {
		assert.Equal(t, "paper-1", c.PaperID)
		assert.NotEmpty(t, c.ID)
	}

	// Prerequisite matching is case-insensitive; unknown names are dropped.
	require.Len(t, edges, 2)
	assert.Equal(t, concepts[0].ID, edges[0].SourceID)
	assert.Equal(t, concepts[1].ID, edges[0].TargetID)
	assert.Equal(t, "prerequisite", edges[0].RelationshipType)
	assert.Equal(t, concepts[1].ID, edges[1].SourceID)
	assert.Equal(t, concepts[2].ID, edges[1].TargetID)
}

func TestBuildConceptGraphDefaultsBadMetadata(t *testing.T) {
	extracted := []llm.ExtractedConcept{
		{Name: "Attention", Difficulty: "impossible", Importance: 7.0},
	}

	concepts, _ := buildConceptGraph("paper-1", extracted)

	require.Len(t, concepts, 1)
	assert.Equal(t, model.DifficultyIntermediate, concepts[0].Difficulty)
	assert.Equal(t, 0.5, concepts[0].ImportanceScore)
}

func TestSplitSectionsChunksOnBlankLines(t *testing.T) {
	para := strings.Repeat("Attention is a weighted lookup over values. ", 20)
	text := para + "\n\n" + para + "\n\n" + para

	sections := splitSections("paper-1", text, 6)

	require.NotEmpty(t, sections)
	for _, sec := range sections {
		assert.Equal(t, "paper-1", sec.PaperID)
		assert.NotEmpty(t, sec.Title)
		assert.NotEmpty(t, sec.Content)
		assert.LessOrEqual(t, sec.PageStart, sec.PageEnd)
	}
}

func TestSplitSectionsEmptyText(t *testing.T) {
	assert.Empty(t, splitSections("paper-1", "   \n\n  ", 0))
}

func TestDeletePaperRemovesFileAndRows(t *testing.T) {
	paperRepo := newFakePaperRepo()
	paperRepo.papers["paper-1"] = &model.Paper{ID: "paper-1", UserID: "user-1", Filename: "attention.txt", Status: model.PaperStatusReady}
	paperRepo.sections["paper-1"] = []model.Section{{ID: "sec-1", PaperID: "paper-1"}}
	paperRepo.summaries["paper-1"] = &model.PaperSummary{ID: "sum-1", PaperID: "paper-1"}

	dir := t.TempDir()
	svc := &paperService{paperRepo: paperRepo, workingDir: dir}
	path := filepath.Join(dir, "papers", "paper-1.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("stored text"), 0644))

	require.NoError(t, svc.DeletePaper("paper-1"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = paperRepo.GetPaperByID("paper-1")
	assert.ErrorIs(t, err, repository.ErrPaperNotFound)
	assert.Empty(t, paperRepo.sections["paper-1"])
	assert.Empty(t, paperRepo.summaries)
}

func TestDownloadPathChecksStoredFile(t *testing.T) {
	paperRepo := newFakePaperRepo()
	paperRepo.papers["paper-1"] = &model.Paper{ID: "paper-1", UserID: "user-1", Filename: "attention.pdf"}

	dir := t.TempDir()
	svc := &paperService{paperRepo: paperRepo, workingDir: dir}

	// Nothing stored yet.
	_, _, err := svc.DownloadPath("paper-1")
	assert.Error(t, err)

	path := filepath.Join(dir, "papers", "paper-1.pdf")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))

	got, filename, err := svc.DownloadPath("paper-1")
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, "attention.pdf", filename)
}
