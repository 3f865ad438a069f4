package controller

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarly-backend/internal/repository"
	"scholarly-backend/internal/service"
)

type PaperController struct {
	PaperService   service.PaperService
	SummaryService service.SummaryService
}

func NewPaperController(paperService service.PaperService, summaryService service.SummaryService) *PaperController {
	return &PaperController{PaperService: paperService, SummaryService: summaryService}
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return "", false
	}
	uid, ok := userID.(string)
	if !ok || uid == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return "", false
	}
	return uid, true
}

// Upload handles POST /papers/upload
func (pc *PaperController) Upload(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".pdf" && ext != ".txt" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF and plain-text uploads are supported"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}

	paper, err := pc.PaperService.UploadPaper(uid, fileHeader.Filename, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store paper"})
		return
	}
	c.JSON(http.StatusAccepted, paper)
}

// List handles GET /papers/
func (pc *PaperController) List(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	papers, err := pc.PaperService.GetPapersByUser(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, papers)
}

// Get handles GET /papers/:id
func (pc *PaperController) Get(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	paper, err := pc.PaperService.GetPaper(c.Param("id"))
	if err != nil {
		statusForPaperErr(c, err)
		return
	}
	if paper.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
		return
	}
	c.JSON(http.StatusOK, paper)
}

// ConceptGraph handles GET /papers/:id/concepts
func (pc *PaperController) ConceptGraph(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	graph, err := pc.PaperService.GetConceptGraph(c.Param("id"))
	if err != nil {
		statusForPaperErr(c, err)
		return
	}
	c.JSON(http.StatusOK, graph)
}

// Sections handles GET /papers/:id/sections
func (pc *PaperController) Sections(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	sections, err := pc.PaperService.GetSections(c.Param("id"))
	if err != nil {
		statusForPaperErr(c, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

// Summary handles GET /papers/:id/summary. The first call generates and
// caches the summary; later calls serve the cache.
func (pc *PaperController) Summary(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	summary, err := pc.SummaryService.GetSummary(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPaperNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RegenerateSummary handles POST /papers/:id/summary/regenerate
func (pc *PaperController) RegenerateSummary(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	summary, err := pc.SummaryService.RegenerateSummary(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPaperNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Download handles GET /papers/:id/download
func (pc *PaperController) Download(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	paper, err := pc.PaperService.GetPaper(c.Param("id"))
	if err != nil || paper.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
		return
	}
	path, filename, err := pc.PaperService.DownloadPath(paper.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	c.FileAttachment(path, filename)
}

// Delete handles DELETE /papers/:id
func (pc *PaperController) Delete(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	paper, err := pc.PaperService.GetPaper(c.Param("id"))
	if err != nil || paper.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
		return
	}
	if err := pc.PaperService.DeletePaper(paper.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete paper"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Paper deleted successfully"})
}

func statusForPaperErr(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrPaperNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
