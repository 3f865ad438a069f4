package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scholarly-backend/internal/service"
	"scholarly-backend/utilities"
)

type ProgressController struct {
	MasteryService service.MasteryService
	SpacedRep      service.SpacedRepetitionService
	Progress       service.ProgressService
	Reports        service.ReportService
}

func NewProgressController(mastery service.MasteryService, spacedRep service.SpacedRepetitionService, progress service.ProgressService, reports service.ReportService) *ProgressController {
	return &ProgressController{
		MasteryService: mastery,
		SpacedRep:      spacedRep,
		Progress:       progress,
		Reports:        reports,
	}
}

// PaperProgress handles GET /progress/papers/:id
func (pc *ProgressController) PaperProgress(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	progress, err := pc.MasteryService.PaperProgress(uid, c.Param("id"))
	if err != nil {
		statusForPaperErr(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// ConceptMasteries handles GET /progress/papers/:id/concepts
func (pc *ProgressController) ConceptMasteries(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	masteries, err := pc.MasteryService.ConceptMasteries(uid, c.Param("id"))
	if err != nil {
		statusForPaperErr(c, err)
		return
	}
	c.JSON(http.StatusOK, masteries)
}

// Retention handles GET /progress/papers/:id/retention
func (pc *ProgressController) Retention(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	stats, err := pc.MasteryService.RetentionStats(uid, c.Param("id"))
	if err != nil {
		statusForPaperErr(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DueForReview handles GET /progress/papers/:id/due
func (pc *ProgressController) DueForReview(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	due, err := pc.SpacedRep.DueForReview(uid, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"due_concepts": due})
}

// ReviewQueue handles GET /progress/review-queue?max=...
func (pc *ProgressController) ReviewQueue(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	max, err := strconv.Atoi(c.DefaultQuery("max", "10"))
	if err != nil || max <= 0 {
		max = 10
	}
	queue, err := pc.SpacedRep.ReviewQueue(uid, max)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"review_queue": queue})
}

// ForgettingCurve handles GET /progress/concepts/:id/forgetting-curve?days=...
func (pc *ProgressController) ForgettingCurve(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		days = 30
	}
	points, err := pc.SpacedRep.ForgettingCurve(uid, c.Param("id"), days)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no review history for concept"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"curve": points})
}

// Summary handles GET /progress/summary
func (pc *ProgressController) Summary(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	summary, err := pc.Progress.Summary(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// StartSession handles POST /progress/sessions/start
func (pc *ProgressController) StartSession(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		PaperID string `json:"paper_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	session, err := pc.Progress.StartSession(uid, req.PaperID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// EndSession handles POST /progress/sessions/:id/end
func (pc *ProgressController) EndSession(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	if err := pc.Progress.EndSession(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session ended"})
}

// DownloadReport handles GET /progress/report
func (pc *ProgressController) DownloadReport(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	path, err := pc.Reports.GenerateProgressReport(uid)
	if err != nil {
		utilities.Error("report generation failed for user %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}
	c.FileAttachment(path, "progress_report.pdf")
}
