package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarly-backend/internal/service"
	"scholarly-backend/pkg/middleware"
)

// RegisterRoutes registers all route groups and their endpoints.
func RegisterRoutes(r *gin.Engine,
	authService service.AuthService,
	userService service.UserService,
	paperService service.PaperService,
	summaryService service.SummaryService,
	quizService service.QuizService,
	tutorService service.TutorService,
	masteryService service.MasteryService,
	spacedRepService service.SpacedRepetitionService,
	progressService service.ProgressService,
	reportService service.ReportService,
	llmLimiter *middleware.RateLimiter,
) {
	authCtrl := NewAuthController(authService)
	auth := r.Group("/auth")
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/refresh", authCtrl.Refresh)
	}

	// User routes.
	r.GET("/user", func(c *gin.Context) {
		users, err := userService.GetAllUsers()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, users)
	})

	paperCtrl := NewPaperController(paperService, summaryService)
	papers := r.Group("/papers")
	{
		papers.POST("/upload", paperCtrl.Upload)
		papers.GET("/", paperCtrl.List)
		papers.GET("/:id", paperCtrl.Get)
		papers.GET("/:id/concepts", paperCtrl.ConceptGraph)
		papers.GET("/:id/sections", paperCtrl.Sections)
		papers.GET("/:id/summary", llmLimiter.Middleware(), paperCtrl.Summary)
		papers.POST("/:id/summary/regenerate", llmLimiter.Middleware(), paperCtrl.RegenerateSummary)
		papers.GET("/:id/download", paperCtrl.Download)
		papers.DELETE("/:id", paperCtrl.Delete)
	}

	quizCtrl := NewQuizController(quizService)
	quizzes := r.Group("/quizzes")
	{
		quizzes.POST("/generate", llmLimiter.Middleware(), quizCtrl.Generate)
		quizzes.GET("/results", quizCtrl.Results)
		quizzes.GET("/:id", quizCtrl.Get)
		quizzes.POST("/:id/submit", quizCtrl.Submit)
	}

	chatCtrl := NewChatController(tutorService)
	chat := r.Group("/chat")
	{
		chat.POST("/sessions", chatCtrl.StartChat)
		chat.GET("/sessions", chatCtrl.ListSessions)
		chat.GET("/sessions/:id", chatCtrl.GetSession)
		chat.POST("/sessions/:id/messages", llmLimiter.Middleware(), chatCtrl.SendMessage)
	}

	progressCtrl := NewProgressController(masteryService, spacedRepService, progressService, reportService)
	progress := r.Group("/progress")
	{
		progress.GET("/summary", progressCtrl.Summary)
		progress.GET("/report", progressCtrl.DownloadReport)
		progress.GET("/review-queue", progressCtrl.ReviewQueue)
		progress.GET("/papers/:id", progressCtrl.PaperProgress)
		progress.GET("/papers/:id/concepts", progressCtrl.ConceptMasteries)
		progress.GET("/papers/:id/retention", progressCtrl.Retention)
		progress.GET("/papers/:id/due", progressCtrl.DueForReview)
		progress.GET("/concepts/:id/forgetting-curve", progressCtrl.ForgettingCurve)
		progress.POST("/sessions/start", progressCtrl.StartSession)
		progress.POST("/sessions/:id/end", progressCtrl.EndSession)
	}
}
