package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
	"scholarly-backend/internal/service"
	"scholarly-backend/utilities"
)

type QuizController struct {
	QuizService service.QuizService
}

func NewQuizController(quizService service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// Generate handles POST /quizzes/generate
func (qc *QuizController) Generate(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		PaperID       string   `json:"paper_id" binding:"required"`
		NumQuestions  int      `json:"num_questions"`
		Difficulty    string   `json:"difficulty"`
		FocusConcepts []string `json:"focus_concepts"`
		Adaptive      bool     `json:"adaptive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.NumQuestions <= 0 {
		req.NumQuestions = 5
	}

	var quiz *model.Quiz
	var err error
	if req.Adaptive {
		quiz, err = qc.QuizService.GenerateAdaptiveQuiz(uid, req.PaperID, req.NumQuestions)
	} else {
		quiz, err = qc.QuizService.GenerateQuiz(uid, req.PaperID, req.NumQuestions, req.Difficulty, req.FocusConcepts)
	}
	if err != nil {
		utilities.Error("quiz generation failed: %v", err)
		if errors.Is(err, repository.ErrPaperNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate quiz"})
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

// Get handles GET /quizzes/:id
func (qc *QuizController) Get(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	quiz, err := qc.QuizService.GetQuiz(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// Answers stay server-side until submission.
	for i := range quiz.Questions {
		quiz.Questions[i].CorrectAnswer = ""
		quiz.Questions[i].Explanation = ""
	}
	c.JSON(http.StatusOK, quiz)
}

// Submit handles POST /quizzes/:id/submit
func (qc *QuizController) Submit(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Answers   map[string]string `json:"answers" binding:"required"`
		TimeTaken int               `json:"time_taken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	result, err := qc.QuizService.SubmitQuiz(uid, c.Param("id"), req.Answers, req.TimeTaken)
	if err != nil {
		if errors.Is(err, repository.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Results handles GET /quizzes/results?paper_id=...
func (qc *QuizController) Results(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	paperID := c.Query("paper_id")
	if paperID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paper_id is required"})
		return
	}
	results, err := qc.QuizService.GetResults(uid, paperID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}
