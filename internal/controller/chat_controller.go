package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarly-backend/internal/repository"
	"scholarly-backend/internal/service"
)

type ChatController struct {
	TutorService service.TutorService
}

func NewChatController(tutorService service.TutorService) *ChatController {
	return &ChatController{TutorService: tutorService}
}

// StartChat handles POST /chat/sessions
func (cc *ChatController) StartChat(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		PaperID string `json:"paper_id" binding:"required"`
		Mode    string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	session, err := cc.TutorService.StartChat(uid, req.PaperID, req.Mode)
	if err != nil {
		if errors.Is(err, repository.ErrPaperNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// SendMessage handles POST /chat/sessions/:id/messages
func (cc *ChatController) SendMessage(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	reply, err := cc.TutorService.SendMessage(uid, c.Param("id"), req.Message)
	if err != nil {
		if errors.Is(err, repository.ErrChatSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat session not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Tutor is unavailable"})
		return
	}
	c.JSON(http.StatusOK, reply)
}

// GetSession handles GET /chat/sessions/:id
func (cc *ChatController) GetSession(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	session, err := cc.TutorService.GetChatSession(uid, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListSessions handles GET /chat/sessions?paper_id=...
func (cc *ChatController) ListSessions(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	paperID := c.Query("paper_id")
	if paperID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paper_id is required"})
		return
	}
	sessions, err := cc.TutorService.GetChatSessions(uid, paperID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}
