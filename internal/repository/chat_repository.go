package repository

import (
	"errors"

	"scholarly-backend/internal/db"
	"scholarly-backend/internal/model"
)

var ErrChatSessionNotFound = errors.New("chat session not found")

type ChatRepository interface {
	CreateSession(session *model.ChatSession) error
	GetSession(sessionID string) (*model.ChatSession, error)
	GetSessionsByUserAndPaper(userID, paperID string) ([]model.ChatSession, error)
	AppendMessage(message *model.ChatMessage) error
}

type chatRepository struct{}

func NewChatRepository() ChatRepository {
	return &chatRepository{}
}

func (r *chatRepository) CreateSession(session *model.ChatSession) error {
	return db.GetDB().Create(session).Error
}

func (r *chatRepository) GetSession(sessionID string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := db.GetDB().Preload("Messages").Where("id = ?", sessionID).First(&session).Error
	if err != nil {
		return nil, ErrChatSessionNotFound
	}
	return &session, nil
}

func (r *chatRepository) GetSessionsByUserAndPaper(userID, paperID string) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	err := db.GetDB().
		Where("user_id = ? AND paper_id = ?", userID, paperID).
		Order("created_at desc").
		Find(&sessions).Error
	return sessions, err
}

func (r *chatRepository) AppendMessage(message *model.ChatMessage) error {
	return db.GetDB().Create(message).Error
}
