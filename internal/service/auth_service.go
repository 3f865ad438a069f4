package service

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
	"scholarly-backend/utilities"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Register(user *model.User) error
	Login(email, password string) (*model.User, string, string, error)
	Refresh(refreshToken string) (string, string, error)
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(user *model.User) error {
	existing, err := s.userRepo.GetUserByEmail(user.Email)
	if err == nil && existing != nil {
		return errors.New("email already in use")
	}
	if user.Password == "" {
		return errors.New("password cannot be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}
	user.Password = string(hashed)
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		return errors.New("failed to store user in database")
	}
	return nil
}

// Login returns the user plus an access/refresh token pair.
func (s *authService) Login(email, password string) (*model.User, string, string, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil || user == nil {
		return nil, "", "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	access, refresh, err := utilities.GenerateTokens(user)
	if err != nil {
		return nil, "", "", errors.New("failed to issue tokens")
	}
	user.Password = ""
	return user, access, refresh, nil
}

func (s *authService) Refresh(refreshToken string) (string, string, error) {
	return utilities.RefreshTokens(refreshToken)
}
