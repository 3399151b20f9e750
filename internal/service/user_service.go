package service

import (
	"context"
	"errors"
	"time"

	"aprobaciones/internal/middleware"
	"aprobaciones/internal/model"
	"aprobaciones/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// LoginInput is the credential payload for the directory login endpoint.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse wraps an issued access token.
type TokenResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// UserService exposes the read-only user directory plus login.
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	Login(ctx context.Context, in LoginInput) (*TokenResponse, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService returns a UserService over the directory repository.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	user, err := s.repo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, errors.New("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, errors.New("invalid username or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})

	signed, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{Token: signed, User: *user}, nil
}
