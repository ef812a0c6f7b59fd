package services

import (
	"context"
	"strings"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/models"
)

type UserService struct {
	Users      UserStore
	JWTManager *auth.JWTManager
}

func NewUserService(users UserStore, jwtManager *auth.JWTManager) *UserService {
	return &UserService{Users: users, JWTManager: jwtManager}
}

// Login authenticates a user and returns a JWT token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("account is disabled")
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, apperr.Internal(err, "could not issue token")
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Resolve re-reads the user behind a token so that role and station
// changes apply without waiting for the token to expire.
func (s *UserService) Resolve(ctx context.Context, userID int) (models.Caller, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return models.Caller{}, apperr.Unauthorized("user no longer exists")
		}
		return models.Caller{}, err
	}
	if !user.IsActive {
		return models.Caller{}, apperr.Forbidden("account is disabled")
	}
	return user.Caller(), nil
}

func (s *UserService) Me(ctx context.Context, caller models.Caller) (*models.User, error) {
	return s.Users.Get(ctx, caller.UserID)
}
