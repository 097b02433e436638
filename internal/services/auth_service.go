package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/BMS-2026/crm-service/internal/auth"
	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/repositories"
	"github.com/BMS-2026/crm-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
	jwt       *auth.JWTService
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, bv *validator.BusinessValidator, jwt *auth.JWTService) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: bv,
		jwt:       jwt,
	}
}

// Login verifies credentials and mints a session token. Unknown email and
// wrong password produce the same error so the endpoint cannot be used to
// enumerate accounts.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Login rejected", "email", req.Email)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
