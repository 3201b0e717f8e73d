package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService handles registration, login and token issuance.
type AuthService struct {
	users          repository.UserRepository
	authorizations repository.AuthorizationRepository
	tokens         *auth.TokenManager
	bcryptCost     int
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, authorizations repository.AuthorizationRepository) *AuthService {
	return &AuthService{
		users:          users,
		authorizations: authorizations,
		tokens:         auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:     cfg.BcryptCost,
	}
}

// TokenManager exposes the manager for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Register creates a user with a default user role grant.
func (s *AuthService) Register(ctx context.Context, name, email, password string, organizationID *int64) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:           strings.TrimSpace(name),
		Email:          email,
		PasswordHash:   hash,
		OrganizationID: organizationID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	grant := &domain.Authorization{
		UserID:         user.ID,
		OrganizationID: organizationID,
		Role:           domain.RoleTypeUser,
	}
	if err := s.authorizations.Create(ctx, grant); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateProfile changes the user's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user.Name = name
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListGrants returns the user's role grants.
func (s *AuthService) ListGrants(ctx context.Context, userID int64) ([]domain.Authorization, error) {
	grants, err := s.authorizations.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return grants, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *domain.User) (string, time.Time, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", time.Time{}, apperrors.MapError(err)
	}
	return token, expiresAt, nil
}
