package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-engine/internal/auth"
	"github.com/spec-kit/complaint-engine/internal/config"
	"github.com/spec-kit/complaint-engine/internal/domain"
	"github.com/spec-kit/complaint-engine/internal/repository"
	apperrors "github.com/spec-kit/complaint-engine/pkg/util/errorutil"
)

// AuthService authenticates staff operators. Reporters and voters have no
// accounts here; their identity verification happens outside this service.
type AuthService struct {
	staff  repository.StaffRepository
	tokens *auth.TokenManager
	cfg    config.AuthConfig
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, staffRepo repository.StaffRepository) *AuthService {
	return &AuthService{
		staff:  staffRepo,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		cfg:    cfg,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// StaffLogin verifies credentials and issues an access token.
func (s *AuthService) StaffLogin(ctx context.Context, email, password string) (string, time.Time, *domain.StaffMember, error) {
	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return "", time.Time{}, nil, apperrors.MapError(err)
	}
	if !staff.Active {
		return "", time.Time{}, nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(staff.ID, staff.Role)
	if err != nil {
		return "", time.Time{}, nil, apperrors.NewInternalError(err)
	}
	return token, expiresAt, staff, nil
}

// EnsureBootstrapAdmin creates the configured admin account when it does
// not exist yet. Intended for first boot and in-memory runs.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context) error {
	if s.cfg.BootstrapAdminEmail == "" || s.cfg.BootstrapAdminPass == "" {
		return nil
	}
	if _, err := s.staff.GetByEmail(ctx, s.cfg.BootstrapAdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(s.cfg.BootstrapAdminPass, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	return s.staff.Create(ctx, &domain.StaffMember{
		ID:           uuid.NewString(),
		Name:         "Bootstrap Admin",
		Email:        s.cfg.BootstrapAdminEmail,
		PasswordHash: hash,
		Role:         domain.StaffRoleAdmin,
		Active:       true,
	})
}
