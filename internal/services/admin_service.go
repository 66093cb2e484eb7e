package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/alumninet/internal/models"
)

// AllowlistRepository manages admin rows.
type AllowlistRepository interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
	Grant(ctx context.Context, userID string, grantedBy *string) error
	Revoke(ctx context.Context, userID string) error
	List(ctx context.Context) ([]*models.Admin, error)
}

// AccountLookup finds accounts by email.
type AccountLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

// AdminService maintains the moderation allowlist.
type AdminService struct {
	accounts AccountLookup
	admins   AllowlistRepository
	logger   *slog.Logger
}

func NewAdminService(accounts AccountLookup, admins AllowlistRepository, logger *slog.Logger) *AdminService {
	return &AdminService{accounts: accounts, admins: admins, logger: logger}
}

func (s *AdminService) resolve(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to look up account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return account, nil
}

// GrantByEmail adds the account with email to the allowlist. Granting an
// existing admin is a no-op.
func (s *AdminService) GrantByEmail(ctx context.Context, email string, grantedBy *string) (*models.Account, error) {
	account, err := s.resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.admins.Grant(ctx, account.ID, grantedBy); err != nil {
		s.logger.Error("failed to grant admin", slog.String("user_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	s.logger.Info("admin granted", slog.String("user_id", account.ID))
	return account, nil
}

// RevokeByEmail removes the account with email from the allowlist.
func (s *AdminService) RevokeByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.admins.Revoke(ctx, account.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to revoke admin", slog.String("user_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	s.logger.Info("admin revoked", slog.String("user_id", account.ID))
	return account, nil
}

func (s *AdminService) List(ctx context.Context) ([]*models.Admin, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		s.logger.Error("failed to list admins", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return admins, nil
}

// IsAdmin satisfies auth.AdminChecker.
func (s *AdminService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.admins.IsAdmin(ctx, userID)
}
