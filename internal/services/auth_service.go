package services

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/BradenHooton/alumninet/internal/auth"
	"github.com/BradenHooton/alumninet/internal/models"
	pkgauth "github.com/BradenHooton/alumninet/pkg/auth"
	pkglogger "github.com/BradenHooton/alumninet/pkg/logger"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByGoogleSub(ctx context.Context, sub string) (*models.Account, error)
	Create(ctx context.Context, email, passwordHash, googleSub string, fullName, avatarURL *string) (*models.Account, error)
	LinkGoogle(ctx context.Context, id, sub string) error
	RotateTokenKey(ctx context.Context, id string) error
}

// ProfileEnsurer creates or touches the profile row on sign-in.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, id, email string, fullName, avatarURL *string) error
}

// IdentityVerifier checks third-party sign-in credentials.
type IdentityVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, credential string) (*auth.GoogleIdentity, error)
}

// AuthService handles authentication business logic
type AuthService struct {
	accounts    AccountRepository
	profiles    ProfileEnsurer
	tm          *auth.TokenManager
	csrf        *auth.CSRFTokenManager
	google      IdentityVerifier
	timing      *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAuthService(accounts AccountRepository, profiles ProfileEnsurer, tm *auth.TokenManager, csrf *auth.CSRFTokenManager, google IdentityVerifier, timing *auth.TimingDelay, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		accounts:    accounts,
		profiles:    profiles,
		tm:          tm,
		csrf:        csrf,
		google:      google,
		timing:      timing,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// AuthResult is what a successful sign-in hands to the transport layer.
type AuthResult struct {
	Account   *models.Account
	Tokens    *auth.TokenPair
	CSRFToken string
}

// GoogleEnabled reports whether Google sign-in is configured.
func (s *AuthService) GoogleEnabled() bool {
	return s.google != nil && s.google.Enabled()
}

// Signup creates a password account. The password must pass
// pkgauth.ValidatePassword; a *pkgauth.PasswordValidationError is returned
// unchanged so callers can show the individual rules.
func (s *AuthService) Signup(ctx context.Context, email, password, fullName, ip string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, &models.ValidationError{Field: "email", Message: "Email is required"}
	}
	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	var name *string
	if n := strings.TrimSpace(fullName); n != "" {
		name = &n
	}

	account, err := s.accounts.Create(ctx, email, hash, "", name, nil)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
				EventType:     "signup_failed",
				Email:         email,
				IPAddress:     ip,
				FailureReason: "email_taken",
			})
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "signup_success",
		UserID:    account.ID,
		IPAddress: ip,
		Success:   true,
	})

	return s.issue(ctx, account)
}

// Login authenticates an email/password pair. Unknown emails, OAuth-only
// accounts and wrong passwords all return models.ErrUnauthorized after the
// same padded delay.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*AuthResult, error) {
	start := time.Now()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		s.logger.Warn("login attempt with empty email")
		return nil, models.ErrUnauthorized
	}

	fail := func(userID, reason string) (*AuthResult, error) {
		s.logger.Info("login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        userID,
			Email:         email,
			IPAddress:     ip,
			FailureReason: reason,
		})
		s.timing.WaitFrom(ctx, start, false)
		return nil, models.ErrUnauthorized
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fail("", "invalid_credentials")
		}
		s.logger.Error("failed to get account by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if account.PasswordHash == "" {
		return fail(account.ID, "oauth_only")
	}
	if err := pkgauth.ComparePassword(account.PasswordHash, password); err != nil {
		return fail(account.ID, "invalid_credentials")
	}

	if err := s.profiles.Ensure(ctx, account.ID, account.Email, nil, nil); err != nil {
		s.logger.Error("failed to ensure profile", slog.String("user_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", account.ID))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    account.ID,
		IPAddress: ip,
		Success:   true,
	})
	s.timing.WaitFrom(ctx, start, true)

	return s.issue(ctx, account)
}

// GoogleSignIn verifies a Google ID token and signs the holder in, creating
// or linking the account by verified email as needed.
func (s *AuthService) GoogleSignIn(ctx context.Context, credential, ip string) (*AuthResult, error) {
	if !s.GoogleEnabled() {
		return nil, models.ErrOAuthRejected
	}

	identity, err := s.google.Verify(ctx, credential)
	if err != nil {
		s.logger.Info("google credential rejected", slog.Any("error", err))
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     "oauth_failed",
			IPAddress:     ip,
			FailureReason: "credential_rejected",
		})
		return nil, models.ErrOAuthRejected
	}

	name := optional(identity.Name)
	picture := optional(identity.Picture)

	account, err := s.accounts.GetByGoogleSub(ctx, identity.Subject)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound):
		account, err = s.linkOrCreate(ctx, identity, name, picture)
		if err != nil {
			return nil, err
		}
	default:
		s.logger.Error("failed to get account by google subject", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.profiles.Ensure(ctx, account.ID, account.Email, name, picture); err != nil {
		s.logger.Error("failed to ensure profile", slog.String("user_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "oauth_success",
		UserID:    account.ID,
		IPAddress: ip,
		Success:   true,
		Metadata:  map[string]string{"provider": "google"},
	})

	return s.issue(ctx, account)
}

func (s *AuthService) linkOrCreate(ctx context.Context, id *auth.GoogleIdentity, name, picture *string) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, id.Email)
	if err == nil {
		if err := s.accounts.LinkGoogle(ctx, account.ID, id.Subject); err != nil {
			s.logger.Error("failed to link google account", slog.String("user_id", account.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		account.GoogleSub = id.Subject
		return account, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to get account by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	account, err = s.accounts.Create(ctx, id.Email, "", id.Subject, name, picture)
	if err != nil {
		s.logger.Error("failed to create google account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return account, nil
}

// LogoutAll rotates the account's token key, invalidating every session.
func (s *AuthService) LogoutAll(ctx context.Context, userID, ip string) error {
	if err := s.accounts.RotateTokenKey(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to rotate token key", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	s.auditLogger.LogAccountAction(ctx, "logout_all", userID, ip, nil)
	return nil
}

func (s *AuthService) issue(ctx context.Context, account *models.Account) (*AuthResult, error) {
	pair, err := s.tm.IssuePair(ctx, account.ID, account.Email)
	if err != nil {
		s.logger.Error("failed to issue tokens", slog.String("user_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	csrfToken, err := s.csrf.GenerateToken(account.ID)
	if err != nil {
		s.logger.Error("failed to generate csrf token", slog.String("user_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return &AuthResult{Account: account, Tokens: pair, CSRFToken: csrfToken}, nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// DefaultAfterLogin is where a signed-in user lands without a return path.
const DefaultAfterLogin = "/onboarding"

// SafePath returns raw when it is a same-origin absolute path, otherwise
// DefaultAfterLogin. The auth endpoints themselves are never a target.
func SafePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, `/\`) {
		return DefaultAfterLogin
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return DefaultAfterLogin
	}
	if u.Path == "/auth" || strings.HasPrefix(u.Path, "/auth/") {
		return DefaultAfterLogin
	}
	return raw
}
