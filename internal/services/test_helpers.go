package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/ses"

	"github.com/BradenHooton/alumninet/internal/auth"
	"github.com/BradenHooton/alumninet/internal/directory"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/internal/repositories"
	pkglogger "github.com/BradenHooton/alumninet/pkg/logger"
)

// MockAccountRepository implements AccountRepository for testing
type MockAccountRepository struct {
	GetByEmailFunc     func(ctx context.Context, email string) (*models.Account, error)
	GetByGoogleSubFunc func(ctx context.Context, sub string) (*models.Account, error)
	CreateFunc         func(ctx context.Context, email, passwordHash, googleSub string, fullName, avatarURL *string) (*models.Account, error)
	LinkGoogleFunc     func(ctx context.Context, id, sub string) error
	RotateTokenKeyFunc func(ctx context.Context, id string) error
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByGoogleSub(ctx context.Context, sub string) (*models.Account, error) {
	if m.GetByGoogleSubFunc != nil {
		return m.GetByGoogleSubFunc(ctx, sub)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) Create(ctx context.Context, email, passwordHash, googleSub string, fullName, avatarURL *string) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, email, passwordHash, googleSub, fullName, avatarURL)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) LinkGoogle(ctx context.Context, id, sub string) error {
	if m.LinkGoogleFunc != nil {
		return m.LinkGoogleFunc(ctx, id, sub)
	}
	return nil
}

func (m *MockAccountRepository) RotateTokenKey(ctx context.Context, id string) error {
	if m.RotateTokenKeyFunc != nil {
		return m.RotateTokenKeyFunc(ctx, id)
	}
	return nil
}

// MockProfileStore implements ProfileStore and ProfileEnsurer for testing
type MockProfileStore struct {
	GetByIDFunc        func(ctx context.Context, id string) (*models.Profile, error)
	SaveOnboardingFunc func(ctx context.Context, id string, u *models.OnboardingUpdate) (*models.Profile, error)
	EnsureFunc         func(ctx context.Context, id, email string, fullName, avatarURL *string) error
	SaveCalls          int
	EnsureCalls        int
}

func (m *MockProfileStore) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProfileStore) SaveOnboarding(ctx context.Context, id string, u *models.OnboardingUpdate) (*models.Profile, error) {
	m.SaveCalls++
	if m.SaveOnboardingFunc != nil {
		return m.SaveOnboardingFunc(ctx, id, u)
	}
	return &models.Profile{ID: id, Email: u.Email, Onboarded: true, Moderation: models.ModerationPending}, nil
}

func (m *MockProfileStore) Ensure(ctx context.Context, id, email string, fullName, avatarURL *string) error {
	m.EnsureCalls++
	if m.EnsureFunc != nil {
		return m.EnsureFunc(ctx, id, email, fullName, avatarURL)
	}
	return nil
}

// MockIdentityVerifier implements IdentityVerifier for testing
type MockIdentityVerifier struct {
	Disabled   bool
	VerifyFunc func(ctx context.Context, credential string) (*auth.GoogleIdentity, error)
}

func (m *MockIdentityVerifier) Enabled() bool { return !m.Disabled }

func (m *MockIdentityVerifier) Verify(ctx context.Context, credential string) (*auth.GoogleIdentity, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, credential)
	}
	return nil, models.ErrOAuthRejected
}

// MockAvatarResolver implements AvatarResolver for testing
type MockAvatarResolver struct {
	ResolveFunc func(ctx context.Context, ref *string) (*string, error)
}

func (m *MockAvatarResolver) Resolve(ctx context.Context, ref *string) (*string, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, ref)
	}
	return ref, nil
}

// MockAllowlist implements AllowlistRepository and AdminLookup for testing
type MockAllowlist struct {
	IsAdminFunc func(ctx context.Context, userID string) (bool, error)
	GrantFunc   func(ctx context.Context, userID string, grantedBy *string) error
	RevokeFunc  func(ctx context.Context, userID string) error
	ListFunc    func(ctx context.Context) ([]*models.Admin, error)
}

func (m *MockAllowlist) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if m.IsAdminFunc != nil {
		return m.IsAdminFunc(ctx, userID)
	}
	return false, nil
}

func (m *MockAllowlist) Grant(ctx context.Context, userID string, grantedBy *string) error {
	if m.GrantFunc != nil {
		return m.GrantFunc(ctx, userID, grantedBy)
	}
	return nil
}

func (m *MockAllowlist) Revoke(ctx context.Context, userID string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, userID)
	}
	return nil
}

func (m *MockAllowlist) List(ctx context.Context) ([]*models.Admin, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Admin{}, nil
}

// MockDirectorySearcher implements DirectorySearcher for testing
type MockDirectorySearcher struct {
	SearchFunc func(ctx context.Context, q directory.Query) ([]*models.DirectoryEntry, int64, error)
	Queries    []directory.Query
}

func (m *MockDirectorySearcher) Search(ctx context.Context, q directory.Query) ([]*models.DirectoryEntry, int64, error) {
	m.Queries = append(m.Queries, q)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, q)
	}
	return []*models.DirectoryEntry{}, 0, nil
}

// MockModerationStore implements ModerationStore for testing
type MockModerationStore struct {
	ListPendingFunc   func(ctx context.Context, limit int) ([]*models.PendingMember, error)
	SetModerationFunc func(ctx context.Context, profileID string, decision models.Moderation, actorID *string, source string) (*repositories.ModerationResult, error)
	SetCalls          int
}

func (m *MockModerationStore) ListPending(ctx context.Context, limit int) ([]*models.PendingMember, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, limit)
	}
	return []*models.PendingMember{}, nil
}

func (m *MockModerationStore) SetModeration(ctx context.Context, profileID string, decision models.Moderation, actorID *string, source string) (*repositories.ModerationResult, error) {
	m.SetCalls++
	if m.SetModerationFunc != nil {
		return m.SetModerationFunc(ctx, profileID, decision, actorID, source)
	}
	return &repositories.ModerationResult{ProfileID: profileID, Email: "member@example.com", Decision: decision}, nil
}

// SentNotice is a captured moderation email
type SentNotice struct {
	To       string
	Name     string
	Decision models.Moderation
}

// MockMailer captures sent notices for test assertions
type MockMailer struct {
	Sent []SentNotice
	Err  error
}

func (m *MockMailer) SendModerationNotice(_ context.Context, to, name string, decision models.Moderation) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentNotice{To: to, Name: name, Decision: decision})
	return nil
}

// MockSESAPI implements SESAPI for testing
type MockSESAPI struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	Inputs        []*ses.SendEmailInput
}

func (m *MockSESAPI) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.Inputs = append(m.Inputs, params)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params, optFns...)
	}
	id := "msg-1"
	return &ses.SendEmailOutput{MessageId: &id}, nil
}

// MockTokenKeys serves a fixed token key for every account
type MockTokenKeys struct{}

func (MockTokenKeys) GetTokenKey(context.Context, string) (string, error) {
	return "account-key", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func discardAudit() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(discardLogger())
}
