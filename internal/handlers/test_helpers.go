package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/alumninet/internal/auth"
	"github.com/BradenHooton/alumninet/internal/directory"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/internal/repositories"
	"github.com/BradenHooton/alumninet/internal/services"
	pkghttp "github.com/BradenHooton/alumninet/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSession puts a signed-in caller on the request context, as the access
// gate or RequireSession would.
func WithSession(req *http.Request, userID, email string) *http.Request {
	ctx := auth.WithSession(req.Context(), &auth.Session{UserID: userID, Email: email})
	return req.WithContext(ctx)
}

// WithChiRouteContext adds chi URL parameters to a request.
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testResult(userID, email string) *services.AuthResult {
	now := time.Now()
	return &services.AuthResult{
		Account: &models.Account{ID: userID, Email: email},
		Tokens: &auth.TokenPair{
			AccessToken:   "access",
			RefreshToken:  "refresh",
			AccessExpiry:  now.Add(15 * time.Minute),
			RefreshExpiry: now.Add(7 * 24 * time.Hour),
		},
		CSRFToken: "csrf-bound",
	}
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	SignupFunc       func(ctx context.Context, email, password, fullName, ip string) (*services.AuthResult, error)
	LoginFunc        func(ctx context.Context, email, password, ip string) (*services.AuthResult, error)
	GoogleSignInFunc func(ctx context.Context, credential, ip string) (*services.AuthResult, error)
	LogoutAllFunc    func(ctx context.Context, userID, ip string) error
	Google           bool
}

func (m *MockAuthService) Signup(ctx context.Context, email, password, fullName, ip string) (*services.AuthResult, error) {
	if m.SignupFunc == nil {
		return nil, models.ErrConflict
	}
	return m.SignupFunc(ctx, email, password, fullName, ip)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ip string) (*services.AuthResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, email, password, ip)
}

func (m *MockAuthService) GoogleSignIn(ctx context.Context, credential, ip string) (*services.AuthResult, error) {
	if m.GoogleSignInFunc == nil {
		return nil, models.ErrOAuthRejected
	}
	return m.GoogleSignInFunc(ctx, credential, ip)
}

func (m *MockAuthService) GoogleEnabled() bool { return m.Google }

func (m *MockAuthService) LogoutAll(ctx context.Context, userID, ip string) error {
	if m.LogoutAllFunc == nil {
		return nil
	}
	return m.LogoutAllFunc(ctx, userID, ip)
}

// MockRevoker records revocations.
type MockRevoker struct {
	Err   error
	Calls int
}

func (m *MockRevoker) Revoke(_ context.Context, _ *http.Request) error {
	m.Calls++
	return m.Err
}

// MockOnboardingService implements OnboardingServiceInterface for testing
type MockOnboardingService struct {
	DefaultsFunc func(ctx context.Context, userID, email string) (*services.OnboardingForm, error)
	SaveFunc     func(ctx context.Context, userID, email string, in *services.OnboardingInput) (*models.Profile, error)
	Saved        []*services.OnboardingInput
}

func (m *MockOnboardingService) Defaults(ctx context.Context, userID, email string) (*services.OnboardingForm, error) {
	if m.DefaultsFunc == nil {
		return &services.OnboardingForm{Email: email}, nil
	}
	return m.DefaultsFunc(ctx, userID, email)
}

func (m *MockOnboardingService) Save(ctx context.Context, userID, email string, in *services.OnboardingInput) (*models.Profile, error) {
	m.Saved = append(m.Saved, in)
	if m.SaveFunc == nil {
		return &models.Profile{ID: userID, Email: email, Onboarded: true, Moderation: models.ModerationPending}, nil
	}
	return m.SaveFunc(ctx, userID, email, in)
}

// MockDashboardService implements DashboardServiceInterface for testing
type MockDashboardService struct {
	GetFunc func(ctx context.Context, userID, email, notice string) (*services.DashboardView, error)
}

func (m *MockDashboardService) Get(ctx context.Context, userID, email, notice string) (*services.DashboardView, error) {
	if m.GetFunc == nil {
		return &services.DashboardView{UserID: userID, Email: email, Notice: notice}, nil
	}
	return m.GetFunc(ctx, userID, email, notice)
}

// MockDirectoryService implements DirectoryServiceInterface for testing
type MockDirectoryService struct {
	SearchFunc func(ctx context.Context, f directory.Filters) (*services.DirectoryResult, error)
	Filters    []directory.Filters
}

func (m *MockDirectoryService) Search(ctx context.Context, f directory.Filters) (*services.DirectoryResult, error) {
	m.Filters = append(m.Filters, f)
	if m.SearchFunc == nil {
		return &services.DirectoryResult{
			DirectoryPage: models.DirectoryPage{Items: []*models.DirectoryEntry{}, Page: f.Page, TotalPages: 1},
			Pagination:    directory.Paginate(f, 1),
		}, nil
	}
	return m.SearchFunc(ctx, f)
}

// MockModerationService implements ModerationServiceInterface for testing
type MockModerationService struct {
	ListPendingFunc func(ctx context.Context, limit int) ([]*models.PendingMember, error)
	DecideFunc      func(ctx context.Context, profileID string, decision models.Moderation, actorID *string, source, ip string) (*repositories.ModerationResult, error)
}

func (m *MockModerationService) ListPending(ctx context.Context, limit int) ([]*models.PendingMember, error) {
	if m.ListPendingFunc == nil {
		return nil, nil
	}
	return m.ListPendingFunc(ctx, limit)
}

func (m *MockModerationService) Decide(ctx context.Context, profileID string, decision models.Moderation, actorID *string, source, ip string) (*repositories.ModerationResult, error) {
	if m.DecideFunc == nil {
		return &repositories.ModerationResult{ProfileID: profileID, Decision: decision, ModeratedAt: time.Now()}, nil
	}
	return m.DecideFunc(ctx, profileID, decision, actorID, source, ip)
}

// MockAdminList implements AdminListService for testing
type MockAdminList struct {
	Admins []*models.Admin
	Err    error
}

func (m *MockAdminList) List(context.Context) ([]*models.Admin, error) {
	return m.Admins, m.Err
}
