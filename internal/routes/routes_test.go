package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/alumninet/internal/access"
	"github.com/BradenHooton/alumninet/internal/auth"
	"github.com/BradenHooton/alumninet/internal/config"
	"github.com/BradenHooton/alumninet/internal/handlers"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/internal/services"
)

type stubResolver struct {
	session *auth.Session
}

func (s stubResolver) Resolve(context.Context, *http.Request) (*auth.Session, []*http.Cookie, error) {
	if s.session == nil {
		return nil, nil, models.ErrNoSession
	}
	return s.session, nil, nil
}

type stubFlags struct {
	flags models.ProfileFlags
}

func (s stubFlags) GetFlags(context.Context, string) (*models.ProfileFlags, error) {
	f := s.flags
	return &f, nil
}

type stubAdmins struct{ ok bool }

func (s stubAdmins) IsAdmin(context.Context, string) (bool, error) { return s.ok, nil }

type stubHealth struct{ err error }

func (s stubHealth) HealthCheck(context.Context) error { return s.err }

type fixture struct {
	session *auth.Session
	flags   models.ProfileFlags
	admin   bool
	health  error
}

func newRouter(f fixture) (http.Handler, *auth.CSRFTokenManager) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	csrf := auth.NewCSRFTokenManager("test-secret-32-characters-long!", time.Hour)
	resolver := stubResolver{session: f.session}

	router := chi.NewRouter()
	RegisterRoutes(router, Dependencies{
		Auth:           handlers.NewAuthHandler(&handlers.MockAuthService{}, &handlers.MockRevoker{}, csrf, auth.CookieConfig{}, nil, logger),
		Onboarding:     handlers.NewOnboardingHandler(&handlers.MockOnboardingService{}),
		Members:        handlers.NewMemberHandler(&handlers.MockDashboardService{}, &handlers.MockDirectoryService{}, logger),
		Admin:          handlers.NewAdminHandler(&handlers.MockModerationService{}, &handlers.MockAdminList{}, nil),
		Gate:           access.NewGate(resolver, stubFlags{flags: f.flags}, config.FailClosed, nil, logger),
		Resolver:       resolver,
		Admins:         stubAdmins{ok: f.admin},
		CSRF:           csrf,
		Health:         stubHealth{err: f.health},
		AuthRateLimit:  100,
		AuthRateWindow: time.Minute,
		Logger:         logger,
	})
	return router, csrf
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGuardedPages(t *testing.T) {
	member := &auth.Session{UserID: "u1", Email: "asha@example.org"}

	tests := []struct {
		name     string
		fx       fixture
		path     string
		status   int
		location string
	}{
		{"anonymous directory", fixture{}, "/directory?branch=Physics", http.StatusSeeOther, "/auth/login?redirect=%2Fdirectory"},
		{"not onboarded", fixture{session: member}, "/dashboard", http.StatusSeeOther, "/onboarding"},
		{"pending member", fixture{session: member, flags: models.ProfileFlags{Onboarded: true}}, "/directory", http.StatusSeeOther, "/dashboard?notice=not-approved"},
		{"pending dashboard", fixture{session: member, flags: models.ProfileFlags{Onboarded: true}}, "/dashboard", http.StatusOK, ""},
		{"approved directory", fixture{session: member, flags: models.ProfileFlags{Onboarded: true, Approved: true}}, "/directory", http.StatusOK, ""},
		{"onboarding form", fixture{session: member}, "/onboarding", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newRouter(tt.fx)
			w := serve(router, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, w.Header().Get("Location"))
			}
		})
	}
}

func TestDashboardNotice(t *testing.T) {
	member := &auth.Session{UserID: "u1", Email: "asha@example.org"}

	tests := []struct {
		name  string
		flags models.ProfileFlags
		want  string
	}{
		{"pending member keeps notice", models.ProfileFlags{Onboarded: true}, access.NoticeNotApproved},
		{"approved member drops stale notice", models.ProfileFlags{Onboarded: true, Approved: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newRouter(fixture{session: member, flags: tt.flags})
			w := serve(router, httptest.NewRequest(http.MethodGet, "/dashboard?notice=not-approved", nil))
			require.Equal(t, http.StatusOK, w.Code)

			var view services.DashboardView
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
			assert.Equal(t, tt.want, view.Notice)
		})
	}
}

func TestOnboardingPostRequiresCSRF(t *testing.T) {
	member := &auth.Session{UserID: "u1", Email: "asha@example.org"}
	router, _ := newRouter(fixture{session: member})

	w := serve(router, httptest.NewRequest(http.MethodPost, "/onboarding", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	admin := &auth.Session{UserID: "admin-1", Email: "admin@example.org"}

	router, _ := newRouter(fixture{})
	assert.Equal(t, http.StatusUnauthorized, serve(router, httptest.NewRequest(http.MethodGet, "/admin/members", nil)).Code)

	router, _ = newRouter(fixture{session: admin})
	assert.Equal(t, http.StatusForbidden, serve(router, httptest.NewRequest(http.MethodGet, "/admin/members", nil)).Code)

	router, csrf := newRouter(fixture{session: admin, admin: true})
	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/admin/members", nil)).Code)

	token, err := csrf.GenerateToken("admin-1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/admin/members/5f0c6a4e-3b1d-4c55-9f0e-2a7d1e6b9c10/approve", nil)
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: token})
	assert.Equal(t, http.StatusOK, serve(router, req).Code)
}

func TestLoginFlowCSRF(t *testing.T) {
	router, _ := newRouter(fixture{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/auth/csrf", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CSRFCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	// without the token the login is refused before reaching the service
	assert.Equal(t, http.StatusForbidden, serve(router, httptest.NewRequest(http.MethodPost, "/auth/login", nil)).Code)
}

func TestHealth(t *testing.T) {
	router, _ := newRouter(fixture{})
	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)

	router, _ = newRouter(fixture{health: errors.New("down")})
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}
