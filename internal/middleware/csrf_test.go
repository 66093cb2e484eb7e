package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/alumninet/internal/auth"
)

func newCSRF() *auth.CSRFTokenManager {
	return auth.NewCSRFTokenManager("test-secret-32-characters-long!", time.Hour)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func csrfRequest(method, token, cookie string) *http.Request {
	req := httptest.NewRequest(method, "/onboarding", nil)
	if token != "" {
		req.Header.Set(CSRFHeader, token)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: cookie})
	}
	return req
}

func TestCSRFProtection_SafeMethodsPass(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		w := httptest.NewRecorder()
		CSRFProtection(newCSRF(), discard())(okHandler()).ServeHTTP(w, csrfRequest(method, "", ""))
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestCSRFProtection_SessionBound(t *testing.T) {
	m := newCSRF()
	token, err := m.GenerateToken("u1")
	require.NoError(t, err)
	other, err := m.GenerateToken("u2")
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		cookie string
		want   int
	}{
		{"valid", token, token, http.StatusOK},
		{"missing header", "", token, http.StatusForbidden},
		{"missing cookie", token, "", http.StatusForbidden},
		{"header differs from cookie", token, other, http.StatusForbidden},
		{"bound to another account", other, other, http.StatusForbidden},
		{"garbage", "abc", "abc", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := csrfRequest(http.MethodPost, tt.token, tt.cookie)
			req = req.WithContext(auth.WithSession(req.Context(), &auth.Session{UserID: "u1"}))
			w := httptest.NewRecorder()

			CSRFProtection(m, discard())(okHandler()).ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCSRFProtection_Anonymous(t *testing.T) {
	m := newCSRF()
	anon, err := m.GenerateToken(auth.AnonymousSubject)
	require.NoError(t, err)
	bound, err := m.GenerateToken("u1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	CSRFProtection(m, discard())(okHandler()).ServeHTTP(w, csrfRequest(http.MethodPost, anon, anon))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	CSRFProtection(m, discard())(okHandler()).ServeHTTP(w, csrfRequest(http.MethodPost, bound, bound))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFProtection_FormField(t *testing.T) {
	m := newCSRF()
	anon, err := m.GenerateToken(auth.AnonymousSubject)
	require.NoError(t, err)

	form := url.Values{CSRFFormField: {anon}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: anon})
	w := httptest.NewRecorder()

	CSRFProtection(m, discard())(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
