package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BradenHooton/alumninet/internal/auth"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/internal/services"
	pkghttp "github.com/BradenHooton/alumninet/pkg/http"
)

// GoogleCSRFCookieName is the double-submit cookie Google Identity Services
// sets alongside the g_csrf_token form field.
const GoogleCSRFCookieName = "g_csrf_token"

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Signup(ctx context.Context, email, password, fullName, ip string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password, ip string) (*services.AuthResult, error)
	GoogleSignIn(ctx context.Context, credential, ip string) (*services.AuthResult, error)
	GoogleEnabled() bool
	LogoutAll(ctx context.Context, userID, ip string) error
}

// SessionRevoker denylists the tokens a request carries.
type SessionRevoker interface {
	Revoke(ctx context.Context, r *http.Request) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	revoker  SessionRevoker
	csrf     *auth.CSRFTokenManager
	cookies  auth.CookieConfig
	ipConfig *pkghttp.IPConfig
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, revoker SessionRevoker, csrf *auth.CSRFTokenManager, cookies auth.CookieConfig, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		revoker:  revoker,
		csrf:     csrf,
		cookies:  cookies,
		ipConfig: ipConfig,
		logger:   logger,
	}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
	Redirect string `json:"redirect"`
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"max=120"`
	Redirect string `json:"redirect"`
}

// AuthResponse tells the client where to go after signing in. The session
// itself travels in cookies.
type AuthResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Redirect  string `json:"redirect"`
	CSRFToken string `json:"csrf_token"`
}

// CSRFResponse carries a token for a caller that is not signed in.
type CSRFResponse struct {
	CSRFToken     string `json:"csrf_token"`
	GoogleEnabled bool   `json:"google_enabled"`
}

// CSRF handles GET /auth/csrf. The login and signup forms fetch a token here
// before posting.
func (h *AuthHandler) CSRF(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.GenerateToken(auth.AnonymousSubject)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to generate csrf token", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	http.SetCookie(w, h.cookies.CSRFCookie(token, time.Now().Add(h.csrf.TTL())))
	w.Header().Set("Cache-Control", "no-store")
	pkghttp.WriteJSON(w, http.StatusOK, CSRFResponse{
		CSRFToken:     token,
		GoogleEnabled: h.service.GoogleEnabled(),
	})
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, "Validation failed", fields)
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	result, err := h.service.Signup(r.Context(), req.Email, req.Password, strings.TrimSpace(req.FullName), ip)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.startSession(w, result, req.Redirect, http.StatusCreated)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, "Validation failed", fields)
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	result, err := h.service.Login(r.Context(), req.Email, req.Password, ip)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		writeServiceError(w, err)
		return
	}

	h.startSession(w, result, req.Redirect, http.StatusOK)
}

// GoogleCallback handles POST /auth/callback, the redirect-mode target of
// Google Identity Services. Every outcome is a 303: into the app on success,
// back to the login page with oauth_error otherwise.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if providerErr := query.Get("error"); providerErr != "" {
		h.oauthFailure(w, r, providerErr)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.oauthFailure(w, r, "invalid_request")
		return
	}

	formToken := r.PostForm.Get(GoogleCSRFCookieName)
	cookie, err := r.Cookie(GoogleCSRFCookieName)
	if err != nil || formToken == "" || subtle.ConstantTimeCompare([]byte(formToken), []byte(cookie.Value)) != 1 {
		h.logger.WarnContext(r.Context(), "google callback failed double-submit check")
		h.oauthFailure(w, r, "csrf_mismatch")
		return
	}

	credential := r.PostForm.Get("credential")
	if credential == "" {
		h.oauthFailure(w, r, "missing_credential")
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	result, err := h.service.GoogleSignIn(r.Context(), credential, ip)
	if err != nil {
		reason := "server_error"
		if errors.Is(err, models.ErrOAuthRejected) {
			reason = "invalid_credential"
		}
		h.oauthFailure(w, r, reason)
		return
	}

	auth.WriteCookies(w, h.cookies.SessionCookies(result.Tokens, result.CSRFToken))
	http.Redirect(w, r, services.SafePath(redirectParam(query)), http.StatusSeeOther)
}

// Logout handles POST /auth/logout. Cookies are cleared even when the
// denylist write fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.revoker.Revoke(r.Context(), r); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to revoke session tokens", slog.Any("error", err))
	}
	auth.WriteCookies(w, h.cookies.ClearedCookies())
	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll handles POST /auth/logout-all, ending every session of the caller.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	if err := h.service.LogoutAll(r.Context(), session.UserID, ip); err != nil {
		writeServiceError(w, err)
		return
	}

	auth.WriteCookies(w, h.cookies.ClearedCookies())
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, result *services.AuthResult, redirect string, status int) {
	auth.WriteCookies(w, h.cookies.SessionCookies(result.Tokens, result.CSRFToken))
	pkghttp.WriteJSON(w, status, AuthResponse{
		UserID:    result.Account.ID,
		Email:     result.Account.Email,
		Redirect:  services.SafePath(redirect),
		CSRFToken: result.CSRFToken,
	})
}

func (h *AuthHandler) oauthFailure(w http.ResponseWriter, r *http.Request, reason string) {
	target := "/auth/login?" + url.Values{"oauth_error": {reason}}.Encode()
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// redirectParam accepts both spellings of the return path.
func redirectParam(q url.Values) string {
	if next := q.Get("next"); next != "" {
		return next
	}
	return q.Get("redirect")
}
