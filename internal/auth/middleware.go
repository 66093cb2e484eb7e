package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/alumninet/internal/models"
	pkghttp "github.com/BradenHooton/alumninet/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const sessionContextKey contextKey = "session"

// WithSession stores the resolved session on ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the session placed by RequireSession or the
// access gate, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey).(*Session)
	return s
}

// Resolver is the part of SessionResolver the middleware needs.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (*Session, []*http.Cookie, error)
}

// RequireSession rejects requests without a valid session with a JSON 401.
// Refreshed cookies are written whether or not the request proceeds.
func RequireSession(resolver Resolver, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s := SessionFromContext(r.Context()); s != nil {
				next.ServeHTTP(w, r)
				return
			}

			session, cookies, err := resolver.Resolve(r.Context(), r)
			WriteCookies(w, cookies)
			if err != nil {
				if !errors.Is(err, models.ErrNoSession) {
					logger.ErrorContext(r.Context(), "session resolution failed", slog.Any("error", err))
				}
				pkghttp.WriteUnauthorized(w, "Sign in to continue")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// AdminChecker reports allowlist membership.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RequireAdmin must run after RequireSession.
func RequireAdmin(admins AdminChecker, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil {
				pkghttp.WriteUnauthorized(w, "Sign in to continue")
				return
			}

			ok, err := admins.IsAdmin(r.Context(), session.UserID)
			if err != nil {
				logger.ErrorContext(r.Context(), "admin lookup failed",
					slog.String("user_id", session.UserID),
					slog.Any("error", err),
				)
				pkghttp.WriteInternalError(w, "Unable to verify permissions")
				return
			}
			if !ok {
				logger.WarnContext(r.Context(), "non-admin attempted moderation access",
					slog.String("user_id", session.UserID),
					slog.String("path", r.URL.Path),
				)
				pkghttp.WriteForbidden(w, "Admins only")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
