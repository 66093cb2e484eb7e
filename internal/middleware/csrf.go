package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/alumninet/internal/auth"
	pkghttp "github.com/BradenHooton/alumninet/pkg/http"
)

const (
	CSRFHeader    = "X-CSRF-Token"
	CSRFFormField = "csrf_token"
)

// CSRFProtection validates CSRF tokens on state-changing requests.
// The token is read from the X-CSRF-Token header or the csrf_token form
// field and must equal the csrf_token cookie. With a session on the context
// it must also be bound to that account; otherwise to the anonymous subject.
func CSRFProtection(csrfManager *auth.CSRFTokenManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isStateChangingMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			subject := auth.AnonymousSubject
			if s := auth.SessionFromContext(r.Context()); s != nil {
				subject = s.UserID
			}

			token := r.Header.Get(CSRFHeader)
			if token == "" {
				token = r.PostFormValue(CSRFFormField)
			}
			cookie := auth.GetCSRFTokenCookie(r)

			if token == "" || cookie == "" {
				logger.WarnContext(r.Context(), "CSRF token missing in request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path))
				pkghttp.WriteForbidden(w, "CSRF token missing")
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(cookie)) != 1 || !csrfManager.ValidateToken(token, subject) {
				logger.WarnContext(r.Context(), "CSRF token validation failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Bool("authenticated", subject != auth.AnonymousSubject))
				pkghttp.WriteForbidden(w, "CSRF token invalid")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isStateChangingMethod checks if the HTTP method modifies state
func isStateChangingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}
