package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/alumninet/internal/access"
	"github.com/BradenHooton/alumninet/internal/auth"
	"github.com/BradenHooton/alumninet/internal/handlers"
	"github.com/BradenHooton/alumninet/internal/middleware"
	pkghttp "github.com/BradenHooton/alumninet/pkg/http"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies is everything the route table wires together.
type Dependencies struct {
	Auth       *handlers.AuthHandler
	Onboarding *handlers.OnboardingHandler
	Members    *handlers.MemberHandler
	Admin      *handlers.AdminHandler

	Gate     *access.Gate
	Resolver auth.Resolver
	Admins   auth.AdminChecker
	CSRF     *auth.CSRFTokenManager

	Health  HealthChecker
	Metrics http.Handler

	AuthRateLimit  int
	AuthRateWindow time.Duration

	Logger *slog.Logger
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, d Dependencies) {
	csrf := middleware.CSRFProtection(d.CSRF, d.Logger)
	authLimit := middleware.RateLimitByIP(d.AuthRateLimit, d.AuthRateWindow)

	router.Get("/health", healthHandler(d.Health))
	if d.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	// Public auth endpoints
	router.Route("/auth", func(r chi.Router) {
		r.Get("/csrf", d.Auth.CSRF)

		r.Group(func(r chi.Router) {
			r.Use(authLimit)

			// Google posts here cross-site; it carries its own double-submit token.
			r.Post("/callback", d.Auth.GoogleCallback)

			r.With(csrf).Post("/login", d.Auth.Login)
			r.With(csrf).Post("/signup", d.Auth.Signup)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(d.Resolver, d.Logger))
			r.Use(csrf)
			r.Post("/logout", d.Auth.Logout)
			r.Post("/logout-all", d.Auth.LogoutAll)
		})
	})

	// Member pages behind the access gate
	router.Group(func(r chi.Router) {
		r.Use(d.Gate.Middleware)
		r.Use(csrf)

		r.Get("/onboarding", d.Onboarding.Get)
		r.Post("/onboarding", d.Onboarding.Save)
		r.Get("/dashboard", d.Members.Dashboard)
		r.Get("/directory", d.Members.Directory)
	})

	// Admin moderation
	router.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireSession(d.Resolver, d.Logger))
		r.Use(auth.RequireAdmin(d.Admins, d.Logger))
		r.Use(csrf)

		r.Get("/members", d.Admin.ListPending)
		r.Post("/members/{id}/approve", d.Admin.Approve)
		r.Post("/members/{id}/reject", d.Admin.Reject)
		r.Get("/admins", d.Admin.ListAdmins)
	})
}

func healthHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "up"})
	}
}
