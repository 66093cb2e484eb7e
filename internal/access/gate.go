package access

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/alumninet/internal/auth"
	"github.com/BradenHooton/alumninet/internal/config"
	"github.com/BradenHooton/alumninet/internal/metrics"
	"github.com/BradenHooton/alumninet/internal/models"
)

// FlagReader loads the onboarded and approved flags in one read.
type FlagReader interface {
	GetFlags(ctx context.Context, userID string) (*models.ProfileFlags, error)
}

type contextKey string

const factsContextKey contextKey = "access_facts"

// FactsFromContext returns the facts the gate decided on. ok is false for
// requests that never went through the gate.
func FactsFromContext(ctx context.Context) (Facts, bool) {
	f, ok := ctx.Value(factsContextKey).(Facts)
	return f, ok
}

// Gate enforces Decide in front of the guarded page handlers.
type Gate struct {
	resolver auth.Resolver
	flags    FlagReader
	failMode config.AccessFailMode
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewGate(resolver auth.Resolver, flags FlagReader, failMode config.AccessFailMode, m *metrics.Metrics, logger *slog.Logger) *Gate {
	return &Gate{
		resolver: resolver,
		flags:    flags,
		failMode: failMode,
		metrics:  m,
		logger:   logger,
	}
}

// Middleware gates every request. Unguarded paths pass straight through
// without touching the session or the store.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		family := Classify(path)
		if family == FamilyNone {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		session, cookies, err := g.resolver.Resolve(ctx, r)
		// refreshed cookies ride on every outcome, redirects included
		auth.WriteCookies(w, cookies)

		if err != nil {
			if !errors.Is(err, models.ErrNoSession) {
				g.logger.WarnContext(ctx, "session resolution failed",
					slog.String("path", path),
					slog.Any("error", err),
				)
			}
			g.finish(w, r, next, Decide(path, Facts{}), Facts{}, nil)
			return
		}

		facts := Facts{Authenticated: true}
		if family != FamilyOnboarding {
			flags, err := g.flags.GetFlags(ctx, session.UserID)
			switch {
			case err == nil:
				facts.Onboarded = flags.Onboarded
				facts.Approved = flags.Approved
			case errors.Is(err, models.ErrNotFound):
				// no profile row yet: treat as not onboarded
			default:
				g.logger.ErrorContext(ctx, "profile flag lookup failed",
					slog.String("user_id", session.UserID),
					slog.String("path", path),
					slog.String("fail_mode", string(g.failMode)),
					slog.Any("error", err),
				)
				if g.failMode == config.FailOpen {
					g.metrics.ObserveAccess(string(family), "fail_open")
					g.serve(w, r, next, facts, session)
					return
				}
				g.metrics.ObserveAccess(string(family), "fail_closed")
				http.Redirect(w, r, LoginURL(path), http.StatusSeeOther)
				return
			}
		}

		g.finish(w, r, next, Decide(path, facts), facts, session)
	})
}

func (g *Gate) finish(w http.ResponseWriter, r *http.Request, next http.Handler, d Decision, facts Facts, session *auth.Session) {
	g.metrics.ObserveAccess(string(d.Family), string(d.Outcome))

	if d.Outcome != Allow {
		http.Redirect(w, r, d.Location, http.StatusSeeOther)
		return
	}
	g.serve(w, r, next, facts, session)
}

func (g *Gate) serve(w http.ResponseWriter, r *http.Request, next http.Handler, facts Facts, session *auth.Session) {
	ctx := context.WithValue(r.Context(), factsContextKey, facts)
	if session != nil {
		ctx = auth.WithSession(ctx, session)
	}
	next.ServeHTTP(w, r.WithContext(ctx))
}
