package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/alumninet/internal/models"
)

// Session identifies the signed-in account behind a request.
type Session struct {
	UserID  string
	Email   string
	TokenID string
}

// SessionResolver reads the session cookies and, when only the refresh token
// is still valid, rotates the pair. Rotation returns the replacement cookies;
// callers must write them on whatever response they produce.
type SessionResolver struct {
	tokens     *TokenManager
	denylist   Denylist
	csrf       *CSRFTokenManager
	cookies    CookieConfig
	failClosed bool
	logger     *slog.Logger
}

func NewSessionResolver(tokens *TokenManager, denylist Denylist, csrf *CSRFTokenManager, cookies CookieConfig, failClosed bool, logger *slog.Logger) *SessionResolver {
	return &SessionResolver{
		tokens:     tokens,
		denylist:   denylist,
		csrf:       csrf,
		cookies:    cookies,
		failClosed: failClosed,
		logger:     logger,
	}
}

// Resolve returns the caller's session. A caller with no usable cookies gets
// models.ErrNoSession; any other error means the session could not be checked.
func (sr *SessionResolver) Resolve(ctx context.Context, r *http.Request) (*Session, []*http.Cookie, error) {
	if raw := cookieValue(r, AccessCookieName); raw != "" {
		claims, err := sr.tokens.ValidateToken(ctx, raw, models.TokenTypeAccess)
		if err == nil {
			revoked, err := sr.isRevoked(ctx, claims.ID)
			if err != nil {
				return nil, nil, err
			}
			if !revoked {
				return sessionFromClaims(claims), nil, nil
			}
		}
	}

	raw := cookieValue(r, RefreshCookieName)
	if raw == "" {
		return nil, nil, models.ErrNoSession
	}

	claims, err := sr.tokens.ValidateToken(ctx, raw, models.TokenTypeRefresh)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", models.ErrNoSession, err)
	}

	first, err := sr.denylist.Revoke(ctx, claims.ID, sr.tokens.Remaining(claims))
	if err != nil {
		if sr.failClosed {
			return nil, nil, err
		}
		sr.logger.WarnContext(ctx, "denylist unavailable, rotating without revocation",
			slog.String("user_id", claims.UserID),
			slog.Any("error", err),
		)
		first = true
	}
	if !first {
		// the refresh token was already spent
		return nil, nil, fmt.Errorf("%w: %w", models.ErrNoSession, models.ErrTokenRevoked)
	}

	pair, err := sr.tokens.IssuePair(ctx, claims.UserID, claims.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("rotate session: %w", err)
	}
	csrfToken, err := sr.csrf.GenerateToken(claims.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("rotate csrf token: %w", err)
	}

	sr.logger.DebugContext(ctx, "session refreshed", slog.String("user_id", claims.UserID))

	return &Session{UserID: claims.UserID, Email: claims.Email}, sr.cookies.SessionCookies(pair, csrfToken), nil
}

// Revoke denylists whatever tokens the request carries. Used on sign-out.
func (sr *SessionResolver) Revoke(ctx context.Context, r *http.Request) error {
	var errs []error
	for _, src := range []struct{ cookie, typ string }{
		{AccessCookieName, models.TokenTypeAccess},
		{RefreshCookieName, models.TokenTypeRefresh},
	} {
		raw := cookieValue(r, src.cookie)
		if raw == "" {
			continue
		}
		claims, err := sr.tokens.ValidateToken(ctx, raw, src.typ)
		if err != nil {
			continue
		}
		if _, err := sr.denylist.Revoke(ctx, claims.ID, sr.tokens.Remaining(claims)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (sr *SessionResolver) isRevoked(ctx context.Context, jti string) (bool, error) {
	revoked, err := sr.denylist.IsRevoked(ctx, jti)
	if err == nil {
		return revoked, nil
	}
	if sr.failClosed {
		return false, err
	}
	sr.logger.WarnContext(ctx, "denylist unavailable, accepting access token", slog.Any("error", err))
	return false, nil
}

func sessionFromClaims(c *models.TokenClaims) *Session {
	return &Session{UserID: c.UserID, Email: c.Email, TokenID: c.ID}
}
