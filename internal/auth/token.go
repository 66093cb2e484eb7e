package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKeyFetcher returns the per-account secret mixed into the signing key.
// Rotating it invalidates every token the account holds.
type TokenKeyFetcher interface {
	GetTokenKey(ctx context.Context, userID string) (string, error)
}

// TokenPair is a freshly minted access and refresh token.
type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	AccessExpiry  time.Time
	RefreshExpiry time.Time
}

// TokenManager handles JWT token generation and validation
type TokenManager struct {
	secret             string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	keys               TokenKeyFetcher
	now                func() time.Time
}

func NewTokenManager(secret string, accessExpiry, refreshExpiry time.Duration, keys TokenKeyFetcher) *TokenManager {
	return &TokenManager{
		secret:             secret,
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
		keys:               keys,
		now:                time.Now,
	}
}

func (tm *TokenManager) AccessTokenExpiry() time.Duration  { return tm.accessTokenExpiry }
func (tm *TokenManager) RefreshTokenExpiry() time.Duration { return tm.refreshTokenExpiry }

// signingKey returns the composite key (global secret + account token key).
// An account that cannot be loaded has no valid key.
func (tm *TokenManager) signingKey(ctx context.Context, userID string) ([]byte, error) {
	if tm.keys == nil {
		return []byte(tm.secret), nil
	}

	tokenKey, err := tm.keys.GetTokenKey(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load token key: %w", err)
	}
	return []byte(tm.secret + tokenKey), nil
}

// IssuePair mints a new access and refresh token for the account.
func (tm *TokenManager) IssuePair(ctx context.Context, userID, email string) (*TokenPair, error) {
	key, err := tm.signingKey(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := tm.now()
	access, accessExp, err := tm.sign(key, models.TokenTypeAccess, userID, email, now, tm.accessTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, refreshExp, err := tm.sign(key, models.TokenTypeRefresh, userID, email, now, tm.refreshTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccessExpiry:  accessExp,
		RefreshExpiry: refreshExp,
	}, nil
}

func (tm *TokenManager) sign(key []byte, tokenType, userID, email string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := &models.TokenClaims{
		Type:   tokenType,
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ValidateToken verifies signature, expiry and type, and returns the claims.
func (tm *TokenManager) ValidateToken(ctx context.Context, tokenString, wantType string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		c, ok := token.Claims.(*models.TokenClaims)
		if !ok || c.UserID == "" {
			return nil, errors.New("token has no subject")
		}
		return tm.signingKey(ctx, c.UserID)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Type != wantType {
		return nil, fmt.Errorf("%w: expected %s token, got %q", models.ErrUnauthorized, wantType, claims.Type)
	}

	return claims, nil
}

// Remaining is how long the token behind claims stays valid.
func (tm *TokenManager) Remaining(claims *models.TokenClaims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(tm.now())
}
