package auth

import (
	"context"
	"errors"
	"time"

	"github.com/BradenHooton/alumninet/internal/models"
)

const testSecret = "test-secret-32-characters-long!"

// MockTokenKeys serves per-account token keys from a map.
type MockTokenKeys struct {
	Keys map[string]string
	Err  error
}

func (m *MockTokenKeys) GetTokenKey(_ context.Context, userID string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	k, ok := m.Keys[userID]
	if !ok {
		return "", models.ErrNotFound
	}
	return k, nil
}

// MockDenylist lets tests force denylist failures.
type MockDenylist struct {
	RevokeFunc    func(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	IsRevokedFunc func(ctx context.Context, jti string) (bool, error)
}

func (m *MockDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, jti, ttl)
	}
	return true, nil
}

func (m *MockDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.IsRevokedFunc != nil {
		return m.IsRevokedFunc(ctx, jti)
	}
	return false, nil
}

var errStoreDown = errors.New("connection refused")

func newTestTokenManager(keys *MockTokenKeys) *TokenManager {
	return NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour, keys)
}
