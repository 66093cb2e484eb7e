package auth

import (
	"context"
	"testing"
	"time"

	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndValidate(t *testing.T) {
	keys := &MockTokenKeys{Keys: map[string]string{"u1": "key-1"}}
	tm := newTestTokenManager(keys)
	ctx := context.Background()

	pair, err := tm.IssuePair(ctx, "u1", "asha@example.org")
	require.NoError(t, err)

	access, err := tm.ValidateToken(ctx, pair.AccessToken, models.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", access.UserID)
	assert.Equal(t, "asha@example.org", access.Email)
	assert.NotEmpty(t, access.ID)

	refresh, err := tm.ValidateToken(ctx, pair.RefreshToken, models.TokenTypeRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, access.ID, refresh.ID)
	assert.True(t, pair.RefreshExpiry.After(pair.AccessExpiry))
}

func TestTokenManager_RejectsWrongType(t *testing.T) {
	tm := newTestTokenManager(&MockTokenKeys{Keys: map[string]string{"u1": "key-1"}})
	ctx := context.Background()

	pair, err := tm.IssuePair(ctx, "u1", "")
	require.NoError(t, err)

	_, err = tm.ValidateToken(ctx, pair.RefreshToken, models.TokenTypeAccess)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestTokenManager_RotatedTokenKeyInvalidates(t *testing.T) {
	keys := &MockTokenKeys{Keys: map[string]string{"u1": "key-1"}}
	tm := newTestTokenManager(keys)
	ctx := context.Background()

	pair, err := tm.IssuePair(ctx, "u1", "")
	require.NoError(t, err)

	keys.Keys["u1"] = "key-2"
	_, err = tm.ValidateToken(ctx, pair.AccessToken, models.TokenTypeAccess)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := newTestTokenManager(&MockTokenKeys{Keys: map[string]string{"u1": "k"}})
	issued := time.Now().Add(-time.Hour)
	tm.now = func() time.Time { return issued }

	pair, err := tm.IssuePair(context.Background(), "u1", "")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ValidateToken(context.Background(), pair.AccessToken, models.TokenTypeAccess)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	tm := newTestTokenManager(&MockTokenKeys{Keys: map[string]string{"u1": "k"}})

	claims := &models.TokenClaims{
		Type:   models.TokenTypeAccess,
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.ValidateToken(context.Background(), unsigned, models.TokenTypeAccess)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestTokenManager_UnknownAccount(t *testing.T) {
	tm := newTestTokenManager(&MockTokenKeys{Keys: map[string]string{}})

	_, err := tm.IssuePair(context.Background(), "ghost", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
