package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDenylist(t *testing.T) {
	d := NewMemoryDenylist()
	now := time.Now()
	d.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := d.Revoke(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = d.Revoke(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, first, "second revoke reports reuse")

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entries expire with the token")
}

func TestMemoryDenylist_NonPositiveTTL(t *testing.T) {
	d := NewMemoryDenylist()

	first, err := d.Revoke(context.Background(), "jti-1", 0)
	require.NoError(t, err)
	assert.True(t, first)

	revoked, _ := d.IsRevoked(context.Background(), "jti-1")
	assert.False(t, revoked)
}

func TestMemoryDenylist_Purge(t *testing.T) {
	d := NewMemoryDenylist()
	now := time.Now()
	d.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = d.Revoke(ctx, "short", time.Minute)
	_, _ = d.Revoke(ctx, "long", time.Hour)

	now = now.Add(2 * time.Minute)
	removed, err := d.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	revoked, _ := d.IsRevoked(ctx, "long")
	assert.True(t, revoked)
}
