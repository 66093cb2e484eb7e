package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/alumninet/internal/models"
)

func TestAdminService_GrantAndRevoke(t *testing.T) {
	accounts := &MockAccountRepository{
		GetByEmailFunc: func(_ context.Context, email string) (*models.Account, error) {
			if email == "admin@example.org" {
				return &models.Account{ID: "u1", Email: email}, nil
			}
			return nil, models.ErrNotFound
		},
	}
	var granted, revoked string
	admins := &MockAllowlist{
		GrantFunc: func(_ context.Context, id string, _ *string) error {
			granted = id
			return nil
		},
		RevokeFunc: func(_ context.Context, id string) error {
			revoked = id
			return nil
		},
	}
	svc := NewAdminService(accounts, admins, discardLogger())

	acct, err := svc.GrantByEmail(context.Background(), "admin@example.org", nil)
	require.NoError(t, err)
	assert.Equal(t, "u1", acct.ID)
	assert.Equal(t, "u1", granted)

	_, err = svc.RevokeByEmail(context.Background(), "admin@example.org")
	require.NoError(t, err)
	assert.Equal(t, "u1", revoked)

	_, err = svc.GrantByEmail(context.Background(), "nobody@example.org", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAdminService_RevokeNonAdmin(t *testing.T) {
	accounts := &MockAccountRepository{
		GetByEmailFunc: func(_ context.Context, email string) (*models.Account, error) {
			return &models.Account{ID: "u1", Email: email}, nil
		},
	}
	admins := &MockAllowlist{
		RevokeFunc: func(context.Context, string) error { return models.ErrNotFound },
	}
	_, err := NewAdminService(accounts, admins, discardLogger()).RevokeByEmail(context.Background(), "x@example.org")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
