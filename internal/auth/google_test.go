package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

type MockIDTokenValidator struct {
	ValidateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func (m *MockIDTokenValidator) Validate(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
	return m.ValidateFunc(ctx, token, audience)
}

func TestGoogleVerifier_Verify(t *testing.T) {
	var gotAudience string
	v := NewGoogleVerifier(&MockIDTokenValidator{
		ValidateFunc: func(_ context.Context, _, audience string) (*idtoken.Payload, error) {
			gotAudience = audience
			return &idtoken.Payload{
				Subject: "google-sub-1",
				Claims: map[string]any{
					"email":          "Asha@Example.org",
					"email_verified": true,
					"name":           "Asha Rao",
					"picture":        "https://lh3.googleusercontent.com/a/x",
				},
			}, nil
		},
	}, "client-id.apps.googleusercontent.com")

	id, err := v.Verify(context.Background(), "credential")
	require.NoError(t, err)
	assert.Equal(t, "client-id.apps.googleusercontent.com", gotAudience)
	assert.Equal(t, "google-sub-1", id.Subject)
	assert.Equal(t, "asha@example.org", id.Email)
	assert.Equal(t, "Asha Rao", id.Name)
}

func TestGoogleVerifier_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		payload *idtoken.Payload
		err     error
	}{
		{"validator error", nil, errors.New("idtoken: token expired")},
		{"unverified email", &idtoken.Payload{Subject: "s", Claims: map[string]any{"email": "a@b.org", "email_verified": false}}, nil},
		{"no email", &idtoken.Payload{Subject: "s", Claims: map[string]any{"email_verified": true}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewGoogleVerifier(&MockIDTokenValidator{
				ValidateFunc: func(context.Context, string, string) (*idtoken.Payload, error) {
					return tt.payload, tt.err
				},
			}, "client-id")

			_, err := v.Verify(context.Background(), "credential")
			assert.ErrorIs(t, err, models.ErrOAuthRejected)
		})
	}
}

func TestGoogleVerifier_Disabled(t *testing.T) {
	var v *GoogleVerifier
	assert.False(t, v.Enabled())

	_, err := NewGoogleVerifier(nil, "").Verify(context.Background(), "credential")
	assert.ErrorIs(t, err, models.ErrOAuthRejected)
}
