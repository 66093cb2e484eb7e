package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/BradenHooton/alumninet/internal/models"
	"google.golang.org/api/idtoken"
)

// IDTokenValidator is satisfied by *idtoken.Validator.
type IDTokenValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject  string
	Email    string
	Name     string
	Picture  string
	Verified bool
}

// GoogleVerifier checks Google Identity Services credentials.
type GoogleVerifier struct {
	validator IDTokenValidator
	clientID  string
}

func NewGoogleVerifier(validator IDTokenValidator, clientID string) *GoogleVerifier {
	return &GoogleVerifier{validator: validator, clientID: clientID}
}

// NewGoogleVerifierFromEnv builds a verifier backed by Google's public keys.
func NewGoogleVerifierFromEnv(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("create id token validator: %w", err)
	}
	return NewGoogleVerifier(v, clientID), nil
}

// Enabled reports whether a client ID is configured.
func (g *GoogleVerifier) Enabled() bool {
	return g != nil && g.clientID != ""
}

// Verify validates the credential's signature, audience and expiry. Only
// verified email addresses are accepted.
func (g *GoogleVerifier) Verify(ctx context.Context, credential string) (*GoogleIdentity, error) {
	if !g.Enabled() {
		return nil, fmt.Errorf("%w: google sign-in is not configured", models.ErrOAuthRejected)
	}

	payload, err := g.validator.Validate(ctx, credential, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrOAuthRejected, err)
	}

	id := &GoogleIdentity{Subject: payload.Subject}
	id.Email, _ = payload.Claims["email"].(string)
	id.Name, _ = payload.Claims["name"].(string)
	id.Picture, _ = payload.Claims["picture"].(string)
	id.Verified, _ = payload.Claims["email_verified"].(bool)

	if id.Subject == "" || id.Email == "" {
		return nil, fmt.Errorf("%w: token carries no subject or email", models.ErrOAuthRejected)
	}
	if !id.Verified {
		return nil, fmt.Errorf("%w: email not verified", models.ErrOAuthRejected)
	}
	id.Email = strings.ToLower(id.Email)
	return id, nil
}
