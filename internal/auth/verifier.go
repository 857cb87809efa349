// Package auth verifies bearer tokens issued by the external identity provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"findlost/internal/config"
)

// ErrUnauthorized is returned for absent, malformed, expired or rejected tokens.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is the verified principal behind a bearer token.
type Identity struct {
	// SubjectID is the identity provider's stable subject.
	SubjectID string
	// Email is lowercased.
	Email string
	// UserID is the directory user resolved from Email, if one exists.
	UserID string
}

// Owns reports whether userID belongs to the identity.
func (i *Identity) Owns(userID string) bool {
	if i == nil || userID == "" {
		return false
	}
	return userID == i.SubjectID || userID == i.UserID
}

// Verifier turns a raw bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// ExtractBearer returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearer(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrUnauthorized
	}
	return parts[1], nil
}

// NewVerifier builds the verifier selected by cfg.AuthMode.
func NewVerifier(cfg *config.Config) (Verifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWT, "":
		return NewJWTVerifier(JWTOptions{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		}), nil
	case config.AuthModeRemote:
		return NewRemoteVerifier(cfg.AuthTokenInfoURL), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
}

func newIdentity(sub, email string) (*Identity, error) {
	sub = strings.TrimSpace(sub)
	email = strings.ToLower(strings.TrimSpace(email))
	if sub == "" || email == "" {
		return nil, fmt.Errorf("%w: token is missing subject or email", ErrUnauthorized)
	}
	return &Identity{SubjectID: sub, Email: email}, nil
}
