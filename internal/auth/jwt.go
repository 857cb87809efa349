package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTOptions configures HS256 token validation.
type JWTOptions struct {
	Secret   string
	Issuer   string
	Audience string
}

// JWTVerifier validates HS256 tokens signed with the provider's shared secret.
type JWTVerifier struct {
	opts   JWTOptions
	parser *jwt.Parser
}

// NewJWTVerifier creates a verifier. Issuer and audience are only checked when set.
func NewJWTVerifier(opts JWTOptions) *JWTVerifier {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	return &JWTVerifier{opts: opts, parser: jwt.NewParser(parserOpts...)}
}

type identityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify parses and validates token.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	var claims identityClaims
	parsed, err := v.parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(v.opts.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	return newIdentity(claims.Subject, claims.Email)
}

// IssueToken mints an HS256 token for local development and tests.
func IssueToken(opts JWTOptions, subject, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := identityClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if opts.Audience != "" {
		claims.Audience = jwt.ClaimStrings{opts.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(opts.Secret))
}
