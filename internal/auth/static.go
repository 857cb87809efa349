package auth

import (
	"context"
	"strings"
)

// StaticVerifier resolves tokens from a fixed table.
type StaticVerifier struct {
	tokens map[string]Identity
}

// NewStaticVerifier copies tokens into a new verifier.
func NewStaticVerifier(tokens map[string]Identity) *StaticVerifier {
	m := make(map[string]Identity, len(tokens))
	for tok, id := range tokens {
		id.Email = strings.ToLower(id.Email)
		m[tok] = id
	}
	return &StaticVerifier{tokens: m}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	id, ok := v.tokens[token]
	if !ok {
		return nil, ErrUnauthorized
	}
	return &id, nil
}
