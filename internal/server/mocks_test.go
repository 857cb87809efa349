package server

import (
	"context"

	"findlost/internal/auth"

	"github.com/stretchr/testify/mock"
)

// MockVerifier is a mock implementation of auth.Verifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}
