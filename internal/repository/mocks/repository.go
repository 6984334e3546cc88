package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/imagefeed/internal/repository"
)

// TokenRepository is a mock implementation of repository.TokenRepository
type TokenRepository struct {
	mock.Mock
}

// LoadToken returns the stored token
func (m *TokenRepository) LoadToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// SaveToken stores the token
func (m *TokenRepository) SaveToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// DeleteToken removes the stored token
func (m *TokenRepository) DeleteToken(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the repository
func (m *TokenRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ repository.TokenRepository = (*TokenRepository)(nil)
