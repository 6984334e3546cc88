package repository

import (
	"context"
	"errors"
)

// ErrTokenNotFound is returned when no token has been persisted
var ErrTokenNotFound = errors.New("token not found in storage")

// TokenRepository persists the single OAuth bearer token
type TokenRepository interface {
	// LoadToken returns the stored token or ErrTokenNotFound
	LoadToken(ctx context.Context) (string, error)

	// SaveToken stores the token, replacing any previous one
	SaveToken(ctx context.Context, token string) error

	// DeleteToken removes the stored token; deleting a missing token is not an error
	DeleteToken(ctx context.Context) error

	// Close closes the underlying connection
	Close() error
}
