// Package token holds the OAuth bearer token shared by every component.
package token

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/repository"
)

// Store is a concurrency-safe holder for the bearer token. The value is
// loaded from the repository on first access and written through on change.
type Store struct {
	mu     sync.RWMutex
	repo   repository.TokenRepository
	token  string
	loaded bool
	logger zerolog.Logger
}

// NewStore creates a store backed by repo
func NewStore(repo repository.TokenRepository, logger zerolog.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger.With().Str("component", "token_store").Logger(),
	}
}

// Token returns the current token and whether one is present
func (s *Store) Token(ctx context.Context) (string, bool) {
	s.mu.RLock()
	if s.loaded {
		token := s.token
		s.mu.RUnlock()
		return token, token != ""
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.load(ctx)
	}
	return s.token, s.token != ""
}

// load must be called with the write lock held
func (s *Store) load(ctx context.Context) {
	token, err := s.repo.LoadToken(ctx)
	switch {
	case err == nil:
		s.token = token
		s.loaded = true
	case errors.Is(err, repository.ErrTokenNotFound):
		s.token = ""
		s.loaded = true
	default:
		// Left unloaded so the next read retries
		s.logger.Error().Err(err).Msg("failed to load token")
	}
}

// Set persists the token and makes it visible to subsequent reads
func (s *Store) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.token = token
	s.loaded = true
	s.logger.Debug().Msg("token updated")
	return nil
}

// Clear removes the token
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteToken(ctx); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	s.token = ""
	s.loaded = true
	s.logger.Debug().Msg("token cleared")
	return nil
}
