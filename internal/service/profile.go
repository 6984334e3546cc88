package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/domain"
	"github.com/joshdurbin/imagefeed/internal/events"
)

const profileService = "profile"

// profile implements Profile
type profile struct {
	api      ProfileAPI
	tokens   TokenSource
	notifier *events.Notifier[events.Change]
	logger   zerolog.Logger

	mu      sync.RWMutex
	current *domain.Profile
}

// NewProfile creates the profile service
func NewProfile(api ProfileAPI, tokens TokenSource, notifier *events.Notifier[events.Change], logger zerolog.Logger) Profile {
	return &profile{
		api:      api,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger.With().Str("service", profileService).Logger(),
	}
}

// FetchProfile loads the profile of the token owner
func (s *profile) FetchProfile(ctx context.Context) (*domain.Profile, error) {
	token, ok := s.tokens.Token(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	result, err := s.api.Me(ctx, token)
	if err != nil {
		logFetchFailure(s.logger, err, "failed to fetch profile")
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	p := domain.NewProfile(*result)

	s.mu.Lock()
	s.current = &p
	s.mu.Unlock()

	s.notifier.Publish(events.Change{Source: profileService})

	out := p
	return &out, nil
}

// Profile returns the last loaded profile
func (s *profile) Profile() (domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return domain.Profile{}, false
	}
	return *s.current, true
}

// Reset forgets the cached profile
func (s *profile) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

var _ Profile = (*profile)(nil)
