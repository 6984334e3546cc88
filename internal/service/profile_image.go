package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/domain"
	"github.com/joshdurbin/imagefeed/internal/events"
)

// profileImage implements ProfileImage. A new fetch cancels the one in flight.
type profileImage struct {
	api      ProfileAPI
	tokens   TokenSource
	notifier *events.Notifier[string]
	logger   zerolog.Logger

	mu        sync.Mutex
	avatarURL string
	seq       uint64
	cancel    context.CancelFunc
}

// NewProfileImage creates the avatar service
func NewProfileImage(api ProfileAPI, tokens TokenSource, notifier *events.Notifier[string], logger zerolog.Logger) ProfileImage {
	return &profileImage{
		api:      api,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger.With().Str("service", "profile_image").Logger(),
	}
}

// FetchAvatarURL loads the small avatar of username
func (s *profileImage) FetchAvatarURL(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username is required: %w", domain.ErrInvalidRequest)
	}

	token, ok := s.tokens.Token(ctx)
	if !ok {
		return "", domain.ErrUnauthorized
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	result, err := s.api.User(fetchCtx, token, username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return "", fmt.Errorf("avatar fetch for %s superseded: %w", username, context.Canceled)
	}
	s.cancel = nil

	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to fetch profile image")
		return "", fmt.Errorf("failed to fetch profile image: %w", err)
	}

	s.avatarURL = result.ProfileImage.Small
	s.notifier.Publish(s.avatarURL)

	return s.avatarURL, nil
}

// AvatarURL returns the last loaded URL
func (s *profileImage) AvatarURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avatarURL
}

// Reset forgets the avatar and discards any fetch in flight
func (s *profileImage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.avatarURL = ""
}

var _ ProfileImage = (*profileImage)(nil)
