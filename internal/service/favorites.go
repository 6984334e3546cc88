package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/cache"
	"github.com/joshdurbin/imagefeed/internal/domain"
	"github.com/joshdurbin/imagefeed/internal/events"
	"github.com/joshdurbin/imagefeed/internal/metrics"
)

const favoritesService = "favorites"

// DefaultFavoritesPerPage is the page size requested when none is configured
const DefaultFavoritesPerPage = 30

// favorites implements Favorites. Pages are appended as returned; ids are not
// deduplicated across pages.
type favorites struct {
	api      FavoritesAPI
	tokens   TokenSource
	photos   cache.PhotoList
	notifier *events.Notifier[events.Change]
	perPage  int
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	mu          sync.Mutex
	username    string
	currentPage int
	hasMore     bool
	loading     bool
	generation  uint64
	cancel      context.CancelFunc
}

// NewFavorites creates the favorites service. m may be nil.
func NewFavorites(api FavoritesAPI, tokens TokenSource, photos cache.PhotoList, notifier *events.Notifier[events.Change], perPage int, m *metrics.Metrics, logger zerolog.Logger) Favorites {
	if perPage <= 0 {
		perPage = DefaultFavoritesPerPage
	}

	return &favorites{
		api:      api,
		tokens:   tokens,
		photos:   photos,
		notifier: notifier,
		perPage:  perPage,
		hasMore:  true,
		metrics:  m,
		logger:   logger.With().Str("service", favoritesService).Logger(),
	}
}

// FetchNextPage loads the next page of the user's likes
func (s *favorites) FetchNextPage(ctx context.Context, username string) ([]domain.Photo, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrInvalidRequest)
	}

	token, ok := s.tokens.Token(ctx)
	if !ok {
		s.logger.Warn().Msg("user not authorized")
		return nil, domain.ErrUnauthorized
	}

	s.mu.Lock()
	if username != s.username {
		s.resetLocked()
		s.username = username
	}

	if s.loading {
		s.mu.Unlock()
		observeSkip(s.metrics, favoritesService, "loading")
		return s.photos.Snapshot(), nil
	}
	if !s.hasMore {
		s.mu.Unlock()
		observeSkip(s.metrics, favoritesService, "exhausted")
		return s.photos.Snapshot(), nil
	}

	s.loading = true
	generation := s.generation
	page := s.currentPage + 1
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	photos, err := s.api.ListUserLikes(fetchCtx, token, username, page, s.perPage)

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.logger.With().Str("username", username).Int("page", page).Logger()

	if generation != s.generation {
		logger.Debug().Msg("discarding page fetched before reset")
		return nil, fmt.Errorf("favorites of %s were reset while fetching page %d: %w", username, page, context.Canceled)
	}

	s.loading = false
	s.cancel = nil

	if err != nil {
		logFetchFailure(logger, err, "failed to fetch favorites")
		return nil, fmt.Errorf("failed to fetch favorites page %d: %w", page, err)
	}

	s.currentPage = page
	if len(photos) < s.perPage {
		s.hasMore = false
	}

	if len(photos) > 0 {
		s.photos.Append(photos)
		total := s.photos.Len()
		observeCached(s.metrics, favoritesService, total)
		s.notifier.Publish(events.Change{Source: favoritesService, Count: total})
	}

	logger.Debug().Int("received", len(photos)).Bool("has_more", s.hasMore).Msg("favorites page loaded")
	return s.photos.Snapshot(), nil
}

// ChangeLike likes or unlikes a photo
func (s *favorites) ChangeLike(ctx context.Context, photoID string, isLike bool) error {
	if err := submitLike(ctx, s.tokens, s.api, photoID, isLike, favoritesService, s.metrics, s.logger); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.photos.SetLiked(photoID, isLike) {
		s.notifier.Publish(events.Change{Source: favoritesService, Count: s.photos.Len()})
	}
	return nil
}

// Photos returns a snapshot of the favorites
func (s *favorites) Photos() []domain.Photo {
	return s.photos.Snapshot()
}

// Username returns the user the cache belongs to
func (s *favorites) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// HasMore reports whether another page may exist
func (s *favorites) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Reset clears the favorites
func (s *favorites) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// resetLocked must be called with mu held
func (s *favorites) resetLocked() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.photos.Reset()
	s.username = ""
	s.currentPage = 0
	s.hasMore = true
	s.loading = false
	observeCached(s.metrics, favoritesService, 0)
}

var _ Favorites = (*favorites)(nil)
