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

const feedService = "feed"

// FeedOptions tunes the feed pagination
type FeedOptions struct {
	// KeepCursorOnDuplicatePage leaves the cursor in place when a page holds only cached photos
	KeepCursorOnDuplicatePage bool
}

// photoFeed implements PhotoFeed
type photoFeed struct {
	api      PhotoAPI
	tokens   TokenSource
	photos   cache.PhotoList
	notifier *events.Notifier[events.Change]
	opts     FeedOptions
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	mu             sync.Mutex
	lastLoadedPage int
	loading        bool
	generation     uint64
	cancel         context.CancelFunc
}

// NewPhotoFeed creates the feed service. m may be nil.
func NewPhotoFeed(api PhotoAPI, tokens TokenSource, photos cache.PhotoList, notifier *events.Notifier[events.Change], opts FeedOptions, m *metrics.Metrics, logger zerolog.Logger) PhotoFeed {
	return &photoFeed{
		api:      api,
		tokens:   tokens,
		photos:   photos,
		notifier: notifier,
		opts:     opts,
		metrics:  m,
		logger:   logger.With().Str("service", feedService).Logger(),
	}
}

// FetchNextPage loads the next feed page
func (s *photoFeed) FetchNextPage(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		observeSkip(s.metrics, feedService, "loading")
		s.logger.Debug().Msg("fetch already in flight")
		return 0, nil
	}

	s.loading = true
	generation := s.generation
	page := s.lastLoadedPage + 1
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	// Anonymous requests fall back to the client id
	token, _ := s.tokens.Token(ctx)
	photos, err := s.api.ListPhotos(fetchCtx, token, page)

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		s.logger.Debug().Int("page", page).Msg("discarding page fetched before reset")
		return 0, fmt.Errorf("feed was reset while fetching page %d: %w", page, context.Canceled)
	}

	s.loading = false
	s.cancel = nil

	if err != nil {
		logFetchFailure(s.logger.With().Int("page", page).Logger(), err, "failed to fetch photos")
		return 0, fmt.Errorf("failed to fetch page %d: %w", page, err)
	}

	if len(photos) == 0 {
		s.logger.Debug().Int("page", page).Msg("empty page")
		return 0, nil
	}

	added := s.photos.AppendNew(photos)
	if added == 0 {
		if !s.opts.KeepCursorOnDuplicatePage {
			s.lastLoadedPage = page
		}
		s.logger.Debug().Int("page", page).Msg("page held only cached photos")
		return 0, nil
	}

	s.lastLoadedPage = page
	total := s.photos.Len()
	observeCached(s.metrics, feedService, total)
	s.logger.Debug().Int("page", page).Int("added", added).Int("total", total).Msg("page loaded")
	s.notifier.Publish(events.Change{Source: feedService, Count: total})

	return added, nil
}

// ChangeLike likes or unlikes a photo
func (s *photoFeed) ChangeLike(ctx context.Context, photoID string, isLike bool) error {
	if err := submitLike(ctx, s.tokens, s.api, photoID, isLike, feedService, s.metrics, s.logger); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.photos.SetLiked(photoID, isLike) {
		s.notifier.Publish(events.Change{Source: feedService, Count: s.photos.Len()})
	}
	return nil
}

// Photos returns a snapshot of the feed
func (s *photoFeed) Photos() []domain.Photo {
	return s.photos.Snapshot()
}

// LastLoadedPage returns the page cursor
func (s *photoFeed) LastLoadedPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLoadedPage
}

// IsLoading reports whether a fetch is in flight
func (s *photoFeed) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Reset clears the feed
func (s *photoFeed) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.photos.Reset()
	s.lastLoadedPage = 0
	s.loading = false
	observeCached(s.metrics, feedService, 0)
	s.logger.Debug().Msg("feed reset")
}

var _ PhotoFeed = (*photoFeed)(nil)
