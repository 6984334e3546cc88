package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/domain"
	"github.com/joshdurbin/imagefeed/internal/metrics"
)

type likeSetter interface {
	SetLike(ctx context.Context, token, photoID string, like bool) error
}

// submitLike sends the like change to the server. The caller updates its
// cache only when this returns nil.
func submitLike(ctx context.Context, tokens TokenSource, api likeSetter, photoID string, isLike bool, svc string, m *metrics.Metrics, logger zerolog.Logger) error {
	action := "unlike"
	if isLike {
		action = "like"
	}

	token, ok := tokens.Token(ctx)
	if !ok {
		observeLike(m, svc, action, "unauthorized")
		logger.Warn().Str("photo_id", photoID).Msg("user not authorized")
		return domain.ErrUnauthorized
	}

	if err := api.SetLike(ctx, token, photoID, isLike); err != nil {
		observeLike(m, svc, action, "failure")
		logger.Error().Err(err).Str("photo_id", photoID).Str("action", action).Msg("failed to change like")
		return fmt.Errorf("failed to %s photo %s: %w", action, photoID, err)
	}

	observeLike(m, svc, action, "success")
	logger.Info().Str("photo_id", photoID).Str("action", action).Msg("like changed")
	return nil
}

func observeLike(m *metrics.Metrics, svc, action, outcome string) {
	if m != nil {
		m.LikeChanges.WithLabelValues(svc, action, outcome).Inc()
	}
}

func observeSkip(m *metrics.Metrics, svc, reason string) {
	if m != nil {
		m.SkippedFetches.WithLabelValues(svc, reason).Inc()
	}
}

func observeCached(m *metrics.Metrics, svc string, n int) {
	if m != nil {
		m.CachedPhotos.WithLabelValues(svc).Set(float64(n))
	}
}

// logFetchFailure logs err, with the raw payload when it failed to decode
func logFetchFailure(logger zerolog.Logger, err error, msg string) {
	event := logger.Error().Err(err)

	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		event = event.Bytes("raw", decodeErr.Body)
	}

	event.Msg(msg)
}
