package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/cache/memory"
	"github.com/joshdurbin/imagefeed/internal/config"
	"github.com/joshdurbin/imagefeed/internal/events"
	"github.com/joshdurbin/imagefeed/internal/metrics"
	"github.com/joshdurbin/imagefeed/internal/oauth"
	"github.com/joshdurbin/imagefeed/internal/repository"
	"github.com/joshdurbin/imagefeed/internal/repository/redis"
	"github.com/joshdurbin/imagefeed/internal/repository/sqlite"
	"github.com/joshdurbin/imagefeed/internal/service"
	"github.com/joshdurbin/imagefeed/internal/token"
	"github.com/joshdurbin/imagefeed/internal/unsplash"
	httpTransport "github.com/joshdurbin/imagefeed/internal/transport/http"
)

// app holds the wired components and their teardown
type app struct {
	server *httpTransport.Server
	bus    *events.Bus
	repo   repository.TokenRepository
	logger zerolog.Logger
}

// openRepository opens the token store selected by cfg
func openRepository(ctx context.Context, cfg config.StorageConfig) (repository.TokenRepository, error) {
	switch cfg.Backend {
	case config.StorageRedis:
		return redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.StorageSQLite:
		return sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}

// newApp wires the services behind the gateway
func newApp(ctx context.Context, cfg *config.Config, verbose bool, logger zerolog.Logger) (*app, error) {
	repo, err := openRepository(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token storage: %w", err)
	}
	logger.Info().Str("backend", cfg.Storage.Backend).Msg("token storage ready")

	m := metrics.New()
	bus := events.NewBus(m, logger)

	feedChanged := events.NewNotifier[events.Change](bus, events.FeedChanged)
	profileChanged := events.NewNotifier[events.Change](bus, events.ProfileChanged)
	avatarChanged := events.NewNotifier[string](bus, events.ProfileImageChanged)

	client := unsplash.NewClient(unsplash.Config{
		BaseURL:     cfg.API.BaseURL,
		AuthBaseURL: cfg.Auth.BaseURL,
		ClientID:    cfg.Auth.AccessKey,
		Timeout:     cfg.API.Timeout,
	}, m, logger)

	tokens := token.NewStore(repo, logger)
	exchanger := oauth.NewExchanger(client, tokens, oauth.Credentials{
		ClientID:     cfg.Auth.AccessKey,
		ClientSecret: cfg.Auth.SecretKey,
		RedirectURI:  cfg.Auth.RedirectURI,
	}, m, logger)

	hub := httpTransport.NewHub(logger)
	server := httpTransport.NewServer(cfg.Server.Addr(), httpTransport.Deps{
		Feed: service.NewPhotoFeed(client, tokens, memory.NewPhotoList(), feedChanged,
			service.FeedOptions{KeepCursorOnDuplicatePage: cfg.Feed.KeepCursorOnDuplicatePage}, m, logger),
		Favorites:    service.NewFavorites(client, tokens, memory.NewPhotoList(), profileChanged, cfg.Favorites.PerPage, m, logger),
		Profile:      service.NewProfile(client, tokens, profileChanged, logger),
		ProfileImage: service.NewProfileImage(client, tokens, avatarChanged, logger),
		Auth:         exchanger,
		Links:        oauth.NewHelper(cfg.Auth.BaseURL, cfg.Auth.AccessKey, cfg.Auth.RedirectURI, cfg.Auth.AccessScope),
		Hub:          hub,
		Metrics:      m,
	}, verbose, logger)

	httpTransport.Forward(hub, feedChanged)
	httpTransport.Forward(hub, profileChanged)
	httpTransport.Forward(hub, avatarChanged)

	return &app{
		server: server,
		bus:    bus,
		repo:   repo,
		logger: logger,
	}, nil
}

// shutdown stops the gateway, flushes pending events and closes storage
func (a *app) shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("error during gateway shutdown")
	}

	a.bus.Close()

	if err := a.repo.Close(); err != nil {
		a.logger.Error().Err(err).Msg("error closing token storage")
	}
}
