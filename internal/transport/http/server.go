package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/metrics"
	"github.com/joshdurbin/imagefeed/internal/service"
)

// Deps are the components served by the gateway
type Deps struct {
	Feed         service.PhotoFeed
	Favorites    service.Favorites
	Profile      service.Profile
	ProfileImage service.ProfileImage
	Auth         Authenticator
	Links        AuthLinks
	Hub          *Hub
	Metrics      *metrics.Metrics
}

// Server represents the HTTP server
type Server struct {
	handler *Handler
	hub     *Hub
	server  *http.Server
	logger  zerolog.Logger
}

// NewServer creates a new HTTP server
func NewServer(addr string, deps Deps, verbose bool, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "gateway").Logger()
	handler := NewHandler(deps.Feed, deps.Favorites, deps.Profile, deps.ProfileImage, deps.Auth, deps.Links, logger)

	hub := deps.Hub
	if hub == nil {
		hub = NewHub(logger)
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(NewLoggingMiddleware(logger, verbose).Middleware)
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/feed", handler.GetFeed)
		r.Post("/feed/next", handler.NextFeedPage)
		r.Post("/feed/reset", handler.ResetFeed)

		r.Post("/photos/{id}/like", handler.Like)
		r.Delete("/photos/{id}/like", handler.Unlike)

		r.Get("/favorites/{username}", handler.Favorites)

		r.Get("/profile", handler.Profile)
		r.Get("/profile/avatar", handler.Avatar)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", handler.Login)
		r.Get("/callback", handler.Callback)
		r.Post("/logout", handler.Logout)
	})

	r.Get("/ws", hub.ServeWS)

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	return &Server{
		handler: handler,
		hub:     hub,
		server: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("gateway starting")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("gateway shutting down")
	return s.server.Shutdown(ctx)
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Router returns the root handler (useful for testing)
func (s *Server) Router() http.Handler {
	return s.server.Handler
}

// Handler returns the server handler (useful for testing)
func (s *Server) Handler() *Handler {
	return s.handler
}

// Hub returns the websocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}
