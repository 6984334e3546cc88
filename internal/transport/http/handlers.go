package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/domain"
	"github.com/joshdurbin/imagefeed/internal/service"
)

// Authenticator completes and ends the OAuth session
type Authenticator interface {
	Exchange(ctx context.Context, code string) (string, error)
	Logout(ctx context.Context) error
}

// AuthLinks builds the authorization URL
type AuthLinks interface {
	AuthURL() (string, error)
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// FeedResponse is the feed snapshot
type FeedResponse struct {
	Photos         []domain.Photo `json:"photos"`
	LastLoadedPage int            `json:"last_loaded_page"`
	Loading        bool           `json:"loading"`
	Added          *int           `json:"added,omitempty"`
}

// FavoritesResponse is the accumulated favorites of one user
type FavoritesResponse struct {
	Username string         `json:"username"`
	Photos   []domain.Photo `json:"photos"`
	HasMore  bool           `json:"has_more"`
}

// AvatarResponse carries the avatar URL
type AvatarResponse struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Handler holds the HTTP handlers of the gateway
type Handler struct {
	feed         service.PhotoFeed
	favorites    service.Favorites
	profile      service.Profile
	profileImage service.ProfileImage
	auth         Authenticator
	links        AuthLinks
	logger       zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(feed service.PhotoFeed, favorites service.Favorites, profile service.Profile, profileImage service.ProfileImage, auth Authenticator, links AuthLinks, logger zerolog.Logger) *Handler {
	return &Handler{
		feed:         feed,
		favorites:    favorites,
		profile:      profile,
		profileImage: profileImage,
		auth:         auth,
		links:        links,
		logger:       logger,
	}
}

// GetFeed handles GET /api/feed
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.feedSnapshot(nil))
}

// NextFeedPage handles POST /api/feed/next
func (h *Handler) NextFeedPage(w http.ResponseWriter, r *http.Request) {
	added, err := h.feed.FetchNextPage(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to fetch next feed page")
		return
	}

	h.respondJSON(w, http.StatusOK, h.feedSnapshot(&added))
}

// ResetFeed handles POST /api/feed/reset
func (h *Handler) ResetFeed(w http.ResponseWriter, r *http.Request) {
	h.feed.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) feedSnapshot(added *int) FeedResponse {
	photos := h.feed.Photos()
	if photos == nil {
		photos = []domain.Photo{}
	}
	return FeedResponse{
		Photos:         photos,
		LastLoadedPage: h.feed.LastLoadedPage(),
		Loading:        h.feed.IsLoading(),
		Added:          added,
	}
}

// Like handles POST /api/photos/{id}/like
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, true)
}

// Unlike handles DELETE /api/photos/{id}/like
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, false)
}

// changeLike routes to the favorites service when ?source=favorites, otherwise to the feed
func (h *Handler) changeLike(w http.ResponseWriter, r *http.Request, isLike bool) {
	photoID := chi.URLParam(r, "id")
	if photoID == "" {
		h.respondError(w, "photo id is required", http.StatusBadRequest)
		return
	}

	var err error
	switch source := r.URL.Query().Get("source"); source {
	case "", "feed":
		err = h.feed.ChangeLike(r.Context(), photoID, isLike)
	case "favorites":
		err = h.favorites.ChangeLike(r.Context(), photoID, isLike)
	default:
		h.respondError(w, "unknown source: "+source, http.StatusBadRequest)
		return
	}

	if err != nil {
		h.respondServiceError(w, err, "failed to change like")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Favorites handles GET /api/favorites/{username}
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		h.favorites.Reset()
	}

	photos, err := h.favorites.FetchNextPage(r.Context(), username)
	if err != nil {
		h.respondServiceError(w, err, "failed to fetch favorites")
		return
	}
	if photos == nil {
		photos = []domain.Photo{}
	}

	h.respondJSON(w, http.StatusOK, FavoritesResponse{
		Username: username,
		Photos:   photos,
		HasMore:  h.favorites.HasMore(),
	})
}

// Profile handles GET /api/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profile.FetchProfile(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to fetch profile")
		return
	}

	h.respondJSON(w, http.StatusOK, profile)
}

// Avatar handles GET /api/profile/avatar. Without ?username the cached profile is used.
func (h *Handler) Avatar(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		if p, ok := h.profile.Profile(); ok {
			username = p.Username
		}
	}
	if username == "" {
		h.respondError(w, "username is required", http.StatusBadRequest)
		return
	}

	url, err := h.profileImage.FetchAvatarURL(r.Context(), username)
	if err != nil {
		h.respondServiceError(w, err, "failed to fetch avatar")
		return
	}

	h.respondJSON(w, http.StatusOK, AvatarResponse{Username: username, AvatarURL: url})
}

// Login handles GET /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	url, err := h.links.AuthURL()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build authorize URL")
		h.respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// Callback handles GET /auth/callback?code=
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.respondError(w, "code is required", http.StatusBadRequest)
		return
	}

	if _, err := h.auth.Exchange(r.Context(), code); err != nil {
		h.respondServiceError(w, err, "failed to exchange authorization code")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"status": "authorized"})
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("failed to logout")
		h.respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.feed.Reset()
	h.favorites.Reset()
	h.profile.Reset()
	h.profileImage.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps a service error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case domain.IsAuthFailure(err):
		return http.StatusUnauthorized
	case errors.Is(err, context.Canceled):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	h.logger.Error().Err(err).Int("status", status).Msg(msg)
	h.respondError(w, err.Error(), status)
}

func (h *Handler) respondError(w http.ResponseWriter, message string, status int) {
	h.respondJSON(w, status, ErrorResponse{Error: message})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
