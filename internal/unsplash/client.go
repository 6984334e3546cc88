// Package unsplash is the REST transport for the photo service: feed pages,
// likes, user favorites, profile lookups and the OAuth token endpoint.
package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/domain"
	"github.com/joshdurbin/imagefeed/internal/metrics"
)

// Config holds the client settings
type Config struct {
	BaseURL     string
	AuthBaseURL string
	ClientID    string
	Timeout     time.Duration
}

// Client is an HTTP client for the photo service API
type Client struct {
	api      *resty.Client
	auth     *resty.Client
	clientID string
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewClient creates a new photo service client. m may be nil.
func NewClient(cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		api: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept-Version", "v1"),
		auth: resty.New().
			SetBaseURL(cfg.AuthBaseURL).
			SetTimeout(cfg.Timeout),
		clientID: cfg.ClientID,
		metrics:  m,
		logger:   logger.With().Str("component", "unsplash").Logger(),
	}
}

// ListPhotos fetches one page of the global feed. Without a token the
// request falls back to the client_id query parameter.
func (c *Client) ListPhotos(ctx context.Context, token string, page int) ([]domain.Photo, error) {
	req := c.api.R().SetQueryParam("page", strconv.Itoa(page))
	if token != "" {
		req.SetAuthToken(token)
	} else {
		req.SetQueryParam("client_id", c.clientID)
	}

	resp, err := c.do(ctx, "photos", req, http.MethodGet, "/photos")
	if err != nil {
		return nil, err
	}

	return domain.DecodePhotos(resp.Body())
}

// ListUserLikes fetches one page of the photos a user has liked
func (c *Client) ListUserLikes(ctx context.Context, token, username string, page, perPage int) ([]domain.Photo, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrInvalidRequest)
	}

	req := c.api.R().
		SetAuthToken(token).
		SetPathParam("username", username).
		SetQueryParams(map[string]string{
			"page":     strconv.Itoa(page),
			"per_page": strconv.Itoa(perPage),
		})

	resp, err := c.do(ctx, "user_likes", req, http.MethodGet, "/users/{username}/likes")
	if err != nil {
		return nil, err
	}

	return domain.DecodePhotos(resp.Body())
}

// SetLike likes (POST) or unlikes (DELETE) a photo. The response body is ignored.
func (c *Client) SetLike(ctx context.Context, token, photoID string, like bool) error {
	if token == "" {
		return domain.ErrUnauthorized
	}
	if photoID == "" {
		return fmt.Errorf("photo id is required: %w", domain.ErrInvalidRequest)
	}

	method, endpoint := http.MethodPost, "like"
	if !like {
		method, endpoint = http.MethodDelete, "unlike"
	}

	req := c.api.R().
		SetAuthToken(token).
		SetPathParam("id", photoID)

	_, err := c.do(ctx, endpoint, req, method, "/photos/{id}/like")
	return err
}

// ExchangeCode trades an authorization code for an access token
func (c *Client) ExchangeCode(ctx context.Context, tr domain.TokenRequest) (*domain.TokenResponse, error) {
	if tr.Code == "" {
		return nil, fmt.Errorf("authorization code is required: %w", domain.ErrInvalidRequest)
	}

	req := c.auth.R().SetFormData(map[string]string{
		"client_id":     tr.ClientID,
		"client_secret": tr.ClientSecret,
		"redirect_uri":  tr.RedirectURI,
		"code":          tr.Code,
		"grant_type":    tr.GrantType,
	})

	resp, err := c.do(ctx, "oauth_token", req, http.MethodPost, "/oauth/token")
	if err != nil {
		return nil, err
	}

	var body domain.TokenResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &domain.DecodeError{Body: resp.Body(), Err: err}
	}
	if body.AccessToken == "" {
		return nil, &domain.DecodeError{Body: resp.Body(), Err: fmt.Errorf("access_token missing")}
	}

	return &body, nil
}

// Me fetches the signed-in user's profile
func (c *Client) Me(ctx context.Context, token string) (*domain.ProfileResult, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	resp, err := c.do(ctx, "me", c.api.R().SetAuthToken(token), http.MethodGet, "/me")
	if err != nil {
		return nil, err
	}

	var result domain.ProfileResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &domain.DecodeError{Body: resp.Body(), Err: err}
	}

	return &result, nil
}

// User fetches the public record of a user
func (c *Client) User(ctx context.Context, token, username string) (*domain.UserResult, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrInvalidRequest)
	}

	req := c.api.R().
		SetAuthToken(token).
		SetPathParam("username", username)

	resp, err := c.do(ctx, "user", req, http.MethodGet, "/users/{username}")
	if err != nil {
		return nil, err
	}

	var result domain.UserResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &domain.DecodeError{Body: resp.Body(), Err: err}
	}

	return &result, nil
}

// do executes the request and maps failures onto the domain error taxonomy
func (c *Client) do(ctx context.Context, endpoint string, req *resty.Request, method, path string) (*resty.Response, error) {
	start := time.Now()
	resp, err := req.SetContext(ctx).Execute(method, path)
	elapsed := time.Since(start)

	if err != nil {
		c.observe(endpoint, "network_error", elapsed)
		c.logger.Debug().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("request failed")
		return nil, &domain.NetworkError{Op: method + " " + path, Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode()).
		Dur("elapsed", elapsed).
		Msg("request completed")

	if !resp.IsSuccess() {
		c.observe(endpoint, "status_"+strconv.Itoa(resp.StatusCode()), elapsed)
		return resp, &domain.StatusError{Code: resp.StatusCode()}
	}

	c.observe(endpoint, "success", elapsed)
	return resp, nil
}

func (c *Client) observe(endpoint, outcome string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.APIRequests.WithLabelValues(endpoint, outcome).Inc()
	c.metrics.APIDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
