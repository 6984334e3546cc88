package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/joshdurbin/imagefeed/internal/domain"
	httpTransport "github.com/joshdurbin/imagefeed/internal/transport/http"
)

// ErrNotSignedIn is returned when the gateway answers 401
var ErrNotSignedIn = errors.New("not signed in")

// Client talks to a running gateway
type Client struct {
	http *resty.Client
}

// NewClient creates a new gateway client
func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(30 * time.Second).
			SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			})),
	}
}

// Feed returns the cached feed
func (c *Client) Feed(ctx context.Context) (*httpTransport.FeedResponse, error) {
	var out httpTransport.FeedResponse
	if err := c.do(ctx, http.MethodGet, "/api/feed", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NextPage asks the gateway to load the next feed page
func (c *Client) NextPage(ctx context.Context) (*httpTransport.FeedResponse, error) {
	var out httpTransport.FeedResponse
	if err := c.do(ctx, http.MethodPost, "/api/feed/next", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetFeed clears the feed
func (c *Client) ResetFeed(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/feed/reset", nil, nil)
}

// SetLike likes or unlikes a photo. fromFavorites routes the change through
// the favorites list instead of the feed.
func (c *Client) SetLike(ctx context.Context, photoID string, like, fromFavorites bool) error {
	method := http.MethodPost
	if !like {
		method = http.MethodDelete
	}

	query := map[string]string{}
	if fromFavorites {
		query["source"] = "favorites"
	}
	return c.do(ctx, method, "/api/photos/"+photoID+"/like", query, nil)
}

// Favorites loads the next favorites page of username
func (c *Client) Favorites(ctx context.Context, username string, refresh bool) (*httpTransport.FavoritesResponse, error) {
	query := map[string]string{}
	if refresh {
		query["refresh"] = "true"
	}

	var out httpTransport.FavoritesResponse
	if err := c.do(ctx, http.MethodGet, "/api/favorites/"+username, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the signed-in user's profile
func (c *Client) Profile(ctx context.Context) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Avatar returns the avatar URL of username, or of the signed-in user when empty
func (c *Client) Avatar(ctx context.Context, username string) (*httpTransport.AvatarResponse, error) {
	query := map[string]string{}
	if username != "" {
		query["username"] = username
	}

	var out httpTransport.AvatarResponse
	if err := c.do(ctx, http.MethodGet, "/api/profile/avatar", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginURL returns the authorize page the gateway redirects to
func (c *Client) LoginURL(ctx context.Context) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/auth/login")
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	if resp.StatusCode() != http.StatusFound {
		return "", statusError(resp)
	}
	return resp.Header().Get("Location"), nil
}

// Authorize hands an authorization code to the gateway
func (c *Client) Authorize(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodGet, "/auth/callback", map[string]string{"code": code}, nil)
}

// Logout clears the stored token
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, out any) error {
	req := c.http.R().SetContext(ctx).SetQueryParams(query)

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	if !resp.IsSuccess() {
		return statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(resp *resty.Response) error {
	var body httpTransport.ErrorResponse
	message := resp.Status()
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		message = body.Error
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", message, ErrNotSignedIn)
	}
	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode(), message)
}
