package oauth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/joshdurbin/imagefeed/internal/domain"
)

const nativeAuthorizePath = "/oauth/authorize/native"

// Helper builds the authorization URL and extracts codes from redirects
type Helper struct {
	authorizeURL string
	clientID     string
	redirectURI  string
	scope        string
}

// NewHelper creates a helper. scope uses '+' between scopes, e.g. "public+read_user".
func NewHelper(authBaseURL, clientID, redirectURI, scope string) *Helper {
	return &Helper{
		authorizeURL: strings.TrimRight(authBaseURL, "/") + "/oauth/authorize",
		clientID:     clientID,
		redirectURI:  redirectURI,
		scope:        scope,
	}
}

// AuthURL returns the page the user signs in on
func (h *Helper) AuthURL() (string, error) {
	u, err := url.Parse(h.authorizeURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("failed to build authorize URL from %q: %w", h.authorizeURL, domain.ErrInvalidRequest)
	}

	q := url.Values{}
	q.Set("client_id", h.clientID)
	q.Set("redirect_uri", h.redirectURI)
	q.Set("response_type", "code")
	// Encode turns the spaces back into '+'
	q.Set("scope", strings.ReplaceAll(h.scope, "+", " "))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// CodeFromURL returns the authorization code carried by a redirect, either on
// the native authorize page or on the registered redirect URI.
func (h *Helper) CodeFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	if u.Path == nativeAuthorizePath || strings.HasPrefix(raw, h.redirectURI) {
		code := u.Query().Get("code")
		return code, code != ""
	}

	return "", false
}
