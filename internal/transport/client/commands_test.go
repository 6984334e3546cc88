package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/imagefeed/internal/domain"
	httpTransport "github.com/joshdurbin/imagefeed/internal/transport/http"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func newCommands(t *testing.T, handler http.HandlerFunc) (*Commands, *bytes.Buffer) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var out bytes.Buffer
	return NewCommands(NewClient(server.URL), &out), &out
}

func TestNewCommands(t *testing.T) {
	client := NewClient("http://localhost:8080")
	var out bytes.Buffer
	commands := NewCommands(client, &out)

	assert.NotNil(t, commands)
	assert.Equal(t, client, commands.client)
}

func TestCommands_Feed(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	page := 0

	commands, out := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/feed/next":
			page++
			added := 2
			writeJSON(w, http.StatusOK, httpTransport.FeedResponse{LastLoadedPage: page, Added: &added})
		case r.Method == http.MethodGet && r.URL.Path == "/api/feed":
			writeJSON(w, http.StatusOK, httpTransport.FeedResponse{
				LastLoadedPage: page,
				Photos: []domain.Photo{
					{ID: "abc", Width: 300, Height: 200, CreatedAt: &created, IsLiked: true, Description: "A very long description that needs to be truncated"},
					{ID: "def", Width: 10, Height: 10},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, commands.Feed(context.Background(), 2))

	output := out.String()
	assert.Contains(t, output, "Page 1: 2 new photos")
	assert.Contains(t, output, "Page 2: 2 new photos")
	assert.Contains(t, output, "abc")
	assert.Contains(t, output, "300x200")
	assert.Contains(t, output, "2024-01-02 03:04:05")
	assert.Contains(t, output, "yes")
	assert.Contains(t, output, "A very long description that needs to...")
	assert.Contains(t, output, "Unknown")
}

func TestCommands_Feed_Empty(t *testing.T) {
	commands, out := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, httpTransport.FeedResponse{})
	})

	require.NoError(t, commands.Feed(context.Background(), 0))
	assert.Contains(t, out.String(), "No photos found")
}

func TestCommands_Feed_UpstreamError(t *testing.T) {
	commands, _ := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, httpTransport.ErrorResponse{Error: "failed to fetch page 1"})
	})

	err := commands.Feed(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "failed to fetch page 1")
}

func TestCommands_ResetFeed(t *testing.T) {
	commands, out := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/feed/reset", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, commands.ResetFeed(context.Background()))
	assert.Contains(t, out.String(), "Feed cleared")
}

func TestCommands_Like(t *testing.T) {
	tests := []struct {
		name          string
		like          bool
		fromFavorites bool
		status        int
		wantMethod    string
		wantSource    string
		wantOutput    string
		wantErr       bool
	}{
		{"like", true, false, http.StatusNoContent, http.MethodPost, "", "Photo 'abc' liked", false},
		{"unlike from favorites", false, true, http.StatusNoContent, http.MethodDelete, "favorites", "Photo 'abc' unliked", false},
		{"not signed in", true, false, http.StatusUnauthorized, http.MethodPost, "", "Sign in first", false},
		{"upstream failure", true, false, http.StatusBadGateway, http.MethodPost, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commands, out := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantMethod, r.Method)
				assert.Equal(t, "/api/photos/abc/like", r.URL.Path)
				assert.Equal(t, tt.wantSource, r.URL.Query().Get("source"))
				if tt.status == http.StatusNoContent {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, httpTransport.ErrorResponse{Error: "nope"})
			})

			err := commands.Like(context.Background(), "abc", tt.like, tt.fromFavorites)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.wantOutput)
		})
	}
}

func TestCommands_Favorites(t *testing.T) {
	calls := 0
	commands, out := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/favorites/jane", r.URL.Path)
		calls++
		if calls == 1 {
			assert.Equal(t, "true", r.URL.Query().Get("refresh"))
			writeJSON(w, http.StatusOK, httpTransport.FavoritesResponse{Username: "jane", Photos: []domain.Photo{{ID: "p1"}}, HasMore: true})
			return
		}
		assert.Empty(t, r.URL.Query().Get("refresh"))
		writeJSON(w, http.StatusOK, httpTransport.FavoritesResponse{Username: "jane", Photos: []domain.Photo{{ID: "p1"}, {ID: "p2"}}})
	})

	require.NoError(t, commands.Favorites(context.Background(), "jane", 5, true))

	// Stops once the list is exhausted
	assert.Equal(t, 2, calls)
	output := out.String()
	assert.Contains(t, output, "Favorites of jane:")
	assert.Contains(t, output, "p1")
	assert.Contains(t, output, "p2")
	assert.Contains(t, output, "No more favorites")
}

func TestCommands_Favorites_NotSignedIn(t *testing.T) {
	commands, out := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, httpTransport.ErrorResponse{Error: "unauthorized"})
	})

	require.NoError(t, commands.Favorites(context.Background(), "jane", 1, false))
	assert.Contains(t, out.String(), "Sign in first")
}

func TestCommands_Profile(t *testing.T) {
	t.Run("signed in", func(t *testing.T) {
		commands, out := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/profile":
				writeJSON(w, http.StatusOK, domain.Profile{Username: "jane", Name: "Jane Doe", LoginName: "@jane", Bio: "Photographer"})
			case "/api/profile/avatar":
				assert.Equal(t, "jane", r.URL.Query().Get("username"))
				writeJSON(w, http.StatusOK, httpTransport.AvatarResponse{Username: "jane", AvatarURL: "https://images/jane"})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		})

		require.NoError(t, commands.Profile(context.Background()))

		output := out.String()
		assert.Contains(t, output, "Name: Jane Doe")
		assert.Contains(t, output, "Login: @jane")
		assert.Contains(t, output, "Bio: Photographer")
		assert.Contains(t, output, "Avatar: https://images/jane")
	})

	t.Run("not signed in", func(t *testing.T) {
		commands, out := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, httpTransport.ErrorResponse{Error: "unauthorized"})
		})

		require.NoError(t, commands.Profile(context.Background()))
		assert.Contains(t, out.String(), "Not signed in")
	})
}

func TestCommands_Login(t *testing.T) {
	commands, out := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		http.Redirect(w, r, "https://unsplash.com/oauth/authorize?client_id=key", http.StatusFound)
	})

	require.NoError(t, commands.Login(context.Background()))
	assert.Contains(t, out.String(), "https://unsplash.com/oauth/authorize?client_id=key")
}

func TestCommands_Authorize(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		commands, out := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/callback", r.URL.Path)
			assert.Equal(t, "the-code", r.URL.Query().Get("code"))
			writeJSON(w, http.StatusOK, map[string]string{"status": "authorized"})
		})

		require.NoError(t, commands.Authorize(context.Background(), "the-code"))
		assert.Contains(t, out.String(), "Signed in")
	})

	t.Run("rejected code", func(t *testing.T) {
		commands, _ := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadGateway, httpTransport.ErrorResponse{Error: "unexpected status 400"})
		})

		err := commands.Authorize(context.Background(), "bad")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status 400")
	})
}

func TestCommands_Logout(t *testing.T) {
	commands, out := newCommands(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, commands.Logout(context.Background()))
	assert.Contains(t, out.String(), "Signed out")
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).Feed(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to make request")
}
