package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joshdurbin/imagefeed/internal/domain"
	httpTransport "github.com/joshdurbin/imagefeed/internal/transport/http"
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
	out    io.Writer
}

// NewCommands creates a new Commands instance writing to out
func NewCommands(client *Client, out io.Writer) *Commands {
	return &Commands{
		client: client,
		out:    out,
	}
}

// Feed loads pages more feed pages and prints the feed
func (c *Commands) Feed(ctx context.Context, pages int) error {
	for i := 0; i < pages; i++ {
		resp, err := c.client.NextPage(ctx)
		if err != nil {
			return err
		}
		added := 0
		if resp.Added != nil {
			added = *resp.Added
		}
		fmt.Fprintf(c.out, "Page %d: %d new photos\n", resp.LastLoadedPage, added)
	}

	resp, err := c.client.Feed(ctx)
	if err != nil {
		return err
	}

	c.printPhotos(resp.Photos)
	return nil
}

// ResetFeed clears the feed
func (c *Commands) ResetFeed(ctx context.Context) error {
	if err := c.client.ResetFeed(ctx); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Feed cleared")
	return nil
}

// Like likes or unlikes a photo
func (c *Commands) Like(ctx context.Context, photoID string, like, fromFavorites bool) error {
	if err := c.client.SetLike(ctx, photoID, like, fromFavorites); err != nil {
		if errors.Is(err, ErrNotSignedIn) {
			fmt.Fprintln(c.out, "Sign in first: imagefeed client login")
			return nil
		}
		return err
	}

	action := "liked"
	if !like {
		action = "unliked"
	}
	fmt.Fprintf(c.out, "Photo '%s' %s\n", photoID, action)
	return nil
}

// Favorites loads pages favorites pages of username and prints them
func (c *Commands) Favorites(ctx context.Context, username string, pages int, refresh bool) error {
	var resp *httpTransport.FavoritesResponse
	for i := 0; i < pages; i++ {
		page, err := c.client.Favorites(ctx, username, refresh && i == 0)
		if err != nil {
			if errors.Is(err, ErrNotSignedIn) {
				fmt.Fprintln(c.out, "Sign in first: imagefeed client login")
				return nil
			}
			return err
		}
		resp = page
		if !page.HasMore {
			break
		}
	}
	if resp == nil {
		return nil
	}

	fmt.Fprintf(c.out, "Favorites of %s:\n", username)
	c.printPhotos(resp.Photos)
	if !resp.HasMore {
		fmt.Fprintln(c.out, "No more favorites")
	}
	return nil
}

// Profile prints the signed-in user's profile and avatar
func (c *Commands) Profile(ctx context.Context) error {
	profile, err := c.client.Profile(ctx)
	if err != nil {
		if errors.Is(err, ErrNotSignedIn) {
			fmt.Fprintln(c.out, "Not signed in")
			return nil
		}
		return err
	}

	fmt.Fprintf(c.out, "Profile:\n")
	fmt.Fprintf(c.out, "Name: %s\n", profile.Name)
	fmt.Fprintf(c.out, "Login: %s\n", profile.LoginName)
	if profile.Bio != "" {
		fmt.Fprintf(c.out, "Bio: %s\n", profile.Bio)
	}

	avatar, err := c.client.Avatar(ctx, profile.Username)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Avatar: %s\n", avatar.AvatarURL)

	return nil
}

// Login prints the page to sign in on
func (c *Commands) Login(ctx context.Context) error {
	url, err := c.client.LoginURL(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Open this page to sign in:\n%s\n", url)
	return nil
}

// Authorize exchanges a code copied from the redirect
func (c *Commands) Authorize(ctx context.Context, code string) error {
	if err := c.client.Authorize(ctx, code); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Signed in")
	return nil
}

// Logout clears the stored token
func (c *Commands) Logout(ctx context.Context) error {
	if err := c.client.Logout(ctx); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Signed out")
	return nil
}

func (c *Commands) printPhotos(photos []domain.Photo) {
	if len(photos) == 0 {
		fmt.Fprintln(c.out, "No photos found")
		return
	}

	fmt.Fprintf(c.out, "%-15s %-12s %-20s %-6s %s\n", "ID", "Size", "Created At", "Liked", "Description")
	fmt.Fprintln(c.out, strings.Repeat("-", 100))

	for _, p := range photos {
		created := "Unknown"
		if p.CreatedAt != nil {
			created = p.CreatedAt.Format("2006-01-02 15:04:05")
		}

		liked := "no"
		if p.IsLiked {
			liked = "yes"
		}

		description := p.Description
		if len(description) > 40 {
			description = description[:37] + "..."
		}

		fmt.Fprintf(c.out, "%-15s %-12s %-20s %-6s %s\n",
			p.ID,
			fmt.Sprintf("%dx%d", p.Width, p.Height),
			created,
			liked,
			description,
		)
	}
}
