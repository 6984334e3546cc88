package service

import (
	"context"

	"github.com/joshdurbin/imagefeed/internal/domain"
)

// PhotoFeed is the paginated global photo feed
type PhotoFeed interface {
	// FetchNextPage loads the page after the last one loaded and returns how
	// many new photos were appended. It is a no-op while a fetch is in flight.
	FetchNextPage(ctx context.Context) (int, error)

	// ChangeLike likes or unlikes a photo and updates the cached copy on success
	ChangeLike(ctx context.Context, photoID string, isLike bool) error

	// Photos returns a snapshot of the cached photos in feed order
	Photos() []domain.Photo

	// LastLoadedPage returns the page cursor
	LastLoadedPage() int

	// IsLoading reports whether a page fetch is in flight
	IsLoading() bool

	// Reset drops the cache and cursor; an in-flight fetch is discarded
	Reset()
}

// Favorites is the paginated list of photos a user has liked
type Favorites interface {
	// FetchNextPage loads the next page of username's likes and returns every photo loaded so far
	FetchNextPage(ctx context.Context, username string) ([]domain.Photo, error)

	// ChangeLike likes or unlikes a photo and updates the cached copy on success
	ChangeLike(ctx context.Context, photoID string, isLike bool) error

	// Photos returns a snapshot of the cached photos
	Photos() []domain.Photo

	// Username returns the user the cache belongs to
	Username() string

	// HasMore reports whether another page may exist
	HasMore() bool

	// Reset drops the cache, cursor and username
	Reset()
}

// Profile is the signed-in user's profile
type Profile interface {
	// FetchProfile loads the profile of the token owner
	FetchProfile(ctx context.Context) (*domain.Profile, error)

	// Profile returns the last loaded profile
	Profile() (domain.Profile, bool)

	// Reset forgets the cached profile
	Reset()
}

// ProfileImage resolves a user's avatar URL
type ProfileImage interface {
	// FetchAvatarURL loads the small avatar URL of username, superseding any fetch in flight
	FetchAvatarURL(ctx context.Context, username string) (string, error)

	// AvatarURL returns the last loaded URL
	AvatarURL() string

	// Reset forgets the avatar and cancels any fetch in flight
	Reset()
}

// TokenSource provides the bearer token
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// PhotoAPI is the part of the photo service client used by the feed
type PhotoAPI interface {
	ListPhotos(ctx context.Context, token string, page int) ([]domain.Photo, error)
	SetLike(ctx context.Context, token, photoID string, like bool) error
}

// FavoritesAPI is the part of the photo service client used by favorites
type FavoritesAPI interface {
	ListUserLikes(ctx context.Context, token, username string, page, perPage int) ([]domain.Photo, error)
	SetLike(ctx context.Context, token, photoID string, like bool) error
}

// ProfileAPI is the part of the photo service client used by the profile services
type ProfileAPI interface {
	Me(ctx context.Context, token string) (*domain.ProfileResult, error)
	User(ctx context.Context, token, username string) (*domain.UserResult, error)
}
