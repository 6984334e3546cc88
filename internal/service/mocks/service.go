package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/imagefeed/internal/domain"
)

// PhotoFeed is a mock implementation of service.PhotoFeed
type PhotoFeed struct {
	mock.Mock
}

// FetchNextPage loads the next feed page
func (m *PhotoFeed) FetchNextPage(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// ChangeLike likes or unlikes a photo
func (m *PhotoFeed) ChangeLike(ctx context.Context, photoID string, isLike bool) error {
	args := m.Called(ctx, photoID, isLike)
	return args.Error(0)
}

// Photos returns the cached photos
func (m *PhotoFeed) Photos() []domain.Photo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.Photo)
}

// LastLoadedPage returns the page cursor
func (m *PhotoFeed) LastLoadedPage() int {
	args := m.Called()
	return args.Int(0)
}

// IsLoading reports whether a fetch is in flight
func (m *PhotoFeed) IsLoading() bool {
	args := m.Called()
	return args.Bool(0)
}

// Reset clears the feed
func (m *PhotoFeed) Reset() {
	m.Called()
}

// Favorites is a mock implementation of service.Favorites
type Favorites struct {
	mock.Mock
}

// FetchNextPage loads the next page of likes
func (m *Favorites) FetchNextPage(ctx context.Context, username string) ([]domain.Photo, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Photo), args.Error(1)
}

// ChangeLike likes or unlikes a photo
func (m *Favorites) ChangeLike(ctx context.Context, photoID string, isLike bool) error {
	args := m.Called(ctx, photoID, isLike)
	return args.Error(0)
}

// Photos returns the cached photos
func (m *Favorites) Photos() []domain.Photo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.Photo)
}

// Username returns the cached user
func (m *Favorites) Username() string {
	args := m.Called()
	return args.String(0)
}

// HasMore reports whether another page may exist
func (m *Favorites) HasMore() bool {
	args := m.Called()
	return args.Bool(0)
}

// Reset clears the favorites
func (m *Favorites) Reset() {
	m.Called()
}

// Profile is a mock implementation of service.Profile
type Profile struct {
	mock.Mock
}

// FetchProfile loads the profile
func (m *Profile) FetchProfile(ctx context.Context) (*domain.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

// Profile returns the cached profile
func (m *Profile) Profile() (domain.Profile, bool) {
	args := m.Called()
	return args.Get(0).(domain.Profile), args.Bool(1)
}

// Reset forgets the profile
func (m *Profile) Reset() {
	m.Called()
}

// ProfileImage is a mock implementation of service.ProfileImage
type ProfileImage struct {
	mock.Mock
}

// FetchAvatarURL loads the avatar URL
func (m *ProfileImage) FetchAvatarURL(ctx context.Context, username string) (string, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.Error(1)
}

// AvatarURL returns the cached avatar URL
func (m *ProfileImage) AvatarURL() string {
	args := m.Called()
	return args.String(0)
}

// Reset forgets the avatar
func (m *ProfileImage) Reset() {
	m.Called()
}
