package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/imagefeed/internal/domain"
)

// PhotoAPI is a mock of the photo service client. It satisfies
// service.PhotoAPI, service.FavoritesAPI and service.ProfileAPI.
type PhotoAPI struct {
	mock.Mock
}

// ListPhotos fetches a feed page
func (m *PhotoAPI) ListPhotos(ctx context.Context, token string, page int) ([]domain.Photo, error) {
	args := m.Called(ctx, token, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Photo), args.Error(1)
}

// ListUserLikes fetches a page of a user's likes
func (m *PhotoAPI) ListUserLikes(ctx context.Context, token, username string, page, perPage int) ([]domain.Photo, error) {
	args := m.Called(ctx, token, username, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Photo), args.Error(1)
}

// SetLike likes or unlikes a photo
func (m *PhotoAPI) SetLike(ctx context.Context, token, photoID string, like bool) error {
	args := m.Called(ctx, token, photoID, like)
	return args.Error(0)
}

// Me fetches the signed-in profile
func (m *PhotoAPI) Me(ctx context.Context, token string) (*domain.ProfileResult, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileResult), args.Error(1)
}

// User fetches a user record
func (m *PhotoAPI) User(ctx context.Context, token, username string) (*domain.UserResult, error) {
	args := m.Called(ctx, token, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserResult), args.Error(1)
}

// TokenSource is a mock token provider
type TokenSource struct {
	mock.Mock
}

// Token returns the bearer token
func (m *TokenSource) Token(ctx context.Context) (string, bool) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1)
}
