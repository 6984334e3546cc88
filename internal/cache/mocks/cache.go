package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/imagefeed/internal/cache"
	"github.com/joshdurbin/imagefeed/internal/domain"
)

// PhotoList is a mock implementation of cache.PhotoList
type PhotoList struct {
	mock.Mock
}

// AppendNew appends photos whose id is not cached yet
func (m *PhotoList) AppendNew(photos []domain.Photo) int {
	args := m.Called(photos)
	return args.Int(0)
}

// Append appends every photo
func (m *PhotoList) Append(photos []domain.Photo) int {
	args := m.Called(photos)
	return args.Int(0)
}

// SetLiked sets the like flag for an id
func (m *PhotoList) SetLiked(id string, liked bool) bool {
	args := m.Called(id, liked)
	return args.Bool(0)
}

// Get returns the entry with the id
func (m *PhotoList) Get(id string) (domain.Photo, bool) {
	args := m.Called(id)
	return args.Get(0).(domain.Photo), args.Bool(1)
}

// Contains reports whether the id is cached
func (m *PhotoList) Contains(id string) bool {
	args := m.Called(id)
	return args.Bool(0)
}

// Snapshot returns the cached entries
func (m *PhotoList) Snapshot() []domain.Photo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.Photo)
}

// Len returns the number of entries
func (m *PhotoList) Len() int {
	args := m.Called()
	return args.Int(0)
}

// Reset drops every entry
func (m *PhotoList) Reset() {
	m.Called()
}

var _ cache.PhotoList = (*PhotoList)(nil)
