package memory

import (
	"sync"

	"github.com/joshdurbin/imagefeed/internal/cache"
	"github.com/joshdurbin/imagefeed/internal/domain"
)

// PhotoList implements cache.PhotoList using in-memory storage
type PhotoList struct {
	photos []domain.Photo
	index  map[string][]int
	mutex  sync.RWMutex
}

// NewPhotoList creates an empty list
func NewPhotoList() *PhotoList {
	return &PhotoList{
		index: make(map[string][]int),
	}
}

// AppendNew appends the photos whose id is not cached yet
func (l *PhotoList) AppendNew(photos []domain.Photo) int {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	added := 0
	for _, p := range photos {
		if _, exists := l.index[p.ID]; exists {
			continue
		}
		l.add(p)
		added++
	}
	return added
}

// Append appends every photo, duplicates included
func (l *PhotoList) Append(photos []domain.Photo) int {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	for _, p := range photos {
		l.add(p)
	}
	return len(photos)
}

// add must be called with the write lock held
func (l *PhotoList) add(p domain.Photo) {
	l.index[p.ID] = append(l.index[p.ID], len(l.photos))
	l.photos = append(l.photos, p)
}

// SetLiked sets the like flag on every entry with the id
func (l *PhotoList) SetLiked(id string, liked bool) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	positions, exists := l.index[id]
	if !exists {
		return false
	}
	for _, i := range positions {
		l.photos[i].IsLiked = liked
	}
	return true
}

// Get returns a copy of the first entry with the id
func (l *PhotoList) Get(id string) (domain.Photo, bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	positions, exists := l.index[id]
	if !exists {
		return domain.Photo{}, false
	}
	return l.photos[positions[0]], true
}

// Contains reports whether the id is cached
func (l *PhotoList) Contains(id string) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	_, exists := l.index[id]
	return exists
}

// Snapshot returns a copy of the entries so callers cannot modify the cache
func (l *PhotoList) Snapshot() []domain.Photo {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	snapshot := make([]domain.Photo, len(l.photos))
	copy(snapshot, l.photos)
	return snapshot
}

// Len returns the number of entries
func (l *PhotoList) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return len(l.photos)
}

// Reset drops every entry
func (l *PhotoList) Reset() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.photos = nil
	l.index = make(map[string][]int)
}

// Ensure PhotoList implements the interface
var _ cache.PhotoList = (*PhotoList)(nil)
