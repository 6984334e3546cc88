package cache

import (
	"github.com/joshdurbin/imagefeed/internal/domain"
)

// PhotoList is an insertion-ordered photo cache indexed by id. Entries are
// only ever appended; the like flag is the one field that changes in place.
type PhotoList interface {
	// AppendNew appends the photos whose id is not cached yet and returns how many were added
	AppendNew(photos []domain.Photo) int

	// Append appends every photo as is and returns how many were added
	Append(photos []domain.Photo) int

	// SetLiked sets the like flag of every entry with the id and reports whether one was found
	SetLiked(id string, liked bool) bool

	// Get returns a copy of the first entry with the id
	Get(id string) (domain.Photo, bool)

	// Contains reports whether the id is cached
	Contains(id string) bool

	// Snapshot returns a copy of the entries in insertion order
	Snapshot() []domain.Photo

	// Len returns the number of entries
	Len() int

	// Reset drops every entry
	Reset()
}
