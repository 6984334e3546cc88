package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Photo is the in-memory representation of a remote photo record; its json
// tags are the gateway's format, not the photo service's (see PhotoResult).
// IsLiked is the only field that changes after construction.
type Photo struct {
	ID            string     `json:"id"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	Description   string     `json:"description,omitempty"`
	ThumbImageURL string     `json:"thumb_image_url"`
	LargeImageURL string     `json:"large_image_url"`
	IsLiked       bool       `json:"is_liked"`
}

// AspectRatio returns width divided by height, or 0 for a degenerate size
func (p Photo) AspectRatio() float64 {
	if p.Height <= 0 {
		return 0
	}
	return float64(p.Width) / float64(p.Height)
}

// PhotoResult is a photo record as returned by the photo service
type PhotoResult struct {
	ID          string     `json:"id"`
	CreatedAt   *string    `json:"created_at"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Description *string    `json:"description"`
	URLs        URLsResult `json:"urls"`
	LikedByUser *bool      `json:"liked_by_user"`
}

// URLsResult holds the image variants of a photo record
type URLsResult struct {
	Thumb string `json:"thumb"`
	Full  string `json:"full"`
}

// NewPhoto converts a wire record into a Photo. An absent or unparseable
// created_at yields a nil CreatedAt.
func NewPhoto(r PhotoResult) Photo {
	photo := Photo{
		ID:            r.ID,
		Width:         r.Width,
		Height:        r.Height,
		ThumbImageURL: r.URLs.Thumb,
		LargeImageURL: r.URLs.Full,
	}
	if r.LikedByUser != nil {
		photo.IsLiked = *r.LikedByUser
	}
	if r.Description != nil {
		photo.Description = *r.Description
	}
	if r.CreatedAt != nil {
		if t, err := time.Parse(time.RFC3339, *r.CreatedAt); err == nil {
			photo.CreatedAt = &t
		}
	}
	return photo
}

// Validate reports the first required field the record is missing
func (r PhotoResult) Validate() error {
	switch {
	case r.ID == "":
		return errors.New("photo id is missing")
	case r.Width <= 0 || r.Height <= 0:
		return fmt.Errorf("photo %s has invalid size %dx%d", r.ID, r.Width, r.Height)
	case r.URLs.Thumb == "" || r.URLs.Full == "":
		return fmt.Errorf("photo %s is missing image urls", r.ID)
	case r.LikedByUser == nil:
		return fmt.Errorf("photo %s is missing liked_by_user", r.ID)
	}
	return nil
}

// DecodePhotos parses a page of photo records. A page with any malformed
// record is rejected whole. On failure the returned error is a *DecodeError
// carrying the raw payload.
func DecodePhotos(data []byte) ([]Photo, error) {
	var results []PhotoResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, &DecodeError{Body: data, Err: err}
	}

	for i, r := range results {
		if err := r.Validate(); err != nil {
			return nil, &DecodeError{Body: data, Err: fmt.Errorf("record %d: %w", i, err)}
		}
	}

	photos := make([]Photo, 0, len(results))
	for _, r := range results {
		photos = append(photos, NewPhoto(r))
	}
	return photos, nil
}

// TokenRequest holds the form fields of an authorization code exchange
type TokenRequest struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Code         string
	GrantType    string
}

// TokenResponse is the body returned by the token endpoint
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	CreatedAt   int64  `json:"created_at"`
}

// ProfileResult is the body returned by GET /me
type ProfileResult struct {
	Username  string  `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
}

// Profile is the signed-in user's profile
type Profile struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	LoginName string `json:"login_name"`
	Bio       string `json:"bio,omitempty"`
}

// NewProfile converts a wire record into a Profile
func NewProfile(r ProfileResult) Profile {
	var parts []string
	for _, p := range []*string{r.FirstName, r.LastName} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}

	profile := Profile{
		Username:  r.Username,
		Name:      strings.Join(parts, " "),
		LoginName: "@" + r.Username,
	}
	if r.Bio != nil {
		profile.Bio = *r.Bio
	}
	return profile
}

// UserResult is the subset of GET /users/{username} used for avatars
type UserResult struct {
	ProfileImage ProfileImage `json:"profile_image"`
}

// ProfileImage holds avatar variants
type ProfileImage struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}
