// Package models defines server-side data models persisted in the database.
package models

import "time"

// Identity is a registered account together with its session state.
//
// PasswordHash and RefreshTokenHash never leave the server: they are
// excluded from JSON and cleared by Redacted.
type Identity struct {
	ID            string    `json:"_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	WatchHistory  []string  `json:"watchHistory"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	PasswordHash string `json:"-"`
	// RefreshTokenHash is the SHA-256 digest of the one refresh token the
	// next rotation accepts. Empty means no active session.
	RefreshTokenHash string `json:"-"`
}

// Redacted returns a copy without credential material.
func (i *Identity) Redacted() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.PasswordHash = ""
	c.RefreshTokenHash = ""
	if i.WatchHistory != nil {
		c.WatchHistory = append([]string(nil), i.WatchHistory...)
	} else {
		c.WatchHistory = []string{}
	}
	return &c
}
