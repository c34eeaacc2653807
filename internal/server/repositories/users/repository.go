// Package users stores identity records and their session state.
package users

import (
	"context"
	"strings"

	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
)

// Repository is the credential store consumed by the session manager.
//
// Lookups return common.ErrorNotFound when no record matches. Writes that
// would violate username or email uniqueness return common.ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	FindByHandleOrEmail(ctx context.Context, handle, email string) (*models.Identity, error)
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	// FindByIDForUpdate locks the record until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*models.Identity, error)

	// SetRefreshToken overwrites the stored refresh token digest unconditionally.
	SetRefreshToken(ctx context.Context, id, hash string) error
	// UpdateRefreshToken replaces the stored digest only if it still equals
	// expectedOld. It reports whether the swap happened.
	UpdateRefreshToken(ctx context.Context, id, expectedOld, newHash string) (bool, error)
	// ClearRefreshToken removes any stored digest. Clearing an already empty
	// token is not an error.
	ClearRefreshToken(ctx context.Context, id string) error

	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.Identity, error)
	UpdateAvatar(ctx context.Context, id, url string) (*models.Identity, error)
	UpdateCoverImage(ctx context.Context, id, url string) (*models.Identity, error)
}

// NormalizeUsername is applied to usernames on every write and lookup.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)
