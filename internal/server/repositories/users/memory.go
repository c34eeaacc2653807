package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
)

// MemoryRepository keeps identities in process memory. It is used for local
// development and tests; every method is safe for concurrent use.
type MemoryRepository struct {
	mu   sync.Mutex
	byID map[string]*models.Identity
	now  func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[string]*models.Identity),
		now:  time.Now,
	}
}

func clone(u *models.Identity) *models.Identity {
	c := *u
	c.WatchHistory = append([]string{}, u.WatchHistory...)
	return &c
}

// conflicts reports whether another record already uses username or email.
func (r *MemoryRepository) conflicts(selfID, username, email string) bool {
	for id, u := range r.byID {
		if id == selfID {
			continue
		}
		if username != "" && u.Username == username {
			return true
		}
		if email != "" && u.Email == email {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) Create(_ context.Context, identity *models.Identity) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := clone(identity)
	u.Username = NormalizeUsername(u.Username)
	u.Email = strings.TrimSpace(u.Email)

	if _, ok := r.byID[u.ID]; ok || r.conflicts(u.ID, u.Username, u.Email) {
		return nil, common.ErrAlreadyExists
	}

	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.RefreshTokenHash = ""
	r.byID[u.ID] = u
	return clone(u), nil
}

func (r *MemoryRepository) FindByHandleOrEmail(_ context.Context, handle, email string) (*models.Identity, error) {
	handle = NormalizeUsername(handle)
	email = strings.TrimSpace(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	var byEmail *models.Identity
	for _, u := range r.byID {
		if handle != "" && u.Username == handle {
			return clone(u), nil
		}
		if email != "" && u.Email == email {
			byEmail = u
		}
	}
	if byEmail != nil {
		return clone(byEmail), nil
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

// FindByIDForUpdate is FindByID; the memory store has no row locks.
func (r *MemoryRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.Identity, error) {
	return r.FindByID(ctx, id)
}

func (r *MemoryRepository) SetRefreshToken(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *models.Identity) error {
		u.RefreshTokenHash = hash
		return nil
	})
}

func (r *MemoryRepository) UpdateRefreshToken(_ context.Context, id, expectedOld, newHash string) (bool, error) {
	swapped := false
	err := r.mutate(id, func(u *models.Identity) error {
		if expectedOld != "" && u.RefreshTokenHash == expectedOld {
			u.RefreshTokenHash = newHash
			swapped = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return swapped, nil
}

func (r *MemoryRepository) ClearRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[id]; ok {
		u.RefreshTokenHash = ""
		u.UpdatedAt = r.now().UTC()
	}
	return nil
}

func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *models.Identity) error {
		u.PasswordHash = hash
		return nil
	})
}

func (r *MemoryRepository) UpdateAccountDetails(_ context.Context, id, fullName, email string) (*models.Identity, error) {
	email = strings.TrimSpace(email)
	return r.mutateReturning(id, func(u *models.Identity) error {
		if r.conflicts(id, "", email) {
			return common.ErrAlreadyExists
		}
		u.FullName = fullName
		u.Email = email
		return nil
	})
}

func (r *MemoryRepository) UpdateAvatar(_ context.Context, id, url string) (*models.Identity, error) {
	return r.mutateReturning(id, func(u *models.Identity) error {
		u.AvatarURL = url
		return nil
	})
}

func (r *MemoryRepository) UpdateCoverImage(_ context.Context, id, url string) (*models.Identity, error) {
	return r.mutateReturning(id, func(u *models.Identity) error {
		u.CoverImageURL = url
		return nil
	})
}

// mutate applies fn to the stored record under the lock.
func (r *MemoryRepository) mutate(id string, fn func(u *models.Identity) error) error {
	_, err := r.mutateReturning(id, fn)
	return err
}

func (r *MemoryRepository) mutateReturning(id string, fn func(u *models.Identity) error) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	next := clone(u)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = r.now().UTC()
	r.byID[id] = next
	return clone(next), nil
}
