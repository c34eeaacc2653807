package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
	"github.com/Batajoo/youtube-backend-clone/internal/server/auth"
	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
	"github.com/Batajoo/youtube-backend-clone/internal/server/repositories/users"
)

const (
	avatarFolder = "avatars"
	coverFolder  = "covers"
)

// FileUpload is an image received from a client.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// RegisterInput carries the fields of a new account. Avatar is required,
// CoverImage is optional.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     *FileUpload
	CoverImage *FileUpload
}

// Register creates an identity. Uploaded images are removed again if the
// record cannot be created.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.Identity, error) {
	u, err := s.register(ctx, in)
	return u, s.record("register", err)
}

func (s *UserService) register(ctx context.Context, in RegisterInput) (*models.Identity, error) {
	username := users.NormalizeUsername(in.Username)
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, common.ErrValidationEmpty
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, common.ErrPasswordTooLong
	}

	repo := s.repomanager.Users()
	if _, err := repo.FindByHandleOrEmail(ctx, username, email); err == nil {
		return nil, common.ErrAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, s.fail(ctx, "register lookup", err)
	}

	if in.Avatar == nil || in.Avatar.Body == nil {
		return nil, common.ErrAvatarRequired
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.fail(ctx, "register hash", err)
	}

	avatarURL, err := s.upload(ctx, avatarFolder, in.Avatar)
	if err != nil {
		return nil, err
	}
	uploaded := []string{avatarURL}

	var coverURL string
	if in.CoverImage != nil && in.CoverImage.Body != nil {
		coverURL, err = s.upload(ctx, coverFolder, in.CoverImage)
		if err != nil {
			s.discard(ctx, uploaded...)
			return nil, err
		}
		uploaded = append(uploaded, coverURL)
	}

	created, err := repo.Create(ctx, &models.Identity{
		ID:            s.newID(),
		Username:      username,
		Email:         email,
		FullName:      fullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		WatchHistory:  []string{},
		PasswordHash:  hash,
	})
	if err != nil {
		s.discard(ctx, uploaded...)
		return nil, s.fail(ctx, "register create", err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID)
	return created.Redacted(), nil
}

// CurrentUser returns the identity with credentials removed.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.Identity, error) {
	u, err := s.repomanager.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "current user", err)
	}
	return u.Redacted(), nil
}

// UpdateAccountDetails changes the display name and email. The password hash
// is left as it is.
func (s *UserService) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.Identity, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return nil, common.ErrValidationEmpty
	}

	u, err := s.repomanager.Users().UpdateAccountDetails(ctx, userID, fullName, email)
	if err != nil {
		return nil, s.fail(ctx, "update account", err)
	}
	return u.Redacted(), nil
}

// UpdateAvatar replaces the avatar image.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, file *FileUpload) (*models.Identity, error) {
	if file == nil || file.Body == nil {
		return nil, common.ErrAvatarRequired
	}
	return s.replaceImage(ctx, userID, avatarFolder, file,
		func(u *models.Identity) string { return u.AvatarURL },
		func(ctx context.Context, repo users.Repository, id, url string) (*models.Identity, error) {
			return repo.UpdateAvatar(ctx, id, url)
		},
	)
}

// UpdateCoverImage replaces the cover image.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID string, file *FileUpload) (*models.Identity, error) {
	if file == nil || file.Body == nil {
		return nil, common.ErrValidationEmpty
	}
	return s.replaceImage(ctx, userID, coverFolder, file,
		func(u *models.Identity) string { return u.CoverImageURL },
		func(ctx context.Context, repo users.Repository, id, url string) (*models.Identity, error) {
			return repo.UpdateCoverImage(ctx, id, url)
		},
	)
}

type imageSetter func(ctx context.Context, repo users.Repository, id, url string) (*models.Identity, error)

// replaceImage uploads file, points the locked record at it and, once the
// change is committed, deletes the image it replaced.
func (s *UserService) replaceImage(ctx context.Context, userID, folder string, file *FileUpload,
	current func(*models.Identity) string, set imageSetter) (*models.Identity, error) {

	url, err := s.upload(ctx, folder, file)
	if err != nil {
		return nil, err
	}

	var (
		previous string
		updated  *models.Identity
	)
	err = s.repomanager.WithinTx(ctx, func(ctx context.Context, repo users.Repository) error {
		u, err := repo.FindByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		previous = current(u)
		updated, err = set(ctx, repo, userID, url)
		return err
	})
	if err != nil {
		s.discard(ctx, url)
		return nil, s.fail(ctx, "replace "+folder, err)
	}

	if previous != "" && previous != url {
		s.discard(ctx, previous)
	}
	return updated.Redacted(), nil
}

func (s *UserService) upload(ctx context.Context, folder string, f *FileUpload) (string, error) {
	url, err := s.media.Upload(ctx, folder, f.Name, f.ContentType, f.Body, f.Size)
	if err != nil {
		s.log.Error(ctx, "media upload failed", "folder", folder, "error", err)
		return "", common.ErrMediaUpload
	}
	return url, nil
}

// discard deletes stored images, logging failures.
func (s *UserService) discard(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if err := s.media.Delete(ctx, url); err != nil {
			s.log.Warn(ctx, "media delete failed", "url", url, "error", err)
		}
	}
}
