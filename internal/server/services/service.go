// Package services contains server-side business logic. UserService owns the
// session lifecycle (login, refresh rotation, logout, password change, access
// token authentication) together with registration and profile updates.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
	"github.com/Batajoo/youtube-backend-clone/internal/ids"
	"github.com/Batajoo/youtube-backend-clone/internal/logging"
	"github.com/Batajoo/youtube-backend-clone/internal/server/auth"
	"github.com/Batajoo/youtube-backend-clone/internal/server/config"
	"github.com/Batajoo/youtube-backend-clone/internal/server/media"
	"github.com/Batajoo/youtube-backend-clone/internal/server/repositories/repomanager"
)

// Recorder receives one event per finished auth operation.
type Recorder interface {
	AuthEvent(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) AuthEvent(string, string) {}

type Option func(*UserService)

func WithRecorder(r Recorder) Option {
	return func(s *UserService) { s.recorder = r }
}

func WithHasher(h auth.PasswordHasher) Option {
	return func(s *UserService) { s.hasher = h }
}

// UserService provides identity and session operations.
type UserService struct {
	repomanager repomanager.RepositoryManager
	media       media.Store
	hasher      auth.PasswordHasher
	log         logging.Logger
	recorder    Recorder
	newID       func() string

	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewUserService constructs a UserService using repositories, media storage
// and server config.
func NewUserService(m repomanager.RepositoryManager, store media.Store, cfg *config.Config, log logging.Logger, opts ...Option) *UserService {
	s := &UserService{
		repomanager:   m,
		media:         store,
		hasher:        auth.NewBcryptHasher(cfg.BcryptCost),
		log:           log.With("module", "users"),
		recorder:      nopRecorder{},
		newID:         ids.New,
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenValidityDuration,
		refreshTTL:    cfg.RefreshTokenValidityDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var domainErrors = []error{
	common.ErrorNotFound,
	common.ErrAlreadyExists,
	common.ErrorUnauthorized,
	common.ErrValidationEmpty,
	common.ErrAvatarRequired,
	common.ErrPasswordTooLong,
	common.ErrInvalidCredential,
	common.ErrMissingToken,
	common.ErrInvalidToken,
	common.ErrTokenMismatch,
	common.ErrMediaUpload,
	common.ErrorInternal,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fail passes domain errors through and turns anything else into
// common.ErrorInternal after logging it.
func (s *UserService) fail(ctx context.Context, op string, err error) error {
	if isDomainError(err) {
		return err
	}
	s.log.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}

// record reports the outcome of op and hands err back unchanged.
func (s *UserService) record(op string, err error) error {
	s.recorder.AuthEvent(op, Outcome(err))
	return err
}

// Outcome is a short, stable label for err.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrValidationEmpty), errors.Is(err, common.ErrAvatarRequired),
		errors.Is(err, common.ErrPasswordTooLong):
		return "invalid_input"
	case errors.Is(err, common.ErrorNotFound):
		return "not_found"
	case errors.Is(err, common.ErrAlreadyExists):
		return "conflict"
	case errors.Is(err, common.ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, common.ErrMissingToken):
		return "missing_token"
	case errors.Is(err, common.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, common.ErrTokenMismatch):
		return "token_mismatch"
	case errors.Is(err, common.ErrorUnauthorized):
		return "unauthorized"
	case errors.Is(err, common.ErrMediaUpload):
		return "media_error"
	default:
		return "error"
	}
}
