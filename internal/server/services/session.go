package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
	"github.com/Batajoo/youtube-backend-clone/internal/server/auth"
	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is what a successful login hands back.
type Session struct {
	Identity *models.Identity
	Tokens   TokenPair
}

// Login looks the identity up by username or email, verifies the password and
// starts a new session. Any refresh token issued earlier stops validating.
func (s *UserService) Login(ctx context.Context, handleOrEmail, password string) (*Session, error) {
	handleOrEmail = strings.TrimSpace(handleOrEmail)
	return s.LoginByUsernameOrEmail(ctx, handleOrEmail, handleOrEmail, password)
}

// LoginByUsernameOrEmail is Login with the two lookup keys given separately;
// a record matching either one is accepted. Either key may be empty.
func (s *UserService) LoginByUsernameOrEmail(ctx context.Context, username, email, password string) (*Session, error) {
	sess, err := s.login(ctx, strings.TrimSpace(username), strings.TrimSpace(email), password)
	return sess, s.record("login", err)
}

func (s *UserService) login(ctx context.Context, username, email, password string) (*Session, error) {
	if (username == "" && email == "") || password == "" {
		return nil, common.ErrValidationEmpty
	}

	repo := s.repomanager.Users()
	user, err := repo.FindByHandleOrEmail(ctx, username, email)
	if err != nil {
		return nil, s.fail(ctx, "login lookup", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredential
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, s.fail(ctx, "login issue", err)
	}
	if err := repo.SetRefreshToken(ctx, user.ID, auth.HashToken(pair.RefreshToken)); err != nil {
		return nil, s.fail(ctx, "login store token", err)
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return &Session{Identity: user.Redacted(), Tokens: *pair}, nil
}

// RefreshToken exchanges the current refresh token for a new pair. The stored
// token is swapped with a conditional write, so of two requests racing with
// the same token only one rotates and the other gets common.ErrTokenMismatch.
func (s *UserService) RefreshToken(ctx context.Context, presented string) (*TokenPair, error) {
	pair, err := s.refresh(ctx, presented)
	return pair, s.record("refresh", err)
}

func (s *UserService) refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, common.ErrMissingToken
	}

	claims, err := auth.VerifyRefresh(presented, s.refreshSecret)
	if err != nil {
		s.log.Debug(ctx, "refresh token rejected", "error", err)
		return nil, common.ErrInvalidToken
	}

	repo := s.repomanager.Users()
	user, err := repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, s.fail(ctx, "refresh lookup", err)
	}

	presentedHash := auth.HashToken(presented)
	if user.RefreshTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(presentedHash), []byte(user.RefreshTokenHash)) != 1 {
		s.log.Warn(ctx, "stale refresh token presented", "user_id", user.ID)
		return nil, common.ErrTokenMismatch
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, s.fail(ctx, "refresh issue", err)
	}

	swapped, err := repo.UpdateRefreshToken(ctx, user.ID, presentedHash, auth.HashToken(pair.RefreshToken))
	if err != nil {
		return nil, s.fail(ctx, "refresh rotate", err)
	}
	if !swapped {
		s.log.Warn(ctx, "refresh token rotated concurrently", "user_id", user.ID)
		return nil, common.ErrTokenMismatch
	}
	return pair, nil
}

// Logout drops the stored refresh token. Logging out twice is not an error.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	err := s.repomanager.Users().ClearRefreshToken(ctx, userID)
	if err != nil {
		err = s.fail(ctx, "logout", err)
	} else {
		s.log.Info(ctx, "user logged out", "user_id", userID)
	}
	return s.record("logout", err)
}

// ChangePassword replaces the password after checking the current one.
// Existing sessions stay valid.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	return s.record("change_password", s.changePassword(ctx, userID, current, next))
}

func (s *UserService) changePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return common.ErrValidationEmpty
	}
	if len(next) > auth.MaxPasswordBytes {
		return common.ErrPasswordTooLong
	}

	repo := s.repomanager.Users()
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		return s.fail(ctx, "change password lookup", err)
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return common.ErrInvalidCredential
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return s.fail(ctx, "change password hash", err)
	}
	if err := repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return s.fail(ctx, "change password store", err)
	}
	return nil
}

// Authenticate resolves an access token to a live identity. Every failure,
// including a deleted identity, is common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.Identity, error) {
	if accessToken == "" {
		return nil, common.ErrorUnauthorized
	}

	claims, err := auth.VerifyAccess(accessToken, s.accessSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users().FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, s.fail(ctx, "authenticate lookup", err)
	}
	return user.Redacted(), nil
}

func (s *UserService) issuePair(user *models.Identity) (*TokenPair, error) {
	access, err := auth.IssueAccess(auth.AccessClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	}, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := auth.IssueRefresh(user.ID, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
