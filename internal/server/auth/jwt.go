// Package auth holds the credential primitives of the session lifecycle:
// password hashing, signed access/refresh tokens and the at-rest digest of
// refresh tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// now is a seam so tests can move the clock.
var now = time.Now

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Type     string `json:"typ"`
}

// RefreshClaims is the payload of a long-lived refresh token. It carries the
// identity id only.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"_id"`
	Type   string `json:"typ"`
}

func registered(ttl time.Duration) jwt.RegisteredClaims {
	issued := now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
	}
}

func checkIssue(secret []byte, ttl time.Duration) error {
	if len(secret) == 0 {
		return errors.New("token secret is empty")
	}
	if ttl <= 0 {
		return errors.New("token ttl must be positive")
	}
	return nil
}

// IssueAccess signs an access token for the identity described by claims.
// Registered claims and the token type are filled in here.
func IssueAccess(claims AccessClaims, secret []byte, ttl time.Duration) (string, error) {
	if err := checkIssue(secret, ttl); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", errors.New("access token needs a user id")
	}
	claims.RegisteredClaims = registered(ttl)
	claims.Type = TokenTypeAccess

	return sign(claims, secret)
}

// IssueRefresh signs a refresh token for userID.
func IssueRefresh(userID string, secret []byte, ttl time.Duration) (string, error) {
	if err := checkIssue(secret, ttl); err != nil {
		return "", err
	}
	if userID == "" {
		return "", errors.New("refresh token needs a user id")
	}
	return sign(RefreshClaims{
		RegisteredClaims: registered(ttl),
		UserID:           userID,
		Type:             TokenTypeRefresh,
	}, secret)
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// VerifyAccess validates an access token and returns its claims. Every
// failure wraps common.ErrInvalidToken.
func VerifyAccess(token string, secret []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parse(token, claims, secret); err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess {
		return nil, fmt.Errorf("%w: not an access token", common.ErrInvalidToken)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token and returns its claims. Every
// failure wraps common.ErrInvalidToken.
func VerifyRefresh(token string, secret []byte) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parse(token, claims, secret); err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", common.ErrInvalidToken)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}
	return claims, nil
}

func parse(tokenString string, claims jwt.Claims, secret []byte) error {
	if len(secret) == 0 {
		return fmt.Errorf("%w: empty secret", common.ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
