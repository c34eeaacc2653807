// Package common defines shared constants and sentinel errors used across the
// service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrValidationEmpty = errors.New("required field is empty")
	ErrPasswordTooLong = errors.New("password is too long")
	ErrAvatarRequired  = errors.New("avatar file is required")

	// Credential errors.
	ErrInvalidCredential = errors.New("invalid credential")

	// Token lifecycle errors.
	ErrMissingToken  = errors.New("missing token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenMismatch = errors.New("token mismatch")

	// Media errors.
	ErrMediaUpload = errors.New("media upload failed")
)
