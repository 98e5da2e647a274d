// Package common defines shared constants and sentinel errors used across
// client and server layers of Roomify. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorValidation      = errors.New("validation error")
	ErrInvalidKeyFormat  = errors.New("invalid API key format")
	ErrUnknownProvider   = errors.New("unknown key provider")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrPasswordTooShort  = errors.New("password too short")
	ErrUnknownPrice      = errors.New("unknown price")
	ErrCheckoutFailed    = errors.New("checkout session failed")
	ErrRecoveryTokenUsed = errors.New("recovery token already used")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
