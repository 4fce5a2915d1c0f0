// Package common defines shared constants and sentinel errors used across
// client and server layers of FinTrack. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Login errors. Unknown account and wrong password share one value.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Request authentication errors. They are distinguished for logging only;
	// callers outside the server see a generic 401.
	ErrMissingToken     = errors.New("missing token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrUserNotFound     = errors.New("user not found")

	// Configuration errors.
	ErrMissingSecret = errors.New("signing secret is not configured")

	// Client storage errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
