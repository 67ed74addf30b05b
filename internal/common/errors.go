// Package common defines shared sentinel errors used across the server
// layers of TaskKeeper. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")

	// Request-boundary auth errors.
	ErrMissingCredential   = errors.New("missing authorization header")
	ErrMalformedCredential = errors.New("invalid authorization header format")
	ErrPrincipalNotFound   = errors.New("user no longer exists")
)
