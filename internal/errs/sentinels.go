// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrInvalidInput indicates malformed or missing request data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (missing/invalid session or bad PIN).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a valid session with insufficient role or ownership.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., folder taken).
	ErrAlreadyExists = errors.New("already exists")
)
