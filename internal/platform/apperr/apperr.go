// Package apperr defines the error kinds shared across modules. Modules wrap
// them in their own sentinels so callers can match either.
package apperr

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique business key is already taken.
	ErrDuplicate = errors.New("already exists")
	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)
