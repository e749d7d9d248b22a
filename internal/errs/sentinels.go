// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrPersonNotFound indicates the requested person does not exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateUsername indicates a username unique constraint violation.
	ErrDuplicateUsername = errors.New("username is already taken")

	// ErrBadCredentials indicates a failed login or wrong current password.
	// The same error is returned for an unknown username and for a wrong
	// password so that usernames cannot be enumerated.
	ErrBadCredentials = errors.New("you have entered a wrong username or password")

	// ErrForbidden indicates an ownership violation or a failed role gate.
	ErrForbidden = errors.New("permission denied")

	// ErrInvalidInput indicates a business rule violation (blank field after
	// trimming, new password equal to the current one).
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates a temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError reports structural field constraint violations together
// with a per-field message map for the error response body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }
