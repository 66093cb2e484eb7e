package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Session state errors
	ErrNoSession     = errors.New("no valid session")
	ErrTokenRevoked  = errors.New("token has been revoked")
	ErrOAuthRejected = errors.New("identity provider rejected the credential")
)

// DirectoryQueryError is returned when the directory fetch fails in the
// backing store. The store's message is preserved for the page to display.
type DirectoryQueryError struct {
	Message string
	Err     error
}

func (e *DirectoryQueryError) Error() string {
	return "directory query failed: " + e.Message
}

func (e *DirectoryQueryError) Unwrap() error { return e.Err }

// ValidationError reports a single rejected input field. It matches
// ErrBadRequest under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrBadRequest }
