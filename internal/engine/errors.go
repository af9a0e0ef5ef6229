package engine

import "errors"

var (
	// ErrValidation indicates a malformed detection request.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a group root does not exist.
	ErrNotFound = errors.New("not found")
)
