package videos

import "errors"

var (
	// ErrNotFound is returned when no video matches.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for rejected uploads.
	ErrInvalidInput = errors.New("invalid input")
)
