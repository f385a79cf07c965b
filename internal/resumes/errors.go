package resumes

import "errors"

var (
	// ErrNotFound indicates the resume or version does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrVersionConflict indicates a concurrent writer advanced the resume's
	// version sequence first. Callers may re-read current state and retry.
	ErrVersionConflict = errors.New("version conflict")
)
