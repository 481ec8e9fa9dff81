package service

import "errors"

// Sentinel errors for the failure taxonomy. Service methods wrap these
// with fmt.Errorf("%w: ...") so the API layer can map them to status
// codes with errors.Is while keeping a human-readable message.
var (
	// ErrNotFound means a referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness or referential-integrity rule was
	// violated: duplicate username or subject, or a delete blocked by a
	// referencing lesson.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput means a required field is missing or a value is out
	// of range, e.g. a non-positive amount.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials is returned by Login for a bad username or
	// password without revealing which.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
