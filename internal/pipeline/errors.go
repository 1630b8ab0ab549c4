package pipeline

import "errors"

var (
	// ErrValidationFailure marks a listing whose raw fields cannot be
	// normalized into the canonical record.
	ErrValidationFailure = errors.New("validation failure")

	// ErrPersistenceFailure marks a database error while uploading a listing.
	ErrPersistenceFailure = errors.New("persistence failure")
)
