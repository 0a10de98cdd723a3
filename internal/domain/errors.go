package domain

import "errors"

var (
	// ErrDocumentNotFound signals a missing document. Absence is a normal
	// outcome for point lookups, not a store failure.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrValidation signals malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)
