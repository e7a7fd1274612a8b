package storage

import "errors"

// Common storage errors
var (
	// ErrUnknownEntity indicates that the entity name is not served
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUniqueViolation indicates a uniqueness constraint clash
	// (duplicate order_no among live matches of one session)
	ErrUniqueViolation = errors.New("unique constraint violation")
)
