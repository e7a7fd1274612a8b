package storage

import "errors"

// Common client storage errors
var (
	// ErrRecordNotFound indicates that no record with the given id exists
	ErrRecordNotFound = errors.New("record not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
