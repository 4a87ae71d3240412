package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a document or record does not exist.
	ErrNotFound = errors.New("not found")
)
