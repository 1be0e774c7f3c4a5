package storage

import "errors"

var (
	// ErrNotFound indicates the requested key does not exist in storage.
	ErrNotFound = errors.New("storage: key not found")

	// ErrPermissionDenied indicates insufficient permissions to access the key.
	ErrPermissionDenied = errors.New("storage: permission denied")

	// ErrInvalidKey covers empty keys, absolute keys and path traversal attempts.
	ErrInvalidKey = errors.New("storage: invalid key")
)
