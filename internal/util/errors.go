package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrNotFound indicates a required catalog row or blob was not found
	ErrNotFound = errors.New("not found")

	// ErrInUse indicates an entity is still referenced and cannot be deleted
	ErrInUse = errors.New("in use")

	// ErrUnsupportedFormat indicates an input file format is not supported
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCancelled indicates a user-initiated stop
	ErrCancelled = errors.New("cancelled")

	// ErrMissingCredentials indicates cloud credentials are not configured
	ErrMissingCredentials = errors.New("missing cloud credentials")

	// ErrInvalidConfig indicates invalid or missing configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCorrupt indicates a file is corrupt or unreadable
	ErrCorrupt = errors.New("corrupt file")
)
