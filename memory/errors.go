package memory

import "errors"

var (
	// ErrNotFound indicates the requested thread or message does not exist.
	ErrNotFound = errors.New("not found")

	// ErrProviderUnavailable indicates an embedding or vector backend is
	// down. It triggers fallback retrieval rather than caller-visible
	// failure.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrValidation indicates malformed input or configuration.
	ErrValidation = errors.New("validation error")
)
