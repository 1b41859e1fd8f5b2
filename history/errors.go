package history

import "errors"

var (
	// ErrNotFound is returned by a KV when the key has never been written.
	ErrNotFound = errors.New("history: key not found")
	// ErrInvalidKey is returned for keys a backend cannot store.
	ErrInvalidKey = errors.New("history: invalid key")
)
