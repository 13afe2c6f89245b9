package repository

import "errors"

// Input validation errors, rejected before any write. Not-found is
// never an error: lookup methods return (nil, nil) and callers handle
// absence explicitly.
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("price must be greater than zero")

	// ErrStorageConflict means the storage layer detected a concurrent
	// write (duplicate key on the active-position index). The ledger
	// retries internally; if it still surfaces, the caller may retry
	// the whole operation with fresh input.
	ErrStorageConflict = errors.New("conflicting concurrent write detected")
)
