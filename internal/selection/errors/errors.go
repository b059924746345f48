package errors

import "errors"

var (
	ErrNotFound = errors.New("selection not found")
	// ErrContended means the selection kept changing under an update.
	ErrContended = errors.New("selection changed concurrently")
)
