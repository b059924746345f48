package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrDuplicateBooking = errors.New("booking already exists for client booking id")

	ErrCheckoutNotFound = errors.New("checkout not found")

	// ErrStatusChanged means a conditional checkout transition lost a race:
	// the checkout was no longer in the expected status.
	ErrStatusChanged = errors.New("checkout status changed")
)
