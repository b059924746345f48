package errors

import (
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("inventory item not found")

	ErrInvalidID = errors.New("invalid inventory ID format")

	ErrFareClassNotFound = errors.New("fare class not offered")

	ErrSeatConflict = errors.New("seats are no longer available")

	ErrHasReservations = errors.New("inventory item has reserved seats")
)

// SeatConflictError lists the requested seats that could not be taken.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return ErrSeatConflict.Error() + ": " + strings.Join(e.Seats, ",")
}

func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}
