package model

const (
	EventBookingConfirmed    = "booking.confirmed"
	EventBookingCommitFailed = "booking.commit_failed"
	EventBookingCancelled    = "booking.cancelled"
	EventReservationOrphaned = "reservation.orphaned"
)

// BookingEvent is the payload published on the booking events topic.
type BookingEvent struct {
	BookingID   string   `json:"booking_id,omitempty"`
	CheckoutID  string   `json:"checkout_id,omitempty"`
	InventoryID string   `json:"inventory_id,omitempty"`
	FareClass   string   `json:"fare_class,omitempty"`
	SeatNumbers []string `json:"seat_numbers,omitempty"`
	OwnerUID    string   `json:"owner_uid,omitempty"`
	PaymentID   string   `json:"payment_id,omitempty"`
	AmountMinor int64    `json:"amount_minor,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Reason      string   `json:"reason,omitempty"`
}
