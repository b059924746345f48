package model

import "time"

const (
	CaseOrphanedReservation = "orphaned_reservation"
	CaseCommitFailed        = "commit_failed"
	CaseStaleCheckout       = "stale_checkout"
)

// ReconcileCase records an inconsistency that needs an operator or a refund.
type ReconcileCase struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	Kind        string    `json:"kind" bson:"kind"`
	InventoryID string    `json:"inventory_id,omitempty" bson:"inventory_id,omitempty"`
	FareClass   string    `json:"fare_class,omitempty" bson:"fare_class,omitempty"`
	SeatNumbers []string  `json:"seat_numbers,omitempty" bson:"seat_numbers,omitempty"`
	BookingRef  string    `json:"booking_ref,omitempty" bson:"booking_ref,omitempty"`
	CheckoutID  string    `json:"checkout_id,omitempty" bson:"checkout_id,omitempty"`
	PaymentID   string    `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	Detail      string    `json:"detail,omitempty" bson:"detail,omitempty"`
	Resolved    bool      `json:"resolved" bson:"resolved"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// ReservedSeats groups seats that share one booking ref within an item.
type ReservedSeats struct {
	InventoryID string
	FareClass   string
	BookingRef  string
	SeatNumbers []string
}
