package model

import "time"

const (
	CheckoutPending       = "pending"
	CheckoutPaid          = "paid"
	CheckoutConfirmed     = "confirmed"
	CheckoutPaymentFailed = "payment_failed"
	CheckoutConflicted    = "conflicted"
	CheckoutExpired       = "expired"
)

// Checkout is the write-ahead record of a booking attempt. Its ID becomes the
// booking's client booking id and the owner reference on reserved seats.
type Checkout struct {
	ID             string      `json:"id" bson:"_id"`
	OwnerUID       string      `json:"owner_uid" bson:"owner_uid"`
	SelectionID    string      `json:"selection_id" bson:"selection_id"`
	InventoryID    string      `json:"inventory_id" bson:"inventory_id"`
	FareClass      string      `json:"fare_class" bson:"fare_class"`
	SeatNumbers    []string    `json:"seat_numbers" bson:"seat_numbers"`
	Passengers     []Passenger `json:"passengers" bson:"passengers"`
	Purchaser      Purchaser   `json:"purchaser" bson:"purchaser"`
	MealPreference string      `json:"meal_preference,omitempty" bson:"meal_preference,omitempty"`
	OffersOptIn    bool        `json:"offers_opt_in" bson:"offers_opt_in"`
	UnitPrice      int64       `json:"unit_price" bson:"unit_price"`
	AmountMinor    int64       `json:"amount_minor" bson:"amount_minor"`
	Currency       string      `json:"currency" bson:"currency"`
	PaymentOrderID string      `json:"payment_order_id" bson:"payment_order_id"`
	PaymentID      string      `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	BookingID      string      `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	Status         string      `json:"status" bson:"status"`
	FailureReason  string      `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" bson:"updated_at"`
	ExpiresAt      time.Time   `json:"expires_at" bson:"expires_at"`
}

// NewBooking builds the booking this checkout commits.
func (c *Checkout) NewBooking(trip Trip, now time.Time) *Booking {
	return &Booking{
		ClientBookingID: c.ID,
		InventoryID:     c.InventoryID,
		Trip:            trip,
		FareClass:       c.FareClass,
		SeatNumbers:     append([]string(nil), c.SeatNumbers...),
		Passengers:      append([]Passenger(nil), c.Passengers...),
		Purchaser:       c.Purchaser,
		MealPreference:  c.MealPreference,
		OffersOptIn:     c.OffersOptIn,
		AmountMinor:     c.AmountMinor,
		Currency:        c.Currency,
		PaymentOrderID:  c.PaymentOrderID,
		PaymentID:       c.PaymentID,
		CreatedAt:       now,
	}
}

type CheckoutRequest struct {
	SelectionID    string      `json:"selection_id" validate:"required,uuid"`
	Passengers     []Passenger `json:"passengers" validate:"required,min=1,dive"`
	Purchaser      Purchaser   `json:"purchaser" validate:"required"`
	MealPreference string      `json:"meal_preference,omitempty" validate:"omitempty,oneof=veg non_veg vegan jain none"`
	OffersOptIn    bool        `json:"offers_opt_in"`
}

type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// PaymentIntent is returned to the client to open the payment widget.
type PaymentIntent struct {
	CheckoutID  string    `json:"checkout_id"`
	OrderID     string    `json:"order_id"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	KeyID       string    `json:"key_id"`
	Description string    `json:"description"`
	Prefill     Prefill   `json:"prefill"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type PaymentConfirmation struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required,hexadecimal"`
}

type PaymentFailure struct {
	Code        string `json:"code" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}
