package model

import (
	"time"
)

// Trip is the itinerary snapshot copied onto a booking at commit time.
type Trip struct {
	Mode          string    `json:"mode" bson:"mode"`
	Number        string    `json:"number" bson:"number"`
	Operator      string    `json:"operator" bson:"operator"`
	Source        Endpoint  `json:"source" bson:"source"`
	Destination   Endpoint  `json:"destination" bson:"destination"`
	DepartureTime time.Time `json:"departure_time" bson:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time" bson:"arrival_time"`
	Gate          string    `json:"gate,omitempty" bson:"gate,omitempty"`
}

type Passenger struct {
	Name       string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Age        int    `json:"age" bson:"age" validate:"required,min=1,max=120"`
	Gender     string `json:"gender" bson:"gender" validate:"required,oneof=male female other"`
	SeatNumber string `json:"seat_number" bson:"seat_number"`
}

type Purchaser struct {
	UID   string `json:"uid" bson:"uid"`
	Name  string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" bson:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
}

type Booking struct {
	ID              string      `json:"id,omitempty" bson:"_id,omitempty"`
	ClientBookingID string      `json:"client_booking_id" bson:"client_booking_id"`
	InventoryID     string      `json:"inventory_id,omitempty" bson:"inventory_id,omitempty"`
	Trip            Trip        `json:"trip" bson:"trip"`
	FareClass       string      `json:"fare_class" bson:"fare_class"`
	SeatNumbers     []string    `json:"seat_numbers" bson:"seat_numbers"`
	Passengers      []Passenger `json:"passengers" bson:"passengers"`
	Purchaser       Purchaser   `json:"purchaser" bson:"purchaser"`
	MealPreference  string      `json:"meal_preference,omitempty" bson:"meal_preference,omitempty"`
	OffersOptIn     bool        `json:"offers_opt_in" bson:"offers_opt_in"`
	AmountMinor     int64       `json:"amount_minor" bson:"amount_minor"`
	Currency        string      `json:"currency" bson:"currency"`
	PaymentOrderID  string      `json:"payment_order_id" bson:"payment_order_id"`
	PaymentID       string      `json:"payment_id" bson:"payment_id"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`

	// TicketToken is a sealed share link for the e-ticket, set on responses only.
	TicketToken string `json:"ticket_token,omitempty" bson:"-"`
}

// Occupants maps each booked seat to the passenger sitting in it.
func (b *Booking) Occupants() map[string]Occupant {
	out := make(map[string]Occupant, len(b.Passengers))
	for _, p := range b.Passengers {
		out[p.SeatNumber] = Occupant{Name: p.Name, Email: b.Purchaser.Email}
	}
	return out
}
