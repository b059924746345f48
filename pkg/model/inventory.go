package model

import (
	"time"
)

// DefaultFareClass is the class a selection starts on when none is given.
const DefaultFareClass = "Economy"

const (
	ModeFlight = "flight"
	ModeTrain  = "train"
	ModeBus    = "bus"
)

var TransportModes = []string{ModeFlight, ModeTrain, ModeBus}

const (
	SeatAvailable = "available"
	SeatReserved  = "reserved"
)

const (
	PositionWindow = "window"
	PositionAisle  = "aisle"
	PositionMiddle = "middle"
)

const (
	StatusOnTime    = "on_time"
	StatusDelayed   = "delayed"
	StatusCancelled = "cancelled"
	StatusBoarding  = "boarding"
)

type Endpoint struct {
	Code    string `json:"code" bson:"code" validate:"required,min=2,max=8"`
	Name    string `json:"name" bson:"name" validate:"required,min=2,max=120"`
	City    string `json:"city" bson:"city" validate:"required,min=2,max=80"`
	CityKey string `json:"-" bson:"city_key"`
}

type Occupant struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
}

type Seat struct {
	SeatNumber string    `json:"seat_number" bson:"seat_number" validate:"required,min=1,max=8"`
	Position   string    `json:"position,omitempty" bson:"position,omitempty" validate:"omitempty,oneof=window aisle middle"`
	Status     string    `json:"status" bson:"status" validate:"omitempty,oneof=available reserved"`
	Occupant   *Occupant `json:"occupant,omitempty" bson:"occupant,omitempty"`
	BookingRef string    `json:"-" bson:"booking_ref,omitempty"`
}

func (s Seat) IsReserved() bool {
	return s.Status == SeatReserved
}

// MaxTicketPrice bounds a fare in major units so checkout amounts stay well
// inside int64. The validate tags below repeat it.
const MaxTicketPrice int64 = 10_000_000

type FareClass struct {
	ClassType          string           `json:"class_type" bson:"class_type" validate:"required,min=2,max=40"`
	TicketPrice        int64            `json:"ticket_price" bson:"ticket_price" validate:"min=0,max=10000000"`
	BaggageAllowance   string           `json:"baggage_allowance,omitempty" bson:"baggage_allowance,omitempty" validate:"omitempty,max=120"`
	Amenities          []string         `json:"amenities,omitempty" bson:"amenities,omitempty" validate:"omitempty,max=20,dive,min=1,max=60"`
	CancellationPolicy string           `json:"cancellation_policy,omitempty" bson:"cancellation_policy,omitempty" validate:"omitempty,max=500"`
	SeatPricing        map[string]int64 `json:"seat_pricing,omitempty" bson:"seat_pricing,omitempty" validate:"omitempty,dive,keys,oneof=window aisle middle,endkeys,min=0,max=10000000"`
	Seats              []Seat           `json:"seats" bson:"seats" validate:"required,min=1,max=1000,dive"`
}

// FindSeat returns the seat with the given number, or nil.
func (fc *FareClass) FindSeat(number string) *Seat {
	for i := range fc.Seats {
		if fc.Seats[i].SeatNumber == number {
			return &fc.Seats[i]
		}
	}
	return nil
}

func (fc *FareClass) AvailableCount() int {
	n := 0
	for _, s := range fc.Seats {
		if !s.IsReserved() {
			n++
		}
	}
	return n
}

// Unavailable returns the requested seats that are reserved or unknown, in
// request order.
func (fc *FareClass) Unavailable(numbers []string) []string {
	var out []string
	for _, n := range numbers {
		s := fc.FindSeat(n)
		if s == nil || s.IsReserved() {
			out = append(out, n)
		}
	}
	return out
}

// HeldBy returns the seats from numbers that are attributed to bookingRef or
// are reserved without attribution.
func (fc *FareClass) HeldBy(numbers []string, bookingRef string) []string {
	var out []string
	for _, n := range numbers {
		s := fc.FindSeat(n)
		if s == nil || !s.IsReserved() {
			continue
		}
		if s.BookingRef == bookingRef || s.BookingRef == "" {
			out = append(out, n)
		}
	}
	return out
}

type InventoryItem struct {
	ID              string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Mode            string      `json:"mode" bson:"mode" validate:"required,oneof=flight train bus"`
	Number          string      `json:"number" bson:"number" validate:"required,min=2,max=16"`
	Operator        string      `json:"operator" bson:"operator" validate:"required,min=2,max=100"`
	OwnerUID        string      `json:"owner_uid" bson:"owner_uid"`
	Source          Endpoint    `json:"source" bson:"source" validate:"required"`
	Destination     Endpoint    `json:"destination" bson:"destination" validate:"required"`
	DepartureTime   time.Time   `json:"departure_time" bson:"departure_time" validate:"required"`
	ArrivalTime     time.Time   `json:"arrival_time" bson:"arrival_time" validate:"required,gtfield=DepartureTime"`
	DurationMinutes int         `json:"duration_minutes" bson:"duration_minutes" validate:"omitempty,min=1"`
	Direct          bool        `json:"direct" bson:"direct"`
	Vehicle         string      `json:"vehicle,omitempty" bson:"vehicle,omitempty" validate:"omitempty,max=60"`
	Status          string      `json:"status" bson:"status" validate:"omitempty,oneof=on_time delayed cancelled boarding"`
	Gate            string      `json:"gate,omitempty" bson:"gate,omitempty" validate:"omitempty,max=16"`
	ContactInfo     string      `json:"contact_info,omitempty" bson:"contact_info,omitempty" validate:"omitempty,max=200"`
	Currency        string      `json:"currency" bson:"currency" validate:"omitempty,iso4217"`
	FareClasses     []FareClass `json:"fare_classes" bson:"fare_classes" validate:"required,min=1,max=10,dive"`
	Version         int64       `json:"version" bson:"version"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
}

// FareClass returns the class with the given label. An empty label means the
// default class.
func (item *InventoryItem) FareClass(label string) *FareClass {
	if label == "" {
		label = DefaultFareClass
	}
	for i := range item.FareClasses {
		if item.FareClasses[i].ClassType == label {
			return &item.FareClasses[i]
		}
	}
	return nil
}

// ResolveFare returns the class and its ticket price. A class the item does
// not offer resolves to a zero price and no class.
func (item *InventoryItem) ResolveFare(label string) (*FareClass, int64) {
	fc := item.FareClass(label)
	if fc == nil {
		return nil, 0
	}
	return fc, fc.TicketPrice
}

// HasReservedSeats reports whether any seat in any class is reserved.
func (item *InventoryItem) HasReservedSeats() bool {
	for _, fc := range item.FareClasses {
		for _, s := range fc.Seats {
			if s.IsReserved() {
				return true
			}
		}
	}
	return false
}

func (item *InventoryItem) Trip() Trip {
	return Trip{
		Mode:          item.Mode,
		Number:        item.Number,
		Operator:      item.Operator,
		Source:        item.Source,
		Destination:   item.Destination,
		DepartureTime: item.DepartureTime,
		ArrivalTime:   item.ArrivalTime,
		Gate:          item.Gate,
	}
}

type InventoryStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=on_time delayed cancelled boarding"`
	Gate   string `json:"gate,omitempty" validate:"omitempty,max=16"`
}

// SearchQuery is the normalized input of an inventory search.
type SearchQuery struct {
	Mode      string
	FromKey   string
	ToKey     string
	FareClass string
	Date      *time.Time
}

type SeatView struct {
	SeatNumber string `json:"seat_number"`
	Position   string `json:"position,omitempty"`
	Status     string `json:"status"`
}

type FareQuote struct {
	InventoryID    string     `json:"inventory_id"`
	FareClass      string     `json:"fare_class"`
	Offered        bool       `json:"offered"`
	Price          int64      `json:"price"`
	Currency       string     `json:"currency"`
	SeatsAvailable int        `json:"seats_available"`
	SeatsTotal     int        `json:"seats_total"`
	SeatMap        []SeatView `json:"seat_map"`
}

// Quote builds the public fare view for label. Occupant details are never exposed.
func (item *InventoryItem) Quote(label string) FareQuote {
	if label == "" {
		label = DefaultFareClass
	}
	fc, price := item.ResolveFare(label)
	q := FareQuote{
		InventoryID: item.ID,
		FareClass:   label,
		Price:       price,
		Currency:    item.Currency,
		SeatMap:     []SeatView{},
	}
	if fc == nil {
		return q
	}
	q.Offered = true
	q.SeatsTotal = len(fc.Seats)
	q.SeatsAvailable = fc.AvailableCount()
	for _, s := range fc.Seats {
		status := s.Status
		if status == "" {
			status = SeatAvailable
		}
		q.SeatMap = append(q.SeatMap, SeatView{SeatNumber: s.SeatNumber, Position: s.Position, Status: status})
	}
	return q
}

// Public returns a copy safe to hand to any caller: occupant details are
// dropped from every seat.
func (item *InventoryItem) Public() InventoryItem {
	out := *item
	out.FareClasses = make([]FareClass, len(item.FareClasses))
	for i, fc := range item.FareClasses {
		fc.Seats = append([]Seat(nil), fc.Seats...)
		for j := range fc.Seats {
			fc.Seats[j].Occupant = nil
		}
		out.FareClasses[i] = fc
	}
	return out
}
