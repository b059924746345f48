package model

import (
	"slices"
	"time"
)

// Selection is a user's in-progress seat choice on one inventory item.
// Seats keeps insertion order and never holds duplicates.
type Selection struct {
	ID          string    `json:"id"`
	OwnerUID    string    `json:"owner_uid"`
	InventoryID string    `json:"inventory_id"`
	FareClass   string    `json:"fare_class"`
	UnitPrice   int64     `json:"unit_price"`
	Currency    string    `json:"currency"`
	Seats       []string  `json:"seats"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Selection) Has(seat string) bool {
	return slices.Contains(s.Seats, seat)
}

// Toggle adds seat when absent and removes it when present. It reports
// whether the seat is selected afterwards.
func (s *Selection) Toggle(seat string) bool {
	if i := slices.Index(s.Seats, seat); i >= 0 {
		s.Seats = slices.Delete(s.Seats, i, i+1)
		return false
	}
	s.Seats = append(s.Seats, seat)
	return true
}

// SwitchFareClass moves the selection to another class. Seat numbers are
// per class, so the chosen seats are dropped.
func (s *Selection) SwitchFareClass(label string, unitPrice int64) {
	s.FareClass = label
	s.UnitPrice = unitPrice
	s.Seats = []string{}
}

func (s *Selection) Clear() {
	s.Seats = []string{}
}

// TotalMajor is the price of the selected seats in major currency units.
func (s *Selection) TotalMajor() int64 {
	return int64(len(s.Seats)) * s.UnitPrice
}

type SelectionRequest struct {
	InventoryID string `json:"inventory_id" validate:"required,mongodb"`
	FareClass   string `json:"fare_class,omitempty" validate:"omitempty,min=2,max=40"`
}

type FareClassSwitch struct {
	FareClass string `json:"fare_class" validate:"required,min=2,max=40"`
}
