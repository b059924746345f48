package validator

import (
	"strings"
	"testing"
	"time"

	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
)

func validItem() *model.InventoryItem {
	dep := time.Date(2026, 11, 2, 6, 30, 0, 0, time.UTC)
	return &model.InventoryItem{
		Mode:          model.ModeFlight,
		Number:        "AI-202",
		Operator:      "Air India",
		Source:        model.Endpoint{Code: "DEL", Name: "Indira Gandhi Intl", City: "Delhi", CityKey: "delhi"},
		Destination:   model.Endpoint{Code: "BOM", Name: "Chhatrapati Shivaji Intl", City: "Mumbai", CityKey: "mumbai"},
		DepartureTime: dep,
		ArrivalTime:   dep.Add(2 * time.Hour),
		Currency:      "INR",
		FareClasses: []model.FareClass{
			{
				ClassType:   "Economy",
				TicketPrice: 6000,
				Seats: []model.Seat{
					{SeatNumber: "1A", Position: model.PositionWindow, Status: model.SeatAvailable},
					{SeatNumber: "1B", Position: model.PositionMiddle, Status: model.SeatAvailable},
				},
			},
		},
	}
}

func TestInventoryValidator_Validate(t *testing.T) {
	v := NewInventoryValidator(logger.Discard())

	tests := []struct {
		name      string
		mutate    func(item *model.InventoryItem)
		wantError string
	}{
		{
			name:   "valid item",
			mutate: func(item *model.InventoryItem) {},
		},
		{
			name: "duplicate seat numbers in a class",
			mutate: func(item *model.InventoryItem) {
				item.FareClasses[0].Seats[1].SeatNumber = "1A"
			},
			wantError: "seat number 1A appears more than once",
		},
		{
			name: "same seat number in different classes is fine",
			mutate: func(item *model.InventoryItem) {
				item.FareClasses = append(item.FareClasses, model.FareClass{
					ClassType:   "Business",
					TicketPrice: 18000,
					Seats:       []model.Seat{{SeatNumber: "1A"}},
				})
			},
		},
		{
			name: "duplicate class labels",
			mutate: func(item *model.InventoryItem) {
				item.FareClasses = append(item.FareClasses, item.FareClasses[0])
			},
			wantError: "fare class Economy appears more than once",
		},
		{
			name: "arrival before departure",
			mutate: func(item *model.InventoryItem) {
				item.ArrivalTime = item.DepartureTime.Add(-time.Hour)
			},
			wantError: "arrival_time must be after departure_time",
		},
		{
			name: "unknown mode",
			mutate: func(item *model.InventoryItem) {
				item.Mode = "ferry"
			},
			wantError: "must be one of",
		},
		{
			name: "ticket price beyond the fare ceiling",
			mutate: func(item *model.InventoryItem) {
				item.FareClasses[0].TicketPrice = 922337203685477580
			},
			wantError: "TicketPrice must be at most 10000000",
		},
		{
			name: "ticket price at the fare ceiling",
			mutate: func(item *model.InventoryItem) {
				item.FareClasses[0].TicketPrice = model.MaxTicketPrice
			},
		},
		{
			name: "no fare classes",
			mutate: func(item *model.InventoryItem) {
				item.FareClasses = nil
			},
			wantError: "FareClasses is required",
		},
		{
			name: "same endpoint twice",
			mutate: func(item *model.InventoryItem) {
				item.Destination = item.Source
			},
			wantError: "source and destination must differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(item)

			err := v.Validate(item)
			if tt.wantError == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantError)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantError)
			}
		})
	}
}

func TestInventoryValidator_ValidateStatus(t *testing.T) {
	v := NewInventoryValidator(logger.Discard())

	if err := v.ValidateStatus(&model.InventoryStatusUpdate{Status: model.StatusDelayed, Gate: "22"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateStatus(&model.InventoryStatusUpdate{Status: "late"}); err == nil {
		t.Errorf("unknown status should fail")
	}
}
