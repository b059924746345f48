package ticket

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"travelpartner/pkg/locale"
	"travelpartner/pkg/model"
)

func TestRender(t *testing.T) {
	dep := time.Date(2026, 11, 2, 6, 30, 0, 0, time.UTC)
	b := &model.Booking{
		ClientBookingID: "5b0e1f2c-0c77-4a6f-9c67-4d5e8c1f2a90",
		Trip: model.Trip{
			Mode:          model.ModeFlight,
			Number:        "AI202",
			Operator:      "Air India",
			Source:        model.Endpoint{Code: "DEL", Name: "Indira Gandhi Intl", City: "New Delhi"},
			Destination:   model.Endpoint{Code: "BOM", Name: "Chhatrapati Shivaji Intl", City: "Mumbai"},
			DepartureTime: dep,
			ArrivalTime:   dep.Add(2 * time.Hour),
		},
		FareClass:   "Economy",
		SeatNumbers: []string{"1A"},
		Passengers:  []model.Passenger{{Name: "Zoë Ferreira", Age: 31, Gender: "female", SeatNumber: "1A"}},
		Purchaser:   model.Purchaser{Name: "Zoë Ferreira", Email: "zoe@example.com"},
		AmountMinor: 450000,
		Currency:    "INR",
	}

	body, filename, err := Render(b)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", body[:min(len(body), 8)])
	}
	if !strings.HasPrefix(filename, "ETICKET_AI202_") || !strings.HasSuffix(filename, ".pdf") {
		t.Errorf("filename = %q", filename)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{450000, "4500.00"},
		{1234550, "12345.50"},
		{-250, "-2.50"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.minor); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.minor, got, tt.want)
		}
	}
}

func TestDisplayTime_PurchaserZone(t *testing.T) {
	dep := time.Date(2026, 11, 2, 6, 30, 0, 0, time.UTC)

	tests := []struct {
		phone string
		want  string
	}{
		{"+919876543210", "02 Nov 2026 12:00 IST"},
		{"", "02 Nov 2026 06:30 UTC"},
	}
	for _, tt := range tests {
		if got := DisplayTime(dep, locale.Location(tt.phone)); got != tt.want {
			t.Errorf("DisplayTime(phone %q) = %q, want %q", tt.phone, got, tt.want)
		}
	}
}
