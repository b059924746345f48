package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"travelpartner/pkg/config"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
)

type bookingFixture struct {
	seats    *memorySeats
	bookings *memoryBookings
	events   *recordingPublisher
	svc      BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		seats:    newMemorySeats(),
		bookings: &memoryBookings{items: map[string]*model.Booking{}},
		events:   &recordingPublisher{},
	}
	f.svc = NewBookingService(f.bookings, f.seats, f.events, stubSealer{}, &config.Config{Log: logger.Discard()})
	return f
}

// book stores a booking and reserves its seats the way a commit does.
func (f *bookingFixture) book(t *testing.T, ref string, uid string, seats ...string) *model.Booking {
	t.Helper()
	b := &model.Booking{
		ClientBookingID: ref,
		InventoryID:     itemID,
		Trip:            f.seats.item.Trip(),
		FareClass:       "Economy",
		SeatNumbers:     seats,
		Purchaser:       model.Purchaser{UID: uid, Name: "Asha Rao", Email: "asha@example.com"},
		AmountMinor:     int64(len(seats)) * 450000,
		Currency:        "INR",
		PaymentID:       "pay_" + ref,
		CreatedAt:       time.Now(),
	}
	for _, s := range seats {
		b.Passengers = append(b.Passengers, model.Passenger{Name: "Asha Rao", Age: 30, Gender: "female", SeatNumber: s})
	}
	if err := f.seats.ReserveSeats(context.Background(), itemID, "Economy", seats, ref, b.Occupants()); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := f.bookings.Create(context.Background(), b); err != nil {
		t.Fatalf("create: %v", err)
	}
	return b
}

func TestBookingService_ListMine(t *testing.T) {
	f := newBookingFixture()
	f.book(t, "ck-1", ownerUID, "1A")
	f.book(t, "ck-2", ownerUID, "1B")
	f.book(t, "ck-3", otherUID)

	bookings, total, err := f.svc.ListMine(context.Background(), ownerUID, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(bookings) != 1 {
		t.Errorf("page size = %d, want 1", len(bookings))
	}
	for _, b := range bookings {
		if b.Purchaser.UID != ownerUID {
			t.Errorf("listed booking of another user: %+v", b)
		}
	}
}

func TestBookingService_Get(t *testing.T) {
	f := newBookingFixture()
	b := f.book(t, "ck-1", ownerUID, "1A")

	tests := []struct {
		name       string
		uid        string
		id         string
		wantStatus int
	}{
		{name: "owner", uid: ownerUID, id: b.ID},
		{name: "other user", uid: otherUID, id: b.ID, wantStatus: http.StatusNotFound},
		{name: "missing", uid: ownerUID, id: "ffffffffffffffffffffffff", wantStatus: http.StatusNotFound},
		{name: "empty id", uid: ownerUID, id: "  ", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Get(context.Background(), tt.uid, tt.id)
			if tt.wantStatus != 0 {
				assertStatus(t, err, tt.wantStatus)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != b.ID {
				t.Errorf("got booking %s, want %s", got.ID, b.ID)
			}
		})
	}
}

func TestBookingService_Cancel(t *testing.T) {
	t.Run("releases seats and clears occupants", func(t *testing.T) {
		f := newBookingFixture()
		b := f.book(t, "ck-1", ownerUID, "1A", "1B")

		if err := f.svc.Cancel(context.Background(), ownerUID, b.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		for _, n := range []string{"1A", "1B"} {
			s := f.seats.seat(n)
			if s.IsReserved() || s.Occupant != nil || s.BookingRef != "" {
				t.Errorf("seat %s not released: %+v", n, s)
			}
		}
		if len(f.bookings.items) != 0 {
			t.Error("booking should be deleted")
		}
		cancelled := f.events.ofType(model.EventBookingCancelled)
		if len(cancelled) != 1 || len(cancelled[0].payload.SeatNumbers) != 2 {
			t.Errorf("expected cancelled event with two seats, got %+v", cancelled)
		}
	})

	t.Run("seats rebooked by someone else stay reserved", func(t *testing.T) {
		f := newBookingFixture()
		b := f.book(t, "ck-1", ownerUID, "1A")
		seat := f.seats.item.FareClasses[0].FindSeat("1A")
		seat.BookingRef = "ck-new"

		if err := f.svc.Cancel(context.Background(), ownerUID, b.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if s := f.seats.seat("1A"); !s.IsReserved() || s.BookingRef != "ck-new" {
			t.Errorf("seat of another booking must not be touched: %+v", s)
		}
		if len(f.bookings.items) != 0 {
			t.Error("booking should still be deleted")
		}
	})

	t.Run("falls back to trip number", func(t *testing.T) {
		f := newBookingFixture()
		b := f.book(t, "ck-1", ownerUID, "1A")
		f.bookings.items[b.ID].InventoryID = ""

		if err := f.svc.Cancel(context.Background(), ownerUID, b.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if f.seats.seat("1A").IsReserved() {
			t.Error("seat should be released through the number lookup")
		}
	})

	t.Run("missing inventory item still deletes booking", func(t *testing.T) {
		f := newBookingFixture()
		b := f.book(t, "ck-1", ownerUID, "1A")
		f.seats.item = nil

		if err := f.svc.Cancel(context.Background(), ownerUID, b.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if len(f.bookings.items) != 0 {
			t.Error("booking should be deleted")
		}
	})

	t.Run("other user cannot cancel", func(t *testing.T) {
		f := newBookingFixture()
		b := f.book(t, "ck-1", ownerUID, "1A")

		err := f.svc.Cancel(context.Background(), otherUID, b.ID)
		assertStatus(t, err, http.StatusNotFound)
		if !f.seats.seat("1A").IsReserved() {
			t.Error("seat must stay reserved")
		}
	})

	t.Run("store failure keeps booking", func(t *testing.T) {
		f := newBookingFixture()
		b := f.book(t, "ck-1", ownerUID, "1A")
		f.bookings.txErr = errors.New("no primary")

		err := f.svc.Cancel(context.Background(), ownerUID, b.ID)
		assertStatus(t, err, http.StatusInternalServerError)
		if len(f.bookings.items) != 1 {
			t.Error("booking must survive a failed cancel")
		}
		if len(f.events.ofType(model.EventBookingCancelled)) != 0 {
			t.Error("no event may be published for a failed cancel")
		}
	})
}

func TestBookingService_Ticket(t *testing.T) {
	f := newBookingFixture()
	b := f.book(t, "ck-1", ownerUID, "1A")

	pdf, filename, err := f.svc.Ticket(context.Background(), ownerUID, b.ID)
	if err != nil {
		t.Fatalf("ticket: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Error("expected PDF output")
	}
	if filename != "ETICKET_AI202_ck-1.pdf" {
		t.Errorf("filename = %s", filename)
	}

	token, _ := stubSealer{}.Seal(b.ID, ownerUID)
	if _, _, err := f.svc.TicketByToken(context.Background(), token); err != nil {
		t.Errorf("ticket by token: %v", err)
	}

	forged, _ := stubSealer{}.Seal(b.ID, otherUID)
	_, _, err = f.svc.TicketByToken(context.Background(), forged)
	assertStatus(t, err, http.StatusNotFound)

	_, _, err = f.svc.TicketByToken(context.Background(), "garbage")
	assertStatus(t, err, http.StatusNotFound)
}
