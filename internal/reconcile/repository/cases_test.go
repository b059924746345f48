package repository

import (
	"testing"

	"travelpartner/pkg/model"
)

func TestCaseKey(t *testing.T) {
	c := &model.ReconcileCase{
		Kind:        model.CaseOrphanedReservation,
		InventoryID: "inv1",
		BookingRef:  "ck-1",
		SeatNumbers: []string{"1A"},
		Detail:      "no booking",
	}

	key := CaseKey(c)

	if key["kind"] != model.CaseOrphanedReservation || key["booking_ref"] != "ck-1" {
		t.Errorf("unexpected key %v", key)
	}
	if key["resolved"] != false {
		t.Error("key must only match open cases")
	}
	if _, ok := key["detail"]; ok {
		t.Error("detail must not be part of the identity")
	}
	if _, ok := key["seat_numbers"]; ok {
		t.Error("seat numbers must not be part of the identity")
	}
}
