package listener

import (
	"context"
	"errors"
	"testing"

	"travelpartner/pkg/kafka"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
)

type mockCases struct {
	recordFunc func(ctx context.Context, c *model.ReconcileCase) (bool, error)
}

func (m *mockCases) Record(ctx context.Context, c *model.ReconcileCase) (bool, error) {
	return m.recordFunc(ctx, c)
}

func buildMessage(t *testing.T, eventType string, value any) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().WithKey("inv1").WithEventType(eventType).WithValue(value).Build()
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	return msg
}

func TestCommitFailures_Handle(t *testing.T) {
	event := model.BookingEvent{
		CheckoutID:  "ck-1",
		InventoryID: "inv1",
		FareClass:   "Economy",
		SeatNumbers: []string{"1A"},
		PaymentID:   "pay_1",
		AmountMinor: 450000,
		Reason:      "seats reserved by another booking",
	}

	tests := []struct {
		name          string
		msg           func(t *testing.T) kafka.Message
		recordErr     error
		wantRecorded  bool
		wantErr       bool
		wantPermanent bool
	}{
		{
			name:         "commit failure is recorded",
			msg:          func(t *testing.T) kafka.Message { return buildMessage(t, model.EventBookingCommitFailed, event) },
			wantRecorded: true,
		},
		{
			name: "other events are skipped",
			msg:  func(t *testing.T) kafka.Message { return buildMessage(t, model.EventBookingConfirmed, event) },
		},
		{
			name: "garbage payload is permanent",
			msg: func(t *testing.T) kafka.Message {
				msg := buildMessage(t, model.EventBookingCommitFailed, event)
				msg.Value = []byte("{")
				return msg
			},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name:         "store failure is retried",
			msg:          func(t *testing.T) kafka.Message { return buildMessage(t, model.EventBookingCommitFailed, event) },
			recordErr:    errors.New("no primary"),
			wantRecorded: true,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recorded *model.ReconcileCase
			l := NewCommitFailures(&mockCases{recordFunc: func(ctx context.Context, c *model.ReconcileCase) (bool, error) {
				recorded = c
				return tt.recordErr == nil, tt.recordErr
			}}, logger.Discard())

			err := l.Handle(context.Background(), tt.msg(t))

			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				want := kafka.ErrorTypeTransient
				if tt.wantPermanent {
					want = kafka.ErrorTypePermanent
				}
				if got := kafka.ClassifyError(err); got != want {
					t.Errorf("error type = %v, want %v", got, want)
				}
			}
			if (recorded != nil) != tt.wantRecorded {
				t.Fatalf("recorded = %v, want %v", recorded, tt.wantRecorded)
			}
			if recorded != nil && (recorded.Kind != model.CaseCommitFailed || recorded.PaymentID != "pay_1" || recorded.CheckoutID != "ck-1") {
				t.Errorf("unexpected case %+v", recorded)
			}
		})
	}
}
