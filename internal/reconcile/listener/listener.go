package listener

import (
	"context"

	"travelpartner/pkg/kafka"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
)

type CaseRecorder interface {
	Record(ctx context.Context, c *model.ReconcileCase) (bool, error)
}

// CommitFailures turns booking.commit_failed events into reconcile cases so
// the captured payment can be refunded. Other event types are skipped.
type CommitFailures struct {
	cases CaseRecorder
	log   *logger.Logger
}

func NewCommitFailures(cases CaseRecorder, log *logger.Logger) *CommitFailures {
	return &CommitFailures{cases: cases, log: log}
}

func (l *CommitFailures) Handle(ctx context.Context, msg kafka.Message) error {
	if msg.GetEventType() != model.EventBookingCommitFailed {
		return nil
	}

	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("invalid booking event payload", err)
	}

	created, err := l.cases.Record(ctx, &model.ReconcileCase{
		Kind:        model.CaseCommitFailed,
		InventoryID: event.InventoryID,
		FareClass:   event.FareClass,
		SeatNumbers: event.SeatNumbers,
		BookingRef:  event.CheckoutID,
		CheckoutID:  event.CheckoutID,
		PaymentID:   event.PaymentID,
		Detail:      event.Reason,
	})
	if err != nil {
		return kafka.NewTransientError("record commit failure", err)
	}

	if created {
		l.log.Warn("Commit failure needs refund",
			"checkout_id", event.CheckoutID,
			"payment_id", event.PaymentID,
			"amount_minor", event.AmountMinor,
			"currency", event.Currency,
			"reason", event.Reason,
		)
	}
	return nil
}
