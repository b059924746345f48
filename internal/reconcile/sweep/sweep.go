package sweep

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	bookingserrors "travelpartner/internal/bookings/errors"
	"travelpartner/pkg/kafka"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
)

type CheckoutStore interface {
	FindByID(ctx context.Context, id string) (*model.Checkout, error)
	FindStale(ctx context.Context, status string, timeField string, cutoff time.Time, limit int) ([]*model.Checkout, error)
}

// CheckoutResolver drives stale checkouts to a final state.
type CheckoutResolver interface {
	RetryCommit(ctx context.Context, checkout *model.Checkout) (*model.Booking, error)
	Expire(ctx context.Context, checkout *model.Checkout) error
}

type ReservationStore interface {
	FindWithReservedSeats(ctx context.Context) ([]*model.InventoryItem, error)
	ReleaseSeats(ctx context.Context, inventoryID, fareClass string, seats []string, bookingRef string) (int64, error)
}

type BookingFinder interface {
	FindByClientBookingID(ctx context.Context, clientBookingID string) (*model.Booking, error)
}

type CaseRecorder interface {
	Record(ctx context.Context, c *model.ReconcileCase) (bool, error)
}

type Options struct {
	// PaidGrace is how long a checkout may stay paid before its commit is
	// retried here.
	PaidGrace time.Duration
	// Release frees orphaned seats instead of only recording them.
	Release   bool
	BatchSize int
}

// Report counts what one sweep did.
type Report struct {
	Expired         int
	Retried         int
	RetryFailed     int
	Orphaned        int
	OrphansReleased int64
}

// Step is one stage of a sweep. A failing step is logged and the sweep moves
// on to the next one.
type Step struct {
	Name    string
	Execute func(ctx context.Context, report *Report) error
}

type Sweeper struct {
	checkouts    CheckoutStore
	resolver     CheckoutResolver
	reservations ReservationStore
	bookings     BookingFinder
	cases        CaseRecorder
	events       kafka.EventPublisher
	opts         Options
	log          *logger.Logger
	now          func() time.Time
}

type Deps struct {
	Checkouts    CheckoutStore
	Resolver     CheckoutResolver
	Reservations ReservationStore
	Bookings     BookingFinder
	Cases        CaseRecorder
	Events       kafka.EventPublisher
}

func NewSweeper(deps Deps, opts Options, log *logger.Logger) *Sweeper {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}
	return &Sweeper{
		checkouts:    deps.Checkouts,
		resolver:     deps.Resolver,
		reservations: deps.Reservations,
		bookings:     deps.Bookings,
		cases:        deps.Cases,
		events:       deps.Events,
		opts:         opts,
		log:          log,
		now:          time.Now,
	}
}

func (s *Sweeper) Steps() []Step {
	return []Step{
		{Name: "expire_pending", Execute: s.expirePending},
		{Name: "retry_paid", Execute: s.retryPaid},
		{Name: "orphaned_reservations", Execute: s.orphanedReservations},
	}
}

// Run executes every step once and returns the joined step errors.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	var errs []error
	for _, step := range s.Steps() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		start := time.Now()
		if err := step.Execute(ctx, report); err != nil {
			s.log.Error("Reconcile step failed", "step", step.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
			continue
		}
		s.log.Info("Reconcile step finished", "step", step.Name, "duration", time.Since(start))
	}

	s.log.Info("Reconcile sweep finished",
		"expired", report.Expired,
		"retried", report.Retried,
		"retry_failed", report.RetryFailed,
		"orphaned", report.Orphaned,
		"orphans_released", report.OrphansReleased,
	)
	return report, errors.Join(errs...)
}

func (s *Sweeper) expirePending(ctx context.Context, report *Report) error {
	stale, err := s.checkouts.FindStale(ctx, model.CheckoutPending, "expires_at", s.now().UTC(), s.opts.BatchSize)
	if err != nil {
		return err
	}
	for _, checkout := range stale {
		if err := s.resolver.Expire(ctx, checkout); err != nil {
			if errors.Is(err, bookingserrors.ErrStatusChanged) {
				continue
			}
			s.log.Warn("Failed to expire checkout", "checkout_id", checkout.ID, "error", err)
			continue
		}
		report.Expired++
	}
	return nil
}

func (s *Sweeper) retryPaid(ctx context.Context, report *Report) error {
	cutoff := s.now().UTC().Add(-s.opts.PaidGrace)
	stale, err := s.checkouts.FindStale(ctx, model.CheckoutPaid, "updated_at", cutoff, s.opts.BatchSize)
	if err != nil {
		return err
	}
	for _, checkout := range stale {
		booking, err := s.resolver.RetryCommit(ctx, checkout)
		if err != nil {
			report.RetryFailed++
			s.log.Warn("Commit retry failed", "checkout_id", checkout.ID, "payment_id", checkout.PaymentID, "error", err)
			if _, recErr := s.cases.Record(ctx, &model.ReconcileCase{
				Kind:        model.CaseStaleCheckout,
				InventoryID: checkout.InventoryID,
				FareClass:   checkout.FareClass,
				SeatNumbers: checkout.SeatNumbers,
				BookingRef:  checkout.ID,
				CheckoutID:  checkout.ID,
				PaymentID:   checkout.PaymentID,
				Detail:      err.Error(),
			}); recErr != nil {
				s.log.Error("Failed to record reconcile case", "checkout_id", checkout.ID, "error", recErr)
			}
			continue
		}
		report.Retried++
		s.log.Info("Commit retried", "checkout_id", checkout.ID, "booking_id", booking.ID)
	}
	return nil
}

// GroupReserved collects an item's reserved seats by booking ref, in seat
// order within each group.
func GroupReserved(item *model.InventoryItem) []model.ReservedSeats {
	var groups []model.ReservedSeats
	index := map[string]int{}
	for _, fc := range item.FareClasses {
		for _, seat := range fc.Seats {
			if !seat.IsReserved() {
				continue
			}
			key := fc.ClassType + "\x00" + seat.BookingRef
			i, ok := index[key]
			if !ok {
				i = len(groups)
				index[key] = i
				groups = append(groups, model.ReservedSeats{
					InventoryID: item.ID,
					FareClass:   fc.ClassType,
					BookingRef:  seat.BookingRef,
				})
			}
			groups[i].SeatNumbers = append(groups[i].SeatNumbers, seat.SeatNumber)
		}
	}
	return groups
}

func (s *Sweeper) orphanedReservations(ctx context.Context, report *Report) error {
	items, err := s.reservations.FindWithReservedSeats(ctx)
	if err != nil {
		return err
	}

	for _, item := range items {
		for _, group := range GroupReserved(item) {
			orphaned, reason, err := s.isOrphaned(ctx, group)
			if err != nil {
				s.log.Warn("Failed to check reservation", "inventory_id", group.InventoryID, "booking_ref", group.BookingRef, "error", err)
				continue
			}
			if !orphaned {
				continue
			}
			report.Orphaned++
			s.handleOrphan(ctx, group, reason, report)
		}
	}
	return nil
}

// isOrphaned reports whether a reserved group has neither a booking nor a
// checkout that could still produce one.
func (s *Sweeper) isOrphaned(ctx context.Context, group model.ReservedSeats) (bool, string, error) {
	if group.BookingRef == "" {
		return true, "reserved without booking reference", nil
	}

	_, err := s.bookings.FindByClientBookingID(ctx, group.BookingRef)
	if err == nil {
		return false, "", nil
	}
	if !errors.Is(err, bookingserrors.ErrNotFound) {
		return false, "", err
	}

	checkout, err := s.checkouts.FindByID(ctx, group.BookingRef)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrCheckoutNotFound) {
			return true, "no booking and no checkout", nil
		}
		return false, "", err
	}
	if slices.Contains([]string{model.CheckoutPending, model.CheckoutPaid}, checkout.Status) {
		return false, "", nil
	}
	return true, "no booking, checkout " + checkout.Status, nil
}

func (s *Sweeper) handleOrphan(ctx context.Context, group model.ReservedSeats, reason string, report *Report) {
	s.log.Warn("Orphaned reservation found",
		"inventory_id", group.InventoryID,
		"fare_class", group.FareClass,
		"booking_ref", group.BookingRef,
		"seats", group.SeatNumbers,
		"reason", reason,
	)

	created, err := s.cases.Record(ctx, &model.ReconcileCase{
		Kind:        model.CaseOrphanedReservation,
		InventoryID: group.InventoryID,
		FareClass:   group.FareClass,
		SeatNumbers: group.SeatNumbers,
		BookingRef:  group.BookingRef,
		Detail:      reason,
	})
	if err != nil {
		s.log.Error("Failed to record reconcile case", "booking_ref", group.BookingRef, "error", err)
	}
	if created {
		if err := s.events.PublishEvent(ctx, model.EventReservationOrphaned, group.InventoryID, model.BookingEvent{
			CheckoutID:  group.BookingRef,
			InventoryID: group.InventoryID,
			FareClass:   group.FareClass,
			SeatNumbers: group.SeatNumbers,
			Reason:      reason,
		}); err != nil {
			s.log.Error("Failed to publish booking event", "event_type", model.EventReservationOrphaned, "error", err)
		}
	}

	if !s.opts.Release {
		return
	}
	n, err := s.reservations.ReleaseSeats(ctx, group.InventoryID, group.FareClass, group.SeatNumbers, group.BookingRef)
	if err != nil {
		s.log.Error("Failed to release orphaned seats", "inventory_id", group.InventoryID, "booking_ref", group.BookingRef, "error", err)
		return
	}
	report.OrphansReleased += n
}
