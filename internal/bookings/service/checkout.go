package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	bookingserrors "travelpartner/internal/bookings/errors"
	"travelpartner/internal/bookings/repository"
	"travelpartner/internal/bookings/validator"
	inventoryerrors "travelpartner/internal/inventory/errors"
	selectionerrors "travelpartner/internal/selection/errors"
	"travelpartner/pkg/config"
	apperrors "travelpartner/pkg/errors"
	"travelpartner/pkg/identity"
	"travelpartner/pkg/kafka"
	"travelpartner/pkg/model"
	"travelpartner/pkg/payment"
	"travelpartner/pkg/sanitizer"

	"github.com/google/uuid"
)

// invalidPhone keeps an unparseable phone visible to the e164 rule.
const invalidPhone = "invalid_phone"

// SeatStore is the slice of the inventory store the booking flows write
// through. Seat writes are per-seat conditional updates.
type SeatStore interface {
	FindByID(ctx context.Context, id string) (*model.InventoryItem, error)
	FindByNumber(ctx context.Context, mode, number string) (*model.InventoryItem, error)
	ReserveSeats(ctx context.Context, inventoryID, fareClass string, seats []string, bookingRef string, occupants map[string]model.Occupant) error
	ReleaseSeats(ctx context.Context, inventoryID, fareClass string, seats []string, bookingRef string) (int64, error)
}

type SelectionStore interface {
	Get(ctx context.Context, id string) (*model.Selection, error)
	Delete(ctx context.Context, id string) error
}

type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*payment.Order, error)
	VerifyPayment(orderID, paymentID, signature string) error
}

type TicketSealer interface {
	Seal(bookingID string, uid string) (string, error)
}

type CheckoutService interface {
	Begin(ctx context.Context, caller *identity.Identity, req *model.CheckoutRequest) (*model.PaymentIntent, error)
	Get(ctx context.Context, ownerUID string, id string) (*model.Checkout, error)
	Confirm(ctx context.Context, ownerUID string, id string, confirmation *model.PaymentConfirmation) (*model.Booking, error)
	Fail(ctx context.Context, ownerUID string, id string, failure *model.PaymentFailure) (*model.Checkout, error)
	HandleWebhook(ctx context.Context, event *payment.WebhookEvent) error

	// RetryCommit re-runs the idempotent commit for a checkout left paid.
	RetryCommit(ctx context.Context, checkout *model.Checkout) (*model.Booking, error)
	// Expire gives up on a pending checkout whose hold has lapsed.
	Expire(ctx context.Context, checkout *model.Checkout) error
}

type checkoutService struct {
	checkouts  repository.CheckoutRepository
	bookings   repository.BookingRepository
	holds      repository.HoldStore
	seats      SeatStore
	selections SelectionStore
	gateway    PaymentGateway
	events     kafka.EventPublisher
	sealer     TicketSealer
	validator  *validator.CheckoutValidator
	cfg        *config.Config
	now        func() time.Time
}

type CheckoutDeps struct {
	Checkouts  repository.CheckoutRepository
	Bookings   repository.BookingRepository
	Holds      repository.HoldStore
	Seats      SeatStore
	Selections SelectionStore
	Gateway    PaymentGateway
	Events     kafka.EventPublisher
	Sealer     TicketSealer
	Validator  *validator.CheckoutValidator
}

func NewCheckoutService(deps CheckoutDeps, cfg *config.Config) CheckoutService {
	return &checkoutService{
		checkouts:  deps.Checkouts,
		bookings:   deps.Bookings,
		holds:      deps.Holds,
		seats:      deps.Seats,
		selections: deps.Selections,
		gateway:    deps.Gateway,
		events:     deps.Events,
		sealer:     deps.Sealer,
		validator:  deps.Validator,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *checkoutService) Begin(ctx context.Context, caller *identity.Identity, req *model.CheckoutRequest) (*model.PaymentIntent, error) {
	req.SelectionID = strings.TrimSpace(req.SelectionID)

	selection, err := s.selections.Get(ctx, req.SelectionID)
	if err != nil {
		if errors.Is(err, selectionerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Selection", req.SelectionID)
		}
		s.cfg.Log.Error("Failed to load selection", "selection_id", req.SelectionID, "error", err)
		return nil, apperrors.Internal("Failed to load selection", err)
	}
	if selection.OwnerUID != caller.UID {
		return nil, apperrors.NotFoundWithID("Selection", req.SelectionID)
	}

	s.sanitize(req, caller)
	if err := s.validator.Validate(req, selection.Seats); err != nil {
		s.cfg.Log.Warn("Checkout validation failed", "selection_id", selection.ID, "error", err)
		return nil, apperrors.Validation("Checkout validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	if err := assignSeats(req.Passengers, selection.Seats); err != nil {
		return nil, apperrors.Validation("Checkout validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	item, err := s.item(ctx, selection.InventoryID)
	if err != nil {
		return nil, err
	}
	fc, unitPrice := item.ResolveFare(selection.FareClass)
	if fc == nil {
		return nil, apperrors.SeatConflict(selection.Seats)
	}
	if unavailable := fc.Unavailable(selection.Seats); len(unavailable) > 0 {
		s.cfg.Log.Info("Checkout refused, seats already reserved",
			"selection_id", selection.ID,
			"inventory_id", item.ID,
			"seats", unavailable,
		)
		return nil, apperrors.SeatConflict(unavailable)
	}

	if unitPrice <= 0 || unitPrice > model.MaxTicketPrice {
		return nil, apperrors.Validation("Checkout validation failed", map[string]any{
			"error": fmt.Sprintf("fare class %s has no payable price", selection.FareClass),
		})
	}
	amount := int64(len(selection.Seats)) * unitPrice * config.MinorUnitsPerMajor

	if err := s.holds.Hold(ctx, item.ID, selection.FareClass, selection.Seats, selection.ID, s.cfg.HoldTTL); err != nil {
		var held *repository.SeatsHeldError
		if errors.As(err, &held) {
			return nil, apperrors.SeatConflict([]string{held.Seat})
		}
		s.cfg.Log.Error("Failed to hold seats", "selection_id", selection.ID, "error", err)
		return nil, apperrors.Unavailable("Seat hold store")
	}

	checkoutID := uuid.New().String()
	order, err := s.gateway.CreateOrder(ctx, amount, item.Currency, checkoutID)
	if err != nil {
		s.releaseHold(ctx, item.ID, selection.FareClass, selection.Seats, selection.ID)
		s.cfg.Log.Error("Failed to create payment order", "checkout_id", checkoutID, "amount_minor", amount, "error", err)
		return nil, apperrors.Unavailable("Payment gateway")
	}

	now := s.now().UTC()
	checkout := &model.Checkout{
		ID:             checkoutID,
		OwnerUID:       caller.UID,
		SelectionID:    selection.ID,
		InventoryID:    item.ID,
		FareClass:      selection.FareClass,
		SeatNumbers:    slices.Clone(selection.Seats),
		Passengers:     req.Passengers,
		Purchaser:      req.Purchaser,
		MealPreference: req.MealPreference,
		OffersOptIn:    req.OffersOptIn,
		UnitPrice:      unitPrice,
		AmountMinor:    amount,
		Currency:       item.Currency,
		PaymentOrderID: order.ID,
		Status:         model.CheckoutPending,
		ExpiresAt:      now.Add(s.cfg.HoldTTL),
	}
	if err := s.checkouts.Create(ctx, checkout); err != nil {
		s.releaseHold(ctx, item.ID, selection.FareClass, selection.Seats, selection.ID)
		s.cfg.Log.Error("Failed to persist checkout", "checkout_id", checkoutID, "error", err)
		return nil, apperrors.Internal("Failed to start checkout", err)
	}

	s.cfg.Log.Info("Checkout started",
		"checkout_id", checkout.ID,
		"inventory_id", checkout.InventoryID,
		"fare_class", checkout.FareClass,
		"seats", checkout.SeatNumbers,
		"amount_minor", amount,
		"order_id", order.ID,
	)

	return &model.PaymentIntent{
		CheckoutID:  checkout.ID,
		OrderID:     order.ID,
		AmountMinor: amount,
		Currency:    checkout.Currency,
		KeyID:       s.gateway.KeyID(),
		Description: fmt.Sprintf("%s %s %s-%s, %d seat(s)", item.Operator, item.Number, item.Source.Code, item.Destination.Code, len(checkout.SeatNumbers)),
		Prefill: model.Prefill{
			Name:  req.Purchaser.Name,
			Email: req.Purchaser.Email,
			Phone: req.Purchaser.Phone,
		},
		ExpiresAt: checkout.ExpiresAt,
	}, nil
}

func (s *checkoutService) sanitize(req *model.CheckoutRequest, caller *identity.Identity) {
	for i := range req.Passengers {
		p := &req.Passengers[i]
		p.Name = sanitizer.NormalizeName(p.Name)
		p.Gender = strings.ToLower(strings.TrimSpace(p.Gender))
		p.SeatNumber = sanitizer.NormalizeSeatNumber(p.SeatNumber)
	}

	req.Purchaser.UID = caller.UID
	req.Purchaser.Name = sanitizer.NormalizeName(req.Purchaser.Name)
	if req.Purchaser.Name == "" {
		req.Purchaser.Name = caller.Name
	}
	req.Purchaser.Email = sanitizer.NormalizeEmail(req.Purchaser.Email)
	if req.Purchaser.Email == "" {
		req.Purchaser.Email = sanitizer.NormalizeEmail(caller.Email)
	}
	if req.Purchaser.Phone != "" {
		if phone := sanitizer.NormalizePhone(req.Purchaser.Phone); phone != "" {
			req.Purchaser.Phone = phone
		} else {
			req.Purchaser.Phone = invalidPhone
		}
	}
	req.MealPreference = strings.ToLower(strings.TrimSpace(req.MealPreference))
}

// assignSeats gives passengers without a seat the remaining selected seats in
// order. Passengers that name a seat must name distinct selected seats.
func assignSeats(passengers []model.Passenger, seats []string) error {
	free := slices.Clone(seats)
	for _, p := range passengers {
		if p.SeatNumber == "" {
			continue
		}
		i := slices.Index(free, p.SeatNumber)
		if i < 0 {
			return fmt.Errorf("passenger seat %s is not part of the selection or is taken twice", p.SeatNumber)
		}
		free = slices.Delete(free, i, i+1)
	}
	for i := range passengers {
		if passengers[i].SeatNumber == "" {
			passengers[i].SeatNumber = free[0]
			free = free[1:]
		}
	}
	return nil
}

func (s *checkoutService) Get(ctx context.Context, ownerUID string, id string) (*model.Checkout, error) {
	return s.owned(ctx, ownerUID, id)
}

func (s *checkoutService) Confirm(ctx context.Context, ownerUID string, id string, confirmation *model.PaymentConfirmation) (*model.Booking, error) {
	confirmation.OrderID = strings.TrimSpace(confirmation.OrderID)
	confirmation.PaymentID = strings.TrimSpace(confirmation.PaymentID)
	confirmation.Signature = strings.ToLower(strings.TrimSpace(confirmation.Signature))
	if err := s.validator.ValidateConfirmation(confirmation); err != nil {
		return nil, apperrors.Validation("Payment confirmation validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	checkout, err := s.owned(ctx, ownerUID, id)
	if err != nil {
		return nil, err
	}
	if confirmation.OrderID != checkout.PaymentOrderID {
		return nil, apperrors.PaymentRequired("Payment does not belong to this checkout")
	}
	if err := s.gateway.VerifyPayment(confirmation.OrderID, confirmation.PaymentID, confirmation.Signature); err != nil {
		s.cfg.Log.Warn("Payment signature rejected", "checkout_id", checkout.ID, "order_id", confirmation.OrderID, "error", err)
		return nil, apperrors.PaymentRequired("Payment could not be verified")
	}

	return s.confirmPaid(ctx, checkout, confirmation.PaymentID)
}

// confirmPaid drives a checkout whose payment is verified to a booking.
func (s *checkoutService) confirmPaid(ctx context.Context, checkout *model.Checkout, paymentID string) (*model.Booking, error) {
	switch checkout.Status {
	case model.CheckoutConfirmed:
		return s.existingBooking(ctx, checkout)

	case model.CheckoutPending:
		err := s.checkouts.Transition(ctx, checkout.ID, model.CheckoutPending, model.CheckoutPaid, repository.Transition{PaymentID: paymentID})
		if err != nil {
			if errors.Is(err, bookingserrors.ErrStatusChanged) {
				fresh, findErr := s.checkouts.FindByID(ctx, checkout.ID)
				if findErr != nil {
					return nil, apperrors.Internal("Failed to reload checkout", findErr)
				}
				if fresh.Status == model.CheckoutPending {
					return nil, apperrors.Conflict("Checkout is being updated, retry")
				}
				return s.confirmPaid(ctx, fresh, paymentID)
			}
			s.cfg.Log.Error("Failed to record payment", "checkout_id", checkout.ID, "payment_id", paymentID, "error", err)
			return nil, apperrors.Internal("Failed to record payment", err)
		}
		checkout.Status = model.CheckoutPaid
		checkout.PaymentID = paymentID
		return s.commit(ctx, checkout)

	case model.CheckoutPaid:
		return s.commit(ctx, checkout)

	case model.CheckoutConflicted:
		return nil, apperrors.SeatConflict(checkout.SeatNumbers)

	default:
		// Money arrived for a checkout that already gave up its seats.
		s.cfg.Log.Warn("Payment captured for closed checkout",
			"checkout_id", checkout.ID,
			"status", checkout.Status,
			"payment_id", paymentID,
		)
		s.publish(ctx, model.EventBookingCommitFailed, checkout.InventoryID, model.BookingEvent{
			CheckoutID:  checkout.ID,
			InventoryID: checkout.InventoryID,
			FareClass:   checkout.FareClass,
			SeatNumbers: checkout.SeatNumbers,
			OwnerUID:    checkout.OwnerUID,
			PaymentID:   paymentID,
			AmountMinor: checkout.AmountMinor,
			Currency:    checkout.Currency,
			Reason:      "checkout " + checkout.Status,
		})
		return nil, apperrors.Conflict(fmt.Sprintf("Checkout is %s; the payment will be refunded", checkout.Status))
	}
}

func (s *checkoutService) RetryCommit(ctx context.Context, checkout *model.Checkout) (*model.Booking, error) {
	if checkout.Status != model.CheckoutPaid {
		return nil, apperrors.Conflict(fmt.Sprintf("Checkout is %s, not paid", checkout.Status))
	}
	return s.commit(ctx, checkout)
}

// commit reserves the seats, inserts the booking and confirms the checkout in
// one transaction. It is idempotent: the checkout id is the seats' booking ref
// and the booking's unique client booking id.
func (s *checkoutService) commit(ctx context.Context, checkout *model.Checkout) (*model.Booking, error) {
	item, err := s.seats.FindByID(ctx, checkout.InventoryID)
	if err != nil {
		if errors.Is(err, inventoryerrors.ErrNotFound) {
			return nil, s.conflicted(ctx, checkout, checkout.SeatNumbers, "inventory item no longer exists")
		}
		s.cfg.Log.Error("Failed to load inventory for commit", "checkout_id", checkout.ID, "error", err)
		return nil, apperrors.Unavailable("Booking store")
	}

	booking := checkout.NewBooking(item.Trip(), s.now().UTC())
	err = s.bookings.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.seats.ReserveSeats(txCtx, checkout.InventoryID, checkout.FareClass, checkout.SeatNumbers, checkout.ID, booking.Occupants()); err != nil {
			return err
		}
		if err := s.bookings.Create(txCtx, booking); err != nil {
			return err
		}
		return s.checkouts.Transition(txCtx, checkout.ID, model.CheckoutPaid, model.CheckoutConfirmed, repository.Transition{BookingID: booking.ID})
	})

	switch {
	case err == nil:
	case errors.Is(err, bookingserrors.ErrDuplicateBooking), errors.Is(err, bookingserrors.ErrStatusChanged):
		existing, findErr := s.bookings.FindByClientBookingID(ctx, checkout.ID)
		if findErr != nil {
			s.cfg.Log.Error("Commit raced but no booking found", "checkout_id", checkout.ID, "error", err, "find_error", findErr)
			return nil, apperrors.Unavailable("Booking store")
		}
		if tErr := s.checkouts.Transition(ctx, checkout.ID, model.CheckoutPaid, model.CheckoutConfirmed, repository.Transition{BookingID: existing.ID}); tErr != nil && !errors.Is(tErr, bookingserrors.ErrStatusChanged) {
			s.cfg.Log.Warn("Failed to mark checkout confirmed", "checkout_id", checkout.ID, "error", tErr)
		}
		booking = existing
	case errors.Is(err, inventoryerrors.ErrSeatConflict):
		seats := checkout.SeatNumbers
		var conflict *inventoryerrors.SeatConflictError
		if errors.As(err, &conflict) {
			seats = conflict.Seats
		}
		return nil, s.conflicted(ctx, checkout, seats, "seats reserved by another booking")
	case errors.Is(err, inventoryerrors.ErrFareClassNotFound), errors.Is(err, inventoryerrors.ErrNotFound):
		return nil, s.conflicted(ctx, checkout, checkout.SeatNumbers, err.Error())
	default:
		s.cfg.Log.Error("Booking commit failed, checkout left paid for retry",
			"checkout_id", checkout.ID,
			"payment_id", checkout.PaymentID,
			"error", err,
		)
		return nil, apperrors.Unavailable("Booking store")
	}

	s.releaseHold(ctx, checkout.InventoryID, checkout.FareClass, checkout.SeatNumbers, checkout.SelectionID)
	s.clearSelection(ctx, checkout.SelectionID)
	s.publish(ctx, model.EventBookingConfirmed, checkout.InventoryID, model.BookingEvent{
		BookingID:   booking.ID,
		CheckoutID:  checkout.ID,
		InventoryID: checkout.InventoryID,
		FareClass:   checkout.FareClass,
		SeatNumbers: booking.SeatNumbers,
		OwnerUID:    checkout.OwnerUID,
		PaymentID:   booking.PaymentID,
		AmountMinor: booking.AmountMinor,
		Currency:    booking.Currency,
	})

	s.cfg.Log.Info("Booking confirmed",
		"booking_id", booking.ID,
		"checkout_id", checkout.ID,
		"inventory_id", checkout.InventoryID,
		"seats", booking.SeatNumbers,
	)
	s.attachTicketToken(booking)
	return booking, nil
}

// conflicted closes a paid checkout that lost its seats. The payment id goes
// out on the commit-failed event so the payment can be refunded.
func (s *checkoutService) conflicted(ctx context.Context, checkout *model.Checkout, seats []string, reason string) error {
	if err := s.checkouts.Transition(ctx, checkout.ID, model.CheckoutPaid, model.CheckoutConflicted, repository.Transition{FailureReason: reason}); err != nil {
		s.cfg.Log.Error("Failed to mark checkout conflicted", "checkout_id", checkout.ID, "error", err)
	}
	s.releaseHold(ctx, checkout.InventoryID, checkout.FareClass, checkout.SeatNumbers, checkout.SelectionID)
	s.clearSelection(ctx, checkout.SelectionID)
	s.publish(ctx, model.EventBookingCommitFailed, checkout.InventoryID, model.BookingEvent{
		CheckoutID:  checkout.ID,
		InventoryID: checkout.InventoryID,
		FareClass:   checkout.FareClass,
		SeatNumbers: seats,
		OwnerUID:    checkout.OwnerUID,
		PaymentID:   checkout.PaymentID,
		AmountMinor: checkout.AmountMinor,
		Currency:    checkout.Currency,
		Reason:      reason,
	})

	s.cfg.Log.Warn("Booking commit conflicted",
		"checkout_id", checkout.ID,
		"payment_id", checkout.PaymentID,
		"seats", seats,
		"reason", reason,
	)
	return apperrors.SeatConflict(seats)
}

func (s *checkoutService) Fail(ctx context.Context, ownerUID string, id string, failure *model.PaymentFailure) (*model.Checkout, error) {
	failure.Code = strings.TrimSpace(failure.Code)
	failure.Description = sanitizer.TrimAndNormalize(failure.Description)
	if err := s.validator.ValidateFailure(failure); err != nil {
		return nil, apperrors.Validation("Payment failure validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	checkout, err := s.owned(ctx, ownerUID, id)
	if err != nil {
		return nil, err
	}
	return s.failPending(ctx, checkout, failureReason(failure.Code, failure.Description))
}

// failPending rolls a pending checkout back: the hold goes, the selection
// stays so the user can retry.
func (s *checkoutService) failPending(ctx context.Context, checkout *model.Checkout, reason string) (*model.Checkout, error) {
	if checkout.Status == model.CheckoutPaymentFailed {
		return checkout, nil
	}
	if checkout.Status != model.CheckoutPending {
		return nil, apperrors.Conflict(fmt.Sprintf("Checkout is %s", checkout.Status))
	}

	err := s.checkouts.Transition(ctx, checkout.ID, model.CheckoutPending, model.CheckoutPaymentFailed, repository.Transition{FailureReason: reason})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil, apperrors.Conflict("Checkout status changed, reload it")
		}
		s.cfg.Log.Error("Failed to record payment failure", "checkout_id", checkout.ID, "error", err)
		return nil, apperrors.Internal("Failed to record payment failure", err)
	}

	s.releaseHold(ctx, checkout.InventoryID, checkout.FareClass, checkout.SeatNumbers, checkout.SelectionID)
	checkout.Status = model.CheckoutPaymentFailed
	checkout.FailureReason = reason

	s.cfg.Log.Info("Checkout payment failed", "checkout_id", checkout.ID, "reason", reason)
	return checkout, nil
}

func failureReason(code, description string) string {
	switch {
	case code != "" && description != "":
		return code + ": " + description
	case code != "":
		return code
	case description != "":
		return description
	default:
		return "payment failed"
	}
}

func (s *checkoutService) Expire(ctx context.Context, checkout *model.Checkout) error {
	err := s.checkouts.Transition(ctx, checkout.ID, model.CheckoutPending, model.CheckoutExpired, repository.Transition{FailureReason: "payment window elapsed"})
	if err != nil {
		return err
	}
	s.releaseHold(ctx, checkout.InventoryID, checkout.FareClass, checkout.SeatNumbers, checkout.SelectionID)
	s.cfg.Log.Info("Checkout expired", "checkout_id", checkout.ID)
	return nil
}

// HandleWebhook applies a gateway event. The request signature has already
// been checked. Errors are returned only when a retry could help.
func (s *checkoutService) HandleWebhook(ctx context.Context, event *payment.WebhookEvent) error {
	entity := event.Payment()
	if entity.OrderID == "" {
		s.cfg.Log.Warn("Webhook without order id ignored", "event", event.Event)
		return nil
	}

	checkout, err := s.checkouts.FindByOrderID(ctx, entity.OrderID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrCheckoutNotFound) {
			s.cfg.Log.Warn("Webhook for unknown order ignored", "event", event.Event, "order_id", entity.OrderID)
			return nil
		}
		return apperrors.Internal("Failed to load checkout", err)
	}

	switch event.Event {
	case payment.EventPaymentCaptured:
		_, err = s.confirmPaid(ctx, checkout, entity.ID)
	case payment.EventPaymentFailed:
		_, err = s.failPending(ctx, checkout, failureReason(entity.ErrorCode, entity.ErrorDescription))
	default:
		s.cfg.Log.Debug("Webhook event ignored", "event", event.Event, "order_id", entity.OrderID)
		return nil
	}

	if apperrors.IsCode(err, apperrors.CodeConflict) || apperrors.IsCode(err, apperrors.CodeSeatConflict) {
		s.cfg.Log.Info("Webhook acknowledged without booking", "event", event.Event, "order_id", entity.OrderID, "error", err)
		return nil
	}
	return err
}

func (s *checkoutService) owned(ctx context.Context, ownerUID string, id string) (*model.Checkout, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Checkout ID cannot be empty")
	}

	checkout, err := s.checkouts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrCheckoutNotFound) {
			return nil, apperrors.NotFoundWithID("Checkout", id)
		}
		s.cfg.Log.Error("Failed to load checkout", "checkout_id", id, "error", err)
		return nil, apperrors.Internal("Failed to load checkout", err)
	}
	if checkout.OwnerUID != ownerUID {
		return nil, apperrors.NotFoundWithID("Checkout", id)
	}
	return checkout, nil
}

func (s *checkoutService) existingBooking(ctx context.Context, checkout *model.Checkout) (*model.Booking, error) {
	booking, err := s.bookings.FindByClientBookingID(ctx, checkout.ID)
	if err != nil {
		s.cfg.Log.Error("Confirmed checkout has no booking", "checkout_id", checkout.ID, "error", err)
		return nil, apperrors.Internal("Failed to load booking", err)
	}
	s.attachTicketToken(booking)
	return booking, nil
}

func (s *checkoutService) item(ctx context.Context, id string) (*model.InventoryItem, error) {
	item, err := s.seats.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, inventoryerrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Inventory item", id)
		case errors.Is(err, inventoryerrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid inventory ID format")
		}
		s.cfg.Log.Error("Failed to load inventory item", "inventory_id", id, "error", err)
		return nil, apperrors.Unavailable("Inventory store")
	}
	return item, nil
}

func (s *checkoutService) releaseHold(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string) {
	if _, err := s.holds.Release(ctx, inventoryID, fareClass, seats, holdID); err != nil {
		s.cfg.Log.Warn("Failed to release seat hold", "inventory_id", inventoryID, "hold_id", holdID, "error", err)
	}
}

func (s *checkoutService) clearSelection(ctx context.Context, selectionID string) {
	if err := s.selections.Delete(ctx, selectionID); err != nil {
		s.cfg.Log.Warn("Failed to clear selection", "selection_id", selectionID, "error", err)
	}
}

func (s *checkoutService) publish(ctx context.Context, eventType, key string, event model.BookingEvent) {
	if err := s.events.PublishEvent(ctx, eventType, key, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event", "event_type", eventType, "key", key, "error", err)
	}
}

func (s *checkoutService) attachTicketToken(booking *model.Booking) {
	if s.sealer == nil || booking.ID == "" {
		return
	}
	token, err := s.sealer.Seal(booking.ID, booking.Purchaser.UID)
	if err != nil {
		s.cfg.Log.Warn("Failed to seal ticket token", "booking_id", booking.ID, "error", err)
		return
	}
	booking.TicketToken = token
}
