package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	bookingserrors "travelpartner/internal/bookings/errors"
	"travelpartner/internal/bookings/repository"
	"travelpartner/internal/bookings/ticket"
	inventoryerrors "travelpartner/internal/inventory/errors"
	"travelpartner/pkg/config"
	apperrors "travelpartner/pkg/errors"
	"travelpartner/pkg/kafka"
	"travelpartner/pkg/model"
)

type BookingService interface {
	ListMine(ctx context.Context, uid string, limit int, offset int64) ([]*model.Booking, int64, error)
	Get(ctx context.Context, uid string, id string) (*model.Booking, error)
	Cancel(ctx context.Context, uid string, id string) error
	// Ticket renders the e-ticket PDF and returns it with its filename.
	Ticket(ctx context.Context, uid string, id string) ([]byte, string, error)
	TicketByToken(ctx context.Context, token string) ([]byte, string, error)
}

type TicketOpener interface {
	Open(token string) (bookingID string, uid string, err error)
}

type bookingService struct {
	repo   repository.BookingRepository
	seats  SeatStore
	events kafka.EventPublisher
	opener TicketOpener
	cfg    *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	seats SeatStore,
	events kafka.EventPublisher,
	opener TicketOpener,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:   repo,
		seats:  seats,
		events: events,
		opener: opener,
		cfg:    cfg,
	}
}

func (s *bookingService) ListMine(ctx context.Context, uid string, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByOwner(ctx, uid)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "uid", uid, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByOwner(ctx, uid, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings", "uid", uid, "limit", limit, "offset", offset, "error", err)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Get(ctx context.Context, uid string, id string) (*model.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to load booking", "booking_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	if booking.Purchaser.UID != uid {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}

	return booking, nil
}

// Cancel frees the booking's seats and removes it. Only seats still
// attributed to the booking are released.
func (s *bookingService) Cancel(ctx context.Context, uid string, id string) error {
	booking, err := s.Get(ctx, uid, id)
	if err != nil {
		return err
	}

	item, err := s.itemFor(ctx, booking)
	if err != nil {
		return err
	}

	var seats []string
	if item != nil {
		if fc := item.FareClass(booking.FareClass); fc != nil {
			seats = fc.HeldBy(booking.SeatNumbers, booking.ClientBookingID)
		}
	}

	var released int64
	switch {
	case item == nil:
		s.cfg.Log.Warn("Cancelling booking whose inventory item is gone",
			"booking_id", booking.ID,
			"mode", booking.Trip.Mode,
			"number", booking.Trip.Number,
		)
		err = s.deleteBooking(ctx, booking.ID)
	case len(seats) == 0:
		s.cfg.Log.Warn("No seats attributed to booking, skipping inventory update", "booking_id", booking.ID, "inventory_id", item.ID)
		err = s.deleteBooking(ctx, booking.ID)
	default:
		err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			n, err := s.seats.ReleaseSeats(txCtx, item.ID, booking.FareClass, seats, booking.ClientBookingID)
			if err != nil {
				return err
			}
			released = n
			return s.deleteBooking(txCtx, booking.ID)
		})
	}
	if err != nil {
		if appErr := apperrors.AsAppError(err); appErr != nil {
			return appErr
		}
		s.cfg.Log.Error("Failed to cancel booking", "booking_id", booking.ID, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}

	event := model.BookingEvent{
		BookingID:   booking.ID,
		CheckoutID:  booking.ClientBookingID,
		FareClass:   booking.FareClass,
		SeatNumbers: seats,
		OwnerUID:    booking.Purchaser.UID,
		PaymentID:   booking.PaymentID,
		AmountMinor: booking.AmountMinor,
		Currency:    booking.Currency,
	}
	key := booking.InventoryID
	if item != nil {
		event.InventoryID = item.ID
		key = item.ID
	}
	if err := s.events.PublishEvent(ctx, model.EventBookingCancelled, key, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event", "event_type", model.EventBookingCancelled, "booking_id", booking.ID, "error", err)
	}

	s.cfg.Log.Info("Booking cancelled",
		"booking_id", booking.ID,
		"seats_released", released,
	)
	return nil
}

// itemFor resolves the booking's inventory item by its stored id, falling
// back to the trip number for bookings made before the id was recorded. A
// missing item is not an error.
func (s *bookingService) itemFor(ctx context.Context, booking *model.Booking) (*model.InventoryItem, error) {
	if booking.InventoryID != "" {
		item, err := s.seats.FindByID(ctx, booking.InventoryID)
		switch {
		case err == nil:
			return item, nil
		case !errors.Is(err, inventoryerrors.ErrNotFound) && !errors.Is(err, inventoryerrors.ErrInvalidID):
			s.cfg.Log.Error("Failed to load inventory item", "inventory_id", booking.InventoryID, "error", err)
			return nil, apperrors.Unavailable("Inventory store")
		}
	}

	item, err := s.seats.FindByNumber(ctx, booking.Trip.Mode, booking.Trip.Number)
	if err != nil {
		if errors.Is(err, inventoryerrors.ErrNotFound) {
			return nil, nil
		}
		s.cfg.Log.Error("Failed to load inventory item", "number", booking.Trip.Number, "error", err)
		return nil, apperrors.Unavailable("Inventory store")
	}
	return item, nil
}

func (s *bookingService) deleteBooking(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		return err
	}
	return nil
}

func (s *bookingService) Ticket(ctx context.Context, uid string, id string) ([]byte, string, error) {
	booking, err := s.Get(ctx, uid, id)
	if err != nil {
		return nil, "", err
	}
	return s.render(booking)
}

func (s *bookingService) TicketByToken(ctx context.Context, token string) ([]byte, string, error) {
	bookingID, uid, err := s.opener.Open(strings.TrimSpace(token))
	if err != nil {
		s.cfg.Log.Debug("Rejected ticket token", "error", err)
		return nil, "", apperrors.NotFound("Ticket")
	}

	booking, err := s.Get(ctx, uid, bookingID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) || apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			return nil, "", apperrors.NotFound("Ticket")
		}
		return nil, "", err
	}
	return s.render(booking)
}

func (s *bookingService) render(booking *model.Booking) ([]byte, string, error) {
	pdf, filename, err := ticket.Render(booking)
	if err != nil {
		s.cfg.Log.Error("Failed to render ticket", "booking_id", booking.ID, "error", err)
		return nil, "", apperrors.Internal("Failed to render ticket", err)
	}
	return pdf, filename, nil
}
