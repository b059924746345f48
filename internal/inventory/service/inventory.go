package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	inventoryerrors "travelpartner/internal/inventory/errors"
	"travelpartner/internal/inventory/repository"
	"travelpartner/internal/inventory/validator"
	profileserrors "travelpartner/internal/profiles/errors"
	"travelpartner/pkg/config"
	apperrors "travelpartner/pkg/errors"
	"travelpartner/pkg/model"
	"travelpartner/pkg/sanitizer"
)

const searchDateLayout = "2006-01-02"

type InventoryService interface {
	Create(ctx context.Context, ownerUID string, item *model.InventoryItem) error
	GetByID(ctx context.Context, id string) (*model.InventoryItem, error)
	GetAll(ctx context.Context, mode string, limit int, offset int64) ([]*model.InventoryItem, int64, error)
	Search(ctx context.Context, q model.SearchQuery) []*model.InventoryItem
	Quote(ctx context.Context, id string, fareClass string) (*model.FareQuote, error)
	UpdateStatus(ctx context.Context, ownerUID string, id string, update *model.InventoryStatusUpdate) error
	Delete(ctx context.Context, ownerUID string, id string) error
}

// ProfileFinder resolves the uploading account. Only business profiles that
// offer the item's mode may publish inventory.
type ProfileFinder interface {
	FindByUID(ctx context.Context, uid string) (*model.Profile, error)
}

type inventoryService struct {
	repo      repository.InventoryRepository
	profiles  ProfileFinder
	validator *validator.InventoryValidator
	cfg       *config.Config
}

func NewInventoryService(
	repo repository.InventoryRepository,
	profiles ProfileFinder,
	validator *validator.InventoryValidator,
	cfg *config.Config,
) InventoryService {
	return &inventoryService{
		repo:      repo,
		profiles:  profiles,
		validator: validator,
		cfg:       cfg,
	}
}

// ParseSearchQuery normalizes raw search parameters. Only a malformed date is
// an error; every other field degrades to "no constraint".
func ParseSearchQuery(mode, from, to, date, fareClass string) (model.SearchQuery, error) {
	q := model.SearchQuery{
		Mode:      sanitizer.NormalizeMode(mode),
		FromKey:   sanitizer.NormalizeCityKey(from),
		ToKey:     sanitizer.NormalizeCityKey(to),
		FareClass: strings.TrimSpace(fareClass),
	}
	if q.Mode == "" {
		q.Mode = model.ModeFlight
	}

	if date = strings.TrimSpace(date); date != "" {
		day, err := time.ParseInLocation(searchDateLayout, date, time.UTC)
		if err != nil {
			return model.SearchQuery{}, apperrors.InvalidInput(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
		}
		q.Date = &day
	}
	return q, nil
}

func (s *inventoryService) Create(ctx context.Context, ownerUID string, item *model.InventoryItem) error {
	s.sanitize(item)
	s.applyDefaults(item)
	item.OwnerUID = ownerUID

	if err := s.validator.Validate(item); err != nil {
		s.cfg.Log.Warn("Inventory validation failed",
			"number", item.Number,
			"owner_uid", ownerUID,
			"error", err,
		)
		return apperrors.Validation("Inventory validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.requireOperator(ctx, ownerUID, item.Mode); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.cfg.Log.Error("Failed to create inventory item",
			"number", item.Number,
			"owner_uid", ownerUID,
			"error", err,
		)
		return apperrors.Internal("Failed to create inventory item", err)
	}

	s.cfg.Log.Info("Inventory item created successfully",
		"id", item.ID,
		"mode", item.Mode,
		"number", item.Number,
		"fare_classes", len(item.FareClasses),
	)
	return nil
}

func (s *inventoryService) requireOperator(ctx context.Context, uid string, mode string) error {
	profile, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, profileserrors.ErrNotFound) {
			return apperrors.Forbidden("A business profile is required to publish inventory")
		}
		s.cfg.Log.Error("Failed to load uploader profile", "uid", uid, "error", err)
		return apperrors.Internal("Failed to verify business profile", err)
	}
	if !profile.Offers(mode) {
		return apperrors.Forbidden(fmt.Sprintf("Business profile does not offer %s services", mode))
	}
	return nil
}

func (s *inventoryService) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Inventory ID cannot be empty")
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "retrieve", id)
	}
	return item, nil
}

func (s *inventoryService) GetAll(ctx context.Context, mode string, limit int, offset int64) ([]*model.InventoryItem, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)
	mode = sanitizer.NormalizeMode(mode)

	var count int64
	var items []*model.InventoryItem
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, mode)
		if err != nil {
			s.cfg.Log.Error("Failed to count inventory", "mode", mode, "error", err)
			errCount = apperrors.Internal("Failed to count inventory", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		items, err = s.repo.FindAll(ctx, mode, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list inventory",
				"mode", mode,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve inventory", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return items, count, nil
}

// Search never fails: a store error is logged and yields no results.
func (s *inventoryService) Search(ctx context.Context, q model.SearchQuery) []*model.InventoryItem {
	items, err := s.repo.Search(ctx, q)
	if err != nil {
		s.cfg.Log.Error("Inventory search failed",
			"mode", q.Mode,
			"from", q.FromKey,
			"to", q.ToKey,
			"fare_class", q.FareClass,
			"error", err,
		)
		return []*model.InventoryItem{}
	}

	s.cfg.Log.Debug("Inventory search completed",
		"mode", q.Mode,
		"from", q.FromKey,
		"to", q.ToKey,
		"results_count", len(items),
	)
	return items
}

func (s *inventoryService) Quote(ctx context.Context, id string, fareClass string) (*model.FareQuote, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	quote := item.Quote(strings.TrimSpace(fareClass))
	return &quote, nil
}

func (s *inventoryService) UpdateStatus(ctx context.Context, ownerUID string, id string, update *model.InventoryStatusUpdate) error {
	update.Gate = sanitizer.TrimAndNormalize(update.Gate)
	if err := s.validator.ValidateStatus(update); err != nil {
		return apperrors.Validation("Status update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.ownedItem(ctx, ownerUID, id); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, update); err != nil {
		return s.translate(err, "update", id)
	}

	s.cfg.Log.Info("Inventory status updated", "id", id, "status", update.Status, "gate", update.Gate)
	return nil
}

func (s *inventoryService) Delete(ctx context.Context, ownerUID string, id string) error {
	if _, err := s.ownedItem(ctx, ownerUID, id); err != nil {
		return err
	}

	if err := s.repo.DeleteUnreserved(ctx, id); err != nil {
		if errors.Is(err, inventoryerrors.ErrHasReservations) {
			return apperrors.Conflict("Inventory item has reserved seats and cannot be deleted")
		}
		return s.translate(err, "delete", id)
	}

	s.cfg.Log.Info("Inventory item deleted successfully", "id", id)
	return nil
}

func (s *inventoryService) ownedItem(ctx context.Context, ownerUID, id string) (*model.InventoryItem, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.OwnerUID != ownerUID {
		return nil, apperrors.Forbidden("Only the owner can modify this inventory item")
	}
	return item, nil
}

func (s *inventoryService) translate(err error, op string, id string) error {
	if errors.Is(err, inventoryerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Inventory item", id)
	}
	if errors.Is(err, inventoryerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid inventory ID format")
	}
	s.cfg.Log.Error("Inventory store operation failed", "operation", op, "id", id, "error", err)
	return apperrors.Internal(fmt.Sprintf("Failed to %s inventory item", op), err)
}

func (s *inventoryService) sanitize(item *model.InventoryItem) {
	item.Mode = sanitizer.NormalizeMode(item.Mode)
	item.Number = sanitizer.NormalizeCode(item.Number)
	item.Operator = sanitizer.NormalizeName(item.Operator)
	item.Vehicle = sanitizer.TrimAndNormalize(item.Vehicle)
	item.Gate = sanitizer.TrimAndNormalize(item.Gate)
	item.ContactInfo = sanitizer.TrimAndNormalize(item.ContactInfo)
	item.Currency = strings.ToUpper(strings.TrimSpace(item.Currency))

	for _, ep := range []*model.Endpoint{&item.Source, &item.Destination} {
		ep.Code = sanitizer.NormalizeCode(ep.Code)
		ep.Name = sanitizer.NormalizeName(ep.Name)
		ep.City = sanitizer.NormalizeCity(ep.City)
		ep.CityKey = sanitizer.NormalizeCityKey(ep.City)
	}

	for i := range item.FareClasses {
		fc := &item.FareClasses[i]
		fc.ClassType = sanitizer.TrimAndNormalize(fc.ClassType)
		fc.BaggageAllowance = sanitizer.TrimAndNormalize(fc.BaggageAllowance)
		fc.CancellationPolicy = strings.TrimSpace(fc.CancellationPolicy)
		fc.Amenities = sanitizer.NormalizeAmenities(fc.Amenities)
		for j := range fc.Seats {
			seat := &fc.Seats[j]
			seat.SeatNumber = sanitizer.NormalizeSeatNumber(seat.SeatNumber)
			seat.Position = strings.ToLower(strings.TrimSpace(seat.Position))
		}
	}
}

// applyDefaults prepares a fresh upload: every seat starts available and
// unattributed whatever the client sent.
func (s *inventoryService) applyDefaults(item *model.InventoryItem) {
	item.ID = ""
	if item.Status == "" {
		item.Status = model.StatusOnTime
	}
	if item.Currency == "" {
		item.Currency = s.cfg.DefaultCurrency
	}
	if item.DurationMinutes == 0 && item.ArrivalTime.After(item.DepartureTime) {
		item.DurationMinutes = int(item.ArrivalTime.Sub(item.DepartureTime).Minutes())
	}
	item.DepartureTime = item.DepartureTime.UTC()
	item.ArrivalTime = item.ArrivalTime.UTC()

	for i := range item.FareClasses {
		for j := range item.FareClasses[i].Seats {
			seat := &item.FareClasses[i].Seats[j]
			seat.Status = model.SeatAvailable
			seat.Occupant = nil
			seat.BookingRef = ""
		}
	}
}
