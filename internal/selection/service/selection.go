package service

import (
	"context"
	"errors"
	"strings"
	"time"

	inventoryerrors "travelpartner/internal/inventory/errors"
	selectionerrors "travelpartner/internal/selection/errors"
	"travelpartner/internal/selection/repository"
	"travelpartner/pkg/config"
	apperrors "travelpartner/pkg/errors"
	"travelpartner/pkg/model"
	"travelpartner/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type SelectionService interface {
	Start(ctx context.Context, ownerUID string, req *model.SelectionRequest) (*model.Selection, error)
	Get(ctx context.Context, ownerUID string, id string) (*model.Selection, error)
	ToggleSeat(ctx context.Context, ownerUID string, id string, seat string) (*model.Selection, error)
	SwitchFareClass(ctx context.Context, ownerUID string, id string, req *model.FareClassSwitch) (*model.Selection, error)
	Delete(ctx context.Context, ownerUID string, id string) error
}

type ItemReader interface {
	FindByID(ctx context.Context, id string) (*model.InventoryItem, error)
}

// HoldChecker reports seats that a checkout started from another selection
// is paying for right now.
type HoldChecker interface {
	HeldByOthers(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string) ([]string, error)
}

type selectionService struct {
	repo     repository.SelectionRepository
	items    ItemReader
	holds    HoldChecker
	validate *validator.Validate
	cfg      *config.Config
	now      func() time.Time
}

func NewSelectionService(
	repo repository.SelectionRepository,
	items ItemReader,
	holds HoldChecker,
	cfg *config.Config,
) SelectionService {
	return &selectionService{
		repo:     repo,
		items:    items,
		holds:    holds,
		validate: validator.New(),
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *selectionService) Start(ctx context.Context, ownerUID string, req *model.SelectionRequest) (*model.Selection, error) {
	req.InventoryID = strings.TrimSpace(req.InventoryID)
	req.FareClass = sanitizer.TrimAndNormalize(req.FareClass)
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation("Selection request validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	label := req.FareClass
	if label == "" {
		label = s.cfg.DefaultFareClass
	}

	item, err := s.item(ctx, req.InventoryID)
	if err != nil {
		return nil, err
	}
	_, price := item.ResolveFare(label)

	selection := &model.Selection{
		ID:          uuid.New().String(),
		OwnerUID:    ownerUID,
		InventoryID: item.ID,
		FareClass:   label,
		UnitPrice:   price,
		Currency:    item.Currency,
		Seats:       []string{},
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.save(ctx, selection); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Selection started",
		"selection_id", selection.ID,
		"inventory_id", selection.InventoryID,
		"fare_class", label,
		"unit_price", price,
	)
	return selection, nil
}

func (s *selectionService) Get(ctx context.Context, ownerUID string, id string) (*model.Selection, error) {
	return s.owned(ctx, ownerUID, id)
}

func (s *selectionService) ToggleSeat(ctx context.Context, ownerUID string, id string, seat string) (*model.Selection, error) {
	seat = sanitizer.NormalizeSeatNumber(seat)
	if seat == "" {
		return nil, apperrors.InvalidInput("Seat number cannot be empty")
	}

	return s.update(ctx, ownerUID, id, func(selection *model.Selection) error {
		if !selection.Has(seat) {
			if err := s.checkSelectable(ctx, selection, seat); err != nil {
				return err
			}
		}
		selection.Toggle(seat)
		selection.UpdatedAt = s.now().UTC()
		return nil
	})
}

// checkSelectable rejects seats that do not exist in the selection's class,
// are already reserved, or are held by a checkout from another selection.
func (s *selectionService) checkSelectable(ctx context.Context, selection *model.Selection, seat string) error {
	item, err := s.item(ctx, selection.InventoryID)
	if err != nil {
		return err
	}

	fc := item.FareClass(selection.FareClass)
	if fc == nil || fc.FindSeat(seat) == nil {
		return apperrors.NotFoundWithID("Seat", seat)
	}
	if fc.FindSeat(seat).IsReserved() {
		return apperrors.SeatConflict([]string{seat})
	}

	held, err := s.holds.HeldByOthers(ctx, selection.InventoryID, selection.FareClass, []string{seat}, selection.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to read seat holds", "selection_id", selection.ID, "seat", seat, "error", err)
		return apperrors.Unavailable("Seat hold store")
	}
	if len(held) > 0 {
		return apperrors.SeatConflict(held)
	}
	return nil
}

func (s *selectionService) SwitchFareClass(ctx context.Context, ownerUID string, id string, req *model.FareClassSwitch) (*model.Selection, error) {
	req.FareClass = sanitizer.TrimAndNormalize(req.FareClass)
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation("Fare class validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	var price int64
	selection, err := s.update(ctx, ownerUID, id, func(selection *model.Selection) error {
		item, err := s.item(ctx, selection.InventoryID)
		if err != nil {
			return err
		}
		_, price = item.ResolveFare(req.FareClass)
		selection.SwitchFareClass(req.FareClass, price)
		selection.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Selection fare class switched",
		"selection_id", selection.ID,
		"fare_class", req.FareClass,
		"unit_price", price,
	)
	return selection, nil
}

func (s *selectionService) Delete(ctx context.Context, ownerUID string, id string) error {
	if _, err := s.owned(ctx, ownerUID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.cfg.Log.Error("Failed to delete selection", "selection_id", id, "error", err)
		return apperrors.Internal("Failed to delete selection", err)
	}
	return nil
}

func (s *selectionService) owned(ctx context.Context, ownerUID string, id string) (*model.Selection, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Selection ID cannot be empty")
	}

	selection, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, selectionerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Selection", id)
		}
		s.cfg.Log.Error("Failed to load selection", "selection_id", id, "error", err)
		return nil, apperrors.Internal("Failed to load selection", err)
	}
	if selection.OwnerUID != ownerUID {
		return nil, apperrors.NotFoundWithID("Selection", id)
	}
	return selection, nil
}

// update runs fn on the caller's selection and stores the result atomically.
// Errors from fn come back unchanged.
func (s *selectionService) update(ctx context.Context, ownerUID string, id string, fn func(*model.Selection) error) (*model.Selection, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Selection ID cannot be empty")
	}

	selection, err := s.repo.Update(ctx, id, func(selection *model.Selection) error {
		if selection.OwnerUID != ownerUID {
			return selectionerrors.ErrNotFound
		}
		return fn(selection)
	})
	if err == nil {
		return selection, nil
	}

	switch {
	case errors.Is(err, selectionerrors.ErrNotFound):
		return nil, apperrors.NotFoundWithID("Selection", id)
	case errors.Is(err, selectionerrors.ErrContended):
		return nil, apperrors.Conflict("Selection is being changed elsewhere, try again")
	}
	if apperrors.IsAppError(err) {
		return nil, err
	}
	s.cfg.Log.Error("Failed to update selection", "selection_id", id, "error", err)
	return nil, apperrors.Internal("Failed to save selection", err)
}

func (s *selectionService) item(ctx context.Context, id string) (*model.InventoryItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, inventoryerrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Inventory item", id)
		case errors.Is(err, inventoryerrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid inventory ID format")
		}
		s.cfg.Log.Error("Failed to load inventory item", "inventory_id", id, "error", err)
		return nil, apperrors.Internal("Failed to load inventory item", err)
	}
	return item, nil
}

func (s *selectionService) save(ctx context.Context, selection *model.Selection) error {
	if err := s.repo.Save(ctx, selection); err != nil {
		s.cfg.Log.Error("Failed to save selection", "selection_id", selection.ID, "error", err)
		return apperrors.Internal("Failed to save selection", err)
	}
	return nil
}
