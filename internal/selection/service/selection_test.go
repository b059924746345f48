package service

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	inventoryerrors "travelpartner/internal/inventory/errors"
	selectionerrors "travelpartner/internal/selection/errors"
	"travelpartner/pkg/config"
	apperrors "travelpartner/pkg/errors"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"

	"github.com/go-playground/validator/v10"
)

const itemID = "65f000000000000000000001"

type memorySelectionRepository struct {
	mu      sync.Mutex
	items   map[string]*model.Selection
	getErr  error
	saveErr error
}

func newMemoryRepo() *memorySelectionRepository {
	return &memorySelectionRepository{items: map[string]*model.Selection{}}
}

func (m *memorySelectionRepository) Get(ctx context.Context, id string) (*model.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.items[id]
	if !ok {
		return nil, selectionerrors.ErrNotFound
	}
	cp := *s
	cp.Seats = slices.Clone(s.Seats)
	return &cp, nil
}

func (m *memorySelectionRepository) Save(ctx context.Context, selection *model.Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *selection
	cp.Seats = slices.Clone(selection.Seats)
	m.items[selection.ID] = &cp
	return nil
}

// Update holds the lock across fn, which is what WATCH/EXEC guarantees for
// the Redis store.
func (m *memorySelectionRepository) Update(ctx context.Context, id string, fn func(*model.Selection) error) (*model.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	stored, ok := m.items[id]
	if !ok {
		return nil, selectionerrors.ErrNotFound
	}
	cp := *stored
	cp.Seats = slices.Clone(stored.Seats)
	if err := fn(&cp); err != nil {
		return nil, err
	}
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	saved := cp
	saved.Seats = slices.Clone(cp.Seats)
	m.items[id] = &saved
	return &cp, nil
}

func (m *memorySelectionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

type mockItemReader struct {
	findByIDFunc func(ctx context.Context, id string) (*model.InventoryItem, error)
}

func (m *mockItemReader) FindByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	return m.findByIDFunc(ctx, id)
}

type mockHoldChecker struct {
	heldByOthersFunc func(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string) ([]string, error)
}

func (m *mockHoldChecker) HeldByOthers(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string) ([]string, error) {
	if m.heldByOthersFunc == nil {
		return nil, nil
	}
	return m.heldByOthersFunc(ctx, inventoryID, fareClass, seats, holdID)
}

func testItem() *model.InventoryItem {
	return &model.InventoryItem{
		ID:       itemID,
		Mode:     model.ModeFlight,
		Number:   "AI202",
		Currency: "INR",
		FareClasses: []model.FareClass{
			{
				ClassType:   "Economy",
				TicketPrice: 4500,
				Seats: []model.Seat{
					{SeatNumber: "1A", Status: model.SeatAvailable},
					{SeatNumber: "1B", Status: model.SeatAvailable},
					{SeatNumber: "1C", Status: model.SeatReserved, BookingRef: "ck-old"},
				},
			},
			{
				ClassType:   "Business",
				TicketPrice: 12000,
				Seats:       []model.Seat{{SeatNumber: "2A", Status: model.SeatAvailable}},
			},
		},
	}
}

func newTestService(repo *memorySelectionRepository, holds *mockHoldChecker) *selectionService {
	return &selectionService{
		repo: repo,
		items: &mockItemReader{findByIDFunc: func(ctx context.Context, id string) (*model.InventoryItem, error) {
			if id != itemID {
				return nil, inventoryerrors.ErrNotFound
			}
			return testItem(), nil
		}},
		holds:    holds,
		validate: validator.New(),
		cfg: &config.Config{
			Log:              logger.Discard(),
			DefaultFareClass: "Economy",
		},
		now: func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func statusOf(err error) int {
	return apperrors.AsAppError(err).StatusCode()
}

func TestStart_DefaultsToEconomy(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &mockHoldChecker{})

	sel, err := svc.Start(context.Background(), "u1", &model.SelectionRequest{InventoryID: itemID})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sel.FareClass != "Economy" || sel.UnitPrice != 4500 || sel.Currency != "INR" {
		t.Errorf("unexpected selection: %+v", sel)
	}
	if sel.OwnerUID != "u1" || len(sel.Seats) != 0 {
		t.Errorf("unexpected owner or seats: %+v", sel)
	}
}

func TestStart_UnofferedClassHasZeroPrice(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &mockHoldChecker{})

	sel, err := svc.Start(context.Background(), "u1", &model.SelectionRequest{InventoryID: itemID, FareClass: "First"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sel.UnitPrice != 0 {
		t.Errorf("expected zero price for unoffered class, got %d", sel.UnitPrice)
	}
}

func TestStart_Errors(t *testing.T) {
	tests := []struct {
		name       string
		req        model.SelectionRequest
		wantStatus int
	}{
		{"missing inventory id", model.SelectionRequest{}, http.StatusUnprocessableEntity},
		{"malformed inventory id", model.SelectionRequest{InventoryID: "nope"}, http.StatusUnprocessableEntity},
		{"unknown item", model.SelectionRequest{InventoryID: "65f000000000000000000009"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMemoryRepo(), &mockHoldChecker{})
			_, err := svc.Start(context.Background(), "u1", &tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := statusOf(err); got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func startSelection(t *testing.T, svc *selectionService) *model.Selection {
	t.Helper()
	sel, err := svc.Start(context.Background(), "u1", &model.SelectionRequest{InventoryID: itemID})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return sel
}

func TestToggleSeat_EvenTogglesRestoreSelection(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &mockHoldChecker{})
	sel := startSelection(t, svc)
	ctx := context.Background()

	if _, err := svc.ToggleSeat(ctx, "u1", sel.ID, "1a"); err != nil {
		t.Fatalf("toggle 1A: %v", err)
	}
	before, _ := svc.Get(ctx, "u1", sel.ID)

	for i := 0; i < 4; i++ {
		if _, err := svc.ToggleSeat(ctx, "u1", sel.ID, "1B"); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}

	after, _ := svc.Get(ctx, "u1", sel.ID)
	if !slices.Equal(before.Seats, after.Seats) {
		t.Errorf("seats = %v, want %v", after.Seats, before.Seats)
	}
	if !slices.Equal(after.Seats, []string{"1A"}) {
		t.Errorf("seat number not normalized: %v", after.Seats)
	}
}

func TestToggleSeat_ConcurrentTogglesKeepBothSeats(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &mockHoldChecker{})
	sel := startSelection(t, svc)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, seat := range []string{"1A", "1B"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.ToggleSeat(ctx, "u1", sel.ID, seat)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}
	got, _ := svc.Get(ctx, "u1", sel.ID)
	if !got.Has("1A") || !got.Has("1B") || len(got.Seats) != 2 {
		t.Errorf("seats = %v, want both 1A and 1B", got.Seats)
	}
}

func TestToggleSeat_StoreErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"contended", selectionerrors.ErrContended, http.StatusConflict},
		{"store down", errors.New("redis down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepo()
			svc := newTestService(repo, &mockHoldChecker{})
			sel := startSelection(t, svc)
			repo.saveErr = tt.err

			_, err := svc.ToggleSeat(context.Background(), "u1", sel.ID, "1A")
			if got := statusOf(err); got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestToggleSeat_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		seat       string
		held       []string
		holdErr    error
		wantStatus int
	}{
		{"reserved seat", "1C", nil, nil, http.StatusConflict},
		{"unknown seat", "9Z", nil, nil, http.StatusNotFound},
		{"held by another checkout", "1A", []string{"1A"}, nil, http.StatusConflict},
		{"hold store down", "1A", nil, errors.New("redis down"), http.StatusServiceUnavailable},
		{"empty seat", "  ", nil, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holds := &mockHoldChecker{heldByOthersFunc: func(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string) ([]string, error) {
				return tt.held, tt.holdErr
			}}
			svc := newTestService(newMemoryRepo(), holds)
			sel := startSelection(t, svc)

			_, err := svc.ToggleSeat(context.Background(), "u1", sel.ID, tt.seat)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := statusOf(err); got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}

			stored, _ := svc.Get(context.Background(), "u1", sel.ID)
			if len(stored.Seats) != 0 {
				t.Errorf("selection mutated on rejection: %v", stored.Seats)
			}
		})
	}
}

func TestToggleSeat_HoldCheckUsesSelectionID(t *testing.T) {
	var gotHoldID string
	holds := &mockHoldChecker{heldByOthersFunc: func(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string) ([]string, error) {
		gotHoldID = holdID
		return nil, nil
	}}
	svc := newTestService(newMemoryRepo(), holds)
	sel := startSelection(t, svc)

	if _, err := svc.ToggleSeat(context.Background(), "u1", sel.ID, "1A"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if gotHoldID != sel.ID {
		t.Errorf("hold id = %q, want %q", gotHoldID, sel.ID)
	}
}

func TestToggleSeat_OutIsAlwaysAllowed(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &mockHoldChecker{})
	sel := startSelection(t, svc)

	// 1C became reserved after it was selected.
	stored := repo.items[sel.ID]
	stored.Seats = []string{"1C"}

	got, err := svc.ToggleSeat(context.Background(), "u1", sel.ID, "1C")
	if err != nil {
		t.Fatalf("toggle out: %v", err)
	}
	if len(got.Seats) != 0 {
		t.Errorf("seat not removed: %v", got.Seats)
	}
}

func TestToggleSeat_OtherOwner(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &mockHoldChecker{})
	sel := startSelection(t, svc)

	_, err := svc.ToggleSeat(context.Background(), "intruder", sel.ID, "1A")
	if got := statusOf(err); got != http.StatusNotFound {
		t.Errorf("status = %d, want 404", got)
	}
}

func TestSwitchFareClass_ClearsSeatsAndReprices(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &mockHoldChecker{})
	sel := startSelection(t, svc)
	ctx := context.Background()

	if _, err := svc.ToggleSeat(ctx, "u1", sel.ID, "1A"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	got, err := svc.SwitchFareClass(ctx, "u1", sel.ID, &model.FareClassSwitch{FareClass: " Business "})
	if err != nil {
		t.Fatalf("SwitchFareClass: %v", err)
	}
	if got.FareClass != "Business" || got.UnitPrice != 12000 || len(got.Seats) != 0 {
		t.Errorf("unexpected selection after switch: %+v", got)
	}
	if got.TotalMajor() != 0 {
		t.Errorf("total = %d, want 0", got.TotalMajor())
	}
}

func TestSwitchFareClass_Validation(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &mockHoldChecker{})
	sel := startSelection(t, svc)

	_, err := svc.SwitchFareClass(context.Background(), "u1", sel.ID, &model.FareClassSwitch{})
	if got := statusOf(err); got != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", got)
	}
}

func TestDelete(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &mockHoldChecker{})
	sel := startSelection(t, svc)

	if err := svc.Delete(context.Background(), "u1", sel.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.items[sel.ID]; ok {
		t.Error("selection still stored")
	}

	if err := svc.Delete(context.Background(), "u1", sel.ID); statusOf(err) != http.StatusNotFound {
		t.Errorf("second delete should be 404, got %v", err)
	}
}

func TestGet_StoreFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.getErr = errors.New("timeout")
	svc := newTestService(repo, &mockHoldChecker{})

	_, err := svc.Get(context.Background(), "u1", "sel")
	if got := statusOf(err); got != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", got)
	}
}
