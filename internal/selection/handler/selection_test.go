package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "travelpartner/pkg/errors"
	"travelpartner/pkg/identity"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
)

type mockSelectionService struct {
	toggleFunc func(ctx context.Context, ownerUID, id, seat string) (*model.Selection, error)
	switchFunc func(ctx context.Context, ownerUID, id string, req *model.FareClassSwitch) (*model.Selection, error)
}

func (m *mockSelectionService) Start(ctx context.Context, ownerUID string, req *model.SelectionRequest) (*model.Selection, error) {
	return &model.Selection{ID: "sel-1", OwnerUID: ownerUID, InventoryID: req.InventoryID, Seats: []string{}}, nil
}

func (m *mockSelectionService) Get(ctx context.Context, ownerUID string, id string) (*model.Selection, error) {
	return &model.Selection{ID: id, OwnerUID: ownerUID, Seats: []string{}}, nil
}

func (m *mockSelectionService) ToggleSeat(ctx context.Context, ownerUID string, id string, seat string) (*model.Selection, error) {
	return m.toggleFunc(ctx, ownerUID, id, seat)
}

func (m *mockSelectionService) SwitchFareClass(ctx context.Context, ownerUID string, id string, req *model.FareClassSwitch) (*model.Selection, error) {
	return m.switchFunc(ctx, ownerUID, id, req)
}

func (m *mockSelectionService) Delete(ctx context.Context, ownerUID string, id string) error {
	return nil
}

func newRouter(svc *mockSelectionService) *httprouter.Router {
	router := httprouter.New()
	NewSelectionHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func asUser(req *http.Request, uid string) *http.Request {
	return req.WithContext(identity.WithIdentity(req.Context(), &identity.Identity{UID: uid}))
}

func TestToggleSeat_PassesRouteParams(t *testing.T) {
	var gotID, gotSeat, gotOwner string
	router := newRouter(&mockSelectionService{
		toggleFunc: func(ctx context.Context, ownerUID, id, seat string) (*model.Selection, error) {
			gotOwner, gotID, gotSeat = ownerUID, id, seat
			return &model.Selection{ID: id, Seats: []string{seat}}, nil
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPost, "/api/v1/selections/id/sel-1/seats/12C", nil), "u1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if gotOwner != "u1" || gotID != "sel-1" || gotSeat != "12C" {
		t.Errorf("got owner=%q id=%q seat=%q", gotOwner, gotID, gotSeat)
	}
}

func TestToggleSeat_ConflictListsSeats(t *testing.T) {
	router := newRouter(&mockSelectionService{
		toggleFunc: func(ctx context.Context, ownerUID, id, seat string) (*model.Selection, error) {
			return nil, apperrors.SeatConflict([]string{seat})
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPost, "/api/v1/selections/id/sel-1/seats/3A", nil), "u1"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"3A"`) {
		t.Errorf("conflicting seat missing from body: %s", rec.Body.String())
	}
}

func TestRoutes_RequireIdentity(t *testing.T) {
	router := newRouter(&mockSelectionService{})

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/v1/selections", `{"inventory_id":"65f000000000000000000001"}`},
		{http.MethodGet, "/api/v1/selections/id/sel-1", ""},
		{http.MethodPost, "/api/v1/selections/id/sel-1/seats/1A", ""},
		{http.MethodPut, "/api/v1/selections/id/sel-1/fare-class", `{"fare_class":"Business"}`},
		{http.MethodDelete, "/api/v1/selections/id/sel-1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestSwitchFareClass_DecodesBody(t *testing.T) {
	var got string
	router := newRouter(&mockSelectionService{
		switchFunc: func(ctx context.Context, ownerUID, id string, req *model.FareClassSwitch) (*model.Selection, error) {
			got = req.FareClass
			return &model.Selection{ID: id, FareClass: req.FareClass, Seats: []string{}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/selections/id/sel-1/fare-class", strings.NewReader(`{"fare_class":"Business"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "u1"))

	if rec.Code != http.StatusOK || got != "Business" {
		t.Errorf("status = %d fare_class = %q", rec.Code, got)
	}
}

func TestStart_Created(t *testing.T) {
	router := newRouter(&mockSelectionService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/selections", strings.NewReader(`{"inventory_id":"65f000000000000000000001"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "u1"))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}
