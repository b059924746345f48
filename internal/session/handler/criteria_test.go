package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
)

type mockCriteriaService struct {
	current model.SearchCriteria
	updates chan model.SearchCriteria
	gotID   string
}

func (m *mockCriteriaService) Get(ctx context.Context, sessionID string) (*model.SearchCriteria, error) {
	m.gotID = sessionID
	c := m.current
	return &c, nil
}

func (m *mockCriteriaService) Update(ctx context.Context, sessionID string, next *model.SearchCriteria) (*model.SearchCriteria, error) {
	m.gotID = sessionID
	merged := m.current.Apply(*next)
	return &merged, nil
}

func (m *mockCriteriaService) Watch(ctx context.Context, sessionID string) (<-chan model.SearchCriteria, error) {
	return m.updates, nil
}

func newRouter(svc *mockCriteriaService) *httprouter.Router {
	router := httprouter.New()
	NewCriteriaHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestUpdate_UsesSessionHeader(t *testing.T) {
	svc := &mockCriteriaService{current: model.SearchCriteria{Mode: model.ModeFlight, From: "Delhi"}}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/session/criteria", strings.NewReader(`{"to":"Goa"}`))
	req.Header.Set(SessionHeader, "sess-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotID != "sess-1" {
		t.Errorf("session id = %q", svc.gotID)
	}
	if !strings.Contains(rec.Body.String(), `"from":"Delhi"`) || !strings.Contains(rec.Body.String(), `"to":"Goa"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestWatch_StreamsCurrentThenChanges(t *testing.T) {
	updates := make(chan model.SearchCriteria, 1)
	updates <- model.SearchCriteria{Mode: model.ModeBus, From: "Pune"}
	close(updates)

	svc := &mockCriteriaService{
		current: model.SearchCriteria{Mode: model.ModeFlight},
		updates: updates,
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/criteria/watch?session_id=sess-2", nil)
	req.Header.Set("Accept", "text/event-stream")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if svc.gotID != "sess-2" {
		t.Errorf("session id = %q, want query fallback", svc.gotID)
	}

	body := rec.Body.String()
	if n := strings.Count(body, "event: criteria\n"); n != 2 {
		t.Fatalf("expected 2 events, got %d: %s", n, body)
	}
	first := strings.Index(body, `"mode":"flight"`)
	second := strings.Index(body, `"mode":"bus"`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("events out of order: %s", body)
	}
}
