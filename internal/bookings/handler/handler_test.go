package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "travelpartner/pkg/errors"
	"travelpartner/pkg/identity"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
	"travelpartner/pkg/payment"
)

type mockCheckoutService struct {
	beginFunc   func(ctx context.Context, caller *identity.Identity, req *model.CheckoutRequest) (*model.PaymentIntent, error)
	confirmFunc func(ctx context.Context, ownerUID, id string, c *model.PaymentConfirmation) (*model.Booking, error)
	webhookFunc func(ctx context.Context, event *payment.WebhookEvent) error
}

func (m *mockCheckoutService) Begin(ctx context.Context, caller *identity.Identity, req *model.CheckoutRequest) (*model.PaymentIntent, error) {
	return m.beginFunc(ctx, caller, req)
}

func (m *mockCheckoutService) Get(ctx context.Context, ownerUID string, id string) (*model.Checkout, error) {
	return &model.Checkout{ID: id, OwnerUID: ownerUID, Status: model.CheckoutPending}, nil
}

func (m *mockCheckoutService) Confirm(ctx context.Context, ownerUID string, id string, c *model.PaymentConfirmation) (*model.Booking, error) {
	return m.confirmFunc(ctx, ownerUID, id, c)
}

func (m *mockCheckoutService) Fail(ctx context.Context, ownerUID string, id string, f *model.PaymentFailure) (*model.Checkout, error) {
	return &model.Checkout{ID: id, Status: model.CheckoutPaymentFailed}, nil
}

func (m *mockCheckoutService) HandleWebhook(ctx context.Context, event *payment.WebhookEvent) error {
	return m.webhookFunc(ctx, event)
}

func (m *mockCheckoutService) RetryCommit(ctx context.Context, checkout *model.Checkout) (*model.Booking, error) {
	return nil, nil
}

func (m *mockCheckoutService) Expire(ctx context.Context, checkout *model.Checkout) error {
	return nil
}

type mockBookingService struct {
	listFunc          func(ctx context.Context, uid string, limit int, offset int64) ([]*model.Booking, int64, error)
	cancelFunc        func(ctx context.Context, uid, id string) error
	ticketByTokenFunc func(ctx context.Context, token string) ([]byte, string, error)
}

func (m *mockBookingService) ListMine(ctx context.Context, uid string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return m.listFunc(ctx, uid, limit, offset)
}

func (m *mockBookingService) Get(ctx context.Context, uid string, id string) (*model.Booking, error) {
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, uid string, id string) error {
	return m.cancelFunc(ctx, uid, id)
}

func (m *mockBookingService) Ticket(ctx context.Context, uid string, id string) ([]byte, string, error) {
	return []byte("%PDF-1.3"), "ETICKET_AI202_ck-1.pdf", nil
}

func (m *mockBookingService) TicketByToken(ctx context.Context, token string) ([]byte, string, error) {
	return m.ticketByTokenFunc(ctx, token)
}

func newRouter(checkouts *mockCheckoutService, bookings *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewCheckoutHandler(checkouts, logger.Discard()).RegisterRoutes(router)
	NewBookingHandler(bookings, logger.Discard()).RegisterRoutes(router)
	return router
}

func asUser(req *http.Request, uid string) *http.Request {
	return req.WithContext(identity.WithIdentity(req.Context(), &identity.Identity{UID: uid, Email: uid + "@example.com"}))
}

func TestCheckoutHandler_Begin(t *testing.T) {
	var gotCaller *identity.Identity
	var gotReq *model.CheckoutRequest
	router := newRouter(&mockCheckoutService{
		beginFunc: func(ctx context.Context, caller *identity.Identity, req *model.CheckoutRequest) (*model.PaymentIntent, error) {
			gotCaller, gotReq = caller, req
			return &model.PaymentIntent{CheckoutID: "ck-1", OrderID: "order_1", AmountMinor: 450000}, nil
		},
	}, &mockBookingService{})

	body := `{"selection_id":"0b8f5c6e-8a41-4b55-9d53-6a0f1c2d3e4f","passengers":[{"name":"Asha","age":30,"gender":"female"}],"purchaser":{"name":"Asha","email":"a@example.com"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "u1"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if gotCaller.UID != "u1" || len(gotReq.Passengers) != 1 {
		t.Errorf("unexpected call: caller=%+v req=%+v", gotCaller, gotReq)
	}
	if !strings.Contains(rec.Body.String(), `"order_1"`) {
		t.Errorf("order id missing from body: %s", rec.Body.String())
	}
}

func TestCheckoutHandler_RequiresIdentity(t *testing.T) {
	router := newRouter(&mockCheckoutService{}, &mockBookingService{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/checkouts"},
		{http.MethodGet, "/api/v1/checkouts/id/ck-1"},
		{http.MethodPost, "/api/v1/checkouts/id/ck-1/confirm"},
		{http.MethodGet, "/api/v1/bookings"},
		{http.MethodDelete, "/api/v1/bookings/id/b1"},
		{http.MethodGet, "/api/v1/bookings/id/b1/ticket"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}")))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestCheckoutHandler_Confirm(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		wantStatus int
	}{
		{name: "booked", body: `{"order_id":"order_1","payment_id":"pay_1","signature":"ab12"}`, wantStatus: http.StatusCreated},
		{name: "bad signature", err: apperrors.PaymentRequired("Payment could not be verified"), body: `{"order_id":"order_1","payment_id":"pay_1","signature":"ab12"}`, wantStatus: http.StatusPaymentRequired},
		{name: "seat conflict", err: apperrors.SeatConflict([]string{"1A"}), body: `{"order_id":"order_1","payment_id":"pay_1","signature":"ab12"}`, wantStatus: http.StatusConflict},
		{name: "unknown field", body: `{"order_id":"order_1","extra":true}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&mockCheckoutService{
				confirmFunc: func(ctx context.Context, ownerUID, id string, c *model.PaymentConfirmation) (*model.Booking, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.Booking{ID: "b1", ClientBookingID: id, PaymentID: c.PaymentID}, nil
				},
			}, &mockBookingService{})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts/id/ck-1/confirm", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, asUser(req, "u1"))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d body=%s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestCheckoutHandler_Webhook(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantEvent  string
	}{
		{
			name:       "captured",
			body:       `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`,
			wantStatus: http.StatusOK,
			wantEvent:  payment.EventPaymentCaptured,
		},
		{
			name:       "malformed body",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "store failure asks for retry",
			body:       `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`,
			err:        apperrors.Internal("Failed to load checkout", errors.New("timeout")),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotEvent string
			router := newRouter(&mockCheckoutService{
				webhookFunc: func(ctx context.Context, event *payment.WebhookEvent) error {
					gotEvent = event.Event
					if event.Payment().OrderID != "order_1" {
						t.Errorf("order id = %q", event.Payment().OrderID)
					}
					return tt.err
				},
			}, &mockBookingService{})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d body=%s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if gotEvent != tt.wantEvent {
				t.Errorf("event = %q, want %q", gotEvent, tt.wantEvent)
			}
		})
	}
}

func TestBookingHandler_ListMine(t *testing.T) {
	var gotUID string
	var gotLimit int
	router := newRouter(&mockCheckoutService{}, &mockBookingService{
		listFunc: func(ctx context.Context, uid string, limit int, offset int64) ([]*model.Booking, int64, error) {
			gotUID, gotLimit = uid, limit
			return []*model.Booking{{ID: "b1"}}, 1, nil
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/bookings?limit=5", nil), "u1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if gotUID != "u1" || gotLimit != 5 {
		t.Errorf("uid=%q limit=%d", gotUID, gotLimit)
	}
}

func TestBookingHandler_Cancel(t *testing.T) {
	var gotID string
	router := newRouter(&mockCheckoutService{}, &mockBookingService{
		cancelFunc: func(ctx context.Context, uid, id string) error {
			gotID = id
			return nil
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/id/b1", nil), "u1"))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotID != "b1" {
		t.Errorf("id = %q", gotID)
	}
}

func TestBookingHandler_Tickets(t *testing.T) {
	router := newRouter(&mockCheckoutService{}, &mockBookingService{
		ticketByTokenFunc: func(ctx context.Context, token string) ([]byte, string, error) {
			if token != "good" {
				return nil, "", apperrors.NotFound("Ticket")
			}
			return []byte("%PDF-1.3"), "ETICKET_AI202_ck-1.pdf", nil
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/b1/ticket", nil), "u1"))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("status = %d content-type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "ETICKET_AI202_ck-1.pdf") {
		t.Errorf("content-disposition = %q", rec.Header().Get("Content-Disposition"))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/good", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("shared ticket status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/bad", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("bad token status = %d", rec.Code)
	}
}
