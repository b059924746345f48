package handler

import (
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"travelpartner/internal/bookings/service"
	apperrors "travelpartner/pkg/errors"
	httputil "travelpartner/pkg/http"
	"travelpartner/pkg/identity"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
	"travelpartner/pkg/payment"
)

const WebhookPath = "/api/v1/payments/webhook"

type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

func NewCheckoutHandler(service service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		log:     log,
	}
}

func (h *CheckoutHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Begin", err)
		return
	}

	var req model.CheckoutRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Begin", err)
		return
	}

	intent, err := h.service.Begin(r.Context(), caller, &req)
	if err != nil {
		h.writeError(w, "Begin", err)
		return
	}

	if err := httputil.WriteCreated(w, intent); err != nil {
		h.log.Error("failed to write created response", "handler", "Begin", "operation", "WriteCreated", "error", err)
	}
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	checkout, err := h.service.Get(r.Context(), caller.UID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httputil.WriteSuccess(w, checkout); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	var req model.PaymentConfirmation
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	booking, err := h.service.Confirm(r.Context(), caller.UID, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Confirm", "operation", "WriteCreated", "error", err)
	}
}

func (h *CheckoutHandler) Fail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Fail", err)
		return
	}

	var req model.PaymentFailure
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Fail", err)
		return
	}

	checkout, err := h.service.Fail(r.Context(), caller.UID, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Fail", err)
		return
	}

	if err := httputil.WriteSuccess(w, checkout); err != nil {
		h.log.Error("failed to write success response", "handler", "Fail", "operation", "WriteSuccess", "error", err)
	}
}

// Webhook receives gateway events. The body signature is checked by
// middleware before this runs.
func (h *CheckoutHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, "Webhook", apperrors.InvalidInput("Failed to read request body"))
		return
	}

	event, err := payment.ParseWebhook(body)
	if err != nil {
		h.writeError(w, "Webhook", apperrors.InvalidInput(err.Error()))
		return
	}

	if err := h.service.HandleWebhook(r.Context(), event); err != nil {
		h.writeError(w, "Webhook", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"status": "ok"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Webhook", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckoutHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/checkouts", h.Begin)
	router.GET("/api/v1/checkouts/id/:id", h.Get)
	router.POST("/api/v1/checkouts/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/checkouts/id/:id/fail", h.Fail)
	router.POST(WebhookPath, h.Webhook)
}
