package handler

import (
	"net/http"

	"travelpartner/internal/bookings/service"
	httputil "travelpartner/pkg/http"
	"travelpartner/pkg/identity"
	"travelpartner/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writePDF(w http.ResponseWriter, handler string, filename string, body []byte) {
	if err := httputil.WritePDF(w, filename, body); err != nil {
		h.log.Error("failed to write pdf response", "handler", handler, "operation", "WritePDF", "error", err)
	}
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	bookings, totalCount, err := h.service.ListMine(r.Context(), caller.UID, limit, offset)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListMine", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	booking, err := h.service.Get(r.Context(), caller.UID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := h.service.Cancel(r.Context(), caller.UID, ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Ticket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Ticket", err)
		return
	}

	body, filename, err := h.service.Ticket(r.Context(), caller.UID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Ticket", err)
		return
	}
	h.writePDF(w, "Ticket", filename, body)
}

// SharedTicket serves a ticket through a sealed link, without a session.
func (h *BookingHandler) SharedTicket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	body, filename, err := h.service.TicketByToken(r.Context(), ps.ByName("token"))
	if err != nil {
		h.writeError(w, "SharedTicket", err)
		return
	}
	h.writePDF(w, "SharedTicket", filename, body)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bookings", h.ListMine)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.DELETE("/api/v1/bookings/id/:id", h.Cancel)
	router.GET("/api/v1/bookings/id/:id/ticket", h.Ticket)
	router.GET("/api/v1/tickets/:token", h.SharedTicket)
}
