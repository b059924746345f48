package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"travelpartner/internal/selection/service"
	"travelpartner/pkg/identity"
	httputil "travelpartner/pkg/http"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
)

type SelectionHandler struct {
	service service.SelectionService
	log     *logger.Logger
}

func NewSelectionHandler(service service.SelectionService, log *logger.Logger) *SelectionHandler {
	return &SelectionHandler{
		service: service,
		log:     log,
	}
}

func (h *SelectionHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *SelectionHandler) writeSelection(w http.ResponseWriter, handler string, selection *model.Selection) {
	if err := httputil.WriteSuccess(w, selection); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *SelectionHandler) Start(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Start", err)
		return
	}

	var req model.SelectionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Start", err)
		return
	}

	selection, err := h.service.Start(r.Context(), caller.UID, &req)
	if err != nil {
		h.writeError(w, "Start", err)
		return
	}

	if err := httputil.WriteCreated(w, selection); err != nil {
		h.log.Error("failed to write created response", "handler", "Start", "operation", "WriteCreated", "error", err)
	}
}

func (h *SelectionHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	selection, err := h.service.Get(r.Context(), caller.UID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}
	h.writeSelection(w, "Get", selection)
}

func (h *SelectionHandler) ToggleSeat(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "ToggleSeat", err)
		return
	}

	selection, err := h.service.ToggleSeat(r.Context(), caller.UID, ps.ByName("id"), ps.ByName("seat"))
	if err != nil {
		h.writeError(w, "ToggleSeat", err)
		return
	}
	h.writeSelection(w, "ToggleSeat", selection)
}

func (h *SelectionHandler) SwitchFareClass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "SwitchFareClass", err)
		return
	}

	var req model.FareClassSwitch
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SwitchFareClass", err)
		return
	}

	selection, err := h.service.SwitchFareClass(r.Context(), caller.UID, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "SwitchFareClass", err)
		return
	}
	h.writeSelection(w, "SwitchFareClass", selection)
}

func (h *SelectionHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := h.service.Delete(r.Context(), caller.UID, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SelectionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/selections", h.Start)
	router.GET("/api/v1/selections/id/:id", h.Get)
	router.POST("/api/v1/selections/id/:id/seats/:seat", h.ToggleSeat)
	router.PUT("/api/v1/selections/id/:id/fare-class", h.SwitchFareClass)
	router.DELETE("/api/v1/selections/id/:id", h.Delete)
}
