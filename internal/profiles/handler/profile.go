package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"travelpartner/internal/profiles/service"
	"travelpartner/pkg/identity"
	httputil "travelpartner/pkg/http"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
)

type ProfileHandler struct {
	service service.ProfileService
	log     *logger.Logger
}

func NewProfileHandler(service service.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		log:     log,
	}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Me", err)
		return
	}

	profile, err := h.service.Get(r.Context(), caller.UID)
	if err != nil {
		h.writeError(w, "Me", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "Me", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	var profile model.Profile
	if err := httputil.DecodeJSON(r, &profile); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	saved, err := h.service.Register(r.Context(), caller, &profile)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteSuccess(w, saved); err != nil {
		h.log.Error("failed to write success response", "handler", "Register", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var updates model.ProfileUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	saved, err := h.service.Update(r.Context(), caller.UID, &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, saved); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProfileHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ProfileHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/profiles/me", h.Me)
	router.PUT("/api/v1/profiles/me", h.Register)
	router.PATCH("/api/v1/profiles/me", h.Update)
}
