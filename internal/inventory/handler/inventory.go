package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"travelpartner/internal/inventory/service"
	"travelpartner/pkg/identity"
	httputil "travelpartner/pkg/http"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
)

type InventoryHandler struct {
	service service.InventoryService
	log     *logger.Logger
}

func NewInventoryHandler(service service.InventoryService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		log:     log,
	}
}

func (h *InventoryHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var item model.InventoryItem
	if err := httputil.DecodeJSON(r, &item); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), caller.UID, &item); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, item); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *InventoryHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	item, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, item.Public()); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InventoryHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	items, totalCount, err := h.service.GetAll(r.Context(), r.URL.Query().Get("mode"), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, publicItems(items), totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *InventoryHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	q, err := service.ParseSearchQuery(query.Get("mode"), query.Get("from"), query.Get("to"), query.Get("date"), query.Get("class"))
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	results := h.service.Search(r.Context(), q)

	if err := httputil.WriteSuccess(w, publicItems(results)); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InventoryHandler) Fare(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	quote, err := h.service.Quote(r.Context(), ps.ByName("id"), r.URL.Query().Get("class"))
	if err != nil {
		h.writeError(w, "Fare", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Fare", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InventoryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	var update model.InventoryStatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), caller.UID, ps.ByName("id"), &update); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

func publicItems(items []*model.InventoryItem) []model.InventoryItem {
	out := make([]model.InventoryItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.Public())
	}
	return out
}

func (h *InventoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/inventory", h.Create)
	router.GET("/api/v1/inventory", h.GetAll)
	router.GET("/api/v1/inventory/search", h.Search)
	router.GET("/api/v1/inventory/id/:id", h.GetByID)
	router.GET("/api/v1/inventory/id/:id/fare", h.Fare)
	router.PATCH("/api/v1/inventory/id/:id/status", h.UpdateStatus)
	router.DELETE("/api/v1/inventory/id/:id", h.Delete)
}
