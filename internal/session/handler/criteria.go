package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"travelpartner/internal/session/service"
	httputil "travelpartner/pkg/http"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"
)

const (
	SessionHeader     = "X-Session-ID"
	heartbeatInterval = 25 * time.Second
)

type CriteriaHandler struct {
	service   service.CriteriaService
	log       *logger.Logger
	heartbeat time.Duration
}

func NewCriteriaHandler(service service.CriteriaService, log *logger.Logger) *CriteriaHandler {
	return &CriteriaHandler{
		service:   service,
		log:       log,
		heartbeat: heartbeatInterval,
	}
}

func (h *CriteriaHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CriteriaHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	criteria, err := h.service.Get(r.Context(), r.Header.Get(SessionHeader))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httputil.WriteSuccess(w, criteria); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CriteriaHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var next model.SearchCriteria
	if err := httputil.DecodeJSON(r, &next); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	criteria, err := h.service.Update(r.Context(), r.Header.Get(SessionHeader), &next)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, criteria); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

// Watch streams the session's criteria as Server-Sent Events: the current
// value first, then every change, with comment heartbeats in between.
func (h *CriteriaHandler) Watch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		sessionID = r.URL.Query().Get("session_id")
	}

	updates, err := h.service.Watch(ctx, sessionID)
	if err != nil {
		h.writeError(w, "Watch", err)
		return
	}
	current, err := h.service.Get(ctx, sessionID)
	if err != nil {
		h.writeError(w, "Watch", err)
		return
	}

	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := h.send(w, rc, current); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case criteria, ok := <-updates:
			if !ok {
				return
			}
			if err := h.send(w, rc, &criteria); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func (h *CriteriaHandler) send(w http.ResponseWriter, rc *http.ResponseController, criteria *model.SearchCriteria) error {
	data, err := json.Marshal(criteria)
	if err != nil {
		h.log.Error("failed to encode criteria event", "handler", "Watch", "error", err)
		return err
	}
	if _, err := fmt.Fprintf(w, "event: criteria\ndata: %s\n\n", data); err != nil {
		return err
	}
	return rc.Flush()
}

func (h *CriteriaHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/session/criteria", h.Get)
	router.PUT("/api/v1/session/criteria", h.Update)
	router.GET("/api/v1/session/criteria/watch", h.Watch)
}
