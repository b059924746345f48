package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/julienschmidt/httprouter"

	"travelpartner/pkg/logger"
)

func TestHealthHandler_Health(t *testing.T) {
	router := httprouter.New()
	NewHealthHandler(nil, nil, logger.Discard()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealthHandler_ReadyReportsCache(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantCache  string
	}{
		{"redis up", nil, http.StatusOK, "ok"},
		{"redis down", errors.New("connection refused"), http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdb, mock := redismock.NewClientMock()
			if tt.pingErr != nil {
				mock.ExpectPing().SetErr(tt.pingErr)
			} else {
				mock.ExpectPing().SetVal("PONG")
			}

			router := httprouter.New()
			NewHealthHandler(nil, rdb, logger.Discard()).RegisterRoutes(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Cache != tt.wantCache {
				t.Errorf("cache = %q, want %q", resp.Cache, tt.wantCache)
			}
		})
	}
}
