package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	sessionerrors "travelpartner/internal/session/errors"
	"travelpartner/pkg/config"
	apperrors "travelpartner/pkg/errors"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"

	"github.com/go-playground/validator/v10"
)

const sessionID = "3f1c8a52-7d4e-4b7a-9f51-2a6c0d9e8b11"

type mockCriteriaRepository struct {
	stored  map[string]model.SearchCriteria
	getErr  error
	saveErr error
	watch   chan model.SearchCriteria
}

func (m *mockCriteriaRepository) Get(ctx context.Context, id string) (*model.SearchCriteria, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.stored[id]
	if !ok {
		return nil, sessionerrors.ErrNotFound
	}
	return &c, nil
}

func (m *mockCriteriaRepository) Save(ctx context.Context, id string, criteria *model.SearchCriteria) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.stored[id] = *criteria
	return nil
}

func (m *mockCriteriaRepository) Watch(ctx context.Context, id string) (<-chan model.SearchCriteria, error) {
	return m.watch, nil
}

func newTestService(repo *mockCriteriaRepository) *criteriaService {
	return &criteriaService{
		repo:     repo,
		validate: validator.New(),
		cfg:      &config.Config{Log: logger.Discard()},
		now:      func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestGet_DefaultsForNewSession(t *testing.T) {
	svc := newTestService(&mockCriteriaRepository{stored: map[string]model.SearchCriteria{}})

	got, err := svc.Get(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Mode != model.ModeFlight || got.From != "" {
		t.Errorf("unexpected default criteria: %+v", got)
	}
}

func TestGet_RejectsBadSessionID(t *testing.T) {
	svc := newTestService(&mockCriteriaRepository{stored: map[string]model.SearchCriteria{}})

	for _, id := range []string{"", "abc", "../etc"} {
		_, err := svc.Get(context.Background(), id)
		if apperrors.AsAppError(err).StatusCode() != http.StatusBadRequest {
			t.Errorf("session id %q: expected 400, got %v", id, err)
		}
	}
}

func TestUpdate_MergesAndResetsOnModeChange(t *testing.T) {
	repo := &mockCriteriaRepository{stored: map[string]model.SearchCriteria{
		sessionID: {Mode: model.ModeFlight, From: "Delhi", To: "Goa", Date: "2026-11-02"},
	}}
	svc := newTestService(repo)
	ctx := context.Background()

	got, err := svc.Update(ctx, sessionID, &model.SearchCriteria{To: "  Mumbai "})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.From != "Delhi" || got.To != "Mumbai" || got.Date != "2026-11-02" {
		t.Errorf("merge failed: %+v", got)
	}
	if !got.UpdatedAt.Equal(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("updated_at = %v", got.UpdatedAt)
	}

	got, err = svc.Update(ctx, sessionID, &model.SearchCriteria{Mode: " TRAIN "})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Mode != model.ModeTrain || got.From != "" || got.To != "" || got.Date != "" {
		t.Errorf("mode change should reset route: %+v", got)
	}
	if repo.stored[sessionID].Mode != model.ModeTrain {
		t.Errorf("stored criteria not updated: %+v", repo.stored[sessionID])
	}
}

func TestUpdate_Validation(t *testing.T) {
	tests := []struct {
		name string
		next model.SearchCriteria
	}{
		{"unknown mode", model.SearchCriteria{Mode: "ship"}},
		{"bad date", model.SearchCriteria{Date: "02/11/2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCriteriaRepository{stored: map[string]model.SearchCriteria{}}
			svc := newTestService(repo)
			_, err := svc.Update(context.Background(), sessionID, &tt.next)
			if apperrors.AsAppError(err).StatusCode() != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %v", err)
			}
			if len(repo.stored) != 0 {
				t.Error("invalid criteria were stored")
			}
		})
	}
}

func TestUpdate_StoreDown(t *testing.T) {
	svc := newTestService(&mockCriteriaRepository{
		stored:  map[string]model.SearchCriteria{},
		saveErr: errors.New("connection reset"),
	})

	_, err := svc.Update(context.Background(), sessionID, &model.SearchCriteria{From: "Pune"})
	if apperrors.AsAppError(err).StatusCode() != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", err)
	}
}
