package service

import (
	"context"
	"errors"
	"strings"
	"time"

	sessionerrors "travelpartner/internal/session/errors"
	"travelpartner/internal/session/repository"
	"travelpartner/pkg/config"
	apperrors "travelpartner/pkg/errors"
	"travelpartner/pkg/model"
	"travelpartner/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type CriteriaService interface {
	Get(ctx context.Context, sessionID string) (*model.SearchCriteria, error)
	Update(ctx context.Context, sessionID string, next *model.SearchCriteria) (*model.SearchCriteria, error)
	Watch(ctx context.Context, sessionID string) (<-chan model.SearchCriteria, error)
}

type criteriaService struct {
	repo     repository.CriteriaRepository
	validate *validator.Validate
	cfg      *config.Config
	now      func() time.Time
}

func NewCriteriaService(repo repository.CriteriaRepository, cfg *config.Config) CriteriaService {
	return &criteriaService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *criteriaService) checkSession(sessionID string) error {
	if err := s.validate.Var(sessionID, "required,uuid"); err != nil {
		return apperrors.InvalidInput("X-Session-ID header must be a UUID")
	}
	return nil
}

// Get returns the stored criteria, or the empty flight search for a session
// that never saved any.
func (s *criteriaService) Get(ctx context.Context, sessionID string) (*model.SearchCriteria, error) {
	if err := s.checkSession(sessionID); err != nil {
		return nil, err
	}

	criteria, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessionerrors.ErrNotFound) {
			return &model.SearchCriteria{Mode: model.ModeFlight}, nil
		}
		s.cfg.Log.Error("Failed to load search criteria", "session_id", sessionID, "error", err)
		return nil, apperrors.Unavailable("Session store")
	}
	return criteria, nil
}

func (s *criteriaService) Update(ctx context.Context, sessionID string, next *model.SearchCriteria) (*model.SearchCriteria, error) {
	next.Mode = sanitizer.NormalizeMode(next.Mode)
	next.From = sanitizer.NormalizeCity(next.From)
	next.To = sanitizer.NormalizeCity(next.To)
	next.Date = strings.TrimSpace(next.Date)
	next.FareClass = sanitizer.TrimAndNormalize(next.FareClass)

	if err := s.validate.Struct(next); err != nil {
		return nil, apperrors.Validation("Search criteria validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := current.Apply(*next)
	if merged.Mode == "" {
		merged.Mode = model.ModeFlight
	}
	merged.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, sessionID, &merged); err != nil {
		s.cfg.Log.Error("Failed to save search criteria", "session_id", sessionID, "error", err)
		return nil, apperrors.Unavailable("Session store")
	}
	return &merged, nil
}

func (s *criteriaService) Watch(ctx context.Context, sessionID string) (<-chan model.SearchCriteria, error) {
	if err := s.checkSession(sessionID); err != nil {
		return nil, err
	}

	updates, err := s.repo.Watch(ctx, sessionID)
	if err != nil {
		s.cfg.Log.Error("Failed to watch search criteria", "session_id", sessionID, "error", err)
		return nil, apperrors.Unavailable("Session store")
	}
	return updates, nil
}
