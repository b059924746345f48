package service

import (
	"context"
	"errors"
	"time"

	profileserrors "travelpartner/internal/profiles/errors"
	"travelpartner/internal/profiles/repository"
	"travelpartner/internal/profiles/validator"
	"travelpartner/pkg/config"
	apperrors "travelpartner/pkg/errors"
	"travelpartner/pkg/identity"
	"travelpartner/pkg/model"
	"travelpartner/pkg/sanitizer"
)

// invalidPhone keeps an unparseable phone visible to the e164 rule instead
// of silently dropping it.
const invalidPhone = "invalid_phone"

type ProfileService interface {
	Get(ctx context.Context, uid string) (*model.Profile, error)
	Register(ctx context.Context, caller *identity.Identity, profile *model.Profile) (*model.Profile, error)
	Update(ctx context.Context, uid string, updates *model.ProfileUpdate) (*model.Profile, error)
}

type profileService struct {
	repo      repository.ProfileRepository
	validator *validator.ProfileValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewProfileService(repo repository.ProfileRepository, validator *validator.ProfileValidator, cfg *config.Config) ProfileService {
	return &profileService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *profileService) Get(ctx context.Context, uid string) (*model.Profile, error) {
	profile, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, profileserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Profile")
		}
		s.cfg.Log.Error("Failed to load profile", "uid", uid, "error", err)
		return nil, apperrors.Internal("Failed to retrieve profile", err)
	}
	return profile, nil
}

// Register creates or replaces the caller's profile. The registration date of
// an existing profile survives the replace.
func (s *profileService) Register(ctx context.Context, caller *identity.Identity, profile *model.Profile) (*model.Profile, error) {
	profile.UID = caller.UID
	if profile.Email == "" {
		profile.Email = caller.Email
	}
	if profile.Name == "" {
		profile.Name = caller.Name
	}
	s.sanitize(profile)

	now := s.now().UTC().Truncate(time.Millisecond)
	profile.RegisteredAt = now
	existing, err := s.repo.FindByUID(ctx, caller.UID)
	switch {
	case err == nil:
		profile.RegisteredAt = existing.RegisteredAt
	case !errors.Is(err, profileserrors.ErrNotFound):
		s.cfg.Log.Error("Failed to load profile", "uid", caller.UID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve profile", err)
	}
	profile.UpdatedAt = now

	if err := s.save(ctx, profile); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Profile registered",
		"uid", profile.UID,
		"account_type", profile.AccountType,
		"replaced", existing != nil,
	)
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, uid string, updates *model.ProfileUpdate) (*model.Profile, error) {
	existing, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	merged := mergeProfileUpdates(existing, updates)
	s.sanitize(merged)
	merged.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	if err := s.save(ctx, merged); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Profile updated", "uid", uid, "account_type", merged.AccountType)
	return merged, nil
}

func (s *profileService) save(ctx context.Context, profile *model.Profile) error {
	if err := s.validator.Validate(profile); err != nil {
		s.cfg.Log.Warn("Profile validation failed", "uid", profile.UID, "error", err)
		return apperrors.Validation("Profile validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Replace(ctx, profile); err != nil {
		s.cfg.Log.Error("Failed to save profile", "uid", profile.UID, "error", err)
		return apperrors.Internal("Failed to save profile", err)
	}
	return nil
}

func (s *profileService) sanitize(p *model.Profile) {
	p.AccountType = sanitizer.NormalizeMode(p.AccountType)
	p.Name = sanitizer.NormalizeName(p.Name)
	p.Email = sanitizer.NormalizeEmail(p.Email)
	p.Address = sanitizer.TrimAndNormalize(p.Address)
	if p.Phone != "" {
		normalized := sanitizer.NormalizePhone(p.Phone)
		if normalized == "" {
			normalized = invalidPhone
		}
		p.Phone = normalized
	}

	if p.AccountType == model.AccountUser {
		p.Business = nil
	}
	if p.Business != nil {
		b := p.Business
		b.BusinessName = sanitizer.NormalizeName(b.BusinessName)
		b.Services = sanitizer.NormalizeModes(b.Services)
		b.BusinessHours = sanitizer.TrimAndNormalize(b.BusinessHours)
		b.Location = sanitizer.TrimAndNormalize(b.Location)
		b.Website = sanitizer.NormalizeURL(b.Website)
	}
}

// mergeProfileUpdates applies a patch. Switching to a user account drops the
// business details; switching to business requires the patch to carry them.
func mergeProfileUpdates(existing *model.Profile, updates *model.ProfileUpdate) *model.Profile {
	merged := *existing
	if existing.Business != nil {
		b := *existing.Business
		merged.Business = &b
	}

	if updates.AccountType != "" {
		merged.AccountType = updates.AccountType
	}
	if updates.Email != "" {
		merged.Email = updates.Email
	}
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Phone != nil {
		merged.Phone = *updates.Phone
	}
	if updates.Address != nil {
		merged.Address = *updates.Address
	}
	if updates.Business != nil {
		b := *updates.Business
		merged.Business = &b
	}

	merged.UID = existing.UID
	merged.RegisteredAt = existing.RegisteredAt
	return &merged
}
