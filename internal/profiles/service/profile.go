package service

import (
	"context"
	"fmt"
	"sync"

	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/internal/metrics"
	"slotbook/internal/profiles/repository"
	"slotbook/internal/profiles/validator"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
)

type ProfileService interface {
	Get(ctx context.Context) (*model.ContactProfile, bool)
	// Prepare sanitizes a copy of p and validates it without persisting.
	Prepare(p model.ContactProfile) (*model.ContactProfile, error)
	Save(ctx context.Context, p model.ContactProfile) (*model.ContactProfile, error)
	Clear(ctx context.Context) error
}

type profileService struct {
	mu        sync.RWMutex
	current   *model.ContactProfile
	repo      repository.ProfileRepository
	validator *validator.ProfileValidator
	log       *logger.Logger
	metrics   *metrics.BookingMetrics
}

func NewProfileService(
	ctx context.Context,
	repo repository.ProfileRepository,
	validator *validator.ProfileValidator,
	log *logger.Logger,
	m *metrics.BookingMetrics,
) (ProfileService, error) {
	stored, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	s := &profileService{
		repo:      repo,
		validator: validator,
		log:       log.Component("profile"),
		metrics:   m,
	}
	s.current = s.usable(stored)
	return s, nil
}

// usable returns the sanitized stored profile, or nil when it would not pass
// the contact form.
func (s *profileService) usable(stored *model.ContactProfile) *model.ContactProfile {
	if stored == nil {
		return nil
	}
	p := *stored
	s.sanitize(&p)
	if err := s.validator.Validate(&p); err != nil {
		s.log.Warn("Ignoring invalid stored contact profile",
			"key", repository.ProfileKey,
			"error", fmt.Errorf("%w: %v", bookingserrors.ErrPersistenceParse, err),
		)
		return nil
	}
	return &p
}

func (s *profileService) Get(_ context.Context) (*model.ContactProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	p := *s.current
	return &p, true
}

func (s *profileService) Prepare(p model.ContactProfile) (*model.ContactProfile, error) {
	s.sanitize(&p)
	if err := s.validator.Validate(&p); err != nil {
		s.metrics.ObserveProfileSubmission(false)
		return nil, err
	}
	s.metrics.ObserveProfileSubmission(true)
	return &p, nil
}

// Save replaces any previously saved profile.
func (s *profileService) Save(ctx context.Context, p model.ContactProfile) (*model.ContactProfile, error) {
	s.sanitize(&p)
	if err := s.validator.Validate(&p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, &p); err != nil {
		s.log.Error("Failed to save contact profile", "error", err)
		return nil, err
	}
	s.current = &p
	s.log.Info("Contact profile saved", "name", p.Name)

	out := p
	return &out, nil
}

func (s *profileService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx); err != nil {
		s.log.Error("Failed to clear contact profile", "error", err)
		return err
	}
	s.current = nil
	s.log.Info("Contact profile cleared")
	return nil
}

func (s *profileService) sanitize(p *model.ContactProfile) {
	*p = sanitizer.ContactProfile(*p)
}
