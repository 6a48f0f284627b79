package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/internal/metrics"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/storage"
)

// ProfileKey is the storage key the contact profile is persisted under.
const ProfileKey = "userDetails"

type ProfileRepository interface {
	// Load returns nil without error when nothing decodable is stored. The
	// decoded profile is not validated here.
	Load(ctx context.Context) (*model.ContactProfile, error)
	Save(ctx context.Context, profile *model.ContactProfile) error
	Delete(ctx context.Context) error
}

type storageProfileRepository struct {
	store   storage.Store
	log     *logger.Logger
	metrics *metrics.BookingMetrics
}

func NewProfileRepository(store storage.Store, log *logger.Logger, m *metrics.BookingMetrics) ProfileRepository {
	return &storageProfileRepository{
		store:   store,
		log:     log.Component("profile_repository"),
		metrics: m,
	}
}

func (r *storageProfileRepository) Load(ctx context.Context) (*model.ContactProfile, error) {
	raw, err := r.store.Get(ctx, ProfileKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read contact profile: %w", err)
	}

	var profile *model.ContactProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		r.log.Error("Discarding unreadable contact profile",
			"key", ProfileKey,
			"error", fmt.Errorf("%w: %v", bookingserrors.ErrPersistenceParse, err),
		)
		return nil, nil
	}
	if profile == nil {
		r.log.Warn("Discarding empty contact profile", "key", ProfileKey)
		return nil, nil
	}
	return profile, nil
}

func (r *storageProfileRepository) Save(ctx context.Context, profile *model.ContactProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode contact profile: %w", err)
	}

	start := time.Now()
	err = r.store.Set(ctx, ProfileKey, raw)
	r.metrics.ObservePersist(ProfileKey, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("failed to persist contact profile: %w", err)
	}
	return nil
}

func (r *storageProfileRepository) Delete(ctx context.Context) error {
	if err := r.store.Delete(ctx, ProfileKey); err != nil {
		return fmt.Errorf("failed to delete contact profile: %w", err)
	}
	return nil
}
