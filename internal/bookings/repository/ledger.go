package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/internal/metrics"
	"slotbook/internal/slots"
	"slotbook/pkg/clock"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/storage"
)

// LedgerKey is the storage key the booking ledger is persisted under.
const LedgerKey = "bookings"

type LedgerRepository interface {
	Load(ctx context.Context) (model.Ledger, error)
	Save(ctx context.Context, ledger model.Ledger) error
}

type storageLedgerRepository struct {
	store   storage.Store
	catalog *slots.Catalog
	log     *logger.Logger
	metrics *metrics.BookingMetrics
}

func NewLedgerRepository(store storage.Store, catalog *slots.Catalog, log *logger.Logger, m *metrics.BookingMetrics) LedgerRepository {
	return &storageLedgerRepository{
		store:   store,
		catalog: catalog,
		log:     log.Component("ledger_repository"),
		metrics: m,
	}
}

// Load reads the persisted ledger. A missing document yields an empty
// ledger. A document that cannot be decoded is logged and also yields an
// empty ledger; only backend failures are returned.
func (r *storageLedgerRepository) Load(ctx context.Context) (model.Ledger, error) {
	raw, err := r.store.Get(ctx, LedgerKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Ledger{}, nil
		}
		return nil, fmt.Errorf("failed to read booking ledger: %w", err)
	}

	var decoded map[string][]int
	if err := json.Unmarshal(raw, &decoded); err != nil {
		r.log.Error("Discarding unreadable booking ledger",
			"key", LedgerKey,
			"error", fmt.Errorf("%w: %v", bookingserrors.ErrPersistenceParse, err),
		)
		return model.Ledger{}, nil
	}

	return r.normalize(decoded), nil
}

func (r *storageLedgerRepository) Save(ctx context.Context, ledger model.Ledger) error {
	if ledger == nil {
		ledger = model.Ledger{}
	}
	raw, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode booking ledger: %w", err)
	}

	start := time.Now()
	err = r.store.Set(ctx, LedgerKey, raw)
	r.metrics.ObservePersist(LedgerKey, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("failed to persist booking ledger: %w", err)
	}
	return nil
}

// normalize repairs externally edited data so the in-memory ledger always
// satisfies its invariants: canonical date keys, one count per catalog slot,
// counts within [0, capacity], and no all-zero dates.
func (r *storageLedgerRepository) normalize(decoded map[string][]int) model.Ledger {
	count, capacity := r.catalog.Count(), r.catalog.Capacity()
	ledger := make(model.Ledger, len(decoded))

	for key, raw := range decoded {
		if _, err := clock.ParseDateKey(key); err != nil {
			r.log.Warn("Dropping ledger entry with invalid date key",
				"key", key,
				"error", fmt.Errorf("%w: %v", bookingserrors.ErrInvalidDateKey, err),
			)
			continue
		}
		if len(raw) != count {
			r.log.Warn("Resizing ledger entry to catalog size", "date", key, "stored", len(raw), "expected", count)
		}

		counts := make([]int, count)
		total := 0
		for i := 0; i < count && i < len(raw); i++ {
			c := min(max(raw[i], 0), capacity)
			if c != raw[i] {
				r.log.Warn("Clamping out-of-range ledger count", "date", key, "slot", i, "stored", raw[i], "clamped", c)
			}
			counts[i] = c
			total += c
		}
		if total == 0 {
			continue
		}
		ledger[key] = counts
	}
	return ledger
}
