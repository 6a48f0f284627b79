package service

import (
	"context"
	"fmt"
	"maps"
	"sync"

	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/internal/bookings/repository"
	"slotbook/internal/metrics"
	"slotbook/internal/slots"
	"slotbook/pkg/clock"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// LedgerService owns the per-date, per-slot booking counts. Reads never
// touch storage; every successful mutation is persisted before it becomes
// visible.
type LedgerService interface {
	Occupancy(dateKey string) []int
	Increment(ctx context.Context, dateKey string, slot int) error
	Decrement(ctx context.Context, dateKey string, slot int) error
	HasBookings(dateKey string) bool
	BookedSlots(dateKey string) []model.BookedSlot
	Snapshot() model.Ledger
	Dates() []string
	Catalog() *slots.Catalog
}

type ledgerService struct {
	mu      sync.RWMutex
	ledger  model.Ledger
	repo    repository.LedgerRepository
	catalog *slots.Catalog
	log     *logger.Logger
	metrics *metrics.BookingMetrics
}

// NewLedgerService loads the persisted ledger once and serves it from memory
// afterwards.
func NewLedgerService(
	ctx context.Context,
	repo repository.LedgerRepository,
	catalog *slots.Catalog,
	log *logger.Logger,
	m *metrics.BookingMetrics,
) (LedgerService, error) {
	ledger, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		ledger = model.Ledger{}
	}

	s := &ledgerService{
		ledger:  ledger,
		repo:    repo,
		catalog: catalog,
		log:     log.Component("ledger"),
		metrics: m,
	}
	s.log.Info("Booking ledger loaded", "dates", len(ledger))
	return s, nil
}

func (s *ledgerService) Catalog() *slots.Catalog {
	return s.catalog
}

func (s *ledgerService) Occupancy(dateKey string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.occupancyLocked(dateKey)
}

func (s *ledgerService) occupancyLocked(dateKey string) []int {
	counts := make([]int, s.catalog.Count())
	copy(counts, s.ledger[dateKey])
	return counts
}

func (s *ledgerService) Increment(ctx context.Context, dateKey string, slot int) error {
	if err := s.checkArgs(dateKey, slot); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := s.occupancyLocked(dateKey)
	if counts[slot] >= s.catalog.Capacity() {
		s.metrics.ObserveLedgerOp("increment", "capacity_exceeded")
		s.log.Warn("Slot is at capacity", "date", dateKey, "slot", slot, "count", counts[slot])
		return fmt.Errorf("%w: %s slot %d holds %d", bookingserrors.ErrCapacityExceeded, dateKey, slot, counts[slot])
	}
	counts[slot]++

	next := maps.Clone(s.ledger)
	next[dateKey] = counts
	if err := s.commitLocked(ctx, next); err != nil {
		s.metrics.ObserveLedgerOp("increment", "persist_failed")
		return err
	}

	s.metrics.ObserveLedgerOp("increment", "ok")
	s.log.Info("Booking recorded", "date", dateKey, "slot", slot, "count", counts[slot])
	return nil
}

func (s *ledgerService) Decrement(ctx context.Context, dateKey string, slot int) error {
	if err := s.checkArgs(dateKey, slot); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := s.occupancyLocked(dateKey)
	if counts[slot] == 0 {
		s.metrics.ObserveLedgerOp("decrement", "nothing_to_cancel")
		s.log.Warn("No booking to cancel", "date", dateKey, "slot", slot)
		return fmt.Errorf("%w: %s slot %d", bookingserrors.ErrNothingToCancel, dateKey, slot)
	}
	counts[slot]--

	next := maps.Clone(s.ledger)
	if allZero(counts) {
		delete(next, dateKey)
	} else {
		next[dateKey] = counts
	}
	if err := s.commitLocked(ctx, next); err != nil {
		s.metrics.ObserveLedgerOp("decrement", "persist_failed")
		return err
	}

	s.metrics.ObserveLedgerOp("decrement", "ok")
	s.log.Info("Booking cancelled", "date", dateKey, "slot", slot, "count", counts[slot])
	return nil
}

func (s *ledgerService) HasBookings(dateKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ledger[dateKey]
	return ok
}

func (s *ledgerService) BookedSlots(dateKey string) []model.BookedSlot {
	counts := s.Occupancy(dateKey)
	booked := make([]model.BookedSlot, 0, len(counts))
	for i, c := range counts {
		if c > 0 {
			booked = append(booked, model.BookedSlot{Index: i, Label: s.catalog.Label(i), Count: c})
		}
	}
	return booked
}

func (s *ledgerService) Snapshot() model.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Clone()
}

func (s *ledgerService) Dates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Dates()
}

func (s *ledgerService) checkArgs(dateKey string, slot int) error {
	if _, err := s.catalog.At(slot); err != nil {
		return err
	}
	if _, err := clock.ParseDateKey(dateKey); err != nil {
		return fmt.Errorf("%w: %v", bookingserrors.ErrInvalidDateKey, err)
	}
	return nil
}

// commitLocked persists next and only then swaps it in. Count slices are
// never modified after being placed in a ledger, so a shallow map clone is
// enough to keep the previous state intact on failure.
func (s *ledgerService) commitLocked(ctx context.Context, next model.Ledger) error {
	if err := s.repo.Save(ctx, next); err != nil {
		s.log.Error("Failed to persist booking ledger", "error", err)
		return err
	}
	s.ledger = next
	return nil
}

func allZero(counts []int) bool {
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}
