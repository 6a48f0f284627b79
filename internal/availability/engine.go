// Package availability derives the display status of each slot from the
// booking ledger and the current time. Nothing here is persisted.
package availability

import (
	"fmt"
	"time"

	"slotbook/internal/slots"
	"slotbook/pkg/clock"
	"slotbook/pkg/model"
)

// MaxCalendarSpan bounds Calendar ranges.
const MaxCalendarSpan = 366

type LedgerReader interface {
	Occupancy(dateKey string) []int
	HasBookings(dateKey string) bool
}

type Engine struct {
	catalog *slots.Catalog
	ledger  LedgerReader
}

func NewEngine(catalog *slots.Catalog, ledger LedgerReader) *Engine {
	return &Engine{catalog: catalog, ledger: ledger}
}

// SlotStatus classifies one slot. A slot on the current day whose start time
// has already gone by is Passed regardless of its count; otherwise a slot at
// capacity is Full and anything else is Available.
func (e *Engine) SlotStatus(date time.Time, slot int, now time.Time) (model.SlotStatus, error) {
	def, err := e.catalog.At(slot)
	if err != nil {
		return model.SlotStatus{}, err
	}
	count := e.ledger.Occupancy(clock.DateKey(date))[slot]
	return e.classify(def, date, count, now), nil
}

func (e *Engine) classify(def slots.Definition, date time.Time, count int, now time.Time) model.SlotStatus {
	capacity := e.catalog.Capacity()
	status := model.SlotStatus{Booked: count}

	switch {
	case clock.IsSameDay(date, now) && def.Start.On(date).Before(now):
		status.State = model.SlotPassed
	case count >= capacity:
		status.State = model.SlotFull
	default:
		status.State = model.SlotAvailable
		status.Remaining = capacity - count
	}
	return status
}

// Day returns every slot of date in catalog order.
func (e *Engine) Day(date time.Time, now time.Time) []model.SlotView {
	counts := e.ledger.Occupancy(clock.DateKey(date))
	defs := e.catalog.All()
	views := make([]model.SlotView, 0, len(defs))
	for _, def := range defs {
		views = append(views, model.SlotView{
			Index:      def.Index,
			Label:      def.Label,
			Capacity:   e.catalog.Capacity(),
			SlotStatus: e.classify(def, date, counts[def.Index], now),
		})
	}
	return views
}

// Calendar decorates each date in [from, to] with whether it can be picked
// and whether it already holds bookings.
func (e *Engine) Calendar(from, to time.Time, now time.Time) ([]model.CalendarDay, error) {
	from, to = clock.StartOfDay(from), clock.StartOfDay(to)
	if to.Before(from) {
		return nil, fmt.Errorf("calendar range end %s is before start %s", clock.DateKey(to), clock.DateKey(from))
	}

	days := make([]model.CalendarDay, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if len(days) == MaxCalendarSpan {
			return nil, fmt.Errorf("calendar range exceeds %d days", MaxCalendarSpan)
		}
		key := clock.DateKey(d)
		days = append(days, model.CalendarDay{
			Date:        key,
			Selectable:  clock.IsSelectable(d, now),
			HasBookings: e.ledger.HasBookings(key),
		})
	}
	return days, nil
}
