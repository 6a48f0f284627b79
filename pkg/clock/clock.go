// Package clock holds the wall-clock abstraction and the calendar-date helpers
// shared by the booking ledger, the availability engine and the workflow.
package clock

import (
	"fmt"
	"time"
)

// DateKeyLayout is the canonical ledger key layout (yyyy-MM-dd).
const DateKeyLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Func adapts a function to the Clock interface.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Today returns the current date with the time component removed.
func Today(c Clock) time.Time {
	return StartOfDay(c.Now())
}

func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func IsToday(c Clock, t time.Time) bool {
	return IsSameDay(t, c.Now())
}

// IsPast reports whether t is strictly before the clock's current reading.
// The clock is consulted on every call.
func IsPast(c Clock, t time.Time) bool {
	return t.Before(c.Now())
}

// IsSelectable is the calendar predicate for the booking view: any date from
// today onwards can be picked, earlier dates are disabled.
func IsSelectable(date, now time.Time) bool {
	return !StartOfDay(date).Before(StartOfDay(now))
}

func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a yyyy-MM-dd key into local midnight. Keys that do not
// round-trip exactly (e.g. "2025-1-5") are rejected so that every calendar
// day has a single key.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	if DateKey(t) != key {
		return time.Time{}, fmt.Errorf("invalid date key %q: not canonical", key)
	}
	return t, nil
}

// FormatLong renders a date as "October 18th, 2026".
func FormatLong(t time.Time) string {
	return fmt.Sprintf("%s %d%s, %d", t.Month(), t.Day(), ordinalSuffix(t.Day()), t.Year())
}

// FormatShort renders a date as "Sun, Oct 18, 2026".
func FormatShort(t time.Time) string {
	return t.Format("Mon, Jan 2, 2006")
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
