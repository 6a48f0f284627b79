package slots

import (
	"fmt"
	"time"

	bookingserrors "slotbook/internal/bookings/errors"
)

// MaxCapacity is the number of bookings a single slot can hold.
const MaxCapacity = 5

type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// On combines the time of day with the calendar date of d, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, t.Hour, t.Minute, 0, 0, d.Location())
}

// String renders 12-hour clock time, e.g. "03:30 PM".
func (t TimeOfDay) String() string {
	return time.Date(0, 1, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format("03:04 PM")
}

type Definition struct {
	Index int       `json:"index"`
	Label string    `json:"label"`
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

type Catalog struct {
	defs     []Definition
	capacity int
}

var defaultWindows = [][2]TimeOfDay{
	{{9, 0}, {10, 0}},
	{{10, 30}, {11, 30}},
	{{12, 0}, {13, 0}},
	{{14, 0}, {15, 0}},
	{{15, 30}, {16, 30}},
}

// Default returns the five standard daily slots with MaxCapacity each.
func Default() *Catalog {
	c, err := WithCapacity(MaxCapacity)
	if err != nil {
		panic(err)
	}
	return c
}

// WithCapacity returns the standard daily slots with a custom per-slot capacity.
func WithCapacity(capacity int) (*Catalog, error) {
	windows := make([][2]TimeOfDay, len(defaultWindows))
	copy(windows, defaultWindows)
	return New(windows, capacity)
}

// New builds a catalog from ordered, non-overlapping windows.
func New(windows [][2]TimeOfDay, capacity int) (*Catalog, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("slot capacity must be positive, got %d", capacity)
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("slot catalog cannot be empty")
	}

	defs := make([]Definition, 0, len(windows))
	for i, w := range windows {
		start, end := w[0], w[1]
		if !start.valid() || !end.valid() || end.minutes() <= start.minutes() {
			return nil, fmt.Errorf("slot %d has an invalid window %s - %s", i, start, end)
		}
		if i > 0 && start.minutes() < defs[i-1].End.minutes() {
			return nil, fmt.Errorf("slot %d starts before slot %d ends", i, i-1)
		}
		defs = append(defs, Definition{
			Index: i,
			Label: fmt.Sprintf("%s - %s", start, end),
			Start: start,
			End:   end,
		})
	}

	return &Catalog{defs: defs, capacity: capacity}, nil
}

func (c *Catalog) Count() int {
	return len(c.defs)
}

func (c *Catalog) Capacity() int {
	return c.capacity
}

func (c *Catalog) At(index int) (Definition, error) {
	if index < 0 || index >= len(c.defs) {
		return Definition{}, fmt.Errorf("%w: slot %d not in [0, %d)", bookingserrors.ErrOutOfRange, index, len(c.defs))
	}
	return c.defs[index], nil
}

func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Label returns the display label for index, or "" when index is out of range.
func (c *Catalog) Label(index int) string {
	def, err := c.At(index)
	if err != nil {
		return ""
	}
	return def.Label
}
