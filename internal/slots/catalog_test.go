package slots

import (
	"errors"
	"testing"
	"time"

	bookingserrors "slotbook/internal/bookings/errors"
)

func TestDefault(t *testing.T) {
	c := Default()

	if c.Count() != 5 {
		t.Fatalf("expected 5 slots, got %d", c.Count())
	}
	if c.Capacity() != MaxCapacity {
		t.Errorf("expected capacity %d, got %d", MaxCapacity, c.Capacity())
	}

	wantLabels := []string{
		"09:00 AM - 10:00 AM",
		"10:30 AM - 11:30 AM",
		"12:00 PM - 01:00 PM",
		"02:00 PM - 03:00 PM",
		"03:30 PM - 04:30 PM",
	}
	for i, want := range wantLabels {
		def, err := c.At(i)
		if err != nil {
			t.Fatalf("At(%d) error: %v", i, err)
		}
		if def.Index != i {
			t.Errorf("slot %d has index %d", i, def.Index)
		}
		if def.Label != want {
			t.Errorf("slot %d label = %q, want %q", i, def.Label, want)
		}
	}
}

func TestAt_OutOfRange(t *testing.T) {
	c := Default()
	for _, idx := range []int{-1, 5, 100} {
		_, err := c.At(idx)
		if !errors.Is(err, bookingserrors.ErrOutOfRange) {
			t.Errorf("At(%d) expected ErrOutOfRange, got %v", idx, err)
		}
		if c.Label(idx) != "" {
			t.Errorf("Label(%d) expected empty label", idx)
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Label = "mutated"

	if c.Label(0) == "mutated" {
		t.Error("All() must not expose the internal slice")
	}
}

func TestTimeOfDayOn(t *testing.T) {
	d := time.Date(2025, 1, 10, 17, 45, 12, 0, time.Local)
	got := TimeOfDay{Hour: 9, Minute: 30}.On(d)
	want := time.Date(2025, 1, 10, 9, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("On() = %s, want %s", got, want)
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		windows  [][2]TimeOfDay
		capacity int
	}{
		{"zero capacity", defaultWindows, 0},
		{"empty catalog", nil, 5},
		{"end before start", [][2]TimeOfDay{{{10, 0}, {9, 0}}}, 5},
		{"invalid minute", [][2]TimeOfDay{{{9, 60}, {10, 0}}}, 5},
		{"overlapping", [][2]TimeOfDay{{{9, 0}, {10, 0}}, {{9, 30}, {11, 0}}}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.windows, tt.capacity); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWithCapacity(t *testing.T) {
	c, err := WithCapacity(8)
	if err != nil {
		t.Fatalf("WithCapacity error: %v", err)
	}
	if c.Capacity() != 8 || c.Count() != 5 {
		t.Errorf("unexpected catalog: capacity %d count %d", c.Capacity(), c.Count())
	}
}
