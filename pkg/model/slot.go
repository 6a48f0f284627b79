package model

type SlotState string

const (
	SlotAvailable SlotState = "available"
	SlotFull      SlotState = "full"
	SlotPassed    SlotState = "passed"
)

// SlotStatus is derived on every read and never persisted.
type SlotStatus struct {
	State     SlotState `json:"status"`
	Remaining int       `json:"remaining"`
	Booked    int       `json:"booked"`
}

func (s SlotStatus) Available() bool {
	return s.State == SlotAvailable
}

type SlotView struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Capacity int    `json:"capacity"`
	SlotStatus
}

type BookedSlot struct {
	Index int    `json:"index"`
	Label string `json:"label,omitempty"`
	Count int    `json:"count"`
}

type CalendarDay struct {
	Date        string `json:"date"`
	Selectable  bool   `json:"selectable"`
	HasBookings bool   `json:"has_bookings"`
}
