package workflow

import (
	"errors"

	"slotbook/pkg/model"
)

var (
	ErrBusy              = errors.New("a booking is already in progress")
	ErrInvalidTransition = errors.New("invalid workflow transition")
	ErrSlotUnavailable   = errors.New("slot is not available")
)

// SlotUnavailableError carries the status that made a slot unselectable.
type SlotUnavailableError struct {
	State model.SlotState
}

func (e *SlotUnavailableError) Error() string {
	return "slot is " + string(e.State)
}

func (e *SlotUnavailableError) Is(target error) bool {
	return target == ErrSlotUnavailable
}

// Reason is the user-facing explanation for the rejection.
func (e *SlotUnavailableError) Reason() string {
	if e.State == model.SlotPassed {
		return reasonPassed
	}
	return reasonFull
}
