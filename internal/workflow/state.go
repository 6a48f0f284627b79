package workflow

import (
	"fmt"
	"time"

	"slotbook/internal/notify"
	"slotbook/pkg/model"
)

type State int

const (
	Idle State = iota
	SlotChosen
	ResolvingProfile
	FormOpen
	Committing
	Confirmed
	Cancelled
)

var stateNames = [...]string{
	Idle:             "idle",
	SlotChosen:       "slot_chosen",
	ResolvingProfile: "resolving_profile",
	FormOpen:         "form_open",
	Committing:       "committing",
	Confirmed:        "confirmed",
	Cancelled:        "cancelled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Intent is the slot the user is in the middle of booking.
type Intent struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Slot  int    `json:"slot"`
	Label string `json:"label"`
	day   time.Time
}

// Snapshot is what the presentation layer needs to render the current step.
type Snapshot struct {
	State        State                 `json:"state"`
	Intent       *Intent               `json:"intent,omitempty"`
	Form         *model.ContactProfile `json:"form,omitempty"`
	SavedProfile *model.ContactProfile `json:"saved_profile,omitempty"`
}

// Result reports the outcome of a workflow step. State is the state the
// step ended in, which for a successful commit is Confirmed even though the
// machine is already back at Idle.
type Result struct {
	State        State                `json:"state"`
	Intent       *Intent              `json:"intent,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}
