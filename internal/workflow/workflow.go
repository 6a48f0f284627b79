// Package workflow drives a single booking from slot selection through
// contact details to commit, and the separate cancel-one-booking flow. It is
// the only layer that turns domain errors into user-facing notifications.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/internal/metrics"
	"slotbook/internal/notify"
	"slotbook/internal/slots"
	"slotbook/pkg/clock"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/google/uuid"
)

type Ledger interface {
	Increment(ctx context.Context, dateKey string, slot int) error
	Decrement(ctx context.Context, dateKey string, slot int) error
}

type Availability interface {
	SlotStatus(date time.Time, slot int, now time.Time) (model.SlotStatus, error)
}

type Profiles interface {
	Get(ctx context.Context) (*model.ContactProfile, bool)
	Prepare(p model.ContactProfile) (*model.ContactProfile, error)
	Save(ctx context.Context, p model.ContactProfile) (*model.ContactProfile, error)
}

type Deps struct {
	Catalog      *slots.Catalog
	Ledger       Ledger
	Availability Availability
	Profiles     Profiles
	Notifier     notify.Notifier
	Clock        clock.Clock
	Log          *logger.Logger
	Metrics      *metrics.BookingMetrics
}

type Workflow struct {
	mu    sync.Mutex
	state State
	// intent is set from SlotChosen until the workflow returns to Idle.
	intent *Intent
	// saved is the profile offered in ResolvingProfile.
	saved *model.ContactProfile
	// form is the pre-fill (or last rejected submission) shown in FormOpen.
	form *model.ContactProfile

	catalog      *slots.Catalog
	ledger       Ledger
	availability Availability
	profiles     Profiles
	notifier     notify.Notifier
	clock        clock.Clock
	log          *logger.Logger
	metrics      *metrics.BookingMetrics
}

func New(d Deps) *Workflow {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	if d.Notifier == nil {
		d.Notifier = notify.Multi{}
	}
	return &Workflow{
		state:        Idle,
		catalog:      d.Catalog,
		ledger:       d.Ledger,
		availability: d.Availability,
		profiles:     d.Profiles,
		notifier:     d.Notifier,
		clock:        d.Clock,
		log:          d.Log.Component("workflow"),
		metrics:      d.Metrics,
	}
}

// Select starts a booking for slot on date. It is only accepted while the
// workflow is Idle, and only for a slot that is currently Available.
func (w *Workflow) Select(ctx context.Context, date time.Time, slot int) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Idle {
		return Result{State: w.state, Intent: w.intent}, fmt.Errorf("%w: currently %s", ErrBusy, w.state)
	}

	def, err := w.catalog.At(slot)
	if err != nil {
		return Result{State: w.state}, err
	}

	now := w.clock.Now()
	day := clock.StartOfDay(date)
	status, err := w.availability.SlotStatus(day, slot, now)
	if err != nil {
		return Result{State: w.state}, err
	}
	if !clock.IsSelectable(day, now) {
		status.State = model.SlotPassed
	}
	if !status.Available() {
		rejection := &SlotUnavailableError{State: status.State}
		n := w.emit(ctx, notify.SeverityWarning, titleRejected, rejection.Reason())
		w.log.Warn("Slot selection rejected",
			"date", clock.DateKey(day),
			"slot", slot,
			"status", status.State,
		)
		return Result{State: w.state, Notification: &n}, rejection
	}

	w.intent = &Intent{
		ID:    uuid.New().String(),
		Date:  clock.DateKey(day),
		Slot:  slot,
		Label: def.Label,
		day:   day,
	}
	w.transition(SlotChosen)

	if saved, ok := w.profiles.Get(ctx); ok {
		w.saved = saved
		w.transition(ResolvingProfile)
	} else {
		w.form = &model.ContactProfile{}
		w.transition(FormOpen)
	}

	w.log.Info("Slot selected", "intent_id", w.intent.ID, "date", w.intent.Date, "slot", slot, "state", w.state)
	return Result{State: w.state, Intent: w.intent}, nil
}

// AcceptSavedProfile books the selected slot with the saved profile. A saved
// profile that fails validation opens the form pre-filled with it instead.
func (w *Workflow) AcceptSavedProfile(ctx context.Context) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != ResolvingProfile {
		return Result{State: w.state, Intent: w.intent}, w.invalid("accept saved profile")
	}

	prepared, err := w.profiles.Prepare(*w.saved)
	if err != nil {
		prefill := *w.saved
		w.form = &prefill
		w.transition(FormOpen)
		w.log.Warn("Saved profile no longer valid, opening form", "intent_id", w.intent.ID, "error", err)
		return Result{State: w.state, Intent: w.intent}, err
	}

	w.transition(Committing)
	return w.commit(ctx, *prepared)
}

// DeclineSavedProfile opens the contact form pre-filled with the saved
// profile so the user can edit it.
func (w *Workflow) DeclineSavedProfile() (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != ResolvingProfile {
		return Result{State: w.state, Intent: w.intent}, w.invalid("decline saved profile")
	}
	prefill := *w.saved
	w.form = &prefill
	w.transition(FormOpen)
	return Result{State: w.state, Intent: w.intent}, nil
}

// Submit validates the contact form. An invalid form keeps the workflow in
// FormOpen and returns the validator's field errors; a valid one commits.
func (w *Workflow) Submit(ctx context.Context, p model.ContactProfile) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != FormOpen {
		return Result{State: w.state, Intent: w.intent}, w.invalid("submit contact details")
	}

	prepared, err := w.profiles.Prepare(p)
	if err != nil {
		edited := p
		w.form = &edited
		w.log.Debug("Contact form rejected", "intent_id", w.intent.ID, "error", err)
		return Result{State: w.state, Intent: w.intent}, err
	}

	w.transition(Committing)
	return w.commit(ctx, *prepared)
}

// Dismiss abandons the current booking from any state.
func (w *Workflow) Dismiss() Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == Idle {
		return Result{State: Idle}
	}
	intent := w.intent
	w.transition(Cancelled)
	w.transition(Idle)
	w.reset()
	if intent != nil {
		w.log.Info("Booking dismissed", "intent_id", intent.ID)
	}
	return Result{State: Cancelled, Intent: intent}
}

// CancelBooking removes one booking from slot on date. It is independent of
// the selection workflow and may run in any state.
func (w *Workflow) CancelBooking(ctx context.Context, date time.Time, slot int) (Result, error) {
	def, err := w.catalog.At(slot)
	if err != nil {
		return Result{State: w.currentState()}, err
	}
	day := clock.StartOfDay(date)

	err = w.ledger.Decrement(ctx, clock.DateKey(day), slot)
	switch {
	case errors.Is(err, bookingserrors.ErrNothingToCancel):
		n := w.emit(ctx, notify.SeverityWarning, titleNothing, reasonNothing)
		return Result{State: w.currentState(), Notification: &n}, err
	case err != nil:
		n := w.emit(ctx, notify.SeverityError, titleCancelFailed, reasonCancelFail)
		return Result{State: w.currentState(), Notification: &n}, err
	}

	n := w.emit(ctx, notify.SeverityInfo, titleCancelled,
		fmt.Sprintf("Cancelled booking for %s on %s", def.Label, clock.FormatLong(day)))
	return Result{State: w.currentState(), Notification: &n}, nil
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{State: w.state}
	if w.intent != nil {
		intent := *w.intent
		snap.Intent = &intent
	}
	if w.state == FormOpen && w.form != nil {
		form := *w.form
		snap.Form = &form
	}
	if w.state == ResolvingProfile && w.saved != nil {
		saved := *w.saved
		snap.SavedProfile = &saved
	}
	return snap
}

// commit must be called with the lock held and the state at Committing.
func (w *Workflow) commit(ctx context.Context, p model.ContactProfile) (Result, error) {
	intent := w.intent

	err := w.ledger.Increment(ctx, intent.Date, intent.Slot)
	if err != nil {
		var n notify.Notification
		if errors.Is(err, bookingserrors.ErrCapacityExceeded) {
			n = w.emit(ctx, notify.SeverityError, titleRejected, reasonFull)
		} else {
			n = w.emit(ctx, notify.SeverityError, titleFailed, reasonFailed)
		}
		w.log.Warn("Booking not committed", "intent_id", intent.ID, "error", err)
		w.transition(Idle)
		w.reset()
		return Result{State: Idle, Intent: intent, Notification: &n}, err
	}

	if _, err := w.profiles.Save(ctx, p); err != nil {
		w.log.Warn("Booking committed but contact profile was not saved", "intent_id", intent.ID, "error", err)
	}

	w.transition(Confirmed)
	n := w.emit(ctx, notify.SeverityInfo, titleConfirmed,
		fmt.Sprintf("Successfully booked %s on %s", intent.Label, clock.FormatLong(intent.day)))
	w.log.Info("Booking confirmed", "intent_id", intent.ID, "date", intent.Date, "slot", intent.Slot)

	w.transition(Idle)
	w.reset()
	return Result{State: Confirmed, Intent: intent, Notification: &n}, nil
}

func (w *Workflow) transition(to State) {
	w.metrics.ObserveTransition(w.state.String(), to.String())
	w.state = to
}

func (w *Workflow) reset() {
	w.state = Idle
	w.intent = nil
	w.saved = nil
	w.form = nil
}

func (w *Workflow) currentState() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, w.state)
}

func (w *Workflow) emit(ctx context.Context, severity notify.Severity, title, description string) notify.Notification {
	n := notify.New(severity, title, description, w.clock.Now())
	w.notifier.Notify(ctx, n)
	return n
}
