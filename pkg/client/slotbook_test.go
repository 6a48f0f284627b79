package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slotbook/internal/availability"
	bookingshandler "slotbook/internal/bookings/handler"
	bookingsrepo "slotbook/internal/bookings/repository"
	bookingsservice "slotbook/internal/bookings/service"
	"slotbook/internal/notify"
	profileshandler "slotbook/internal/profiles/handler"
	profilesrepo "slotbook/internal/profiles/repository"
	profilesservice "slotbook/internal/profiles/service"
	"slotbook/internal/profiles/validator"
	"slotbook/internal/slots"
	"slotbook/internal/workflow"
	"slotbook/pkg/app"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	"slotbook/pkg/logger"
	"slotbook/pkg/storage"
)

var morning = time.Date(2025, 6, 20, 8, 0, 0, 0, time.Local)

func newTestService(t *testing.T) *SlotbookClient {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()
	store := storage.NewMemoryStore()
	catalog := slots.Default()
	clk := clock.Fixed(morning)

	ledger, err := bookingsservice.NewLedgerService(ctx, bookingsrepo.NewLedgerRepository(store, catalog, log, nil), catalog, log, nil)
	if err != nil {
		t.Fatalf("NewLedgerService() error = %v", err)
	}
	profiles, err := profilesservice.NewProfileService(ctx, profilesrepo.NewProfileRepository(store, log, nil), validator.NewProfileValidator(log), log, nil)
	if err != nil {
		t.Fatalf("NewProfileService() error = %v", err)
	}
	feed := notify.NewFeed(20)
	engine := availability.NewEngine(catalog, ledger)
	wf := workflow.New(workflow.Deps{
		Catalog:      catalog,
		Ledger:       ledger,
		Availability: engine,
		Profiles:     profiles,
		Notifier:     feed,
		Clock:        clk,
		Log:          log,
	})

	cfg := config.FromEnv()
	cfg.Log = log
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		bookingshandler.NewHealthHandler(store, config.BackendMemory, log),
		nil,
		bookingshandler.NewBookingHandler(ledger, engine, wf, feed, clk, log),
		profileshandler.NewProfileHandler(profiles, log),
	)

	server := httptest.NewServer(serverApp.Handler())
	t.Cleanup(server.Close)

	c := NewSlotbookClient(server.URL)
	if err := c.WaitForHealthy(ctx); err != nil {
		t.Fatalf("WaitForHealthy() error = %v", err)
	}
	return c
}

func TestSlotbookClient_BookTwiceReusesSavedProfile(t *testing.T) {
	ctx := context.Background()
	c := newTestService(t)

	res, err := c.Select(ctx, "2025-06-20", 2)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if res.State != "form_open" {
		t.Fatalf("Select() state = %s, want form_open", res.State)
	}

	res, err = c.Submit(ctx, ContactDetails{Name: "Ada Lovelace", Email: "ADA@example.com", Phone: "5551234567"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.State != "confirmed" || res.Notification == nil || res.Notification.Title != "Booking confirmed!" {
		t.Fatalf("Submit() = %+v", res)
	}

	res, err = c.Select(ctx, "2025-06-20", 2)
	if err != nil {
		t.Fatalf("second Select() error = %v", err)
	}
	if res.State != "resolving_profile" {
		t.Fatalf("second Select() state = %s, want resolving_profile", res.State)
	}
	if _, err := c.AcceptSavedProfile(ctx); err != nil {
		t.Fatalf("AcceptSavedProfile() error = %v", err)
	}

	day, err := c.Day(ctx, "2025-06-20")
	if err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	if got := day.Slots[2]; got.Booked != 2 || got.Remaining != slots.MaxCapacity-2 || got.Status != "available" {
		t.Errorf("slot 2 = %+v, want 2 booked", got)
	}
}

func TestSlotbookClient_ErrorsCarryCodes(t *testing.T) {
	ctx := context.Background()
	c := newTestService(t)

	_, err := c.Cancel(ctx, "2025-06-20", 0)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Cancel() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Code != "NOTHING_TO_CANCEL" {
		t.Errorf("Cancel() error = %+v", apiErr)
	}

	if _, err := c.Select(ctx, "2025-06-20", 0); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	_, err = c.Submit(ctx, ContactDetails{Name: "A", Email: "ada@example.com", Phone: "5551234567"})
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("Submit() error = %v, want 422", err)
	}
	if apiErr.Details["name"] != "Name must be at least 2 characters" {
		t.Errorf("Submit() details = %v", apiErr.Details)
	}

	res, err := c.Dismiss(ctx)
	if err != nil || res.State != "cancelled" {
		t.Fatalf("Dismiss() = %+v, %v", res, err)
	}

	notifications, err := c.Notifications(ctx, 5)
	if err != nil {
		t.Fatalf("Notifications() error = %v", err)
	}
	if len(notifications) != 1 || notifications[0].Title != "No booking to cancel" {
		t.Errorf("Notifications() = %+v", notifications)
	}
}
