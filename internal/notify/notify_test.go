package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
)

type recordingNotifier struct {
	got []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.got = append(r.got, n)
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, msg kafka.Message) error
	published   []kafka.Message
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, msg)
	}
	return nil
}

var testTime = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	a := New(SeverityInfo, "Booking confirmed!", "details", testTime)
	b := New(SeverityInfo, "Booking confirmed!", "details", testTime)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids should be unique and non-empty: %q %q", a.ID, b.ID)
	}
	if a.Severity != SeverityInfo || a.Title != "Booking confirmed!" || !a.CreatedAt.Equal(testTime) {
		t.Errorf("New() = %+v", a)
	}
}

func TestFeed_Bounded(t *testing.T) {
	feed := NewFeed(3)
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		feed.Notify(context.Background(), New(SeverityInfo, title, "", testTime))
	}

	got := feed.Recent(0)
	if len(got) != 3 {
		t.Fatalf("Recent(0) returned %d items, want 3", len(got))
	}
	want := []string{"e", "d", "c"}
	for i, n := range got {
		if n.Title != want[i] {
			t.Errorf("Recent(0)[%d].Title = %q, want %q", i, n.Title, want[i])
		}
	}

	if top := feed.Recent(1); len(top) != 1 || top[0].Title != "e" {
		t.Errorf("Recent(1) = %+v", top)
	}

	feed.Clear()
	if len(feed.Recent(0)) != 0 {
		t.Error("Clear() left items behind")
	}
}

func TestMulti_FansOut(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	m := Multi{a, nil, b}

	m.Notify(context.Background(), New(SeverityWarning, "Cannot book this slot", "This slot is fully booked", testTime))

	if len(a.got) != 1 || len(b.got) != 1 {
		t.Fatalf("fan-out counts = %d, %d; want 1, 1", len(a.got), len(b.got))
	}
	if a.got[0].ID != b.got[0].ID {
		t.Error("every notifier should receive the same notification")
	}
}

func TestCounting_PassesThrough(t *testing.T) {
	next := &recordingNotifier{}
	c := Counting{Next: next}

	c.Notify(context.Background(), New(SeverityError, "x", "y", testTime))
	if len(next.got) != 1 {
		t.Errorf("Counting did not forward the notification")
	}
}

func TestLogNotifier_DoesNotPanic(t *testing.T) {
	l := NewLogNotifier(logger.Discard())
	for _, sev := range []Severity{SeverityInfo, SeverityWarning, SeverityError} {
		l.Notify(context.Background(), New(sev, "title", "desc", testTime))
	}
}

func TestKafkaNotifier_Publishes(t *testing.T) {
	pub := &mockPublisher{}
	k := NewKafkaNotifier(pub, "slotbook", logger.Discard())

	n := New(SeverityInfo, "Booking confirmed!", "Successfully booked 09:00 AM - 10:00 AM on October 18th, 2026", testTime)
	k.Notify(context.Background(), n)

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	msg := pub.published[0]
	if msg.Key != n.ID || msg.GetEventID() != n.ID {
		t.Errorf("key/event id = %q/%q, want %q", msg.Key, msg.GetEventID(), n.ID)
	}
	if msg.GetEventType() != "notification.info" {
		t.Errorf("event type = %q", msg.GetEventType())
	}
	if msg.Headers[HeaderSeverity] != "info" {
		t.Errorf("severity header = %q, want info", msg.Headers[HeaderSeverity])
	}
	if _, ok := msg.Headers[HeaderRequestID]; ok {
		t.Error("request-id header set without a request in context")
	}

	var decoded Notification
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if decoded.Title != n.Title || decoded.Description != n.Description || decoded.Severity != n.Severity {
		t.Errorf("decoded = %+v, want %+v", decoded, n)
	}
}

func TestKafkaNotifier_TagsRequestID(t *testing.T) {
	pub := &mockPublisher{}
	k := NewKafkaNotifier(pub, "slotbook", logger.Discard())

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	k.Notify(ctx, New(SeverityWarning, "Nothing to cancel", "There are no bookings for this slot", testTime))

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	headers := pub.published[0].Headers
	if headers[HeaderRequestID] != "req-42" || headers[HeaderSeverity] != "warning" {
		t.Errorf("headers = %v, want request-id req-42 and severity warning", headers)
	}
}

func TestKafkaNotifier_SwallowsErrors(t *testing.T) {
	pub := &mockPublisher{
		publishFunc: func(context.Context, kafka.Message) error { return errors.New("broker down") },
	}
	k := NewKafkaNotifier(pub, "slotbook", logger.Discard())

	k.Notify(context.Background(), New(SeverityWarning, "t", "d", testTime))
	if len(pub.published) != 1 {
		t.Errorf("publish attempts = %d, want 1", len(pub.published))
	}
}

func TestKafkaNotifier_IgnoresCancelledRequest(t *testing.T) {
	var ctxErr error
	pub := &mockPublisher{
		publishFunc: func(ctx context.Context, _ kafka.Message) error {
			ctxErr = ctx.Err()
			return nil
		},
	}
	k := NewKafkaNotifier(pub, "slotbook", logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	k.Notify(ctx, New(SeverityInfo, "t", "d", testTime))

	if ctxErr != nil {
		t.Errorf("publish context error = %v, want nil", ctxErr)
	}
}
