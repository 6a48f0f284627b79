// Package notify delivers the short user-facing messages the booking
// workflow emits (confirmations, rejections, cancellations). Delivery is
// fire-and-forget: a notifier never reports failure to its caller.
package notify

import (
	"context"
	"time"

	"slotbook/internal/metrics"
	"slotbook/pkg/logger"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
}

// New stamps a notification with a fresh id and the given creation time.
func New(severity Severity, title, description string, at time.Time) Notification {
	return Notification{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Severity:    severity,
		CreatedAt:   at,
	}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.Component("notify")}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) {
	attrs := []any{"id", n.ID, "title", n.Title, "description", n.Description}
	switch n.Severity {
	case SeverityError:
		l.log.ErrorContext(ctx, "User notification", attrs...)
	case SeverityWarning:
		l.log.WarnContext(ctx, "User notification", attrs...)
	default:
		l.log.InfoContext(ctx, "User notification", attrs...)
	}
}

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

// Counting records each notification's severity before passing it on.
type Counting struct {
	Next    Notifier
	Metrics *metrics.BookingMetrics
}

func (c Counting) Notify(ctx context.Context, n Notification) {
	c.Metrics.ObserveNotification(string(n.Severity))
	if c.Next != nil {
		c.Next.Notify(ctx, n)
	}
}
