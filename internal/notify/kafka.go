package notify

import (
	"context"
	"time"

	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
)

// Headers carried alongside the standard event headers.
const (
	HeaderSeverity  = "severity"
	HeaderRequestID = "request-id"
)

const (
	eventTypePrefix = "notification."
	schemaVersion   = "1"
	publishTimeout  = 5 * time.Second
)

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaNotifier publishes each notification as a JSON event keyed by its id,
// tagged with the id of the HTTP request that raised it when there is one.
type KafkaNotifier struct {
	publisher Publisher
	source    string
	log       *logger.Logger
}

func NewKafkaNotifier(publisher Publisher, source string, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		publisher: publisher,
		source:    source,
		log:       log.Component("notify_kafka"),
	}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) {
	builder := kafka.NewMessage().
		WithKey(n.ID).
		WithEventID(n.ID).
		WithEventType(eventTypePrefix+string(n.Severity)).
		WithSchemaVersion(schemaVersion).
		WithSource(k.source).
		WithHeader(HeaderSeverity, string(n.Severity)).
		WithTimestamp(n.CreatedAt).
		WithValue(n)
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		builder.WithHeader(HeaderRequestID, requestID)
	}
	msg, err := builder.Build()
	if err != nil {
		k.log.Error("Failed to build notification event", "id", n.ID, "error", err)
		return
	}

	// The request that produced the notification may already be finishing.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := k.publisher.Publish(ctx, msg); err != nil {
		k.log.Warn("Failed to publish notification", "id", n.ID, "error", err)
	}
}
