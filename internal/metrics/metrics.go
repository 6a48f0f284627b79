package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics exposes counters/histograms for ledger and workflow activity.
type BookingMetrics struct {
	ledgerOps       *prometheus.CounterVec
	persistLatency  *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	profileOutcomes *prometheus.CounterVec
	httpRequests    *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		ledgerOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbook",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger increments and decrements by outcome",
		}, []string{"op", "outcome"}),
		persistLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "slotbook",
			Subsystem: "storage",
			Name:      "persist_latency_seconds",
			Help:      "Latency of writing a document to the storage backend",
			Buckets:   prometheus.DefBuckets,
		}, []string{"key"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbook",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Booking workflow state transitions",
		}, []string{"from", "to"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbook",
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "User notifications emitted by severity",
		}, []string{"severity"}),
		profileOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbook",
			Subsystem: "profile",
			Name:      "submissions_total",
			Help:      "Contact form submissions by outcome",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "slotbook",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency by method and status code",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.ledgerOps, m.persistLatency, m.transitions, m.notifications, m.profileOutcomes, m.httpRequests)
	return m
}

func (m *BookingMetrics) ObserveLedgerOp(op, outcome string) {
	if m == nil {
		return
	}
	m.ledgerOps.WithLabelValues(op, outcome).Inc()
}

func (m *BookingMetrics) ObservePersist(key string, seconds float64) {
	if m == nil {
		return
	}
	m.persistLatency.WithLabelValues(key).Observe(seconds)
}

func (m *BookingMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *BookingMetrics) ObserveNotification(severity string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(severity).Inc()
}

func (m *BookingMetrics) ObserveProfileSubmission(valid bool) {
	if m == nil {
		return
	}
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.profileOutcomes.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
