package metrics

import "github.com/prometheus/client_golang/prometheus"

// Publisher results recorded by OutboxMetrics.
const (
	OutboxPublished    = "published"
	OutboxRetried      = "retried"
	OutboxDeadLettered = "dead_lettered"
)

// OutboxMetrics tracks the outbox publisher loop.
type OutboxMetrics struct {
	events  *prometheus.CounterVec
	batches prometheus.Counter
}

// NewOutboxMetrics registers the publisher metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offers_outbox_events_total",
		Help: "Outbox events handled by the publisher, by event type and result.",
	}, []string{"event_type", "result"})
	batches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "offers_outbox_batches_total",
		Help: "Non-empty outbox batches processed.",
	})
	reg.MustRegister(events, batches)
	return &OutboxMetrics{events: events, batches: batches}
}

// IncEvent counts one event outcome.
func (m *OutboxMetrics) IncEvent(eventType, result string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}

// IncBatch counts a processed batch.
func (m *OutboxMetrics) IncBatch() {
	if m == nil || m.batches == nil {
		return
	}
	m.batches.Inc()
}
