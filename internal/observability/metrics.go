package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes Prometheus counters for the submission pipeline. The
// unpublished counter is the observable face of the dual-write gap: tickets
// that were persisted but whose event never reached the broker.
type Metrics struct {
	registry *prometheus.Registry

	TicketsSubmitted  prometheus.Counter
	EventsPublished   prometheus.Counter
	EventsUnpublished prometheus.Counter
	EventsConsumed    prometheus.Counter
	EventsRejected    prometheus.Counter
	EventsDuplicate   prometheus.Counter
}

// NewMetrics initializes and registers all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		TicketsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickets_submitted_total",
			Help: "Total number of tickets persisted via the submission endpoint",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticket_events_published_total",
			Help: "Total number of ticket events confirmed by the broker",
		}),
		EventsUnpublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticket_events_unpublished_total",
			Help: "Tickets persisted whose event publication failed (dual-write gap)",
		}),
		EventsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticket_events_consumed_total",
			Help: "Total number of ticket events processed and acknowledged",
		}),
		EventsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticket_events_rejected_total",
			Help: "Malformed ticket events rejected without requeue",
		}),
		EventsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticket_events_duplicate_total",
			Help: "Redelivered ticket events skipped by the idempotency guard",
		}),
	}

	registry.MustRegister(
		m.TicketsSubmitted,
		m.EventsPublished,
		m.EventsUnpublished,
		m.EventsConsumed,
		m.EventsRejected,
		m.EventsDuplicate,
	)
	return m
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
