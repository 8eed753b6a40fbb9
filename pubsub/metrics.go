package pubsub

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes bus counters as Prometheus metrics. It reads from
// Stats on every scrape; register it with a prometheus.Registerer:
//
//	prometheus.MustRegister(pubsub.NewCollector(bus))
type Collector struct {
	bus *Bus

	published      *prometheus.Desc
	delivered      *prometheus.Desc
	cleared        *prometheus.Desc
	invoked        *prometheus.Desc
	callbackErrors *prometheus.Desc
	callbackPanics *prometheus.Desc
	pending        *prometheus.Desc
	subscribers    *prometheus.Desc
}

// NewCollector creates a Prometheus collector for a bus.
func NewCollector(bus *Bus) *Collector {
	return &Collector{
		bus: bus,
		published: prometheus.NewDesc(
			"pubsub_events_published_total",
			"Total number of events accepted by Publish.",
			nil, nil,
		),
		delivered: prometheus.NewDesc(
			"pubsub_events_delivered_total",
			"Total number of events consumed by Dispatch.",
			nil, nil,
		),
		cleared: prometheus.NewDesc(
			"pubsub_events_cleared_total",
			"Total number of events discarded by Clear or Reset.",
			nil, nil,
		),
		invoked: prometheus.NewDesc(
			"pubsub_callbacks_invoked_total",
			"Total number of callback invocations.",
			nil, nil,
		),
		callbackErrors: prometheus.NewDesc(
			"pubsub_callback_errors_total",
			"Total number of callbacks that returned errors.",
			nil, nil,
		),
		callbackPanics: prometheus.NewDesc(
			"pubsub_callback_panics_total",
			"Total number of callbacks that panicked.",
			nil, nil,
		),
		pending: prometheus.NewDesc(
			"pubsub_pending_events",
			"Current event queue depth.",
			nil, nil,
		),
		subscribers: prometheus.NewDesc(
			"pubsub_subscribers",
			"Current number of registered subscribers.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.published
	ch <- c.delivered
	ch <- c.cleared
	ch <- c.invoked
	ch <- c.callbackErrors
	ch <- c.callbackPanics
	ch <- c.pending
	ch <- c.subscribers
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.bus.Stats()

	ch <- prometheus.MustNewConstMetric(c.published, prometheus.CounterValue, float64(stats.EventsPublished))
	ch <- prometheus.MustNewConstMetric(c.delivered, prometheus.CounterValue, float64(stats.EventsDelivered))
	ch <- prometheus.MustNewConstMetric(c.cleared, prometheus.CounterValue, float64(stats.EventsCleared))
	ch <- prometheus.MustNewConstMetric(c.invoked, prometheus.CounterValue, float64(stats.CallbacksInvoked))
	ch <- prometheus.MustNewConstMetric(c.callbackErrors, prometheus.CounterValue, float64(stats.CallbackErrors))
	ch <- prometheus.MustNewConstMetric(c.callbackPanics, prometheus.CounterValue, float64(stats.CallbackPanics))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(stats.PendingEvents))
	ch <- prometheus.MustNewConstMetric(c.subscribers, prometheus.GaugeValue, float64(stats.Subscribers))
}
