package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Suppression reasons for homecast_events_suppressed_total.
const (
	suppressedUnindexed = "unindexed"
	suppressedUnchanged = "unchanged"
)

// metrics holds the server's Prometheus collectors. Each Server owns its
// registry so tests can create servers freely.
type metrics struct {
	registry *prometheus.Registry

	commands         *prometheus.CounterVec
	eventsPublished  prometheus.Counter
	eventsSuppressed *prometheus.CounterVec
	indexSize        prometheus.Gauge
}

func newMetrics(hub *Hub) *metrics {
	reg := prometheus.NewRegistry()
	m := &metrics{
		registry: reg,
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "homecast_commands_total",
				Help: "Commands executed, by action and result status.",
			},
			[]string{"action", "result"},
		),
		eventsPublished: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "homecast_events_published_total",
				Help: "Characteristic change events sent to stream listeners.",
			},
		),
		eventsSuppressed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "homecast_events_suppressed_total",
				Help: "Characteristic changes not streamed, by reason.",
			},
			[]string{"reason"},
		),
		indexSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "homecast_index_characteristics",
				Help: "Characteristics in the current index.",
			},
		),
	}

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(m.commands)
	reg.MustRegister(m.eventsPublished)
	reg.MustRegister(m.eventsSuppressed)
	reg.MustRegister(m.indexSize)
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "homecast_stream_listeners",
			Help: "Connected SSE and WebSocket listeners.",
		},
		func() float64 { return float64(hub.Count()) },
	))
	return m
}
