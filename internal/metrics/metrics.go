// Package metrics provides Prometheus metrics for the activity agent.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the agent.
type Metrics struct {
	EventsTotal      *prometheus.CounterVec
	SuggestionsTotal *prometheus.CounterVec
	ExecutionsTotal  *prometheus.CounterVec
	HistorySize      prometheus.Gauge
	Tracking         prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_events_total",
				Help: "Total number of activity events processed by kind.",
			},
			[]string{"kind"},
		),
		SuggestionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_suggestions_total",
				Help: "Total suggestion submissions by detector and outcome.",
			},
			[]string{"detector", "outcome"},
		),
		ExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_executions_total",
				Help: "Total automation executions by outcome.",
			},
			[]string{"outcome"},
		),
		HistorySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracker_history_size",
				Help: "Current number of events in the history buffer.",
			},
		),
		Tracking: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracker_tracking",
				Help: "1 while the tracker is in the Tracking state, 0 otherwise.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.EventsTotal)
	reg.MustRegister(m.SuggestionsTotal)
	reg.MustRegister(m.ExecutionsTotal)
	reg.MustRegister(m.HistorySize)
	reg.MustRegister(m.Tracking)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordEvent increments the event counter for a kind.
func (m *Metrics) RecordEvent(kind string) {
	m.EventsTotal.WithLabelValues(kind).Inc()
}

// RecordSuggestion increments the suggestion counter.
func (m *Metrics) RecordSuggestion(detector, outcome string) {
	m.SuggestionsTotal.WithLabelValues(detector, outcome).Inc()
}

// RecordExecution increments the execution counter.
func (m *Metrics) RecordExecution(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.ExecutionsTotal.WithLabelValues(outcome).Inc()
}
