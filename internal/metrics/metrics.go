// Package metrics holds the Prometheus collectors for the habits server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the server collectors on their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpDuration *prometheus.HistogramVec
	entries      *prometheus.CounterVec
	habits       *prometheus.CounterVec
}

// New registers the collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "habits_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"method", "route", "status"},
		),
		entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habits_entries_recorded_total",
				Help: "Habit entries written, by completion state",
			},
			[]string{"completed"},
		),
		habits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habits_lifecycle_total",
				Help: "Habits created and deleted",
			},
			[]string{"event"},
		),
	}
	reg.MustRegister(
		m.httpDuration,
		m.entries,
		m.habits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// EntryRecorded counts an entry upsert.
func (m *Metrics) EntryRecorded(completed bool) {
	m.entries.WithLabelValues(strconv.FormatBool(completed)).Inc()
}

// HabitCreated counts a created habit.
func (m *Metrics) HabitCreated() { m.habits.WithLabelValues("created").Inc() }

// HabitDeleted counts a deleted habit.
func (m *Metrics) HabitDeleted() { m.habits.WithLabelValues("deleted").Inc() }
