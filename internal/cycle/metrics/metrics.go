// Package metrics provides observability for the cycle module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks cycle tracking activity: entries recorded and cycle
// transitions.
type Metrics struct {
	ObservationsRecorded prometheus.Counter
	CyclesClosed         prometheus.Counter
}

// New creates a Metrics instance with all cycle module metrics registered.
func New() *Metrics {
	return &Metrics{
		ObservationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cycletracker_observations_recorded_total",
			Help: "Total number of daily observations recorded or updated",
		}),
		CyclesClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cycletracker_cycles_closed_total",
			Help: "Total number of cycles closed",
		}),
	}
}

// IncrementObservationsRecorded records a successful entry write.
func (m *Metrics) IncrementObservationsRecorded() {
	m.ObservationsRecorded.Inc()
}

// IncrementCyclesClosed records a completed close-and-start transition.
func (m *Metrics) IncrementCyclesClosed() {
	m.CyclesClosed.Inc()
}
