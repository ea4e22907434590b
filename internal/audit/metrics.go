package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// droppedEvents counts audit events discarded because the buffer was full.
var droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cycletracker_audit_events_dropped_total",
	Help: "Total number of audit events dropped due to a full buffer",
})
