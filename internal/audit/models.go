// Package audit captures an append-only trail of tracking actions: entries
// recorded, cycles closed, cycles started. Events are emitted from domain
// logic and persisted by a background worker so the request path never blocks
// on the audit sink.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies an audit event.
type Kind string

const (
	KindObservationRecorded Kind = "observation.recorded"
	KindCycleStarted        Kind = "cycle.started"
	KindCycleClosed         Kind = "cycle.closed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	CycleID   uuid.UUID `json:"cycleId"`
	DayNumber int       `json:"dayNumber,omitempty"`
	Code      string    `json:"observation,omitempty"`
	At        time.Time `json:"at"`
}
