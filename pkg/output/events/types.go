// Package events defines the output events of a charset fuzz session.
// All events are designed for JSON serialization and CI/CD integration.
//
// BaseEvent is embedded in every concrete event type.
package events

import "time"

// EventType represents the type of output event.
type EventType string

const (
	// EventTypeStart indicates a run has started.
	EventTypeStart EventType = "start"
	// EventTypeResult indicates one variant changed state.
	EventTypeResult EventType = "result"
	// EventTypeError indicates a failure outside a single variant.
	EventTypeError EventType = "error"
	// EventTypeSummary indicates the end-of-run counts.
	EventTypeSummary EventType = "summary"
)

// Event is the base interface for all events.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
	ScanID() string
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Type EventType `json:"type"`
	Time time.Time `json:"timestamp"`
	Scan string    `json:"run_id"`
}

// NewBase returns a BaseEvent stamped with the current time.
func NewBase(t EventType, runID string) BaseEvent {
	return BaseEvent{Type: t, Time: time.Now().UTC(), Scan: runID}
}

// EventType returns the type of this event.
func (e BaseEvent) EventType() EventType { return e.Type }

// Timestamp returns when this event occurred.
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// ScanID returns the run that produced this event.
func (e BaseEvent) ScanID() string { return e.Scan }
