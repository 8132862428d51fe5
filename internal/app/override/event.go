package override

import "time"

// EventType represents an override event type.
type EventType int

const (
	EventStarted  EventType = iota // Override window opened
	EventFinished                  // Override window closed, rotation handed back
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "override_started"
	case EventFinished:
		return "override_finished"
	default:
		return "unknown"
	}
}

// Event represents an override event.
type Event struct {
	Type     EventType
	Scene    string
	Duration time.Duration // Window length (EventStarted only)
}
