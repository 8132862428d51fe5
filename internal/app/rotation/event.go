package rotation

// EventType represents a scheduler event type.
type EventType int

const (
	EventFired   EventType = iota // A rotation step selected the next scene
	EventResumed                  // Rotation started
	EventPaused                   // Rotation stopped
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventFired:
		return "autoplay_fired"
	case EventResumed:
		return "autoplay_resumed"
	case EventPaused:
		return "autoplay_paused"
	default:
		return "unknown"
	}
}

// Event represents a scheduler event.
type Event struct {
	Type  EventType
	Scene string // Scene selected by a fire (empty otherwise)
	State State
}
