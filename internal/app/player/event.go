package player

// EventType represents a player event type.
type EventType int

const (
	EventSceneLoaded   EventType = iota // Scene was placed successfully
	EventLoadFailed                     // Placement failed, environment left empty
	EventSceneUnloaded                  // Live scene was cleared
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventSceneLoaded:
		return "scene_loaded"
	case EventLoadFailed:
		return "scene_load_failed"
	case EventSceneUnloaded:
		return "scene_unloaded"
	default:
		return "unknown"
	}
}

// Event represents a player event.
type Event struct {
	Type  EventType
	Scene string // Scene name (empty for unload when nothing was named)
}
