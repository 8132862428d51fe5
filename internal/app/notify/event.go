package notify

import "time"

// Type classifies an event.
type Type string

// Event types, matching the String() values of the producing components.
const (
	TypeSceneLoaded      Type = "scene_loaded"
	TypeSceneLoadFailed  Type = "scene_load_failed"
	TypeSceneUnloaded    Type = "scene_unloaded"
	TypeAutoplayFired    Type = "autoplay_fired"
	TypeAutoplayResumed  Type = "autoplay_resumed"
	TypeAutoplayPaused   Type = "autoplay_paused"
	TypeOverrideStarted  Type = "override_started"
	TypeOverrideFinished Type = "override_finished"

	// TypeSubscribed is sent once to a new subscriber so it learns the
	// current sequence number before any broadcast arrives.
	TypeSubscribed Type = "subscribed"
)

// Event is a notification delivered to subscribers.
type Event struct {
	SequenceNo uint64    `json:"sequence_no"`
	Type       Type      `json:"type"`
	Scene      string    `json:"scene,omitempty"`
	At         time.Time `json:"at"`
}
