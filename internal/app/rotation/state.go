// Package rotation advances through the scene playlist on a fixed
// interval.
package rotation

// State represents the scheduler state.
type State int

const (
	StateStopped State = iota // No timer armed
	StateRunning              // Timer armed, rotation in progress
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}
