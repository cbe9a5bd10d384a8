// internal/session/state.go
package session

// State is the playback session state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Direction selects the playlist traversal direction for Advance.
type Direction int

const (
	// Next wraps to the start after the last track.
	Next Direction = iota
	// Previous clamps at the first track; it does not wrap.
	Previous
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Next:
		return "Next"
	case Previous:
		return "Previous"
	default:
		return "Unknown"
	}
}
