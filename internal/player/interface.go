// Package player drives the external media-player process. The session
// controller never talks to the process directly; everything goes through
// Interface so tests can substitute the mock.
package player

// Interface is the external player contract. Every call is synchronous and
// may fail at any time: the process can crash or have no file loaded, and
// callers must treat failures as "no new information" rather than fatal.
type Interface interface {
	// Play loads and starts the given URL, replacing whatever was playing.
	Play(url string) error
	// PauseResume toggles between paused and playing.
	PauseResume() error
	// Seek moves the position by delta seconds (negative seeks backwards).
	Seek(delta int) error
	// VolumeUp and VolumeDown nudge the volume by a fixed step.
	VolumeUp() error
	VolumeDown() error
	// SetLoop enables or disables looping of the current file.
	SetLoop(loop bool) error
	// IsPlaying reports whether the player is actively playing.
	IsPlaying() (bool, error)
	// Position returns the playback position in seconds.
	Position() (float64, error)
	// Duration returns the track length formatted "MM:SS", or "00:00" when
	// the player does not know it yet.
	Duration() string
	// Volume returns the current volume in percent.
	Volume() (int64, error)
	// Close shuts the player down.
	Close() error
}

// Verify implementations at compile time.
var (
	_ Interface = (*MPV)(nil)
	_ Interface = (*Mock)(nil)
)
