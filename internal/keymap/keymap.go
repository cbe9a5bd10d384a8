// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	ActionQuit Action = "quit"

	// Playback actions
	ActionPlayPause    Action = "play_pause"
	ActionNextTrack    Action = "next_track"
	ActionPrevTrack    Action = "prev_track"
	ActionSeekForward  Action = "seek_forward"
	ActionSeekBack     Action = "seek_back"
	ActionVolumeUp     Action = "volume_up"
	ActionVolumeDown   Action = "volume_down"
	ActionStopPlaylist Action = "stop_playlist"
)

// Binding describes a single key binding.
type Binding struct {
	Keys        []string
	Action      Action
	Description string
}

// All contains the default key bindings, also used for help generation.
var All = []Binding{
	{[]string{"q", "ctrl+c"}, ActionQuit, "Quit application"},
	{[]string{" "}, ActionPlayPause, "Play/pause"},
	{[]string{"n", "pgdown"}, ActionNextTrack, "Next track"},
	{[]string{"p", "pgup"}, ActionPrevTrack, "Previous track"},
	{[]string{"right"}, ActionSeekForward, "Seek forward"},
	{[]string{"left"}, ActionSeekBack, "Seek backward"},
	{[]string{"+", "="}, ActionVolumeUp, "Volume up"},
	{[]string{"-"}, ActionVolumeDown, "Volume down"},
	{[]string{"s"}, ActionStopPlaylist, "Leave playlist mode"},
}
