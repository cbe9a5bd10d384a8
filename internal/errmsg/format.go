// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlay        Op = "play track"
	OpSetLoop     Op = "set loop mode"
	OpPauseResume Op = "toggle pause"
	OpSeek        Op = "seek"
	OpVolume      Op = "change volume"

	// Playlist traversal
	OpPlaylistStart   Op = "start playlist"
	OpPlaylistAdvance Op = "advance playlist"

	// History operations
	OpHistoryRecord Op = "record play in history"
	OpHistoryLoad   Op = "load history"
	OpHistoryDelete Op = "delete history entry"
	OpHistoryClear  Op = "clear history"

	// User playlist operations
	OpPlaylistCreate   Op = "create playlist"
	OpPlaylistDelete   Op = "delete playlist"
	OpPlaylistAddTrack Op = "add track to playlist"
	OpPlaylistRemove   Op = "remove track from playlist"
	OpPlaylistLoad     Op = "load playlist"

	// Search / resolution
	OpSearch         Op = "search"
	OpPlaylistExpand Op = "expand remote playlist"

	// Profile
	OpProfileSave Op = "save profile"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
