package session

import (
	"github.com/lfade/quaver/internal/errmsg"
	"github.com/lfade/quaver/internal/track"
)

// NowPlayingChange is emitted when a new track starts loading. It carries
// whether playback is part of a playlist so the UI can show traversal keys.
type NowPlayingChange struct {
	Track        track.Track
	PlaylistMode bool
}

// PlaylistEnded is emitted when playlist mode is switched off, either by the
// user or because traversal stopped.
type PlaylistEnded struct{}

// AddedToPlaylist is emitted after a track was stored in a user playlist, so
// the status bar can confirm the action.
type AddedToPlaylist struct {
	Playlist string
	Track    track.Track
}

// ErrorEvent is emitted when a player command or store operation fails
// mid-session. The UI renders it with errmsg.Format.
type ErrorEvent struct {
	Op  errmsg.Op
	Err error
}
