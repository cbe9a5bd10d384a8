// Package resolver turns track and playlist ids into playable URLs and
// track lists. The remote search surface is a collaborator behind the
// Resolver interface; only playlist expansion ships with a concrete client.
package resolver

import (
	"context"

	"github.com/lfade/quaver/internal/track"
)

const watchURLPrefix = "https://youtube.com/watch?v="

// WatchURL builds the playable URL for a track id. The player process does
// its own stream extraction from it.
func WatchURL(id string) string {
	return watchURLPrefix + id
}

// Resolver is the remote song/playlist resolution surface consumed by the
// UI. Errors are opaque to callers and surfaced as messages.
type Resolver interface {
	// Search finds tracks matching the query.
	Search(ctx context.Context, query string) ([]track.Track, error)
	// SearchPlaylists finds playlists matching the query; the returned
	// tracks carry the playlist id and title.
	SearchPlaylists(ctx context.Context, query string) ([]track.Track, error)
	// ExpandPlaylist lists the tracks of a remote playlist id.
	ExpandPlaylist(ctx context.Context, playlistID string) ([]track.Track, error)
}
