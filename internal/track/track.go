// Package track defines the playable unit shared by every store and the
// playback session.
package track

import "strings"

// Track is an immutable value identified by its remote id. Two tracks are
// the same track when their IDs match, regardless of metadata.
type Track struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Artists []string `json:"artists"`
}

// New returns a track with a defensive copy of artists.
func New(id, title string, artists []string) Track {
	copied := make([]string, len(artists))
	copy(copied, artists)
	return Track{ID: id, Title: title, Artists: copied}
}

// Same reports whether t and other identify the same track.
func (t Track) Same(other Track) bool {
	return t.ID == other.ID
}

// ArtistLine joins the artist list for display.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// IsZero reports whether t carries no identity.
func (t Track) IsZero() bool {
	return t.ID == ""
}
