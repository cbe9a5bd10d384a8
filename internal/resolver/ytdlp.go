package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/lfade/quaver/internal/track"
)

const expandTimeout = 60 * time.Second

// Client expands remote playlists through the ytdlp library.
type Client struct {
	timeout time.Duration
}

// NewClient returns a playlist expansion client.
func NewClient() *Client {
	return &Client{timeout: expandTimeout}
}

// ExpandPlaylist fetches all items of the given playlist id and projects
// them to tracks. Artist metadata is not part of the playlist listing, so
// artists come back empty and the UI fills them from search results when it
// has them.
func (c *Client) ExpandPlaylist(ctx context.Context, playlistID string) ([]track.Track, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("resolver: empty playlist id")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("resolver: expand playlist %s: %w", playlistID, err)
	}

	tracks := make([]track.Track, 0, len(items))
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		tracks = append(tracks, track.New(it.VideoID, it.Title, nil))
	}
	return tracks, nil
}
