// Package songpage holds a transient, position-indexed view over a track
// list (search results, a materialized playlist) with fixed-size page
// retrieval. It lives for one browse action and is rebuilt on the next; it
// is never persisted.
package songpage

import (
	"errors"
	"sort"
	"sync"

	"github.com/lfade/quaver/internal/track"
)

// PageSize is the number of tracks per retrieved page.
const PageSize = 20

// ErrNotFound is returned when no track occupies the requested position.
var ErrNotFound = errors.New("songpage: no track at position")

// Store maps zero-based positions to tracks. Appends happen during
// construction; afterwards the store is read concurrently by the UI and the
// playback session.
type Store struct {
	mu     sync.RWMutex
	byPos  map[int]track.Track
	next   int
}

// New returns an empty page store.
func New() *Store {
	return &Store{byPos: make(map[int]track.Track)}
}

// FromTracks builds a page store seeded with tracks in order.
func FromTracks(tracks []track.Track) *Store {
	s := New()
	for _, t := range tracks {
		s.Append(t)
	}
	return s
}

// Append stores t at the next sequential position.
func (s *Store) Append(t track.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPos[s.next] = t
	s.next++
}

// ByPosition returns the track at position i.
func (s *Store) ByPosition(i int) (track.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byPos[i]
	if !ok {
		return track.Track{}, ErrNotFound
	}
	return t, nil
}

// Page returns the tracks whose position lies in [offset, offset+PageSize),
// sorted by position. Gaps are tolerated: missing positions simply do not
// contribute.
func (s *Store) Page(offset int) []track.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := make([]int, 0, PageSize)
	for pos := range s.byPos {
		if pos >= offset && pos < offset+PageSize {
			positions = append(positions, pos)
		}
	}
	sort.Ints(positions)

	out := make([]track.Track, 0, len(positions))
	for _, pos := range positions {
		out = append(out, s.byPos[pos])
	}
	return out
}

// Len returns the number of stored tracks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPos)
}
