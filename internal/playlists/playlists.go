// Package playlists provides named, durable, ordered track collections.
package playlists

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lfade/quaver/internal/songpage"
	"github.com/lfade/quaver/internal/store"
	"github.com/lfade/quaver/internal/track"
)

var (
	// ErrDuplicateName is returned by Create when the name is taken.
	ErrDuplicateName = errors.New("playlists: playlist already exists")
	// ErrNotFound is returned when the named playlist does not exist.
	ErrNotFound = errors.New("playlists: playlist not found")
)

const recordPrefix = "playlist:"

// EntryRecord is one slot in a playlist. Index values grow monotonically and
// are never reused, so entry order survives deletions and does not depend on
// storage iteration order.
type EntryRecord struct {
	Index uint64      `json:"index"`
	Track track.Track `json:"track"`
}

// Playlist is the persisted record for one named playlist. NextIndex is the
// authoritative source for the next slot.
type Playlist struct {
	Name      string        `json:"name"`
	NextIndex uint64        `json:"next_index"`
	Entries   []EntryRecord `json:"entries"`
}

// Store manages playlists on top of the key-value substrate. Mutations are
// serialized internally.
type Store struct {
	mu sync.Mutex
	kv *store.Store
}

// New returns a playlist store backed by kv.
func New(kv *store.Store) *Store {
	return &Store{kv: kv}
}

func recordKey(name string) []byte {
	return []byte(recordPrefix + name)
}

func (s *Store) load(name string) (*Playlist, error) {
	raw, err := s.kv.Get(recordKey(name))
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	var p Playlist
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("playlists: decode %s: %w", name, err)
	}
	return &p, nil
}

func (s *Store) save(p *Playlist) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.kv.Set(recordKey(p.Name), raw)
}

// Create makes a new empty playlist.
func (s *Store) Create(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.kv.Has(recordKey(name))
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	return s.save(&Playlist{Name: name})
}

// AddTrack appends t to the named playlist. A track id already present is
// moved to the end: the old entry is removed and the track re-appended under
// a fresh index.
func (s *Store) AddTrack(name string, t track.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load(name)
	if err != nil {
		return err
	}

	kept := p.Entries[:0]
	for _, e := range p.Entries {
		if e.Track.ID != t.ID {
			kept = append(kept, e)
		}
	}
	p.Entries = append(kept, EntryRecord{Index: p.NextIndex, Track: t})
	p.NextIndex++
	return s.save(p)
}

// RemoveTrack drops the entry with the given track id. Removing an absent
// track is a no-op, not an error.
func (s *Store) RemoveTrack(name, trackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load(name)
	if err != nil {
		return err
	}

	kept := p.Entries[:0]
	for _, e := range p.Entries {
		if e.Track.ID != trackID {
			kept = append(kept, e)
		}
	}
	p.Entries = kept
	return s.save(p)
}

// Names returns all playlist names. Order is not specified.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.kv.Scan([]byte(recordPrefix), func(key, _ []byte) error {
		names = append(names, string(key[len(recordPrefix):]))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Tracks returns the playlist's tracks ordered by stored index.
func (s *Store) Tracks(name string) ([]track.Track, error) {
	s.mu.Lock()
	p, err := s.load(name)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	entries := make([]EntryRecord, len(p.Entries))
	copy(entries, p.Entries)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Index < entries[j].Index
	})

	out := make([]track.Track, len(entries))
	for i, e := range entries {
		out[i] = e.Track
	}
	return out, nil
}

// Materialize copies the playlist into a fresh page store for browsing and
// playback. The copy is detached: later playlist edits do not show up in it.
func (s *Store) Materialize(name string) (*songpage.Store, error) {
	tracks, err := s.Tracks(name)
	if err != nil {
		return nil, err
	}
	return songpage.FromTracks(tracks), nil
}

// Delete removes the named playlist. Deleting an absent playlist is a no-op.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(recordKey(name))
}
