// Package history keeps the log of played tracks with play counts and
// recency ordering.
package history

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lfade/quaver/internal/store"
	"github.com/lfade/quaver/internal/track"
)

const schemaVersion = 2

const (
	entryPrefix = "entry:"
	// Reserved sentinel key; its presence means the play-count migration
	// already ran against this store.
	migratedKey = "meta:migrated:playcount"
)

// Entry is one played track. There is exactly one entry per track id.
type Entry struct {
	Version      int         `json:"version"`
	Track        track.Track `json:"track"`
	LastPlayedAt int64       `json:"last_played_at"`
	PlayCount    uint32      `json:"play_count"`
}

// Store is the history database. All mutations are serialized internally,
// so a single Store may be shared across goroutines.
type Store struct {
	mu  sync.Mutex
	kv  *store.Store
	now func() int64
}

// New opens the history store on top of kv and runs the schema migration if
// it has not run before.
func New(kv *store.Store) (*Store, error) {
	s := &Store{
		kv:  kv,
		now: func() int64 { return time.Now().Unix() },
	}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetClock overrides the timestamp source. Tests only.
func (s *Store) SetClock(now func() int64) {
	s.now = now
}

func entryKey(id string) []byte {
	return []byte(entryPrefix + id)
}

// RecordPlay inserts a new entry with play count 1, or bumps the count and
// refreshes the timestamp when the track was played before. The
// read-modify-write runs under the store lock so concurrent plays cannot
// lose counts.
func (s *Store) RecordPlay(t track.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entryKey(t.ID)
	entry := Entry{
		Version:      schemaVersion,
		Track:        t,
		LastPlayedAt: s.now(),
		PlayCount:    1,
	}

	raw, err := s.kv.Get(key)
	switch {
	case err == nil:
		var prev Entry
		if decodeErr := json.Unmarshal(raw, &prev); decodeErr == nil && prev.Version == schemaVersion {
			entry.PlayCount = prev.PlayCount + 1
		}
		// An undecodable previous record is replaced rather than kept.
	case errors.Is(err, store.ErrKeyNotFound):
		// First play.
	default:
		return err
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.kv.Set(key, value)
}

// entries returns every decodable entry. Records that fail to decode are
// skipped so one corrupt value cannot hide the rest of the history.
func (s *Store) entries() ([]Entry, error) {
	var out []Entry
	err := s.kv.Scan([]byte(entryPrefix), func(_, value []byte) error {
		var e Entry
		if err := json.Unmarshal(value, &e); err != nil || e.Track.IsZero() {
			return nil
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Recent returns entries ordered most-recently-played first, skipping offset
// entries and returning at most pageSize. Ties on the timestamp fall back to
// the track id so repeated calls page identically.
func (s *Store) Recent(offset, pageSize int) ([]Entry, error) {
	all, err := s.entries()
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastPlayedAt != all[j].LastPlayedAt {
			return all[i].LastPlayedAt > all[j].LastPlayedAt
		}
		return all[i].Track.ID < all[j].Track.ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if pageSize >= 0 && len(all) > pageSize {
		all = all[:pageSize]
	}
	return all, nil
}

// MostPlayed returns up to limit entries ordered by play count descending.
func (s *Store) MostPlayed(limit int) ([]Entry, error) {
	all, err := s.entries()
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].PlayCount != all[j].PlayCount {
			return all[i].PlayCount > all[j].PlayCount
		}
		if all[i].LastPlayedAt != all[j].LastPlayedAt {
			return all[i].LastPlayedAt > all[j].LastPlayedAt
		}
		return all[i].Track.ID < all[j].Track.ID
	})
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// LastPlayed returns the most recent entry, or nil when the history is empty.
func (s *Store) LastPlayed() (*Entry, error) {
	recent, err := s.Recent(0, 1)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, nil
	}
	return &recent[0], nil
}

// Delete removes the entry for the given track id, if present.
func (s *Store) Delete(trackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(entryKey(trackID))
}

// Clear removes every history entry. The migration marker is kept so the
// upgrade does not rerun against records that no longer exist.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.DeletePrefix([]byte(entryPrefix))
}
