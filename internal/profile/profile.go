// Package profile persists per-user listening statistics.
package profile

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/lfade/quaver/internal/store"
)

const recordKey = "profile"

type record struct {
	ListenMillis int64 `json:"listen_ms"`
	PlaySessions int64 `json:"play_sessions"`
}

// Store accumulates listening time and play-session counts. The listening
// accumulator task adds a second at a time, so writes are debounced: the
// counter lives in memory and is flushed periodically and on Close.
type Store struct {
	mu    sync.Mutex
	kv    *store.Store
	rec   record
	dirty int64 // milliseconds accumulated since last flush
}

// Milliseconds of accumulated time per flush.
const flushEvery = 30_000

// New loads the profile from kv, starting fresh when none exists.
func New(kv *store.Store) (*Store, error) {
	s := &Store{kv: kv}

	raw, err := kv.Get([]byte(recordKey))
	switch {
	case err == nil:
		if decodeErr := json.Unmarshal(raw, &s.rec); decodeErr != nil {
			// A corrupt profile resets the counters rather than blocking
			// startup.
			s.rec = record{}
		}
	case errors.Is(err, store.ErrKeyNotFound):
	default:
		return nil, err
	}
	return s, nil
}

// AddListenTime credits d of listening. Called once a second while the
// player reports playing.
func (s *Store) AddListenTime(d time.Duration) error {
	ms := d.Milliseconds()
	if ms <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.ListenMillis += ms
	s.dirty += ms
	if s.dirty < flushEvery {
		return nil
	}
	return s.flushLocked()
}

// AddPlaySession counts one started playback.
func (s *Store) AddPlaySession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.PlaySessions++
	return s.flushLocked()
}

// ListenTime returns the total accumulated listening time.
func (s *Store) ListenTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.rec.ListenMillis) * time.Millisecond
}

// PlaySessions returns how many playbacks were started.
func (s *Store) PlaySessions() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.PlaySessions
}

func (s *Store) flushLocked() error {
	raw, err := json.Marshal(s.rec)
	if err != nil {
		return err
	}
	if err := s.kv.Set([]byte(recordKey), raw); err != nil {
		return err
	}
	s.dirty = 0
	return nil
}

// Close flushes any unsaved listening time.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}
