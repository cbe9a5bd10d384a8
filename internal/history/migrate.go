package history

import (
	"encoding/json"

	"github.com/lfade/quaver/internal/track"
)

const backupPrefix = "backup:v1:"

// legacyEntry is the record shape written before play counts existed: one
// timestamped row per track, overwritten on replay.
type legacyEntry struct {
	SongName   string   `json:"song_name"`
	SongID     string   `json:"song_id"`
	ArtistName []string `json:"artist_name"`
	TimeStamp  int64    `json:"time_stamp"`
}

// migrate upgrades legacy records to the current shape exactly once per
// store. The marker key short-circuits every later startup, so calling this
// from New on each run is safe. Originals are kept under a backup prefix
// before being rewritten.
func (s *Store) migrate() error {
	done, err := s.kv.Has([]byte(migratedKey))
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	// Collect first, write after: the scan must not observe its own writes.
	type pending struct {
		key     []byte
		raw     []byte
		upgrade *Entry
	}
	var work []pending

	err = s.kv.Scan([]byte(entryPrefix), func(key, value []byte) error {
		var current Entry
		if err := json.Unmarshal(value, &current); err == nil &&
			current.Version == schemaVersion && !current.Track.IsZero() {
			return nil
		}

		var legacy legacyEntry
		if err := json.Unmarshal(value, &legacy); err != nil || legacy.SongID == "" {
			// Neither shape decodes; leave the record alone.
			return nil
		}

		k := make([]byte, len(key))
		copy(k, key)
		v := make([]byte, len(value))
		copy(v, value)

		work = append(work, pending{
			key: k,
			raw: v,
			upgrade: &Entry{
				Version:      schemaVersion,
				Track:        track.New(legacy.SongID, legacy.SongName, legacy.ArtistName),
				LastPlayedAt: legacy.TimeStamp,
				PlayCount:    1,
			},
		})
		return nil
	})
	if err != nil {
		return err
	}

	for _, w := range work {
		if err := s.kv.Set([]byte(backupPrefix+w.upgrade.Track.ID), w.raw); err != nil {
			return err
		}
		value, err := json.Marshal(w.upgrade)
		if err != nil {
			return err
		}
		if err := s.kv.Set(w.key, value); err != nil {
			return err
		}
	}

	if err := s.kv.Set([]byte(migratedKey), []byte("1")); err != nil {
		return err
	}
	return s.kv.Flush()
}
