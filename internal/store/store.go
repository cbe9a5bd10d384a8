// Package store wraps an ordered on-disk key-value database. It is the
// persistence substrate for the history, playlist and profile stores.
package store

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// ErrKeyNotFound is returned by Get when the key is absent.
var ErrKeyNotFound = errors.New("store: key not found")

// Store is a durable ordered byte-key/byte-value mapping. A Store owns its
// directory exclusively: opening the same path twice fails until the first
// handle is closed.
type Store struct {
	db   *pebble.DB
	path string
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the directory backing the store.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value for key, or ErrKeyNotFound.
func (s *Store) Get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	// The returned slice is only valid until closer.Close, so copy.
	out := make([]byte, len(value))
	copy(out, value)
	if err := closer.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// Has reports whether key exists.
func (s *Store) Has(key []byte) (bool, error) {
	_, err := s.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Set writes key to value, synced to disk.
func (s *Store) Set(key, value []byte) error {
	return s.db.Set(key, value, pebble.Sync)
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key []byte) error {
	return s.db.Delete(key, pebble.Sync)
}

// Scan calls fn for every key with the given prefix, in key order. A nil
// prefix scans the whole store. Iteration stops at the first error from fn.
func (s *Store) Scan(prefix []byte, fn func(key, value []byte) error) error {
	opts := &pebble.IterOptions{}
	if len(prefix) > 0 {
		opts.LowerBound = prefix
		opts.UpperBound = prefixUpperBound(prefix)
	}
	iter, err := s.db.NewIter(opts)
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// DeletePrefix removes every key with the given prefix in one range tombstone.
// A nil prefix clears the store, empty key and all.
func (s *Store) DeletePrefix(prefix []byte) error {
	if len(prefix) == 0 {
		// No range bound covers the whole keyspace, so collect and delete.
		var keys [][]byte
		if err := s.Scan(nil, func(key, _ []byte) error {
			k := make([]byte, len(key))
			copy(k, key)
			keys = append(keys, k)
			return nil
		}); err != nil {
			return err
		}
		batch := s.db.NewBatch()
		for _, k := range keys {
			if err := batch.Delete(k, nil); err != nil {
				batch.Close()
				return err
			}
		}
		return batch.Commit(pebble.Sync)
	}
	return s.db.DeleteRange(prefix, prefixUpperBound(prefix), pebble.Sync)
}

// Len returns the number of keys under prefix. It is a full scan; callers
// that page over entries should count while scanning instead.
func (s *Store) Len(prefix []byte) (int, error) {
	n := 0
	err := s.Scan(prefix, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

// Flush forces memtable contents to disk.
func (s *Store) Flush() error {
	return s.db.Flush()
}

// Close flushes and closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix.
func prefixUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	// Prefix is all 0xff; no upper bound.
	return nil
}
