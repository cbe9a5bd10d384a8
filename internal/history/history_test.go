package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/lfade/quaver/internal/store"
	"github.com/lfade/quaver/internal/track"
)

func openTestHistory(t *testing.T) *Store {
	t.Helper()
	kv, err := store.Open(filepath.Join(t.TempDir(), "history"))
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	h, err := New(kv)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	return h
}

func TestRecordPlay_NewEntry(t *testing.T) {
	h := openTestHistory(t)
	h.SetClock(func() int64 { return 100 })

	if err := h.RecordPlay(track.New("a", "Song A", []string{"Artist"})); err != nil {
		t.Fatalf("RecordPlay: %v", err)
	}

	entries, err := h.Recent(0, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.PlayCount != 1 {
		t.Errorf("PlayCount = %d, want 1", e.PlayCount)
	}
	if e.LastPlayedAt != 100 {
		t.Errorf("LastPlayedAt = %d, want 100", e.LastPlayedAt)
	}
}

func TestRecordPlay_ReplayBumpsCount(t *testing.T) {
	h := openTestHistory(t)

	ts := int64(100)
	h.SetClock(func() int64 { return ts })

	tr := track.New("a", "Song A", []string{"Artist"})
	if err := h.RecordPlay(tr); err != nil {
		t.Fatalf("first RecordPlay: %v", err)
	}
	ts = 200
	if err := h.RecordPlay(tr); err != nil {
		t.Fatalf("second RecordPlay: %v", err)
	}

	entries, err := h.Recent(0, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("replay grew entry count to %d, want 1", len(entries))
	}
	if entries[0].PlayCount != 2 {
		t.Errorf("PlayCount = %d, want 2", entries[0].PlayCount)
	}
	if entries[0].LastPlayedAt != 200 {
		t.Errorf("LastPlayedAt = %d, want second call's timestamp 200", entries[0].LastPlayedAt)
	}
}

func TestRecent_OrderAndIdempotence(t *testing.T) {
	h := openTestHistory(t)

	ts := int64(0)
	h.SetClock(func() int64 { ts++; return ts })

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("id%d", i)
		if err := h.RecordPlay(track.New(id, "Song "+id, nil)); err != nil {
			t.Fatalf("RecordPlay: %v", err)
		}
	}

	first, err := h.Recent(0, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	second, err := h.Recent(0, 3)
	if err != nil {
		t.Fatalf("Recent again: %v", err)
	}
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("page lengths = %d, %d, want 3, 3", len(first), len(second))
	}
	for i := range first {
		if first[i].Track.ID != second[i].Track.ID {
			t.Errorf("pagination not idempotent at %d: %q vs %q", i, first[i].Track.ID, second[i].Track.ID)
		}
	}
	// Most recent first.
	if first[0].Track.ID != "id4" {
		t.Errorf("first entry = %q, want id4", first[0].Track.ID)
	}
}

func TestRecent_DisjointPages(t *testing.T) {
	h := openTestHistory(t)

	ts := int64(0)
	h.SetClock(func() int64 { ts++; return ts })

	const pageSize = 4
	for i := 0; i < 2*pageSize; i++ {
		if err := h.RecordPlay(track.New(fmt.Sprintf("id%02d", i), "t", nil)); err != nil {
			t.Fatalf("RecordPlay: %v", err)
		}
	}

	page1, err := h.Recent(0, pageSize)
	if err != nil {
		t.Fatalf("Recent page1: %v", err)
	}
	page2, err := h.Recent(pageSize, pageSize)
	if err != nil {
		t.Fatalf("Recent page2: %v", err)
	}

	seen := map[string]bool{}
	for _, e := range append(page1, page2...) {
		if seen[e.Track.ID] {
			t.Errorf("track %q appears in both pages", e.Track.ID)
		}
		seen[e.Track.ID] = true
	}
	if len(seen) != 2*pageSize {
		t.Errorf("union covers %d tracks, want %d", len(seen), 2*pageSize)
	}
}

func TestMostPlayed(t *testing.T) {
	h := openTestHistory(t)
	h.SetClock(func() int64 { return 1 })

	a := track.New("a", "A", nil)
	b := track.New("b", "B", nil)
	for i := 0; i < 3; i++ {
		if err := h.RecordPlay(a); err != nil {
			t.Fatalf("RecordPlay a: %v", err)
		}
	}
	if err := h.RecordPlay(b); err != nil {
		t.Fatalf("RecordPlay b: %v", err)
	}

	top, err := h.MostPlayed(1)
	if err != nil {
		t.Fatalf("MostPlayed: %v", err)
	}
	if len(top) != 1 || top[0].Track.ID != "a" || top[0].PlayCount != 3 {
		t.Errorf("MostPlayed(1) = %+v, want [a x3]", top)
	}
}

func TestLastPlayed(t *testing.T) {
	h := openTestHistory(t)

	last, err := h.LastPlayed()
	if err != nil {
		t.Fatalf("LastPlayed on empty: %v", err)
	}
	if last != nil {
		t.Errorf("LastPlayed on empty = %+v, want nil", last)
	}

	ts := int64(0)
	h.SetClock(func() int64 { ts++; return ts })
	h.RecordPlay(track.New("a", "A", nil))
	h.RecordPlay(track.New("b", "B", nil))

	last, err = h.LastPlayed()
	if err != nil {
		t.Fatalf("LastPlayed: %v", err)
	}
	if last == nil || last.Track.ID != "b" {
		t.Errorf("LastPlayed = %+v, want b", last)
	}
}

func TestDeleteAndClear(t *testing.T) {
	h := openTestHistory(t)
	h.SetClock(func() int64 { return 1 })

	h.RecordPlay(track.New("a", "A", nil))
	h.RecordPlay(track.New("b", "B", nil))

	if err := h.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	entries, _ := h.Recent(0, 10)
	if len(entries) != 1 || entries[0].Track.ID != "b" {
		t.Errorf("after Delete, entries = %+v", entries)
	}

	if err := h.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ = h.Recent(0, 10)
	if len(entries) != 0 {
		t.Errorf("after Clear, %d entries remain", len(entries))
	}
}

func TestLenientScan_SkipsCorruptRecords(t *testing.T) {
	kv, err := store.Open(filepath.Join(t.TempDir(), "history"))
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	defer kv.Close()

	h, err := New(kv)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	h.SetClock(func() int64 { return 1 })
	h.RecordPlay(track.New("ok", "OK", nil))

	if err := kv.Set([]byte("entry:bad"), []byte("{not json")); err != nil {
		t.Fatalf("plant corrupt record: %v", err)
	}

	entries, err := h.Recent(0, 10)
	if err != nil {
		t.Fatalf("Recent over corrupt record: %v", err)
	}
	if len(entries) != 1 || entries[0].Track.ID != "ok" {
		t.Errorf("entries = %+v, want just the decodable one", entries)
	}
}

func TestMigrate_UpgradesLegacyOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")

	kv, err := store.Open(dir)
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}

	legacy := legacyEntry{
		SongName:   "Old Song",
		SongID:     "old1",
		ArtistName: []string{"Old Artist"},
		TimeStamp:  42,
	}
	raw, _ := json.Marshal(legacy)
	if err := kv.Set([]byte("entry:old1"), raw); err != nil {
		t.Fatalf("seed legacy record: %v", err)
	}

	h, err := New(kv)
	if err != nil {
		t.Fatalf("open history (migrating): %v", err)
	}

	entries, err := h.Recent(0, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries after migration, want 1", len(entries))
	}
	e := entries[0]
	if e.Track.ID != "old1" || e.Track.Title != "Old Song" {
		t.Errorf("migrated track = %+v", e.Track)
	}
	if e.PlayCount != 1 || e.LastPlayedAt != 42 {
		t.Errorf("migrated entry = count %d at %d, want 1 at 42", e.PlayCount, e.LastPlayedAt)
	}

	// Backup of the original record exists.
	if ok, _ := kv.Has([]byte(backupPrefix + "old1")); !ok {
		t.Error("no backup written for migrated record")
	}

	// Reopening must not rerun the rewrite: bump the count, reopen, check.
	h.SetClock(func() int64 { return 99 })
	if err := h.RecordPlay(track.New("old1", "Old Song", []string{"Old Artist"})); err != nil {
		t.Fatalf("RecordPlay: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("close kv: %v", err)
	}

	kv2, err := store.Open(dir)
	if err != nil {
		t.Fatalf("reopen kv: %v", err)
	}
	defer kv2.Close()
	h2, err := New(kv2)
	if err != nil {
		t.Fatalf("reopen history: %v", err)
	}
	entries, err = h2.Recent(0, 10)
	if err != nil {
		t.Fatalf("Recent after reopen: %v", err)
	}
	if len(entries) != 1 || entries[0].PlayCount != 2 {
		t.Errorf("after reopen entries = %+v, want old1 with count 2", entries)
	}
}
