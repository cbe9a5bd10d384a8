package songpage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lfade/quaver/internal/track"
)

func fill(n int) *Store {
	s := New()
	for i := 0; i < n; i++ {
		s.Append(track.New(fmt.Sprintf("id%d", i), fmt.Sprintf("Song %d", i), nil))
	}
	return s
}

func TestByPosition(t *testing.T) {
	s := fill(3)

	got, err := s.ByPosition(1)
	if err != nil {
		t.Fatalf("ByPosition(1): %v", err)
	}
	if got.ID != "id1" {
		t.Errorf("ByPosition(1) = %q, want id1", got.ID)
	}

	_, err = s.ByPosition(3)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ByPosition(3) = %v, want ErrNotFound", err)
	}
}

func TestPage_Consistency(t *testing.T) {
	s := fill(50)

	first := s.Page(0)
	if len(first) != PageSize {
		t.Fatalf("first page has %d tracks, want %d", len(first), PageSize)
	}

	again := s.Page(0)
	for i := range first {
		if first[i].ID != again[i].ID {
			t.Errorf("page not stable at %d: %q vs %q", i, first[i].ID, again[i].ID)
		}
	}

	second := s.Page(PageSize)
	if len(second) != PageSize {
		t.Fatalf("second page has %d tracks, want %d", len(second), PageSize)
	}
	if first[0].ID == second[0].ID {
		t.Error("pages overlap")
	}
	// Position order inside a page.
	if second[0].ID != fmt.Sprintf("id%d", PageSize) {
		t.Errorf("second page starts at %q, want id%d", second[0].ID, PageSize)
	}
}

func TestPage_PastEnd(t *testing.T) {
	s := fill(5)
	if got := s.Page(100); len(got) != 0 {
		t.Errorf("Page past end returned %d tracks, want 0", len(got))
	}
}

func TestLen(t *testing.T) {
	if got := fill(7).Len(); got != 7 {
		t.Errorf("Len = %d, want 7", got)
	}
	if got := New().Len(); got != 0 {
		t.Errorf("empty Len = %d, want 0", got)
	}
}

func TestFromTracks_KeepsOrder(t *testing.T) {
	tracks := []track.Track{
		track.New("x", "X", nil),
		track.New("y", "Y", nil),
	}
	s := FromTracks(tracks)
	got, err := s.ByPosition(0)
	if err != nil || got.ID != "x" {
		t.Errorf("position 0 = %v, %v, want x", got, err)
	}
	got, err = s.ByPosition(1)
	if err != nil || got.ID != "y" {
		t.Errorf("position 1 = %v, %v, want y", got, err)
	}
}
