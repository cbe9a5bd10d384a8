package resolver

import "testing"

func TestWatchURL(t *testing.T) {
	got := WatchURL("dQw4w9WgXcQ")
	want := "https://youtube.com/watch?v=dQw4w9WgXcQ"
	if got != want {
		t.Errorf("WatchURL = %q, want %q", got, want)
	}
}
