package player

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59, "00:59"},
		{60, "01:00"},
		{185, "03:05"},
		{3600, "60:00"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.secs); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
