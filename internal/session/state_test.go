package session

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "Idle"},
		{StateLoading, "Loading"},
		{StatePlaying, "Playing"},
		{StateError, "Error"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestDirection_String(t *testing.T) {
	tests := []struct {
		dir  Direction
		want string
	}{
		{Next, "Next"},
		{Previous, "Previous"},
		{Direction(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.dir.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.dir, got, tt.want)
		}
	}
}
