package session

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Empty, "empty"},
		{FileSelected, "file_selected"},
		{Summarizing, "summarizing"},
		{Summarized, "summarized"},
		{Asking, "asking"},
		{Answered, "answered"},
		{Failed, "failed"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
