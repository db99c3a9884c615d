package bot

import "testing"

func TestModeExclusivity(t *testing.T) {
	s := NewState()
	if s.Mode() != ModeIdle {
		t.Fatalf("new state mode = %v, want idle", s.Mode())
	}

	s.SetMode(ModeThreadLux)
	s.SetMode(ModeExpLux)
	if s.Mode() != ModeExpLux {
		t.Errorf("mode = %v, setting a mode must displace the previous one", s.Mode())
	}

	// Cleanup from the displaced sequence must not clobber the new mode.
	s.ClearMode(ModeThreadLux)
	if s.Mode() != ModeExpLux {
		t.Errorf("mode = %v, ClearMode of an inactive mode must be a no-op", s.Mode())
	}

	s.ClearMode(ModeExpLux)
	if s.Mode() != ModeIdle {
		t.Errorf("mode = %v, want idle after clearing the active mode", s.Mode())
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeIdle, "idle"},
		{ModeThreadLux, "thread_lux"},
		{ModeExpLux, "exp_lux"},
		{ModeMirrorFullAuto, "mirror_full_auto"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestStateFlags(t *testing.T) {
	s := NewState()
	if s.TextSkip() || s.Debug() {
		t.Error("flags should start off")
	}
	s.SetTextSkip(true)
	s.SetDebug(true)
	if !s.TextSkip() || !s.Debug() {
		t.Error("flags should be on after setting")
	}
}
