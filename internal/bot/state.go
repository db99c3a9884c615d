package bot

import "sync"

// Mode selects which automation sequence, if any, the sequencer runs when no
// per-cycle rule fires. Exactly one mode is active at a time; representing
// the modes as a single enum makes the mutual exclusivity structural instead
// of a side effect spread across setters.
type Mode int

const (
	// ModeIdle runs only the per-cycle rule set.
	ModeIdle Mode = iota
	// ModeThreadLux runs the thread luxcavation entry sequence once.
	ModeThreadLux
	// ModeExpLux runs the EXP luxcavation entry sequence once.
	ModeExpLux
	// ModeMirrorFullAuto is a standing mode for mirror dungeon full-auto:
	// overlay-wait rules are bypassed and the event-skip chain additionally
	// selects the "very high" outcome.
	ModeMirrorFullAuto
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeThreadLux:
		return "thread_lux"
	case ModeExpLux:
		return "exp_lux"
	case ModeMirrorFullAuto:
		return "mirror_full_auto"
	}
	return "unknown"
}

// State holds the sequencer's mode and independent behavior flags. Mutated
// by the sequencer and by external tuner/hotkey callbacks; read every cycle.
type State struct {
	mu       sync.RWMutex
	mode     Mode
	textSkip bool
	debug    bool
}

// NewState creates a state in idle mode with all flags off.
func NewState() *State {
	return &State{}
}

// Mode returns the active automation mode.
func (s *State) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode activates a mode, displacing whichever mode was active before.
func (s *State) SetMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// ClearMode resets to idle only if m is still the active mode, so a user
// switching modes mid-sequence is not clobbered by the old sequence's
// cleanup.
func (s *State) ClearMode(m Mode) {
	s.mu.Lock()
	if s.mode == m {
		s.mode = ModeIdle
	}
	s.mu.Unlock()
}

// TextSkip reports whether the dialogue skip chain is enabled.
func (s *State) TextSkip() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.textSkip
}

// SetTextSkip enables or disables the dialogue skip chain.
func (s *State) SetTextSkip(v bool) {
	s.mu.Lock()
	s.textSkip = v
	s.mu.Unlock()
}

// Debug reports whether verbose per-cycle logging is enabled.
func (s *State) Debug() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debug
}

// SetDebug enables or disables verbose per-cycle logging.
func (s *State) SetDebug(v bool) {
	s.mu.Lock()
	s.debug = v
	s.mu.Unlock()
}
