package bot

import "sync"

// Gate is the shared suspend/resume flag honored at the top of every
// sequencer cycle. It is written by the failsafe monitor and by external
// hotkey/tuner callbacks. Resume callbacks let the failsafe clear its
// position memory so a fresh resume cannot immediately re-trigger.
type Gate struct {
	mu       sync.Mutex
	paused   bool
	onResume []func()
}

// NewGate creates an open (running) gate.
func NewGate() *Gate {
	return &Gate{}
}

// Pause closes the gate. Returns true if the gate was previously open.
func (g *Gate) Pause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		return false
	}
	g.paused = true
	return true
}

// Resume opens the gate and fires the resume callbacks.
func (g *Gate) Resume() {
	g.mu.Lock()
	if !g.paused {
		g.mu.Unlock()
		return
	}
	g.paused = false
	callbacks := append([]func(){}, g.onResume...)
	g.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Toggle flips the gate and returns the new paused state.
func (g *Gate) Toggle() bool {
	g.mu.Lock()
	paused := g.paused
	g.mu.Unlock()
	if paused {
		g.Resume()
		return false
	}
	g.Pause()
	return true
}

// Paused reports whether the gate is closed.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// OnResume registers a callback invoked whenever the gate reopens.
func (g *Gate) OnResume(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onResume = append(g.onResume, fn)
}
