package bot

import "testing"

func TestGatePauseResume(t *testing.T) {
	g := NewGate()
	if g.Paused() {
		t.Fatal("new gate should be open")
	}
	if !g.Pause() {
		t.Error("first Pause should report a state change")
	}
	if g.Pause() {
		t.Error("second Pause should report no change")
	}
	if !g.Paused() {
		t.Error("gate should be closed after Pause")
	}
	g.Resume()
	if g.Paused() {
		t.Error("gate should be open after Resume")
	}
}

func TestGateToggle(t *testing.T) {
	g := NewGate()
	if !g.Toggle() {
		t.Error("first Toggle should pause")
	}
	if g.Toggle() {
		t.Error("second Toggle should resume")
	}
}

func TestGateOnResume(t *testing.T) {
	g := NewGate()
	fired := 0
	g.OnResume(func() { fired++ })

	// Resume on an open gate must not fire callbacks.
	g.Resume()
	if fired != 0 {
		t.Errorf("fired = %d after no-op resume, want 0", fired)
	}

	g.Pause()
	g.Resume()
	if fired != 1 {
		t.Errorf("fired = %d after resume, want 1", fired)
	}

	g.Toggle()
	g.Toggle()
	if fired != 2 {
		t.Errorf("fired = %d after toggle cycle, want 2", fired)
	}
}
