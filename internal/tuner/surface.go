// Package tuner exposes the live-configuration surface: the handful of knobs
// and readouts an operator (or an embedding frontend) needs while the bot is
// running, without reaching into the individual subsystems.
package tuner

import (
	"fmt"

	"github.com/mirrorworks/limbus-pilot/internal/bot"
	"github.com/mirrorworks/limbus-pilot/internal/cv"
	"github.com/mirrorworks/limbus-pilot/internal/logging"
	"github.com/mirrorworks/limbus-pilot/internal/templates"
)

// Surface bundles the runtime-adjustable state. All methods are safe for
// concurrent use; the underlying stores carry their own locks.
type Surface struct {
	store    *templates.Store
	scores   *cv.Scoreboard
	gate     *bot.Gate
	state    *bot.State
	logLines *logging.Buffer
	specPath string
}

// Tuning is the adjustable matching parameters for one template.
type Tuning struct {
	Name      string
	Threshold float64
	ROI       cv.ROI
	LastScore float64
	LastPass  float64
}

// NewSurface wires the surface. specPath is where SaveTuning persists
// overrides; empty disables saving.
func NewSurface(store *templates.Store, scores *cv.Scoreboard, gate *bot.Gate,
	state *bot.State, logLines *logging.Buffer, specPath string) *Surface {

	return &Surface{
		store:    store,
		scores:   scores,
		gate:     gate,
		state:    state,
		logLines: logLines,
		specPath: specPath,
	}
}

// Templates lists the tuning state of every loaded template, joined with the
// latest scoreboard readings.
func (s *Surface) Templates() []Tuning {
	names := s.store.Names()
	scores := s.scores.LastScores()
	passes := s.scores.LastPasses()

	out := make([]Tuning, 0, len(names))
	for _, name := range names {
		threshold, roi, ok := s.store.Tuning(name)
		if !ok {
			continue
		}
		t := Tuning{Name: name, Threshold: threshold, ROI: roi, LastScore: cv.SentinelScore, LastPass: cv.SentinelScore}
		if v, ok := scores[name]; ok {
			t.LastScore = v
		}
		if v, ok := passes[name]; ok {
			t.LastPass = v
		}
		out = append(out, t)
	}
	return out
}

// SetTuning updates a template's threshold and ROI together.
func (s *Surface) SetTuning(name string, threshold float64, roi cv.ROI) error {
	if threshold < -1 || threshold > 1 {
		return fmt.Errorf("threshold %v out of range [-1, 1]", threshold)
	}
	return s.store.SetTuning(name, threshold, roi)
}

// SaveTuning persists the current spec table to the configured spec file.
func (s *Surface) SaveTuning() error {
	if s.specPath == "" {
		return fmt.Errorf("no spec file configured")
	}
	return s.store.SaveSpecFile(s.specPath)
}

// Reload re-reads every template raster from disk, e.g. after swapping the
// display mode assets.
func (s *Surface) Reload() error {
	return s.store.Refresh()
}

// SetPreferHDR flips the variant preference and reloads.
func (s *Surface) SetPreferHDR(prefer bool) error {
	s.store.SetPreferHDR(prefer)
	return s.store.Refresh()
}

// TogglePause flips the pause gate and reports the new state.
func (s *Surface) TogglePause() bool {
	return s.gate.Toggle()
}

// Paused reports the gate state.
func (s *Surface) Paused() bool {
	return s.gate.Paused()
}

// SetMode activates an automation mode. Setting a mode replaces any other
// active mode.
func (s *Surface) SetMode(mode bot.Mode) {
	s.state.SetMode(mode)
}

// Mode reports the active automation mode.
func (s *Surface) Mode() bot.Mode {
	return s.state.Mode()
}

// SetTextSkip toggles the dialogue-skip flag.
func (s *Surface) SetTextSkip(enabled bool) {
	s.state.SetTextSkip(enabled)
}

// LogLines returns the rolling log tail, oldest first.
func (s *Surface) LogLines() []string {
	if s.logLines == nil {
		return nil
	}
	return s.logLines.Lines()
}
