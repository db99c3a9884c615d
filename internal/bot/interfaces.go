package bot

import (
	"image"
	"time"

	"github.com/mirrorworks/limbus-pilot/internal/cv"
)

// Actuator issues synthetic input. Coordinates are in the frame's capture
// pixel space; the adapter owns translation to the display's logical input
// space. Errors are logged and treated as if the action did not happen.
type Actuator interface {
	// MoveAndClick moves the pointer to (x, y) and performs a left click,
	// holding the button down for hold if non-zero.
	MoveAndClick(x, y int, hold time.Duration) error

	// PressKey taps a named key ("p", "enter", ...).
	PressKey(name string) error
}

// WindowWatcher reports which window currently has focus, so the sequencer
// can idle while the target application is in the background.
type WindowWatcher interface {
	ActiveWindowTitle() string
}

// Matcher runs a single template against a frame.
type Matcher interface {
	Match(frame *image.Gray, tmpl cv.Template) cv.Result
}

// BatchMatcher fans a frame out over a set of templates.
type BatchMatcher interface {
	MatchAll(frame *image.Gray, tmpls map[string]cv.Template) map[string]*cv.Result
}

// SequenceRecorder receives the outcome of each automation-mode sequence
// activation, for the run-history store. Optional; a nil recorder disables
// recording.
type SequenceRecorder interface {
	RecordSequence(mode string, startedAt, finishedAt time.Time, stepsCompleted int, abortedStep string, completed bool) error
}
