package bot

import (
	"context"
	"image"
	"strings"
	"time"

	"github.com/mirrorworks/limbus-pilot/internal/cv"
	"github.com/mirrorworks/limbus-pilot/internal/logging"
	"github.com/mirrorworks/limbus-pilot/internal/templates"
)

// primaryCheckNames is the fixed template subset batched every cycle: the
// cheap, common screen states. Secondary templates (fast_forward, continue,
// proceed, the luxcavation steps, ...) are matched ad hoc inside the rule
// that needs them.
var primaryCheckNames = []string{
	"winrate",
	"speech_menu",
	"confirm",
	"black_confirm",
	"black_confirm_v2",
	"choice_needed",
	"fusion_check",
	"ego_check",
	"ego_get",
	"skip",
	"battle",
	"chain_battle",
	"enter",
}

// Config holds the sequencer's runtime settings.
type Config struct {
	// Interval is one tick: the idle sleep and the minimum age before a
	// cached frame is considered stale.
	Interval time.Duration

	// TargetWindow is the substring the active window title must contain
	// for the sequencer to act.
	TargetWindow string
}

// Sequencer is the priority-ordered decision loop. Each cycle it consults
// the pause gate, verifies the target window has focus, refreshes the frame
// when stale, evaluates the rule set top to bottom, and dispatches at most
// one action (or one mode sequence).
type Sequencer struct {
	cfg     Config
	gate    *Gate
	state   *State
	store   *templates.Store
	matcher Matcher
	batch   BatchMatcher
	screen  cv.Capturer
	input   Actuator
	windows WindowWatcher
	history SequenceRecorder
	log     *logging.Logger

	// Frame cache, owned by the loop goroutine only.
	frame       *image.Gray
	lastGrab    time.Time
	needRefresh bool

	inactiveLogged bool

	// Injected clocks for tests.
	sleep func(time.Duration)
	now   func() time.Time
}

// NewSequencer wires a sequencer. history may be nil.
func NewSequencer(cfg Config, gate *Gate, state *State, store *templates.Store,
	matcher Matcher, batch BatchMatcher, screen cv.Capturer, input Actuator,
	windows WindowWatcher, history SequenceRecorder, log *logging.Logger) *Sequencer {

	if cfg.Interval < 10*time.Millisecond {
		cfg.Interval = 10 * time.Millisecond
	}
	if log == nil {
		log = logging.NewLogger("sequencer")
	}
	return &Sequencer{
		cfg:         cfg,
		gate:        gate,
		state:       state,
		store:       store,
		matcher:     matcher,
		batch:       batch,
		screen:      screen,
		input:       input,
		windows:     windows,
		history:     history,
		log:         log,
		needRefresh: true,
		sleep:       time.Sleep,
		now:         time.Now,
	}
}

// Run executes cycles until the context is cancelled. Cancellation is
// cooperative: an in-flight chain runs to its own abort point.
func (s *Sequencer) Run(ctx context.Context) {
	s.log.Info("sequencer started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("sequencer stopped")
			return
		default:
		}
		s.runCycle()
	}
}

// runCycle performs one full evaluation. The first satisfied rule wins and
// ends the cycle.
func (s *Sequencer) runCycle() {
	if s.gate.Paused() {
		s.sleep(s.cfg.Interval)
		return
	}

	if !s.targetFocused() {
		if !s.inactiveLogged {
			s.log.Infof("%s window not active, idling", s.cfg.TargetWindow)
			s.inactiveLogged = true
		}
		s.needRefresh = true
		s.sleep(time.Second)
		return
	}
	if s.inactiveLogged {
		s.log.Infof("%s window active again, resuming", s.cfg.TargetWindow)
		s.inactiveLogged = false
		s.needRefresh = true
	}

	if !s.ensureFrame() {
		return
	}

	results := s.batch.MatchAll(s.frame, s.store.Subset(primaryCheckNames))

	if s.evalRules(results) {
		return
	}

	switch s.state.Mode() {
	case ModeThreadLux:
		s.runModeSequence(ModeThreadLux, threadLuxSteps)
		return
	case ModeExpLux:
		s.runModeSequence(ModeExpLux, expLuxSteps)
		return
	}

	s.sleep(s.cfg.Interval)
}

func (s *Sequencer) targetFocused() bool {
	if s.cfg.TargetWindow == "" {
		return true
	}
	return strings.Contains(s.windows.ActiveWindowTitle(), s.cfg.TargetWindow)
}

// ensureFrame refreshes the cached frame when absent, stale, or explicitly
// requested. A capture failure backs off briefly and ends the cycle; capture
// is retried next cycle, never propagated.
func (s *Sequencer) ensureFrame() bool {
	if !s.needRefresh && s.frame != nil && s.now().Sub(s.lastGrab) < s.cfg.Interval {
		return true
	}
	frame, err := s.screen.CaptureFrame()
	if err != nil {
		s.log.Error("screen capture failed, retrying", err)
		s.needRefresh = true
		s.sleep(500 * time.Millisecond)
		return false
	}
	s.frame = frame
	s.lastGrab = s.now()
	s.needRefresh = false
	return true
}

// recapture refreshes the frame mid-chain. Returns false when capture
// fails, in which case the calling chain aborts and the next cycle
// re-evaluates from the top.
func (s *Sequencer) recapture() bool {
	frame, err := s.screen.CaptureFrame()
	if err != nil {
		s.log.Error("mid-chain capture failed, aborting chain", err)
		s.needRefresh = true
		return false
	}
	s.frame = frame
	s.lastGrab = s.now()
	return true
}

// matchOne runs an ad hoc single-template match against the cached frame.
func (s *Sequencer) matchOne(name string) cv.Result {
	tmpl, ok := s.store.Get(name)
	if !ok {
		return cv.Result{Score: cv.SentinelScore}
	}
	return s.matcher.Match(s.frame, tmpl)
}

// click dispatches a click at a match location. Actuator failures are
// logged and otherwise treated as if the click did not happen.
func (s *Sequencer) click(pt image.Point, hold time.Duration) {
	if err := s.input.MoveAndClick(pt.X, pt.Y, hold); err != nil {
		s.log.Error("click failed", err)
	}
}

func (s *Sequencer) pressKey(name string) {
	if err := s.input.PressKey(name); err != nil {
		s.log.Error("key press failed", err)
	}
}
