package bot

import (
	"time"
)

// SeqStep is one step of an automation-mode sequence: the template that
// must be on screen, and the settle time after clicking it. A missing match
// aborts the rest of the sequence.
type SeqStep struct {
	Template string
	Wait     time.Duration
}

// threadLuxSteps drives from the main screen into a thread luxcavation
// battle.
var threadLuxSteps = []SeqStep{
	{Template: "drive", Wait: time.Second},
	{Template: "luxcavations", Wait: time.Second},
	{Template: "select_thread_lux", Wait: time.Second},
	{Template: "lux_enter", Wait: time.Second},
	{Template: "thread_lux_battle", Wait: time.Second},
	{Template: "battle", Wait: 2 * time.Second},
}

// expLuxSteps drives from the main screen into an EXP luxcavation battle.
var expLuxSteps = []SeqStep{
	{Template: "drive", Wait: time.Second},
	{Template: "luxcavations", Wait: time.Second},
	{Template: "select_exp_lux", Wait: time.Second},
	{Template: "exp_lux_enter", Wait: time.Second},
	{Template: "battle", Wait: 2 * time.Second},
}

// runModeSequence interprets a step list: match each required template in
// order, click it, wait, recapture. The first missing match aborts the
// remainder and control returns to the normal rule set next cycle. The mode
// is cleared on exit either way — each activation is a one-shot action, not
// a standing loop.
func (s *Sequencer) runModeSequence(mode Mode, steps []SeqStep) {
	started := s.now()
	completed := 0
	abortedStep := ""

	defer func() {
		s.state.ClearMode(mode)
		s.needRefresh = true
		if s.history != nil {
			success := completed == len(steps)
			if err := s.history.RecordSequence(mode.String(), started, s.now(), completed, abortedStep, success); err != nil {
				s.log.Error("failed to record sequence run", err)
			}
		}
	}()

	s.log.Infof("mode %s: starting sequence (%d steps)", mode, len(steps))

	for i, step := range steps {
		if s.frame == nil || s.needRefresh {
			if !s.recapture() {
				abortedStep = step.Template
				return
			}
			s.needRefresh = false
		}

		res := s.matchOne(step.Template)
		if !res.Found {
			s.log.Infof("mode %s: step %s not found, aborting sequence", mode, step.Template)
			abortedStep = step.Template
			return
		}

		s.click(res.Location, clickHold)
		s.sleep(step.Wait)
		completed++

		if i < len(steps)-1 && !s.recapture() {
			abortedStep = steps[i+1].Template
			return
		}
	}

	s.log.Infof("mode %s: sequence complete", mode)
}
