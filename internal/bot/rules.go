package bot

import (
	"image"
	"time"

	"github.com/mirrorworks/limbus-pilot/internal/cv"
)

// clickHold is the button hold applied to UI clicks; a zero-length click is
// occasionally dropped by the target application.
const clickHold = 10 * time.Millisecond

// evalRules walks the per-cycle rule set in priority order. The first
// applicable rule dispatches its action and ends the cycle. Returns true
// when any rule fired.
func (s *Sequencer) evalRules(results map[string]*cv.Result) bool {
	found := func(name string) *cv.Result {
		if r, ok := results[name]; ok && r != nil && r.Found {
			return r
		}
		return nil
	}

	if found("winrate") != nil {
		s.ruleAutoSubmit()
		return true
	}
	if s.state.TextSkip() && found("speech_menu") != nil {
		s.ruleTextSkip(found("speech_menu"))
		return true
	}
	if s.ruleOverlayWait(found) {
		return true
	}
	if s.ruleGenericConfirm(found) {
		return true
	}
	if found("skip") != nil {
		s.ruleEventSkip(found("skip"))
		return true
	}
	if s.ruleBattle(found) {
		return true
	}
	if r := found("enter"); r != nil {
		s.log.Debug("rule enter: entering encounter")
		s.click(r.Location, 0)
		s.sleep(2 * s.cfg.Interval)
		s.needRefresh = true
		return true
	}
	return false
}

// ruleAutoSubmit handles the "winrate" battle prompt: defocus the unit
// selection with a click near the top of the screen, then submit with the
// win-rate hotkey and confirm.
func (s *Sequencer) ruleAutoSubmit() {
	s.log.Debug("rule winrate: submitting battle")
	b := s.frame.Bounds()
	s.click(image.Pt(b.Dx()/2, b.Dy()/10), 0)
	s.sleep(100 * time.Millisecond)
	s.pressKey("p")
	s.sleep(250 * time.Millisecond)
	s.pressKey("enter")
	s.sleep(250 * time.Millisecond)
	s.needRefresh = true
}

// ruleTextSkip advances dialogue: open the speech menu, hit fast-forward if
// it is offered, then confirm — unless a choice prompt is up, in which case
// confirming would pick blindly and the chain leaves it alone.
func (s *Sequencer) ruleTextSkip(menu *cv.Result) {
	s.log.Debug("rule speech_menu: skipping dialogue")
	s.click(menu.Location, clickHold)
	s.sleep(2 * s.cfg.Interval)
	if !s.recapture() {
		return
	}

	if ff := s.matchOne("fast_forward"); ff.Found {
		s.click(ff.Location, clickHold)
		s.sleep(2 * s.cfg.Interval)
		if !s.recapture() {
			return
		}
	}

	if choice := s.matchOne("choice_needed"); !choice.Found {
		if confirm := s.matchOne("confirm"); confirm.Found {
			s.click(confirm.Location, clickHold)
		}
	} else {
		s.log.Debug("rule speech_menu: choice prompt up, not confirming")
	}
	s.needRefresh = true
}

// ruleOverlayWait blocks the rest of the cycle while a reward or selection
// overlay is on screen. An EGO gift receipt is dismissed with enter (also
// when a choice prompt rides along); choice, fusion, and pending EGO
// selection overlays are waited out so the user can act. Mirror full-auto
// mode bypasses the block entirely. These overlays take strict priority
// over the generic confirm rule.
func (s *Sequencer) ruleOverlayWait(found func(string) *cv.Result) bool {
	if s.state.Mode() == ModeMirrorFullAuto {
		return false
	}

	choice := found("choice_needed")
	fusion := found("fusion_check")
	egoCheck := found("ego_check")
	egoGet := found("ego_get")

	switch {
	case egoGet != nil:
		if choice != nil {
			s.log.Debug("rule overlay: ego gift with choice prompt, dismissing")
		} else {
			s.log.Debug("rule overlay: ego gift received, dismissing")
		}
		s.pressKey("enter")
	case choice != nil:
		s.log.Debug("rule overlay: choice needed, waiting")
	case fusion != nil:
		s.log.Debug("rule overlay: fusion in progress, waiting")
	case egoCheck != nil:
		s.log.Debug("rule overlay: ego selection pending, waiting")
	default:
		return false
	}

	s.sleep(2 * s.cfg.Interval)
	s.needRefresh = true
	return true
}

// ruleGenericConfirm clicks whichever confirm variant is visible, in fixed
// preference order.
func (s *Sequencer) ruleGenericConfirm(found func(string) *cv.Result) bool {
	var target *cv.Result
	for _, name := range []string{"black_confirm", "black_confirm_v2", "confirm"} {
		if r := found(name); r != nil {
			target = r
			break
		}
	}
	if target == nil {
		return false
	}
	s.log.Debug("rule confirm: clicking confirm button")
	s.click(target.Location, clickHold)
	s.sleep(2 * s.cfg.Interval)
	s.needRefresh = true
	return true
}

// ruleEventSkip runs the event-skip chain: click skip, then chain through
// up to two continue prompts, the "very high" outcome (mirror full-auto
// only), and a final proceed/commence step followed by a defocusing click
// near the bottom of the screen. Every sub-step is independently optional;
// a failed mid-chain capture aborts the remainder.
func (s *Sequencer) ruleEventSkip(skip *cv.Result) {
	s.log.Debug("rule skip: skipping event")
	s.click(skip.Location, clickHold)
	s.sleep(200 * time.Millisecond)
	if !s.recapture() {
		return
	}

	for i := 0; i < 2; i++ {
		cont := s.matchOne("continue")
		if !cont.Found {
			break
		}
		s.click(cont.Location, clickHold)
		s.sleep(2 * s.cfg.Interval)
		if !s.recapture() {
			return
		}
	}

	if s.state.Mode() == ModeMirrorFullAuto {
		if vh := s.matchOne("very_high"); vh.Found {
			s.log.Debug("rule skip: selecting very high outcome")
			s.click(vh.Location, clickHold)
			s.sleep(500 * time.Millisecond)
			if !s.recapture() {
				return
			}
		}
	}

	for _, name := range []string{"proceed", "commence", "commence_battle"} {
		r := s.matchOne(name)
		if !r.Found {
			continue
		}
		s.log.Debugf("rule skip: clicking %s", name)
		s.click(r.Location, clickHold)
		s.sleep(200 * time.Millisecond)
		b := s.frame.Bounds()
		s.click(image.Pt(b.Dx()/2, b.Dy()*9/10), 0)
		s.sleep(100 * time.Millisecond)
		break
	}
	s.needRefresh = true
}

// ruleBattle clicks the battle-entry button, plain or chained.
func (s *Sequencer) ruleBattle(found func(string) *cv.Result) bool {
	target := found("battle")
	if target == nil {
		target = found("chain_battle")
	}
	if target == nil {
		return false
	}
	s.log.Debug("rule battle: entering battle")
	s.click(target.Location, clickHold)
	s.sleep(time.Second)
	s.needRefresh = true
	return true
}
