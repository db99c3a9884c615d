package bot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mirrorworks/limbus-pilot/internal/cv"
	"github.com/mirrorworks/limbus-pilot/internal/logging"
	"github.com/mirrorworks/limbus-pilot/internal/templates"
)

func quietLogger() *logging.Logger {
	return logging.NewLogger("test").SetMinLevel(logging.LogLevelFatal)
}

// testStore builds a fully loaded template store from throwaway image files.
// The fake matcher keys on template names, so the pixel content is
// irrelevant.
func testStore(t *testing.T) *templates.Store {
	t.Helper()
	dir := t.TempDir()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 3)
	}
	for _, spec := range templates.DefaultSpecs() {
		f, err := os.Create(filepath.Join(dir, spec.Base+".png"))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
	store := templates.NewStore(dir, quietLogger())
	if err := store.Load(); err != nil {
		t.Fatalf("loading test templates: %v", err)
	}
	return store
}

type fakeScreen struct {
	frame    *image.Gray
	captures int
	failFrom int // fail captures numbered > failFrom; 0 disables
}

func (f *fakeScreen) CaptureFrame() (*image.Gray, error) {
	f.captures++
	if f.failFrom > 0 && f.captures > f.failFrom {
		return nil, fmt.Errorf("capture device gone")
	}
	return f.frame, nil
}

func (f *fakeScreen) Dimensions() (int, int) {
	b := f.frame.Bounds()
	return b.Dx(), b.Dy()
}

type fakeInput struct {
	clicks []image.Point
	keys   []string
}

func (f *fakeInput) MoveAndClick(x, y int, hold time.Duration) error {
	f.clicks = append(f.clicks, image.Pt(x, y))
	return nil
}

func (f *fakeInput) PressKey(name string) error {
	f.keys = append(f.keys, name)
	return nil
}

type fakeWindows struct{ title string }

func (f *fakeWindows) ActiveWindowTitle() string { return f.title }

// fakeMatcher reports a hit for every template name present in found.
type fakeMatcher struct {
	found map[string]image.Point
}

func (f *fakeMatcher) Match(_ *image.Gray, tmpl cv.Template) cv.Result {
	if pt, ok := f.found[tmpl.Name]; ok {
		return cv.Result{Score: 0.95, Location: pt, Found: true}
	}
	return cv.Result{Score: 0.2}
}

// fakeBatch routes the primary check through the same fake matcher.
type fakeBatch struct {
	matcher *fakeMatcher
}

func (f *fakeBatch) MatchAll(frame *image.Gray, tmpls map[string]cv.Template) map[string]*cv.Result {
	results := make(map[string]*cv.Result, len(tmpls))
	for name, tmpl := range tmpls {
		res := f.matcher.Match(frame, tmpl)
		results[name] = &res
	}
	return results
}

type recordedRun struct {
	mode      string
	steps     int
	aborted   string
	completed bool
}

type fakeRecorder struct {
	runs []recordedRun
}

func (f *fakeRecorder) RecordSequence(mode string, _, _ time.Time, stepsCompleted int, abortedStep string, completed bool) error {
	f.runs = append(f.runs, recordedRun{mode: mode, steps: stepsCompleted, aborted: abortedStep, completed: completed})
	return nil
}

type fixture struct {
	seq      *Sequencer
	screen   *fakeScreen
	input    *fakeInput
	windows  *fakeWindows
	matcher  *fakeMatcher
	gate     *Gate
	state    *State
	recorder *fakeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		screen:   &fakeScreen{frame: image.NewGray(image.Rect(0, 0, 200, 100))},
		input:    &fakeInput{},
		windows:  &fakeWindows{title: "LimbusCompany"},
		matcher:  &fakeMatcher{found: make(map[string]image.Point)},
		gate:     NewGate(),
		state:    NewState(),
		recorder: &fakeRecorder{},
	}
	f.seq = NewSequencer(
		Config{Interval: 10 * time.Millisecond, TargetWindow: "LimbusCompany"},
		f.gate, f.state, testStore(t), f.matcher, &fakeBatch{matcher: f.matcher},
		f.screen, f.input, f.windows, f.recorder, quietLogger())
	f.seq.sleep = func(time.Duration) {}
	return f
}

func TestCyclePausedGate(t *testing.T) {
	f := newFixture(t)
	f.gate.Pause()
	f.seq.runCycle()

	if f.screen.captures != 0 {
		t.Errorf("captures = %d, paused cycle must not touch the screen", f.screen.captures)
	}
	if len(f.input.clicks) != 0 || len(f.input.keys) != 0 {
		t.Error("paused cycle must not dispatch input")
	}
}

func TestCycleInactiveWindow(t *testing.T) {
	f := newFixture(t)
	f.windows.title = "Some Other App"
	f.seq.runCycle()

	if f.screen.captures != 0 {
		t.Errorf("captures = %d, unfocused cycle must not capture", f.screen.captures)
	}
	if len(f.input.clicks) != 0 {
		t.Error("unfocused cycle must not click")
	}
}

func TestRuleWinrateAutoSubmit(t *testing.T) {
	f := newFixture(t)
	f.matcher.found["winrate"] = image.Pt(150, 80)
	f.seq.runCycle()

	if len(f.input.clicks) != 1 {
		t.Fatalf("clicks = %v, want one defocus click", f.input.clicks)
	}
	if want := image.Pt(100, 10); f.input.clicks[0] != want {
		t.Errorf("defocus click at %v, want %v", f.input.clicks[0], want)
	}
	if len(f.input.keys) != 2 || f.input.keys[0] != "p" || f.input.keys[1] != "enter" {
		t.Errorf("keys = %v, want [p enter]", f.input.keys)
	}
}

func TestOverlayWaitBeatsConfirm(t *testing.T) {
	f := newFixture(t)
	f.matcher.found["choice_needed"] = image.Pt(90, 25)
	f.matcher.found["black_confirm"] = image.Pt(80, 70)
	f.seq.runCycle()

	if len(f.input.clicks) != 0 || len(f.input.keys) != 0 {
		t.Errorf("clicks=%v keys=%v, a pending choice must block the confirm click", f.input.clicks, f.input.keys)
	}
}

func TestOverlayEgoGetDismissed(t *testing.T) {
	f := newFixture(t)
	f.matcher.found["ego_get"] = image.Pt(90, 25)
	f.seq.runCycle()

	if len(f.input.keys) != 1 || f.input.keys[0] != "enter" {
		t.Errorf("keys = %v, want [enter]", f.input.keys)
	}
	if len(f.input.clicks) != 0 {
		t.Errorf("clicks = %v, want none", f.input.clicks)
	}
}

func TestMirrorFullAutoBypassesOverlayWait(t *testing.T) {
	f := newFixture(t)
	f.state.SetMode(ModeMirrorFullAuto)
	f.matcher.found["choice_needed"] = image.Pt(90, 25)
	f.matcher.found["black_confirm"] = image.Pt(80, 70)
	f.seq.runCycle()

	if len(f.input.clicks) != 1 || f.input.clicks[0] != image.Pt(80, 70) {
		t.Errorf("clicks = %v, mirror full-auto should fall through to the confirm click", f.input.clicks)
	}
	if f.state.Mode() != ModeMirrorFullAuto {
		t.Error("mirror full-auto is a standing mode and must survive the cycle")
	}
}

func TestConfirmVariantPreference(t *testing.T) {
	f := newFixture(t)
	f.matcher.found["black_confirm"] = image.Pt(20, 20)
	f.matcher.found["confirm"] = image.Pt(90, 90)
	f.seq.runCycle()

	if len(f.input.clicks) != 1 || f.input.clicks[0] != image.Pt(20, 20) {
		t.Errorf("clicks = %v, want the black_confirm location first", f.input.clicks)
	}
}

func TestTextSkipChain(t *testing.T) {
	f := newFixture(t)
	f.state.SetTextSkip(true)
	f.matcher.found["speech_menu"] = image.Pt(150, 10)
	f.matcher.found["fast_forward"] = image.Pt(120, 15)
	f.matcher.found["confirm"] = image.Pt(90, 70)
	f.seq.runCycle()

	want := []image.Point{{X: 150, Y: 10}, {X: 120, Y: 15}, {X: 90, Y: 70}}
	if len(f.input.clicks) != len(want) {
		t.Fatalf("clicks = %v, want %v", f.input.clicks, want)
	}
	for i, pt := range want {
		if f.input.clicks[i] != pt {
			t.Errorf("click %d at %v, want %v", i, f.input.clicks[i], pt)
		}
	}
}

func TestTextSkipHoldsOnChoice(t *testing.T) {
	f := newFixture(t)
	f.state.SetTextSkip(true)
	f.matcher.found["speech_menu"] = image.Pt(150, 10)
	f.matcher.found["confirm"] = image.Pt(90, 70)
	f.matcher.found["choice_needed"] = image.Pt(100, 25)
	f.seq.runCycle()

	// Menu click happens, but confirming would pick a choice blindly.
	if len(f.input.clicks) != 1 || f.input.clicks[0] != image.Pt(150, 10) {
		t.Errorf("clicks = %v, want only the menu click", f.input.clicks)
	}
}

func TestTextSkipDisabled(t *testing.T) {
	f := newFixture(t)
	f.matcher.found["speech_menu"] = image.Pt(150, 10)
	f.seq.runCycle()

	if len(f.input.clicks) != 0 {
		t.Errorf("clicks = %v, speech menu must be ignored with the flag off", f.input.clicks)
	}
}

func TestEventSkipChain(t *testing.T) {
	f := newFixture(t)
	f.matcher.found["skip"] = image.Pt(30, 40)
	f.matcher.found["proceed"] = image.Pt(60, 70)
	f.seq.runCycle()

	want := []image.Point{{X: 30, Y: 40}, {X: 60, Y: 70}, {X: 100, Y: 90}}
	if len(f.input.clicks) != len(want) {
		t.Fatalf("clicks = %v, want %v", f.input.clicks, want)
	}
	for i, pt := range want {
		if f.input.clicks[i] != pt {
			t.Errorf("click %d at %v, want %v", i, f.input.clicks[i], pt)
		}
	}
}

func TestEventSkipVeryHighOnlyInMirrorMode(t *testing.T) {
	f := newFixture(t)
	f.matcher.found["skip"] = image.Pt(30, 40)
	f.matcher.found["very_high"] = image.Pt(110, 85)
	f.seq.runCycle()
	if len(f.input.clicks) != 1 {
		t.Errorf("clicks = %v, very_high must be ignored outside mirror full-auto", f.input.clicks)
	}

	f = newFixture(t)
	f.state.SetMode(ModeMirrorFullAuto)
	f.matcher.found["skip"] = image.Pt(30, 40)
	f.matcher.found["very_high"] = image.Pt(110, 85)
	f.seq.runCycle()
	if len(f.input.clicks) != 2 || f.input.clicks[1] != image.Pt(110, 85) {
		t.Errorf("clicks = %v, want the very_high click in mirror full-auto", f.input.clicks)
	}
}

func TestBattleRule(t *testing.T) {
	f := newFixture(t)
	f.matcher.found["chain_battle"] = image.Pt(70, 30)
	f.seq.runCycle()

	if len(f.input.clicks) != 1 || f.input.clicks[0] != image.Pt(70, 30) {
		t.Errorf("clicks = %v, want the chain battle click", f.input.clicks)
	}
}

func TestEnterRule(t *testing.T) {
	f := newFixture(t)
	f.matcher.found["enter"] = image.Pt(50, 50)
	f.seq.runCycle()

	if len(f.input.clicks) != 1 || f.input.clicks[0] != image.Pt(50, 50) {
		t.Errorf("clicks = %v, want the enter click", f.input.clicks)
	}
}

func TestCycleCaptureFailureBacksOff(t *testing.T) {
	f := newFixture(t)
	f.seq.screen = failingScreen{}
	f.seq.runCycle()
	if len(f.input.clicks) != 0 {
		t.Error("failed capture must end the cycle without input")
	}
	if !f.seq.needRefresh {
		t.Error("failed capture must force a refresh next cycle")
	}
}

type failingScreen struct{}

func (failingScreen) CaptureFrame() (*image.Gray, error) { return nil, fmt.Errorf("no frame") }
func (failingScreen) Dimensions() (int, int)             { return 0, 0 }
