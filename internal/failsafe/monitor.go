// Package failsafe watches the physical pointer for rapid repeated motion
// ("shaking" the mouse) and forces the pause gate when it is detected, as a
// safety escape hatch independent of the sequencer loop.
package failsafe

import (
	"context"
	"image"
	"math"
	"sync"
	"time"

	"github.com/mirrorworks/limbus-pilot/internal/bot"
	"github.com/mirrorworks/limbus-pilot/internal/logging"
)

// PointerSource reports the current pointer position in screen coordinates.
type PointerSource interface {
	PointerPosition() (image.Point, error)
}

// Config tunes shake detection.
type Config struct {
	// Interval between samples. Must stay well under Window or shakes
	// cannot be observed.
	Interval time.Duration
	// Distance in pixels the pointer must travel within Window to count
	// as one shake.
	Distance float64
	// Window is the maximum time between two samples for the displacement
	// to count as rapid motion. Samples further apart reset the counter.
	Window time.Duration
	// Shakes is how many consecutive shakes force the pause gate.
	Shakes int
}

// DefaultConfig mirrors the tuned production values.
func DefaultConfig() Config {
	return Config{
		Interval: 50 * time.Millisecond,
		Distance: 200,
		Window:   150 * time.Millisecond,
		Shakes:   3,
	}
}

// Monitor is the free-running shake detector. The detector state is shared
// between the polling loop and Reset, which the gate's resume callback runs
// on whatever goroutine resumed the gate, so it sits behind its own mutex.
type Monitor struct {
	cfg     Config
	gate    *bot.Gate
	pointer PointerSource
	log     *logging.Logger

	mu       sync.Mutex
	lastPos  image.Point
	havePos  bool
	lastTime time.Time
	shakes   int
}

// NewMonitor creates a monitor and hooks the gate so that an external
// resume clears the position memory and counter, preventing a spurious
// immediate re-trigger.
func NewMonitor(cfg Config, gate *bot.Gate, pointer PointerSource, log *logging.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if log == nil {
		log = logging.NewLogger("failsafe")
	}
	m := &Monitor{
		cfg:     cfg,
		gate:    gate,
		pointer: pointer,
		log:     log,
	}
	gate.OnResume(m.Reset)
	return m
}

// Run polls the pointer until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.gate.Paused() {
				continue
			}
			pos, err := m.pointer.PointerPosition()
			if err != nil {
				// Position queries can fail transiently on some display
				// servers; skip the sample.
				continue
			}
			m.sample(time.Now(), pos)
		}
	}
}

// Reset clears the shake counter and position memory.
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.havePos = false
	m.shakes = 0
	m.mu.Unlock()
}

// sample feeds one pointer observation into the detector. Separated from
// Run so scripted position sequences can drive it directly.
func (m *Monitor) sample(now time.Time, pos image.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.havePos {
		dt := now.Sub(m.lastTime)
		switch {
		case dt > time.Millisecond && dt < m.cfg.Window:
			dx := float64(pos.X - m.lastPos.X)
			dy := float64(pos.Y - m.lastPos.Y)
			if math.Hypot(dx, dy) > m.cfg.Distance {
				m.shakes++
				m.log.Debugf("shake detected (%d/%d)", m.shakes, m.cfg.Shakes)
				if m.shakes >= m.cfg.Shakes {
					if m.gate.Pause() {
						m.log.Warn("bot paused: rapid pointer shake detected")
					}
					m.shakes = 0
				}
			} else {
				m.shakes = 0
			}
		default:
			// Stale or duplicate sample; shakes must be consecutive.
			m.shakes = 0
		}
	}
	m.lastPos = pos
	m.lastTime = now
	m.havePos = true
}
