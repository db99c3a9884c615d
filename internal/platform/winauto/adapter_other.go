//go:build !windows

package winauto

import (
	"fmt"
	"image"
	"time"

	"github.com/mirrorworks/limbus-pilot/internal/logging"
)

// Adapter is a stub on non-Windows platforms. Every operation fails; it
// exists so the command builds everywhere even though only the Windows
// client is useful.
type Adapter struct {
	title string
}

var errUnsupported = fmt.Errorf("window automation is only supported on windows")

func NewAdapter(title string, log *logging.Logger) *Adapter {
	_ = log
	return &Adapter{title: title}
}

func (a *Adapter) CaptureFrame() (*image.Gray, error) {
	return nil, errUnsupported
}

func (a *Adapter) Dimensions() (width, height int) {
	return 0, 0
}

func (a *Adapter) ActiveWindowTitle() string {
	return ""
}

func (a *Adapter) PointerPosition() (image.Point, error) {
	return image.Point{}, errUnsupported
}

func (a *Adapter) MoveAndClick(x, y int, hold time.Duration) error {
	return errUnsupported
}

func (a *Adapter) PressKey(name string) error {
	return errUnsupported
}
