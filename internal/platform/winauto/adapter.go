//go:build windows

// Package winauto is the Windows adapter: GDI window capture, SendInput
// mouse and keyboard, cursor polling, and foreground-window queries. It
// implements the capture, actuator, window and pointer boundaries consumed
// by the bot packages.
package winauto

import (
	"fmt"
	"image"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"github.com/mirrorworks/limbus-pilot/internal/logging"
)

func init() {
	// Per-monitor DPI awareness, so client rects and cursor coordinates are
	// reported in physical pixels on scaled displays.
	procSetProcessDpiAwareness.Call(uintptr(2))
}

var (
	modUser32          = syscall.NewLazyDLL("User32.dll")
	procGetClientRect  = modUser32.NewProc("GetClientRect")
	procGetDC          = modUser32.NewProc("GetDC")
	procReleaseDC      = modUser32.NewProc("ReleaseDC")
	procIsWindow       = modUser32.NewProc("IsWindow")
	procGetWindowTextW = modUser32.NewProc("GetWindowTextW")

	modGdi32               = syscall.NewLazyDLL("Gdi32.dll")
	procBitBlt             = modGdi32.NewProc("BitBlt")
	procCreateCompatibleDC = modGdi32.NewProc("CreateCompatibleDC")
	procCreateDIBSection   = modGdi32.NewProc("CreateDIBSection")
	procDeleteDC           = modGdi32.NewProc("DeleteDC")
	procDeleteObject       = modGdi32.NewProc("DeleteObject")
	procSelectObject       = modGdi32.NewProc("SelectObject")

	modShcore                  = syscall.NewLazyDLL("Shcore.dll")
	procSetProcessDpiAwareness = modShcore.NewProc("SetProcessDpiAwareness")
)

// Adapter binds to one target window by exact title.
type Adapter struct {
	title string
	log   *logging.Logger

	mu   sync.Mutex
	hwnd win.HWND

	lastW, lastH int
}

// NewAdapter creates an adapter for the named window. The window does not
// need to exist yet; the handle is resolved lazily and re-resolved when it
// goes stale.
func NewAdapter(title string, log *logging.Logger) *Adapter {
	if log == nil {
		log = logging.NewLogger("winauto")
	}
	return &Adapter{title: title, log: log}
}

// handle returns the cached window handle, re-finding it if needed.
func (a *Adapter) handle() (win.HWND, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.hwnd != 0 {
		if alive, _, _ := procIsWindow.Call(uintptr(a.hwnd)); alive != 0 {
			return a.hwnd, nil
		}
		a.hwnd = 0
	}
	a.hwnd = win.FindWindow(nil, syscall.StringToUTF16Ptr(a.title))
	if a.hwnd == 0 {
		return 0, fmt.Errorf("window %q not found, is the game running?", a.title)
	}
	a.log.Debugf("bound to window %q", a.title)
	return a.hwnd, nil
}

// clientRect returns the window's client area in pixels.
func (a *Adapter) clientRect(hwnd win.HWND) (image.Rectangle, error) {
	var rect win.RECT
	ret, _, err := procGetClientRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&rect)))
	if ret == 0 {
		return image.Rectangle{}, fmt.Errorf("failed to get client rect: %s", err)
	}
	return image.Rect(0, 0, int(rect.Right), int(rect.Bottom)), nil
}

// Dimensions reports the last captured frame size. Zero before the first
// successful capture.
func (a *Adapter) Dimensions() (width, height int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastW, a.lastH
}

// ActiveWindowTitle returns the title of the foreground window, empty when
// none.
func (a *Adapter) ActiveWindowTitle() string {
	hwnd := win.GetForegroundWindow()
	if hwnd == 0 {
		return ""
	}
	buf := make([]uint16, 256)
	n, _, _ := procGetWindowTextW.Call(
		uintptr(hwnd),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:n])
}

// PointerPosition returns the cursor position in screen coordinates.
func (a *Adapter) PointerPosition() (image.Point, error) {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return image.Point{}, fmt.Errorf("failed to query cursor position")
	}
	return image.Pt(int(pt.X), int(pt.Y)), nil
}
