//go:build windows

package winauto

import (
	"fmt"
	"strings"
	"time"
	"unsafe"

	"github.com/lxn/win"
)

// namedKeys maps key names used by the rule set to virtual-key codes.
// Single letters and digits fall through to their ASCII code.
var namedKeys = map[string]uint16{
	"enter":  win.VK_RETURN,
	"esc":    win.VK_ESCAPE,
	"escape": win.VK_ESCAPE,
	"space":  win.VK_SPACE,
	"tab":    win.VK_TAB,
}

// MoveAndClick translates the capture-space point to screen coordinates,
// moves the cursor there and issues a left click, holding the button for
// hold when non-zero.
func (a *Adapter) MoveAndClick(x, y int, hold time.Duration) error {
	hwnd, err := a.handle()
	if err != nil {
		return err
	}

	pt := win.POINT{X: int32(x), Y: int32(y)}
	win.ClientToScreen(hwnd, &pt)
	if !win.SetCursorPos(pt.X, pt.Y) {
		return fmt.Errorf("failed to move cursor to (%d, %d)", pt.X, pt.Y)
	}

	down := win.MOUSE_INPUT{
		Type: win.INPUT_MOUSE,
		Mi:   win.MOUSEINPUT{DwFlags: win.MOUSEEVENTF_LEFTDOWN},
	}
	up := win.MOUSE_INPUT{
		Type: win.INPUT_MOUSE,
		Mi:   win.MOUSEINPUT{DwFlags: win.MOUSEEVENTF_LEFTUP},
	}

	if hold <= 0 {
		inputs := []win.MOUSE_INPUT{down, up}
		if n := win.SendInput(2, unsafe.Pointer(&inputs[0]), int32(unsafe.Sizeof(down))); n != 2 {
			return fmt.Errorf("click input rejected")
		}
		return nil
	}

	if n := win.SendInput(1, unsafe.Pointer(&down), int32(unsafe.Sizeof(down))); n != 1 {
		return fmt.Errorf("click input rejected")
	}
	time.Sleep(hold)
	if n := win.SendInput(1, unsafe.Pointer(&up), int32(unsafe.Sizeof(up))); n != 1 {
		return fmt.Errorf("click release rejected")
	}
	return nil
}

// PressKey taps a named key.
func (a *Adapter) PressKey(name string) error {
	vk, err := keyCode(name)
	if err != nil {
		return err
	}

	down := win.KEYBD_INPUT{
		Type: win.INPUT_KEYBOARD,
		Ki:   win.KEYBDINPUT{WVk: vk},
	}
	up := win.KEYBD_INPUT{
		Type: win.INPUT_KEYBOARD,
		Ki:   win.KEYBDINPUT{WVk: vk, DwFlags: win.KEYEVENTF_KEYUP},
	}
	inputs := []win.KEYBD_INPUT{down, up}
	if n := win.SendInput(2, unsafe.Pointer(&inputs[0]), int32(unsafe.Sizeof(down))); n != 2 {
		return fmt.Errorf("key input rejected for %q", name)
	}
	return nil
}

func keyCode(name string) (uint16, error) {
	lower := strings.ToLower(name)
	if vk, ok := namedKeys[lower]; ok {
		return vk, nil
	}
	if len(lower) == 1 {
		c := lower[0]
		if c >= 'a' && c <= 'z' {
			return uint16(c - 'a' + 'A'), nil
		}
		if c >= '0' && c <= '9' {
			return uint16(c), nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", name)
}
