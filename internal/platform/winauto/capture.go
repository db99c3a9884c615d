//go:build windows

package winauto

import (
	"fmt"
	"image"
	"unsafe"
)

// Wingdi.h structures for CreateDIBSection.
type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type rgbQuad struct {
	RgbBlue     byte
	RgbGreen    byte
	RgbRed      byte
	RgbReserved byte
}

type bitmapInfo struct {
	BmiHeader bitmapInfoHeader
	BmiColors *rgbQuad
}

const srcCopy = 0x00CC0020

// CaptureFrame grabs the window's client area via GDI BitBlt and reduces the
// BGRA pixels to grayscale in one pass.
func (a *Adapter) CaptureFrame() (*image.Gray, error) {
	hwnd, err := a.handle()
	if err != nil {
		return nil, err
	}
	rect, err := a.clientRect(hwnd)
	if err != nil {
		return nil, err
	}
	width, height := rect.Dx(), rect.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("window %q has no client area, minimized?", a.title)
	}

	dcSrc, _, err := procGetDC.Call(uintptr(hwnd))
	if dcSrc == 0 {
		return nil, fmt.Errorf("failed to get device context: %s", err)
	}
	defer procReleaseDC.Call(uintptr(hwnd), dcSrc)

	dcDst, _, err := procCreateCompatibleDC.Call(dcSrc)
	if dcDst == 0 {
		return nil, fmt.Errorf("failed to create drawing context: %s", err)
	}
	defer procDeleteDC.Call(dcDst)

	// Negative height requests a top-down DIB, so rows come out in image
	// order without a flip pass.
	var info bitmapInfo
	info.BmiHeader = bitmapInfoHeader{
		BiSize:        uint32(unsafe.Sizeof(info.BmiHeader)),
		BiWidth:       int32(width),
		BiHeight:      -int32(height),
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: 0, // BI_RGB
	}
	bitmapData := unsafe.Pointer(uintptr(0))
	bitmap, _, err := procCreateDIBSection.Call(
		dcDst,
		uintptr(unsafe.Pointer(&info)),
		0,
		uintptr(unsafe.Pointer(&bitmapData)), 0, 0)
	if bitmap == 0 {
		return nil, fmt.Errorf("failed to create capture bitmap: %s", err)
	}
	defer procDeleteObject.Call(bitmap)

	procSelectObject.Call(dcDst, bitmap)
	ret, _, err := procBitBlt.Call(
		dcDst, 0, 0, uintptr(width), uintptr(height),
		dcSrc, 0, 0, srcCopy)
	if ret == 0 {
		return nil, fmt.Errorf("failed to capture window: %s", err)
	}

	raw := unsafe.Slice((*byte)(bitmapData), width*height*4)

	gray := image.NewGray(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < len(raw); i, j = i+4, j+1 {
		b, g, r := raw[i], raw[i+1], raw[i+2]
		// ITU-R BT.601 luma, integer form.
		gray.Pix[j] = uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
	}

	a.mu.Lock()
	a.lastW, a.lastH = width, height
	a.mu.Unlock()

	return gray, nil
}
