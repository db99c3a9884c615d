package cv

import "image"

// Capturer produces grayscale frames of the target surface on demand.
// Implementations live in the platform adapters; tests use synthetic frames.
type Capturer interface {
	// CaptureFrame returns a fresh grayscale raster.
	CaptureFrame() (*image.Gray, error)

	// Dimensions returns the capture width and height in pixels.
	Dimensions() (width, height int)
}
