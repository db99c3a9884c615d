package cv

import "image"

// ROI is a region of interest restricting where a template is searched.
// Each component resolves independently: values <= 1.0 are fractions of the
// matching frame dimension, values above 1.0 are absolute pixels. Tuned
// configurations use fractions throughout; the per-component rule lets an
// absolute region keep a zero origin (x: 0, w: 500 means 500 pixels from
// the left edge).
type ROI struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// FullFrame is the ROI covering the entire frame.
var FullFrame = ROI{X: 0, Y: 0, W: 1, H: 1}

// IsZero reports whether the ROI is unset.
func (r ROI) IsZero() bool {
	return r == ROI{}
}

// resolveComponent maps one ROI component to pixels: a fraction of the
// extent when <= 1.0, absolute pixels otherwise.
func resolveComponent(v float64, extent int) int {
	if v <= 1.0 {
		return int(v * float64(extent))
	}
	return int(v)
}

// Resolve converts the ROI into a pixel rectangle for a frame of the given
// size. The origin is clamped to >= 0 and the extent shrunk so the rectangle
// stays inside the frame. The result can be empty or inverted; callers treat
// that as "unmatchable this frame", not an error.
func (r ROI) Resolve(frameW, frameH int) image.Rectangle {
	xi := resolveComponent(r.X, frameW)
	yi := resolveComponent(r.Y, frameH)
	wi := resolveComponent(r.W, frameW)
	hi := resolveComponent(r.H, frameH)
	if xi < 0 {
		xi = 0
	}
	if yi < 0 {
		yi = 0
	}
	if wi > frameW-xi {
		wi = frameW - xi
	}
	if hi > frameH-yi {
		hi = frameH - yi
	}
	if wi <= 0 || hi <= 0 {
		// image.Rect would canonicalize an inverted rectangle into a valid
		// one; return an explicit empty rectangle instead.
		return image.Rectangle{}
	}

	return image.Rect(xi, yi, xi+wi, yi+hi)
}
