package cv

import "image"

// Variant is one reference rendering of a UI element. Mask, when present,
// marks the opaque pixels of the source image; scoring is on grayscale
// intensity only, the mask is retained for future precision filtering.
type Variant struct {
	Image *image.Gray
	Mask  *image.Alpha
}

// Template describes one named UI element to recognize: its image variants,
// the minimum passing score, and the region of the frame to search.
type Template struct {
	Name      string
	Variants  []Variant
	Threshold float64
	ROI       ROI
}

// Result is the outcome of matching one template against one frame.
// Score is the best correlation found across all variant/scale combinations,
// or SentinelScore when no comparison was possible. Location is the match
// center in full-frame coordinates and is only meaningful when Found is set.
type Result struct {
	Score    float64
	Location image.Point
	Found    bool
}

// SentinelScore marks a match attempt where no correlation was computed:
// empty ROI, no variants, or nothing fit inside the region.
const SentinelScore = -1.0
