package cv

import "image"

// equalizeHist applies global histogram equalization to a grayscale image,
// spreading intensity over the full 0..255 range. Matching equalizes both
// the cropped frame region and the scaled template so that SDR/HDR dynamic
// range differences do not depress correlation scores.
func equalizeHist(img *image.Gray) *image.Gray {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if total == 0 {
		return out
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[img.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			hist[row[x]]++
		}
	}

	// Build the lookup table from the cumulative distribution, anchored at
	// the first non-empty bucket so the darkest present value maps to 0.
	var lut [256]uint8
	cdf := 0
	cdfMin := -1
	for i := 0; i < 256; i++ {
		cdf += hist[i]
		if cdfMin < 0 && hist[i] > 0 {
			cdfMin = cdf
		}
		if cdfMin > 0 {
			if total > cdfMin {
				lut[i] = uint8((cdf - cdfMin) * 255 / (total - cdfMin))
			} else {
				// Flat image: every pixel the same value.
				lut[i] = 255
			}
		}
	}

	for y := 0; y < bounds.Dy(); y++ {
		src := img.Pix[img.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			dst[x] = lut[src[x]]
		}
	}
	return out
}
