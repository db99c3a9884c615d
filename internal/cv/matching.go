package cv

import (
	"image"
	"math"

	"github.com/disintegration/gift"

	"github.com/mirrorworks/limbus-pilot/internal/logging"
)

// defaultScales is the fixed scale sweep applied to every variant. The
// target application renders at inconsistent scale depending on window size,
// so a small neighborhood around 1.0 is searched.
var defaultScales = []float64{0.9, 1.0, 1.1}

// Matcher runs multi-scale normalized cross-correlation of template variants
// against sub-regions of a captured frame.
type Matcher struct {
	scales []float64
	scores *Scoreboard
	log    *logging.Logger
}

// NewMatcher creates a matcher recording observability scores into board.
func NewMatcher(board *Scoreboard, log *logging.Logger) *Matcher {
	if board == nil {
		board = NewScoreboard()
	}
	if log == nil {
		log = logging.NewLogger("matcher")
	}
	return &Matcher{
		scales: defaultScales,
		scores: board,
		log:    log,
	}
}

// Scores returns the scoreboard the matcher records into.
func (m *Matcher) Scores() *Scoreboard {
	return m.scores
}

// Match searches one frame for one template. The best score across all
// variant/scale combinations is always recorded to the scoreboard; a
// location is returned only when the score passes the template threshold.
// An unusable ROI or template yields the sentinel score and no location —
// that is a normal "unmatchable this frame" outcome, never an error.
func (m *Matcher) Match(frame *image.Gray, tmpl Template) Result {
	miss := Result{Score: SentinelScore}

	bounds := frame.Bounds()
	rect := tmpl.ROI.Resolve(bounds.Dx(), bounds.Dy())
	if tmpl.ROI.IsZero() {
		rect = bounds
	}
	if rect.Empty() {
		m.scores.Record(tmpl.Name, SentinelScore)
		m.log.Debugf("match %s: ROI resolves empty for %dx%d frame", tmpl.Name, bounds.Dx(), bounds.Dy())
		return miss
	}
	if len(tmpl.Variants) == 0 {
		m.scores.Record(tmpl.Name, SentinelScore)
		m.log.Debugf("match %s: no variants loaded", tmpl.Name)
		return miss
	}

	region := equalizeHist(cropGray(frame, rect))
	regionW, regionH := region.Bounds().Dx(), region.Bounds().Dy()

	bestScore := SentinelScore
	var bestLoc image.Point
	var bestW, bestH int

	for _, variant := range tmpl.Variants {
		if variant.Image == nil {
			continue
		}
		tw := variant.Image.Bounds().Dx()
		th := variant.Image.Bounds().Dy()
		for _, scale := range m.scales {
			sw := int(float64(tw) * scale)
			sh := int(float64(th) * scale)
			if sw <= 0 || sh <= 0 || sw > regionW || sh > regionH {
				continue
			}
			scaled := equalizeHist(resizeGray(variant.Image, sw, sh))
			score, loc, ok := bestCorrelation(region, scaled)
			if !ok {
				continue
			}
			if score > bestScore {
				bestScore = score
				bestLoc = loc
				bestW, bestH = sw, sh
			}
		}
	}

	m.scores.Record(tmpl.Name, bestScore)
	if bestScore < tmpl.Threshold {
		return Result{Score: bestScore}
	}
	m.scores.RecordPass(tmpl.Name, bestScore)
	m.log.Debugf("match %s: passed score=%.3f threshold=%.3f", tmpl.Name, bestScore, tmpl.Threshold)

	center := image.Point{
		X: rect.Min.X + bestLoc.X + bestW/2,
		Y: rect.Min.Y + bestLoc.Y + bestH/2,
	}
	return Result{Score: bestScore, Location: center, Found: true}
}

// cropGray copies a rectangular region of a frame into a fresh image whose
// bounds start at the origin.
func cropGray(img *image.Gray, rect image.Rectangle) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		src := img.Pix[img.PixOffset(rect.Min.X, rect.Min.Y+y):]
		copy(out.Pix[y*out.Stride:y*out.Stride+rect.Dx()], src[:rect.Dx()])
	}
	return out
}

// resizeGray scales a grayscale image to the given dimensions.
func resizeGray(img *image.Gray, w, h int) *image.Gray {
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return img
	}
	g := gift.New(gift.Resize(w, h, gift.LinearResampling))
	out := image.NewGray(g.Bounds(img.Bounds()))
	g.Draw(out, img)
	return out
}

// bestCorrelation slides tpl over every position inside region and returns
// the highest zero-mean normalized cross-correlation coefficient and its
// top-left position. The coefficient is in [-1, 1], the same range as the
// scores thresholds are tuned against. ok is false when the template does
// not fit or has no variance to correlate.
func bestCorrelation(region, tpl *image.Gray) (score float64, loc image.Point, ok bool) {
	rw, rh := region.Bounds().Dx(), region.Bounds().Dy()
	tw, th := tpl.Bounds().Dx(), tpl.Bounds().Dy()
	if tw == 0 || th == 0 || tw > rw || th > rh {
		return 0, image.Point{}, false
	}

	n := float64(tw * th)
	var tSum, tSumSq float64
	for y := 0; y < th; y++ {
		row := tpl.Pix[y*tpl.Stride:]
		for x := 0; x < tw; x++ {
			v := float64(row[x])
			tSum += v
			tSumSq += v * v
		}
	}
	tMean := tSum / n
	tVar := tSumSq - tSum*tSum/n
	if tVar <= 0 {
		return 0, image.Point{}, false
	}
	tDenom := math.Sqrt(tVar)

	best := math.Inf(-1)
	var bestAt image.Point
	found := false

	for oy := 0; oy <= rh-th; oy++ {
		for ox := 0; ox <= rw-tw; ox++ {
			var rSum, rSumSq, crossSum float64
			for y := 0; y < th; y++ {
				rRow := region.Pix[(oy+y)*region.Stride+ox:]
				tRow := tpl.Pix[y*tpl.Stride:]
				for x := 0; x < tw; x++ {
					rv := float64(rRow[x])
					rSum += rv
					rSumSq += rv * rv
					crossSum += rv * float64(tRow[x])
				}
			}
			rVar := rSumSq - rSum*rSum/n
			if rVar <= 0 {
				continue
			}
			corr := (crossSum - rSum*tMean) / (math.Sqrt(rVar) * tDenom)
			if corr > best {
				best = corr
				bestAt = image.Point{X: ox, Y: oy}
				found = true
			}
		}
	}
	if !found {
		return 0, image.Point{}, false
	}
	return best, bestAt, true
}
