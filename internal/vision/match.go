package vision

import (
	"errors"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// DefaultThreshold is the minimum normalized cross-correlation score that
// counts as a positive match.
const DefaultThreshold = 0.85

// maxInstances bounds LocateAll so a degenerate template cannot loop forever.
const maxInstances = 64

// ErrTemplateTooLarge is returned when a template does not fit inside the
// image it is matched against. Callers treat it as a non-match.
var ErrTemplateTooLarge = errors.New("vision: template larger than image")

// Match is one located instance of a template.
type Match struct {
	Bounds image.Rectangle // Matched region in image coordinates
	Score  float64         // TM_CCOEFF_NORMED score in [-1, 1]
}

// Center returns the middle of the matched region, the point a click targets.
func (m Match) Center() image.Point {
	return image.Pt(
		m.Bounds.Min.X+m.Bounds.Dx()/2,
		m.Bounds.Min.Y+m.Bounds.Dy()/2,
	)
}

// Offset translates the match by p, e.g. from capture to screen coordinates.
func (m Match) Offset(p image.Point) Match {
	m.Bounds = m.Bounds.Add(p)
	return m
}

// correlate runs normalized cross-correlation of tpl over img.
// The caller owns the returned score map.
func correlate(img, tpl Gray) (gocv.Mat, error) {
	if img.Empty() || tpl.Empty() {
		return gocv.Mat{}, ErrEmpty
	}
	if tpl.Width() > img.Width() || tpl.Height() > img.Height() {
		return gocv.Mat{}, ErrTemplateTooLarge
	}

	result := gocv.NewMat()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MatchTemplate(img.mat, tpl.mat, &result, gocv.TmCcoeffNormed, mask)
	return result, nil
}

// BestMatch returns the single highest scoring placement of tpl in img.
func BestMatch(img, tpl Gray) (Match, error) {
	result, err := correlate(img, tpl)
	if err != nil {
		return Match{}, err
	}
	defer result.Close()

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
	return Match{
		Bounds: image.Rectangle{Min: maxLoc, Max: maxLoc.Add(tpl.Size())},
		Score:  finite(maxVal),
	}, nil
}

// Score returns the best match score of tpl in img. A template that does not
// fit, or an empty bitmap, scores -1.
func Score(img, tpl Gray) float64 {
	m, err := BestMatch(img, tpl)
	if err != nil {
		return -1
	}
	return m.Score
}

// Locate reports the best match of tpl in img if it reaches threshold.
func Locate(img, tpl Gray, threshold float64) (Match, bool) {
	m, err := BestMatch(img, tpl)
	if err != nil || m.Score < threshold {
		return Match{}, false
	}
	return m, true
}

// LocateAll finds every non-overlapping instance of tpl scoring at least
// threshold. It repeatedly takes the best remaining placement and suppresses
// all placements overlapping it. Matches are returned best first.
func LocateAll(img, tpl Gray, threshold float64) []Match {
	result, err := correlate(img, tpl)
	if err != nil {
		return nil
	}
	defer result.Close()

	size := tpl.Size()
	var matches []Match
	for len(matches) < maxInstances {
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
		score := finite(maxVal)
		if score < threshold {
			break
		}
		matches = append(matches, Match{
			Bounds: image.Rectangle{Min: maxLoc, Max: maxLoc.Add(size)},
			Score:  score,
		})
		suppress(&result, maxLoc, size)
	}
	return matches
}

// suppress overwrites every score whose placement would overlap the template
// placed at loc, so the next MinMaxLoc finds a distinct instance.
func suppress(result *gocv.Mat, loc, size image.Point) {
	x0 := max(loc.X-size.X+1, 0)
	y0 := max(loc.Y-size.Y+1, 0)
	x1 := min(loc.X+size.X, result.Cols())
	y1 := min(loc.Y+size.Y, result.Rows())
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			result.SetFloatAt(y, x, -1)
		}
	}
}

// Leftmost returns the match with the smallest x coordinate. Ties go to the
// smaller y.
func Leftmost(matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Bounds.Min.X < best.Bounds.Min.X ||
			(m.Bounds.Min.X == best.Bounds.Min.X && m.Bounds.Min.Y < best.Bounds.Min.Y) {
			best = m
		}
	}
	return best, true
}

// finite maps the NaN OpenCV can produce for flat regions to -1.
func finite(v float32) float64 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return -1
	}
	return f
}
