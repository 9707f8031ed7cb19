// Package classify decides which of the two interesting screens a frame is
// currently showing.
package classify

import (
	"strings"

	"kartlog/internal/ocr"
	"kartlog/internal/preprocess"
	"kartlog/internal/region"
	"kartlog/pkg/geometry"

	"gocv.io/x/gocv"
)

// Screen identifies the recognized screen state.
type Screen int

const (
	ScreenNone Screen = iota
	ScreenCourseDecision
	ScreenResult
)

func (s Screen) String() string {
	switch s {
	case ScreenCourseDecision:
		return "course_decision"
	case ScreenResult:
		return "result"
	}
	return "none"
}

// Verdict is the classification result for one frame.
type Verdict struct {
	Screen Screen

	// ParticipantCount is the number of bright player slots. Course
	// decision only.
	ParticipantCount int

	// Standalone reports that the course screen announces a single race,
	// not the second leg of a chained one. Course decision only.
	Standalone bool

	// HighlightedRank is the 1-based row of the local player. Result only.
	HighlightedRank int
}

// Classifier inspects frames against the region catalog. It holds no mutable
// state: the same frame always yields the same verdict.
type Classifier struct {
	catalog *region.Catalog
	rec     ocr.Recognizer
	policy  Policy
}

// New creates a classifier.
func New(catalog *region.Catalog, rec ocr.Recognizer, policy Policy) *Classifier {
	return &Classifier{catalog: catalog, rec: rec, policy: policy}
}

// Classify inspects a normalized frame and reports the current screen state.
func (c *Classifier) Classify(frame gocv.Mat) Verdict {
	if v, ok := c.classifyCourseDecision(frame); ok {
		return v
	}
	if v, ok := c.classifyResult(frame); ok {
		return v
	}
	return Verdict{Screen: ScreenNone}
}

// classifyCourseDecision checks the player-slot columns. Detection needs at
// least MinOccupiedSlots slots whose region OCRs as a rating; the participant
// count is the separate brightness census over all slots.
func (c *Classifier) classifyCourseDecision(frame gocv.Mat) (Verdict, bool) {
	occupied := 0
	participants := 0
	for _, slot := range c.catalog.PlayerSlots {
		roi, ok := preprocess.Crop(frame, slot.Rect)
		if !ok {
			continue
		}
		gray := preprocess.ForProbe(roi)
		if gray.Mean().Val1 > c.policy.BrightnessThreshold {
			participants++
		}
		// Only keep probing with OCR until the occupancy requirement is
		// met; the brightness census stays cheap for every slot.
		if occupied < c.policy.MinOccupiedSlots && c.digitProbe(gray) {
			occupied++
		}
		gray.Close()
		roi.Close()
	}

	if occupied < c.policy.MinOccupiedSlots {
		return Verdict{}, false
	}
	return Verdict{
		Screen:           ScreenCourseDecision,
		ParticipantCount: participants,
		Standalone:       c.isStandalone(frame),
	}, true
}

// isStandalone checks the center marker plate for near-black pixel density.
func (c *Classifier) isStandalone(frame gocv.Mat) bool {
	roi, ok := preprocess.Crop(frame, c.catalog.SingleCourseMarker.Rect)
	if !ok {
		return false
	}
	defer roi.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(roi, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(0, 0, 0, 0),
		gocv.NewScalar(180, 255, c.policy.BlackValueCeiling, 0),
		&mask)

	return gocv.CountNonZero(mask) > c.policy.BlackMinPixels
}

// classifyResult checks the 13 rank rows for rating digits and, per policy,
// the highlight color band; the two signals must agree.
func (c *Classifier) classifyResult(frame gocv.Mat) (Verdict, bool) {
	hits := 0
	for _, row := range c.catalog.ResultRows {
		roi, ok := preprocess.Crop(frame, row.Rate.Rect)
		if !ok {
			continue
		}
		gray := preprocess.ForProbe(roi)
		if c.digitProbe(gray) {
			hits++
		}
		gray.Close()
		roi.Close()
		if hits >= c.policy.MinRateHits {
			break
		}
	}
	if hits < c.policy.MinRateHits {
		return Verdict{}, false
	}

	if c.policy.RequireHighlight && !c.highlightPresent(frame) {
		return Verdict{}, false
	}

	rank, ok := c.highlightedRow(frame)
	if !ok {
		// Rating digits without a locatable player row: treat as not a
		// result screen rather than guessing a rank.
		return Verdict{}, false
	}
	return Verdict{Screen: ScreenResult, HighlightedRank: rank}, true
}

// highlightPresent checks the aggregate result area for the highlight band.
func (c *Classifier) highlightPresent(frame gocv.Mat) bool {
	n, ok := c.highlightCount(frame, c.catalog.ResultArea())
	return ok && n > c.policy.HighlightMinPixels
}

// highlightedRow scans rank cells top to bottom and returns the first row
// whose highlight fraction exceeds the policy cutoff.
func (c *Classifier) highlightedRow(frame gocv.Mat) (int, bool) {
	for i, row := range c.catalog.ResultRows {
		n, ok := c.highlightCount(frame, row.Rank.Rect)
		if !ok {
			continue
		}
		if float64(n) > float64(row.Rank.Rect.Area())*c.policy.HighlightCellFraction {
			return i + 1, true
		}
	}
	return 0, false
}

// highlightCount counts highlight-colored pixels inside a frame rectangle.
func (c *Classifier) highlightCount(frame gocv.Mat, rect geometry.RectInt) (int, bool) {
	roi, ok := preprocess.Crop(frame, rect)
	if !ok {
		return 0, false
	}
	defer roi.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(roi, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	lo, hi := c.policy.HighlightLower, c.policy.HighlightUpper
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(lo.H, lo.S, lo.V, 0),
		gocv.NewScalar(hi.H, hi.S, hi.V, 0),
		&mask)

	return gocv.CountNonZero(mask), true
}

// digitProbe runs a cheap single-line OCR pass over a grayscale crop and
// reports whether it reads like a rating: three or more digits, nothing else.
func (c *Classifier) digitProbe(gray gocv.Mat) bool {
	text, err := c.rec.Recognize(gray, ocr.DigitChars, ocr.SegSingleLine)
	if err != nil {
		return false
	}
	text = strings.TrimSpace(text)
	if len(text) < 3 {
		return false
	}
	for _, ch := range text {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// BrightestSlot returns the player slot with the strongest peak brightness
// among slots bright enough to hold a card. That slot is the local player's
// own card, where the pre-race rate is read from.
func (c *Classifier) BrightestSlot(frame gocv.Mat) (geometry.RectInt, bool) {
	var best geometry.RectInt
	bestPeak := float32(-1)
	for _, slot := range c.catalog.PlayerSlots {
		roi, ok := preprocess.Crop(frame, slot.Rect)
		if !ok {
			continue
		}
		gray := preprocess.ForProbe(roi)
		if gray.Mean().Val1 > c.policy.BrightnessThreshold {
			_, peak, _, _ := gocv.MinMaxLoc(gray)
			if peak > bestPeak {
				bestPeak = peak
				best = slot.Rect
			}
		}
		gray.Close()
		roi.Close()
	}
	return best, bestPeak >= 0
}
