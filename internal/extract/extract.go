// Package extract turns preprocessed screen regions into typed field values.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"kartlog/internal/ocr"
	"kartlog/internal/preprocess"
	"kartlog/internal/region"
	"kartlog/pkg/geometry"

	"gocv.io/x/gocv"
)

// MaxValidRate bounds plausible rating values. Anything above it is an OCR
// misread (a stray digit, usually) and invalidates the whole record.
const MaxValidRate = 10000

// ErrUnavailable marks a field that could not be read: the region fell
// outside the frame or OCR produced unparsable text.
var ErrUnavailable = errors.New("field unavailable")

// ErrRateOutOfRange marks a recognized rate above MaxValidRate. Unlike
// ErrUnavailable it poisons the whole record rather than one field.
var ErrRateOutOfRange = errors.New("rate exceeds valid bound")

var signedPattern = regexp.MustCompile(`^[+-]\d+$`)

// Extractor reads typed values from normalized frames via an OCR capability.
type Extractor struct {
	rec ocr.Recognizer
}

// New creates an extractor on top of a recognizer.
func New(rec ocr.Recognizer) *Extractor {
	return &Extractor{rec: rec}
}

// Rank reads a rank cell. Only needed for rank 13; ranks 1-12 are encoded by
// slot position and never reach OCR.
func (e *Extractor) Rank(frame gocv.Mat, r geometry.RectInt) (int, error) {
	text, err := e.readField(frame, r, region.KindRank, ocr.DigitChars)
	if err != nil {
		return 0, err
	}
	n, ok := parseDigits(text)
	if !ok || n <= 0 {
		return 0, fmt.Errorf("rank %q: %w", text, ErrUnavailable)
	}
	return n, nil
}

// Rate reads a rating field and enforces the validity bound.
func (e *Extractor) Rate(frame gocv.Mat, r geometry.RectInt) (int, error) {
	text, err := e.readField(frame, r, region.KindRate, ocr.DigitChars)
	if err != nil {
		return 0, err
	}
	n, ok := parseDigits(text)
	if !ok || n <= 0 {
		return 0, fmt.Errorf("rate %q: %w", text, ErrUnavailable)
	}
	if n > MaxValidRate {
		return 0, fmt.Errorf("rate %d: %w", n, ErrRateOutOfRange)
	}
	return n, nil
}

// RateChange reads the signed delta field. An unreadable delta resolves to
// zero, not an error; the reconciliation chain recomputes the real change
// from rate history anyway.
func (e *Extractor) RateChange(frame gocv.Mat, r geometry.RectInt) int {
	text, err := e.readField(frame, r, region.KindRateChange, ocr.SignedChars)
	if err != nil {
		return 0
	}
	n, ok := parseSigned(text)
	if !ok {
		return 0
	}
	return n
}

// CourseText reads raw text out of the course search area, restricted to the
// characters that can actually appear in a course name. The caller passes the
// result through the course matcher.
func (e *Extractor) CourseText(frame gocv.Mat, r geometry.RectInt, whitelist string) (string, error) {
	roi, ok := preprocess.Crop(frame, r)
	if !ok {
		return "", fmt.Errorf("course area out of bounds: %w", ErrUnavailable)
	}
	defer roi.Close()

	prepared := preprocess.ForOCR(roi, region.KindCourseArea)
	defer prepared.Close()

	text, err := e.rec.Recognize(prepared, whitelist, ocr.SegSingleBlock)
	if err != nil {
		return "", fmt.Errorf("course text: %w", ErrUnavailable)
	}
	return text, nil
}

func (e *Extractor) readField(frame gocv.Mat, r geometry.RectInt, kind region.Kind, whitelist string) (string, error) {
	roi, ok := preprocess.Crop(frame, r)
	if !ok {
		return "", fmt.Errorf("%s region out of bounds: %w", kind, ErrUnavailable)
	}
	defer roi.Close()

	prepared := preprocess.ForOCR(roi, kind)
	defer prepared.Close()

	text, err := e.rec.Recognize(prepared, whitelist, ocr.SegSingleLine)
	if err != nil {
		return "", fmt.Errorf("%s: %w", kind, ErrUnavailable)
	}
	return strings.TrimSpace(text), nil
}

// parseDigits accepts only a non-empty all-digit string.
func parseDigits(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	for _, c := range text {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseSigned accepts only an explicitly signed integer like "+42" or "-17".
func parseSigned(text string) (int, bool) {
	if !signedPattern.MatchString(text) {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}
