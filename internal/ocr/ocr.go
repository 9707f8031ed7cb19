// Package ocr abstracts text recognition behind capability interfaces so the
// classifier and extractor stay backend-agnostic.
package ocr

import "gocv.io/x/gocv"

// SegMode selects the page segmentation strategy for a recognition call.
type SegMode int

const (
	// SegSingleLine treats the image as one text line. All fixed-field
	// reads (rank, rate, rate change) use this.
	SegSingleLine SegMode = iota
	// SegSingleBlock treats the image as a uniform block of text. Used for
	// the multi-line course search area.
	SegSingleBlock
)

// Character whitelists for the fixed fields.
const (
	DigitChars  = "0123456789"
	SignedChars = "+-0123456789"
)

// Recognizer turns a prepared image into text, optionally restricted to a
// character whitelist. An empty whitelist allows the engine's full set.
type Recognizer interface {
	Recognize(img gocv.Mat, whitelist string, mode SegMode) (string, error)
	Close() error
}

// CourseRecognizer is an optional higher-level text-from-image service for
// the course-name area. It receives the closed vocabulary as a hint and
// returns free text, which still passes through the course matcher.
type CourseRecognizer interface {
	RecognizeCourse(img gocv.Mat, vocabulary []string) (string, error)
}
