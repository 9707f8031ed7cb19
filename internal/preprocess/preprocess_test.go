package preprocess

import (
	"testing"

	"kartlog/internal/region"
	"kartlog/pkg/geometry"

	"gocv.io/x/gocv"
)

func TestNormalizeResizes(t *testing.T) {
	small := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	defer small.Close()

	norm := Normalize(small)
	defer norm.Close()
	if norm.Cols() != region.FrameWidth || norm.Rows() != region.FrameHeight {
		t.Errorf("normalized size = %dx%d, want %dx%d",
			norm.Cols(), norm.Rows(), region.FrameWidth, region.FrameHeight)
	}
}

func TestNormalizeCopiesWhenAlreadySized(t *testing.T) {
	frame := gocv.NewMatWithSize(region.FrameHeight, region.FrameWidth, gocv.MatTypeCV8UC3)
	norm := Normalize(frame)
	defer norm.Close()

	// The caller may close the original immediately; the copy must survive.
	frame.Close()
	if norm.Cols() != region.FrameWidth || norm.Rows() != region.FrameHeight {
		t.Errorf("copied size = %dx%d, want %dx%d",
			norm.Cols(), norm.Rows(), region.FrameWidth, region.FrameHeight)
	}
}

func TestCrop(t *testing.T) {
	frame := gocv.NewMatWithSize(region.FrameHeight, region.FrameWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	roi, ok := Crop(frame, geometry.FromCorners(440, 100, 520, 140))
	if !ok {
		t.Fatal("Crop rejected an in-bounds region")
	}
	defer roi.Close()
	if roi.Cols() != 80 || roi.Rows() != 40 {
		t.Errorf("crop size = %dx%d, want 80x40", roi.Cols(), roi.Rows())
	}
}

func TestCropRejectsOutOfBounds(t *testing.T) {
	// A 720p frame that skipped normalization: every reference region past
	// its edges must be skipped, not clamped.
	frame := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cases := []geometry.RectInt{
		geometry.FromCorners(1730, 45, 1860, 110),  // past the right edge
		geometry.FromCorners(560, 850, 1360, 1020), // past the bottom edge
		{},                                         // empty
	}
	for _, r := range cases {
		if _, ok := Crop(frame, r); ok {
			t.Errorf("Crop accepted %+v on a 1280x720 frame", r)
		}
	}
}
