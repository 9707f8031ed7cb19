// Package preprocess prepares frame regions for OCR.
//
// Every frame is normalized to the catalog's 1920x1080 reference size before
// any region lookup; region coordinates are meaningless at any other
// resolution. Per-field pipelines then shape each crop to what tesseract
// reads best: dark text on a clean light background.
package preprocess

import (
	"image"

	"kartlog/internal/region"
	"kartlog/pkg/geometry"

	"gocv.io/x/gocv"
)

// Upscale factors. Rate digits are small and thin-stroked; course text sits
// on a busy plate and needs room for the adaptive threshold window.
const (
	rateScale   = 4.0
	courseScale = 3.0
)

// Normalize resizes a raw capture frame to the reference 1920x1080. The
// returned Mat is always a new allocation; the caller owns it.
func Normalize(frame gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	if frame.Cols() == region.FrameWidth && frame.Rows() == region.FrameHeight {
		frame.CopyTo(&dst)
		return dst
	}
	gocv.Resize(frame, &dst, image.Pt(region.FrameWidth, region.FrameHeight), 0, 0, gocv.InterpolationArea)
	return dst
}

// Crop extracts a region view from a normalized frame. Returns ok=false when
// the region falls outside the frame (a lower-resolution capture slipped
// through); such fields are skipped, not fatal. The returned Mat shares
// memory with the frame and must be closed by the caller.
func Crop(frame gocv.Mat, r geometry.RectInt) (gocv.Mat, bool) {
	if r.Empty() || !r.FitsWithin(frame.Cols(), frame.Rows()) {
		return gocv.Mat{}, false
	}
	return frame.Region(r.ToImageRect()), true
}

// ForProbe converts a crop to plain grayscale. The classifier's cheap digit
// probes run on this without the full field pipeline.
func ForProbe(roi gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)
	return gray
}

// ForOCR runs the field-kind-specific pipeline over a BGR crop and returns a
// binarized image ready for recognition. The caller owns the result.
func ForOCR(roi gocv.Mat, kind region.Kind) gocv.Mat {
	switch kind {
	case region.KindRate:
		return prepareRate(roi)
	case region.KindRateChange:
		return prepareRateChange(roi)
	case region.KindCourseArea:
		return prepareCourse(roi)
	default:
		return prepareDigits(roi)
	}
}

// prepareDigits handles plain digit cells (rank): grayscale plus Otsu.
func prepareDigits(roi gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)

	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	return binary
}

// prepareRate upscales before thresholding and opens away thin noise that
// otherwise merges with the thin digit strokes.
func prepareRate(roi gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(gray, &scaled, image.Point{}, rateScale, rateScale, gocv.InterpolationCubic)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(scaled, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2, 2))
	defer kernel.Close()
	opened := gocv.NewMat()
	gocv.MorphologyEx(binary, &opened, gocv.MorphOpen, kernel)
	return opened
}

// prepareRateChange inverts first; the signed delta renders light-on-dark.
func prepareRateChange(roi gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)

	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(gray, &inverted)

	binary := gocv.NewMat()
	gocv.Threshold(inverted, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	return binary
}

// prepareCourse copes with a fixed font over a variable semi-transparent
// plate: upscale, locally-normalized threshold, polarity fix, then close to
// reconnect strokes the threshold broke apart.
func prepareCourse(roi gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(gray, &scaled, image.Point{}, courseScale, courseScale, gocv.InterpolationCubic)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(scaled, &binary, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, 31, 15)

	// Tesseract wants dark text on light background. More white than black
	// after thresholding means the polarity is flipped.
	whiteRatio := float64(gocv.CountNonZero(binary)) / float64(binary.Rows()*binary.Cols())
	if whiteRatio < 0.5 {
		gocv.BitwiseNot(binary, &binary)
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2, 2))
	defer kernel.Close()
	closed := gocv.NewMat()
	gocv.MorphologyEx(binary, &closed, gocv.MorphClose, kernel)
	return closed
}
