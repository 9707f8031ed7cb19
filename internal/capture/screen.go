package capture

import (
	"fmt"

	"github.com/vova616/screenshot"
	"gocv.io/x/gocv"
)

// ScreenSource grabs the desktop the game window runs on. The frame is the
// full screen; region math holds as long as the game runs fullscreen at the
// screen's native resolution.
type ScreenSource struct {
	closed bool
}

// OpenScreen creates a screen-grab source, verifying one capture up front so
// a missing display surfaces at open time rather than mid-loop.
func OpenScreen() (*ScreenSource, error) {
	if _, err := screenshot.CaptureScreen(); err != nil {
		return nil, fmt.Errorf("screen capture unavailable: %w", err)
	}
	return &ScreenSource{}, nil
}

// ReadFrame implements Source.
func (s *ScreenSource) ReadFrame() (gocv.Mat, error) {
	if s.closed {
		return gocv.Mat{}, ErrSourceClosed
	}
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("screen grab failed: %w", ErrSourceClosed)
	}

	rgb, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to convert screen image: %w", err)
	}
	defer rgb.Close()

	// Downstream expects BGR channel order. The swap is symmetric, so the
	// BGR->RGB code works in both directions.
	bgr := gocv.NewMat()
	gocv.CvtColor(rgb, &bgr, gocv.ColorBGRToRGB)
	return bgr, nil
}

// Close implements Source.
func (s *ScreenSource) Close() error {
	s.closed = true
	return nil
}
