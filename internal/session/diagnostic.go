package session

import (
	"fmt"
	"image"
	"path/filepath"

	"kartlog/pkg/colorutil"

	"gocv.io/x/gocv"
)

// saveDiagnostic writes an annotated copy of the current frame showing which
// regions the active phase is watching.
func (m *Monitor) saveDiagnostic(frame gocv.Mat, sess *raceSession) {
	if m.opts.DebugDir == "" {
		m.log.Warn("diagnostic capture requested but no debug directory configured")
		return
	}

	overlay := frame.Clone()
	defer overlay.Close()

	var banner string
	switch sess.phase {
	case AwaitingCourse:
		banner = "State: Waiting for Course Decision"
		for _, slot := range m.catalog.PlayerSlots {
			gocv.Rectangle(&overlay, slot.Rect.ToImageRect(), colorutil.Yellow, 2)
		}
		gocv.Rectangle(&overlay, m.catalog.CourseArea.Rect.ToImageRect(), colorutil.Magenta, 2)
		gocv.Rectangle(&overlay, m.catalog.SingleCourseMarker.Rect.ToImageRect(), colorutil.Red, 2)
	case AwaitingResult:
		banner = fmt.Sprintf("State: Waiting for Result (Course: %s, Pre-Rate: %d)",
			sess.courseName, sess.preRaceRate)
		for _, row := range m.catalog.ResultRows {
			gocv.Rectangle(&overlay, row.Rate.Rect.ToImageRect(), colorutil.Green, 2)
		}
	}
	gocv.PutText(&overlay, banner, image.Pt(20, 40), gocv.FontHersheySimplex, 1, colorutil.White, 2)

	path := filepath.Join(m.opts.DebugDir, fmt.Sprintf("debug_capture_%s.png", m.now().Format("20060102_150405")))
	if gocv.IMWrite(path, overlay) {
		m.log.Info("diagnostic capture saved", "path", path)
	} else {
		m.log.Warn("failed to save diagnostic capture", "path", path)
	}
}
