// Package session drives the capture, classify, extract, persist loop and
// owns the in-memory race state between the two screens of interest.
package session

import (
	"kartlog/internal/classify"
	"kartlog/internal/course"

	"gocv.io/x/gocv"
)

// Phase is the state machine position within one race.
type Phase int

const (
	// AwaitingCourse means no course-decision screen has been captured yet.
	AwaitingCourse Phase = iota
	// AwaitingResult means the course is known and the loop waits for the
	// result screen.
	AwaitingResult
)

func (p Phase) String() string {
	if p == AwaitingResult {
		return "awaiting_result"
	}
	return "awaiting_course"
}

// raceSession is the mutable per-race state. Owned exclusively by the
// monitoring loop goroutine; reset after every completed or abandoned race.
type raceSession struct {
	phase        Phase
	courseName   string
	preRaceRate  int
	participants int
}

func (s *raceSession) reset() {
	// The placeholder course survives a forced jump straight to the result
	// phase, where no course screen was ever captured.
	*s = raceSession{phase: AwaitingCourse, courseName: course.Unknown}
}

// CourseInfo is what the analyzer extracts from a course-decision screen.
type CourseInfo struct {
	// PreRaceRate is the local player's rating read off the brightest
	// slot; RateOK is false when the read failed.
	PreRaceRate int
	RateOK      bool

	// Course is the matched course name; Matched is false when the text
	// resolved to no vocabulary entry.
	Course  string
	Matched bool
}

// ResultInfo is what the analyzer extracts from a result screen.
type ResultInfo struct {
	Rank int
	Rate int
	// RateChange is the on-screen signed delta, zero when unreadable. The
	// persisted change comes from reconciliation, not from this field.
	RateChange int
}

// Analyzer is the session's view of the detection-and-extraction pipeline.
type Analyzer interface {
	// Classify reports the screen state of a normalized frame.
	Classify(frame gocv.Mat) classify.Verdict

	// CourseInfo extracts the pre-race rate and course name from a frame
	// already classified as the course-decision screen.
	CourseInfo(frame gocv.Mat) CourseInfo

	// ResultInfo extracts the final fields from a frame already
	// classified as the result screen. The error is terminal for the
	// whole record.
	ResultInfo(frame gocv.Mat, highlightedRank int) (ResultInfo, error)
}
