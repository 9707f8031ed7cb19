package session

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kartlog/internal/capture"
	"kartlog/internal/classify"
	"kartlog/internal/racelog"
	"kartlog/internal/region"

	"gocv.io/x/gocv"
)

// fakeSource serves a fixed number of frames and then requests a stop, so
// Run terminates cleanly once the script is exhausted.
type fakeSource struct {
	remaining int
	ctrl      *Control
}

func (f *fakeSource) ReadFrame() (gocv.Mat, error) {
	if f.remaining <= 0 {
		f.ctrl.Stop()
		return gocv.Mat{}, capture.ErrNoFrame
	}
	f.remaining--
	return gocv.NewMatWithSize(region.FrameHeight, region.FrameWidth, gocv.MatTypeCV8UC3), nil
}

func (f *fakeSource) Close() error { return nil }

// scriptedAnalyzer replays a fixed verdict sequence and canned extractions.
type scriptedAnalyzer struct {
	verdicts  []classify.Verdict
	next      int
	course    CourseInfo
	result    ResultInfo
	resultErr error
}

func (a *scriptedAnalyzer) Classify(frame gocv.Mat) classify.Verdict {
	if a.next >= len(a.verdicts) {
		return classify.Verdict{}
	}
	v := a.verdicts[a.next]
	a.next++
	return v
}

func (a *scriptedAnalyzer) CourseInfo(frame gocv.Mat) CourseInfo {
	return a.course
}

func (a *scriptedAnalyzer) ResultInfo(frame gocv.Mat, highlightedRank int) (ResultInfo, error) {
	if a.resultErr != nil {
		return ResultInfo{}, a.resultErr
	}
	r := a.result
	r.Rank = highlightedRank
	return r, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() Options {
	return Options{Interval: time.Millisecond}
}

func runMonitor(t *testing.T, store *racelog.Store, analyzer *scriptedAnalyzer, frames int) {
	t.Helper()
	ctrl := NewControl()
	src := &fakeSource{remaining: frames, ctrl: ctrl}
	m := NewMonitor(src, analyzer, store, region.New(), ctrl, testOptions(), discardLogger())
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func courseVerdict(participants int, standalone bool) classify.Verdict {
	return classify.Verdict{
		Screen:           classify.ScreenCourseDecision,
		ParticipantCount: participants,
		Standalone:       standalone,
	}
}

func resultVerdict(rank int) classify.Verdict {
	return classify.Verdict{Screen: classify.ScreenResult, HighlightedRank: rank}
}

func TestRaceRecordedEndToEnd(t *testing.T) {
	store := racelog.NewStore(filepath.Join(t.TempDir(), "race_data.csv"))
	analyzer := &scriptedAnalyzer{
		verdicts: []classify.Verdict{
			{Screen: classify.ScreenNone},
			courseVerdict(8, true),
			resultVerdict(3),
		},
		course: CourseInfo{PreRaceRate: 1500, RateOK: true, Course: "Rainbow Road", Matched: true},
		result: ResultInfo{Rate: 1620, RateChange: 120},
	}

	runMonitor(t, store, analyzer, 3)

	recs, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Course != "Rainbow Road" {
		t.Errorf("Course = %q, want Rainbow Road", rec.Course)
	}
	if rec.Rank != 3 || rec.Participants != 8 {
		t.Errorf("Rank/Participants = %d/%d, want 3/8", rec.Rank, rec.Participants)
	}
	if rec.Rate != 1620 {
		t.Errorf("Rate = %d, want 1620", rec.Rate)
	}
	if rec.RateChange != 120 {
		t.Errorf("RateChange = %d, want 120 (final minus pre-race)", rec.RateChange)
	}
	// Snapshots are disabled here, so the record must not name one.
	if rec.Filename != "" {
		t.Errorf("Filename = %q, want empty with snapshots disabled", rec.Filename)
	}
}

func TestSnapshotIdentifierNamesWrittenFile(t *testing.T) {
	dir := t.TempDir()
	store := racelog.NewStore(filepath.Join(dir, "race_data.csv"))
	analyzer := &scriptedAnalyzer{
		verdicts: []classify.Verdict{
			courseVerdict(8, true),
			resultVerdict(3),
		},
		course: CourseInfo{PreRaceRate: 1500, RateOK: true, Course: "Rainbow Road", Matched: true},
		result: ResultInfo{Rate: 1620, RateChange: 120},
	}

	ctrl := NewControl()
	src := &fakeSource{remaining: 2, ctrl: ctrl}
	opts := testOptions()
	opts.SaveSnapshots = true
	opts.SnapshotDir = dir
	m := NewMonitor(src, analyzer, store, region.New(), ctrl, opts, discardLogger())
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	recs, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Filename == "" {
		t.Fatal("Filename is empty with snapshots enabled")
	}
	if _, err := os.Stat(filepath.Join(dir, recs[0].Filename)); err != nil {
		t.Errorf("record names snapshot %q but the file is missing: %v", recs[0].Filename, err)
	}
}

func TestCourseFailureFallsThroughWithPlaceholder(t *testing.T) {
	store := racelog.NewStore(filepath.Join(t.TempDir(), "race_data.csv"))
	analyzer := &scriptedAnalyzer{
		verdicts: []classify.Verdict{
			courseVerdict(12, true),
			resultVerdict(5),
		},
		course: CourseInfo{RateOK: false, Matched: false},
		result: ResultInfo{Rate: 1620, RateChange: 120},
	}

	runMonitor(t, store, analyzer, 2)

	recs, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Course != "unknown" {
		t.Errorf("Course = %q, want the unknown placeholder", rec.Course)
	}
	if rec.Participants != 12 {
		t.Errorf("Participants = %d, want 12 (census survives OCR failure)", rec.Participants)
	}
	// No pre-race rate and an empty log: the change must be zero, never the
	// raw on-screen delta.
	if rec.RateChange != 0 {
		t.Errorf("RateChange = %d, want 0", rec.RateChange)
	}
}

func TestCourseRetryStaysInPhase(t *testing.T) {
	store := racelog.NewStore(filepath.Join(t.TempDir(), "race_data.csv"))
	analyzer := &scriptedAnalyzer{
		verdicts: []classify.Verdict{
			courseVerdict(8, true),
			resultVerdict(3),
		},
		course: CourseInfo{RateOK: false},
		result: ResultInfo{Rate: 1620},
	}

	ctrl := NewControl()
	src := &fakeSource{remaining: 2, ctrl: ctrl}
	opts := testOptions()
	opts.CourseRetry = true
	m := NewMonitor(src, analyzer, store, region.New(), ctrl, opts, discardLogger())
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	recs, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	// The session never left AwaitingCourse, so the result verdict on the
	// second frame was never acted on.
	if len(recs) != 0 {
		t.Fatalf("got %d records, want 0", len(recs))
	}
}

func TestChainedRaceCompositeLabel(t *testing.T) {
	store := racelog.NewStore(filepath.Join(t.TempDir(), "race_data.csv"))
	seed := racelog.Record{
		Filename:  "earlier.png",
		Timestamp: time.Now(),
		Course:    "Mario Circuit → DK Pass",
		Rank:      4, Participants: 8, Rate: 1500, RateChange: 20,
	}
	if err := store.Append(seed); err != nil {
		t.Fatalf("Append seed: %v", err)
	}

	analyzer := &scriptedAnalyzer{
		verdicts: []classify.Verdict{
			courseVerdict(8, false),
			resultVerdict(2),
		},
		course: CourseInfo{PreRaceRate: 1500, RateOK: true, Course: "Rainbow Road", Matched: true},
		result: ResultInfo{Rate: 1540, RateChange: 40},
	}

	runMonitor(t, store, analyzer, 2)

	recs, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if got := recs[1].Course; got != "DK Pass → Rainbow Road" {
		t.Errorf("Course = %q, want chained label DK Pass → Rainbow Road", got)
	}
}

func TestResultExtractionFailureDiscardsRecord(t *testing.T) {
	store := racelog.NewStore(filepath.Join(t.TempDir(), "race_data.csv"))
	analyzer := &scriptedAnalyzer{
		verdicts: []classify.Verdict{
			courseVerdict(8, true),
			resultVerdict(3),
		},
		course:    CourseInfo{PreRaceRate: 1500, RateOK: true, Course: "Rainbow Road", Matched: true},
		resultErr: errors.New("rate exceeds valid bound"),
	}

	runMonitor(t, store, analyzer, 2)

	recs, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("got %d records, want 0 after a poisoned extraction", len(recs))
	}
}

func TestForcedPhaseSkipsCourseScreen(t *testing.T) {
	store := racelog.NewStore(filepath.Join(t.TempDir(), "race_data.csv"))
	analyzer := &scriptedAnalyzer{
		verdicts: []classify.Verdict{resultVerdict(7)},
		result:   ResultInfo{Rate: 1300, RateChange: -20},
	}

	ctrl := NewControl()
	ctrl.ForcePhase(AwaitingResult)
	src := &fakeSource{remaining: 1, ctrl: ctrl}
	m := NewMonitor(src, analyzer, store, region.New(), ctrl, testOptions(), discardLogger())
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	recs, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Rank != 7 || recs[0].Course != "unknown" {
		t.Errorf("record = %+v, want rank 7 with the unknown placeholder course", recs[0])
	}
}

func TestStopBeforeAnyFrame(t *testing.T) {
	store := racelog.NewStore(filepath.Join(t.TempDir(), "race_data.csv"))
	ctrl := NewControl()
	ctrl.Stop()
	src := &fakeSource{remaining: 5, ctrl: ctrl}
	m := NewMonitor(src, &scriptedAnalyzer{}, store, region.New(), ctrl, testOptions(), discardLogger())
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if src.remaining != 5 {
		t.Errorf("source was read %d times after stop, want 0", 5-src.remaining)
	}
}
