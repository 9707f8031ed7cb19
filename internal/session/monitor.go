package session

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"kartlog/internal/capture"
	"kartlog/internal/classify"
	"kartlog/internal/course"
	"kartlog/internal/preprocess"
	"kartlog/internal/racelog"
	"kartlog/internal/region"

	"gocv.io/x/gocv"
)

// Options tunes the monitoring loop.
type Options struct {
	// Interval is the pause between iterations regardless of OCR latency.
	Interval time.Duration
	// Cooldown suppresses course re-detection after a handled course
	// screen so the same static screen is not reprocessed every tick.
	Cooldown time.Duration
	// CourseRetry keeps the session in AwaitingCourse after a failed
	// course extraction. The default falls through to AwaitingResult with
	// a placeholder so one bad course screen cannot stall the pipeline.
	CourseRetry bool
	// SaveSnapshots persists each detected screen under SnapshotDir.
	SaveSnapshots bool
	SnapshotDir   string
	DebugDir      string
}

// DefaultOptions matches the loop timing of the reference layout.
func DefaultOptions() Options {
	return Options{
		Interval: 2 * time.Second,
		Cooldown: 10 * time.Second,
	}
}

// Monitor runs the single background monitoring task. One frame per
// iteration, strictly sequential; the state machine depends on frame order.
type Monitor struct {
	source   capture.Source
	analyzer Analyzer
	store    *racelog.Store
	catalog  *region.Catalog
	ctrl     *Control
	opts     Options
	log      *slog.Logger

	now func() time.Time
}

// NewMonitor wires a monitor. The control surface may be shared with a
// foreground shell.
func NewMonitor(source capture.Source, analyzer Analyzer, store *racelog.Store, catalog *region.Catalog, ctrl *Control, opts Options, log *slog.Logger) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultOptions().Interval
	}
	return &Monitor{
		source:   source,
		analyzer: analyzer,
		store:    store,
		catalog:  catalog,
		ctrl:     ctrl,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Run executes the monitoring loop until Stop is requested or the source
// fails fatally. Source loss is returned to the operator, not retried.
func (m *Monitor) Run() error {
	sess := &raceSession{}
	sess.reset()
	var cooldownUntil time.Time

	m.log.Info("monitoring started", "phase", sess.phase.String())

	for !m.ctrl.Stopped() {
		frame, err := m.source.ReadFrame()
		if errors.Is(err, capture.ErrSourceClosed) {
			m.log.Error("capture source closed", "error", err)
			return err
		}
		if m.ctrl.Stopped() {
			if err == nil {
				frame.Close()
			}
			break
		}
		if err != nil {
			m.sleep()
			continue
		}

		norm := preprocess.Normalize(frame)
		frame.Close()

		if m.ctrl.takeDiagnostic() {
			m.saveDiagnostic(norm, sess)
		}
		if forced, ok := m.ctrl.takeForcedPhase(); ok {
			m.log.Info("phase forced", "from", sess.phase.String(), "to", forced.String())
			if forced == AwaitingCourse {
				sess.reset()
			} else {
				sess.phase = AwaitingResult
			}
		}

		switch sess.phase {
		case AwaitingCourse:
			if m.now().Before(cooldownUntil) {
				break
			}
			v := m.analyzer.Classify(norm)
			if v.Screen == classify.ScreenCourseDecision {
				m.handleCourseScreen(norm, v, sess)
				cooldownUntil = m.now().Add(m.opts.Cooldown)
			}
		case AwaitingResult:
			v := m.analyzer.Classify(norm)
			if v.Screen == classify.ScreenResult {
				m.handleResultScreen(norm, v, sess)
			}
		}

		norm.Close()
		m.sleep()
	}

	m.log.Info("monitoring stopped")
	return nil
}

// handleCourseScreen extracts the course and pre-race rate, then advances to
// AwaitingResult. On extraction failure the permissive policy records a
// placeholder instead of stalling; the retry policy stays put.
func (m *Monitor) handleCourseScreen(frame gocv.Mat, v classify.Verdict, sess *raceSession) {
	snapshot := m.saveSnapshot(frame, "course_screen")
	info := m.analyzer.CourseInfo(frame)

	if info.RateOK && info.Matched {
		sess.courseName = m.courseLabel(v.Standalone, info.Course)
		sess.preRaceRate = info.PreRaceRate
		sess.participants = v.ParticipantCount
		sess.phase = AwaitingResult
		m.log.Info("course decision captured",
			"snapshot", snapshot,
			"course", sess.courseName,
			"pre_race_rate", sess.preRaceRate,
			"participants", sess.participants)
		return
	}

	if m.opts.CourseRetry {
		m.log.Warn("course extraction failed, retrying on a later frame",
			"rate_ok", info.RateOK, "matched", info.Matched)
		return
	}

	// Keep what was readable; the participant census does not depend on
	// the failed OCR.
	sess.courseName = course.Unknown
	sess.preRaceRate = 0
	sess.participants = v.ParticipantCount
	sess.phase = AwaitingResult
	m.log.Warn("course extraction failed, continuing with placeholder",
		"rate_ok", info.RateOK, "matched", info.Matched,
		"participants", sess.participants)
}

// handleResultScreen extracts and persists the final record, then resets the
// session regardless of the outcome so monitoring is self-healing.
func (m *Monitor) handleResultScreen(frame gocv.Mat, v classify.Verdict, sess *raceSession) {
	defer sess.reset()

	snapshot := m.saveSnapshot(frame, "result_screen")
	info, err := m.analyzer.ResultInfo(frame, v.HighlightedRank)
	if err != nil {
		m.log.Warn("result extraction failed, record discarded",
			"snapshot", snapshot, "error", err)
		return
	}

	lastRate, haveLast, err := m.store.LastRate()
	if err != nil {
		m.log.Warn("failed to read rate history", "error", err)
		haveLast = false
	}
	net := NetChange(sess.preRaceRate, lastRate, haveLast, info.Rate)

	rec := racelog.Record{
		Filename:     snapshot,
		Timestamp:    m.now(),
		Course:       sess.courseName,
		Rank:         info.Rank,
		Participants: sess.participants,
		Rate:         info.Rate,
		RateChange:   net,
	}
	if err := m.store.Append(rec); err != nil {
		// The record is lost for this iteration; nothing queues or
		// retries persistence.
		m.log.Error("failed to persist race record", "error", err)
		return
	}

	m.log.Info("race recorded",
		"snapshot", snapshot,
		"course", rec.Course,
		"rank", fmt.Sprintf("%d/%d", rec.Rank, rec.Participants),
		"rate", rec.Rate,
		"net_change", rec.RateChange,
		"screen_delta", info.RateChange)
}

// courseLabel applies the composite "start → end" naming for the second leg
// of a chained race.
func (m *Monitor) courseLabel(standalone bool, matched string) string {
	if standalone {
		return matched
	}
	prev := course.Unknown
	if last, ok, err := m.store.LastCourse(); err == nil && ok {
		prev = course.EndOf(last)
	}
	return course.CompositeLabel(false, prev, matched)
}

// saveSnapshot writes the frame under the snapshot directory and returns the
// snapshot identifier used as the record's source-image reference. The
// identifier is empty whenever no file was actually written, so records never
// point at snapshots that do not exist.
func (m *Monitor) saveSnapshot(frame gocv.Mat, prefix string) string {
	if !m.opts.SaveSnapshots || m.opts.SnapshotDir == "" {
		return ""
	}
	name := fmt.Sprintf("%s_%s.png", prefix, m.now().Format("20060102_150405"))
	path := filepath.Join(m.opts.SnapshotDir, name)
	if !gocv.IMWrite(path, frame) {
		m.log.Warn("failed to save snapshot", "path", path)
		return ""
	}
	return name
}

func (m *Monitor) sleep() {
	if m.opts.Interval > 0 {
		time.Sleep(m.opts.Interval)
	}
}
