package session

import (
	"log/slog"

	"kartlog/internal/classify"
	"kartlog/internal/course"
	"kartlog/internal/extract"
	"kartlog/internal/ocr"
	"kartlog/internal/preprocess"
	"kartlog/internal/region"

	"gocv.io/x/gocv"
)

// Pipeline is the production Analyzer: classifier plus field extractor plus
// course matcher, with an optional external course-name recognizer layered
// over classic OCR.
type Pipeline struct {
	classifier *classify.Classifier
	extractor  *extract.Extractor
	vocab      *course.Vocabulary
	courseRec  ocr.CourseRecognizer
	catalog    *region.Catalog
	log        *slog.Logger

	whitelist string
}

// NewPipeline wires the extraction pipeline. courseRec may be nil.
func NewPipeline(classifier *classify.Classifier, extractor *extract.Extractor, vocab *course.Vocabulary, courseRec ocr.CourseRecognizer, catalog *region.Catalog, log *slog.Logger) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		extractor:  extractor,
		vocab:      vocab,
		courseRec:  courseRec,
		catalog:    catalog,
		log:        log,
		whitelist:  vocab.CharWhitelist(),
	}
}

// Classify implements Analyzer.
func (p *Pipeline) Classify(frame gocv.Mat) classify.Verdict {
	return p.classifier.Classify(frame)
}

// CourseInfo implements Analyzer. The pre-race rate reads off the brightest
// occupied slot; the course name comes from the external recognizer when
// configured, otherwise from whitelisted OCR over the search area.
func (p *Pipeline) CourseInfo(frame gocv.Mat) CourseInfo {
	var info CourseInfo

	if slot, ok := p.classifier.BrightestSlot(frame); ok {
		rate, err := p.extractor.Rate(frame, slot)
		if err == nil {
			info.PreRaceRate = rate
			info.RateOK = true
		} else {
			p.log.Debug("pre-race rate unreadable", "error", err)
		}
	}

	raw := p.courseText(frame)
	name, matched := p.vocab.Match(raw)
	info.Course = name
	info.Matched = matched
	if matched {
		p.log.Debug("course matched", "raw", raw, "course", name)
	} else if raw != "" {
		p.log.Debug("course text matched nothing", "raw", raw)
	}
	return info
}

func (p *Pipeline) courseText(frame gocv.Mat) string {
	if p.courseRec != nil {
		// The external service reads the raw pixels; no binarization.
		roi, ok := preprocess.Crop(frame, p.catalog.CourseArea.Rect)
		if ok {
			defer roi.Close()
			text, err := p.courseRec.RecognizeCourse(roi, p.vocab.Names)
			if err == nil {
				return text
			}
			p.log.Warn("course recognition service failed, falling back to OCR", "error", err)
		}
	}

	text, err := p.extractor.CourseText(frame, p.catalog.CourseArea.Rect, p.whitelist)
	if err != nil {
		return ""
	}
	return text
}

// ResultInfo implements Analyzer. Ranks 1-12 come from the highlighted slot
// position; rank 13 shares its visual slot with every lower rank and needs a
// secondary OCR read of its rank cell.
func (p *Pipeline) ResultInfo(frame gocv.Mat, highlightedRank int) (ResultInfo, error) {
	row := p.catalog.Row(highlightedRank)

	rank := highlightedRank
	if highlightedRank >= region.ResultRowCount {
		var err error
		rank, err = p.extractor.Rank(frame, row.Rank.Rect)
		if err != nil {
			return ResultInfo{}, err
		}
	}

	rate, err := p.extractor.Rate(frame, row.Rate.Rect)
	if err != nil {
		return ResultInfo{}, err
	}

	return ResultInfo{
		Rank:       rank,
		Rate:       rate,
		RateChange: p.extractor.RateChange(frame, row.RateChange.Rect),
	}, nil
}
