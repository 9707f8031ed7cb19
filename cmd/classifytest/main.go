// Command classifytest runs the screen classifier and extractor over saved
// screenshots and prints what the monitoring loop would have seen. Useful
// for tuning detection thresholds against recorded frames.
//
// Usage: classifytest [options] <image-or-directory>
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"kartlog/internal/capture"
	"kartlog/internal/classify"
	"kartlog/internal/config"
	"kartlog/internal/course"
	"kartlog/internal/extract"
	"kartlog/internal/ocr"
	"kartlog/internal/preprocess"
	"kartlog/internal/region"
	"kartlog/internal/session"
)

func main() {
	configPath := flag.String("config", "kartlog.toml", "settings file")
	language := flag.String("lang", "", "override OCR language")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: classifytest [options] <image-or-directory>")
		os.Exit(2)
	}

	if err := run(*configPath, *language, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, language, target string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if language != "" {
		cfg.OCR.Language = language
	}

	source, err := capture.OpenFiles(target)
	if err != nil {
		return err
	}
	defer source.Close()

	engine, err := ocr.NewEngine(cfg.OCR.Language)
	if err != nil {
		return err
	}
	defer engine.Close()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	catalog := region.New()
	classifier := classify.New(catalog, engine, cfg.Policy())
	extractor := extract.New(engine)
	vocab := course.NewVocabulary(cfg.CourseNames)
	pipeline := session.NewPipeline(classifier, extractor, vocab, nil, catalog, log)

	for i := 1; ; i++ {
		frame, err := source.ReadFrame()
		if err != nil {
			break
		}
		norm := preprocess.Normalize(frame)
		frame.Close()

		v := pipeline.Classify(norm)
		fmt.Printf("frame %d: screen=%s\n", i, v.Screen)

		switch v.Screen {
		case classify.ScreenCourseDecision:
			fmt.Printf("  participants=%d standalone=%v\n", v.ParticipantCount, v.Standalone)
			info := pipeline.CourseInfo(norm)
			fmt.Printf("  course=%q matched=%v pre_race_rate=%d rate_ok=%v\n",
				info.Course, info.Matched, info.PreRaceRate, info.RateOK)
		case classify.ScreenResult:
			fmt.Printf("  highlighted_rank=%d\n", v.HighlightedRank)
			info, err := pipeline.ResultInfo(norm, v.HighlightedRank)
			if err != nil {
				fmt.Printf("  extraction failed: %v\n", err)
			} else {
				fmt.Printf("  rank=%d rate=%d screen_delta=%+d\n", info.Rank, info.Rate, info.RateChange)
			}
		}
		norm.Close()
	}
	return nil
}
