// Command kartlog watches a live video feed of the race UI and appends a
// normalized record to the race log after every finished race.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"kartlog/internal/capture"
	"kartlog/internal/classify"
	"kartlog/internal/config"
	"kartlog/internal/course"
	"kartlog/internal/extract"
	"kartlog/internal/ocr"
	"kartlog/internal/racelog"
	"kartlog/internal/region"
	"kartlog/internal/session"
)

func main() {
	configPath := flag.String("config", "kartlog.toml", "settings file")
	sourceType := flag.String("source", "", "override source type (device, screen, files)")
	deviceIndex := flag.Int("device", -1, "override capture device index")
	filesPath := flag.String("files", "", "override files source path")
	verbose := flag.Bool("v", false, "debug logging on the console")
	flag.Parse()

	if err := run(*configPath, *sourceType, *deviceIndex, *filesPath, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, sourceType string, deviceIndex int, filesPath string, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if sourceType != "" {
		cfg.Source.Type = sourceType
	}
	if deviceIndex >= 0 {
		cfg.Source.DeviceIndex = deviceIndex
	}
	if filesPath != "" {
		cfg.Source.Type = "files"
		cfg.Source.FilesPath = filesPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := NewLogger(level, cfg.Paths.MonitorLog)

	for _, dir := range []string{cfg.Paths.SnapshotDir, cfg.Paths.DebugDir, filepath.Dir(cfg.Paths.RaceLog)} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	source, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	engine, err := ocr.NewEngine(cfg.OCR.Language)
	if err != nil {
		return err
	}
	defer engine.Close()

	var courseRec ocr.CourseRecognizer
	if cfg.OCR.CourseEndpoint != "" {
		courseRec = ocr.NewHTTPCourseRecognizer(cfg.OCR.CourseEndpoint)
		log.Info("using external course recognition", "endpoint", cfg.OCR.CourseEndpoint)
	}

	catalog := region.New()
	classifier := classify.New(catalog, engine, cfg.Policy())
	extractor := extract.New(engine)
	vocab := course.NewVocabulary(cfg.CourseNames)
	store := racelog.NewStore(cfg.Paths.RaceLog)
	pipeline := session.NewPipeline(classifier, extractor, vocab, courseRec, catalog, log)

	ctrl := session.NewControl()
	opts := session.Options{
		Interval:      durationSeconds(cfg.Monitor.IntervalSeconds),
		Cooldown:      durationSeconds(cfg.Monitor.CooldownSeconds),
		CourseRetry:   cfg.Monitor.CourseRetry,
		SaveSnapshots: cfg.Monitor.SaveSnapshots,
		SnapshotDir:   cfg.Paths.SnapshotDir,
		DebugDir:      cfg.Paths.DebugDir,
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("shutdown requested")
		ctrl.Stop()
	}()

	monitor := session.NewMonitor(source, pipeline, store, catalog, ctrl, opts, log)
	return monitor.Run()
}

func durationSeconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func openSource(cfg *config.Config) (capture.Source, error) {
	switch cfg.Source.Type {
	case "device":
		return capture.OpenDevice(cfg.Source.DeviceIndex)
	case "screen":
		return capture.OpenScreen()
	case "files":
		return capture.OpenFiles(cfg.Source.FilesPath)
	}
	return nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
}
