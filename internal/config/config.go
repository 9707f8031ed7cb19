// Package config loads and persists the watcher's settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"kartlog/internal/classify"

	"github.com/BurntSushi/toml"
)

// Config holds runtime settings. Fields load from a TOML file and may be
// overridden by command-line flags.
type Config struct {
	Source    SourceConfig    `toml:"source"`
	Monitor   MonitorConfig   `toml:"monitor"`
	Detection DetectionConfig `toml:"detection"`
	OCR       OCRConfig       `toml:"ocr"`
	Paths     PathsConfig     `toml:"paths"`

	// CourseNames replaces the built-in vocabulary when non-empty.
	CourseNames []string `toml:"course_names"`
}

// SourceConfig selects the video source.
type SourceConfig struct {
	// Type is "device", "screen" or "files".
	Type string `toml:"type"`
	// DeviceIndex selects the capture device for type "device".
	DeviceIndex int `toml:"device_index"`
	// FilesPath points at a file or directory for type "files".
	FilesPath string `toml:"files_path"`
}

// MonitorConfig tunes the loop timing and course-screen failure behavior.
type MonitorConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
	CooldownSeconds int `toml:"cooldown_seconds"`
	// CourseRetry keeps waiting for a readable course screen instead of
	// falling through to the result phase with a placeholder.
	CourseRetry bool `toml:"course_retry"`
	// SaveSnapshots persists each detected screen as a PNG; the snapshot
	// filename becomes the record's source-image identifier.
	SaveSnapshots bool `toml:"save_snapshots"`
}

// DetectionConfig mirrors classify.Policy in file form.
type DetectionConfig struct {
	MinOccupiedSlots      int     `toml:"min_occupied_slots"`
	BrightnessThreshold   float64 `toml:"brightness_threshold"`
	BlackValueCeiling     float64 `toml:"black_value_ceiling"`
	BlackMinPixels        int     `toml:"black_min_pixels"`
	MinRateHits           int     `toml:"min_rate_hits"`
	RequireHighlight      bool    `toml:"require_highlight"`
	HighlightLowerH       float64 `toml:"highlight_lower_h"`
	HighlightLowerS       float64 `toml:"highlight_lower_s"`
	HighlightLowerV       float64 `toml:"highlight_lower_v"`
	HighlightUpperH       float64 `toml:"highlight_upper_h"`
	HighlightUpperS       float64 `toml:"highlight_upper_s"`
	HighlightUpperV       float64 `toml:"highlight_upper_v"`
	HighlightMinPixels    int     `toml:"highlight_min_pixels"`
	HighlightCellFraction float64 `toml:"highlight_cell_fraction"`
}

// OCRConfig selects the recognition backends.
type OCRConfig struct {
	Language string `toml:"language"`
	// CourseEndpoint enables the external course-name recognition service
	// when non-empty; otherwise course names go through classic OCR.
	CourseEndpoint string `toml:"course_endpoint"`
}

// PathsConfig locates the persistent outputs.
type PathsConfig struct {
	RaceLog     string `toml:"race_log"`
	SnapshotDir string `toml:"snapshot_dir"`
	DebugDir    string `toml:"debug_dir"`
	MonitorLog  string `toml:"monitor_log"`
}

// Default returns a Config populated with standard defaults.
func Default() *Config {
	policy := classify.DefaultPolicy()
	return &Config{
		Source: SourceConfig{Type: "device"},
		Monitor: MonitorConfig{
			IntervalSeconds: 2,
			CooldownSeconds: 10,
			SaveSnapshots:   true,
		},
		Detection: DetectionConfig{
			MinOccupiedSlots:      policy.MinOccupiedSlots,
			BrightnessThreshold:   policy.BrightnessThreshold,
			BlackValueCeiling:     policy.BlackValueCeiling,
			BlackMinPixels:        policy.BlackMinPixels,
			MinRateHits:           policy.MinRateHits,
			RequireHighlight:      policy.RequireHighlight,
			HighlightLowerH:       policy.HighlightLower.H,
			HighlightLowerS:       policy.HighlightLower.S,
			HighlightLowerV:       policy.HighlightLower.V,
			HighlightUpperH:       policy.HighlightUpper.H,
			HighlightUpperS:       policy.HighlightUpper.S,
			HighlightUpperV:       policy.HighlightUpper.V,
			HighlightMinPixels:    policy.HighlightMinPixels,
			HighlightCellFraction: policy.HighlightCellFraction,
		},
		OCR: OCRConfig{Language: "eng"},
		Paths: PathsConfig{
			RaceLog:     filepath.Join("data", "output", "race_data.csv"),
			SnapshotDir: filepath.Join("data", "temp"),
			DebugDir:    filepath.Join("data", "debug"),
		},
	}
}

// Load reads the settings file, layering it over defaults. A missing file is
// not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the settings file.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return nil
}

// Validate clamps values to safe ranges and rejects unusable combinations.
func (c *Config) Validate() error {
	switch c.Source.Type {
	case "device", "screen", "files":
	default:
		return fmt.Errorf("unknown source type %q", c.Source.Type)
	}
	if c.Source.Type == "files" && c.Source.FilesPath == "" {
		return fmt.Errorf("source type files requires files_path")
	}
	if c.Monitor.IntervalSeconds <= 0 {
		c.Monitor.IntervalSeconds = 2
	}
	if c.Monitor.CooldownSeconds < 0 {
		c.Monitor.CooldownSeconds = 10
	}
	if c.Detection.MinOccupiedSlots <= 0 {
		c.Detection.MinOccupiedSlots = 1
	}
	if c.Detection.MinRateHits <= 0 {
		c.Detection.MinRateHits = 1
	}
	if c.Detection.HighlightCellFraction <= 0 || c.Detection.HighlightCellFraction >= 1 {
		c.Detection.HighlightCellFraction = 0.2
	}
	if c.OCR.Language == "" {
		c.OCR.Language = "eng"
	}
	if c.Paths.RaceLog == "" {
		return fmt.Errorf("race_log path must not be empty")
	}
	return nil
}

// Policy converts the detection section into a classifier policy.
func (c *Config) Policy() classify.Policy {
	p := classify.DefaultPolicy()
	d := c.Detection
	p.MinOccupiedSlots = d.MinOccupiedSlots
	p.BrightnessThreshold = d.BrightnessThreshold
	p.BlackValueCeiling = d.BlackValueCeiling
	p.BlackMinPixels = d.BlackMinPixels
	p.MinRateHits = d.MinRateHits
	p.RequireHighlight = d.RequireHighlight
	p.HighlightLower.H = d.HighlightLowerH
	p.HighlightLower.S = d.HighlightLowerS
	p.HighlightLower.V = d.HighlightLowerV
	p.HighlightUpper.H = d.HighlightUpperH
	p.HighlightUpper.S = d.HighlightUpperS
	p.HighlightUpper.V = d.HighlightUpperV
	p.HighlightMinPixels = d.HighlightMinPixels
	p.HighlightCellFraction = d.HighlightCellFraction
	return p
}
