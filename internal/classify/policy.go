package classify

import "kartlog/pkg/colorutil"

// Policy collects the tunable detection thresholds. The source UI layout is
// fixed but capture chains vary in gamma and compression, so none of these
// are hard constants.
type Policy struct {
	// MinOccupiedSlots is how many player slots must OCR as a rating
	// (>= 3 digits) before a frame counts as the course-decision screen.
	MinOccupiedSlots int

	// BrightnessThreshold separates an active player card from an empty
	// one by grayscale mean. Drives the participant count.
	BrightnessThreshold float64

	// BlackValueCeiling and BlackMinPixels define the near-black mask over
	// the single-course marker: HSV value at or below the ceiling counts
	// as black, and more than BlackMinPixels black pixels mark the screen
	// as a standalone race.
	BlackValueCeiling float64
	BlackMinPixels    int

	// MinRateHits is how many of the 13 result rows must OCR as a rating
	// before a frame counts as the result screen.
	MinRateHits int

	// RequireHighlight additionally demands the player-highlight color
	// band inside the aggregate result area.
	RequireHighlight bool

	// HighlightLower/Upper bound the highlight hue band in HSV.
	HighlightLower colorutil.HSV
	HighlightUpper colorutil.HSV

	// HighlightMinPixels is the aggregate-area pixel cutoff for the
	// highlight presence check.
	HighlightMinPixels int

	// HighlightCellFraction is the fraction of a rank cell that must be
	// highlight-colored for that row to be the local player's row.
	HighlightCellFraction float64
}

// DefaultPolicy returns the strict detection profile: two rating hits plus
// the highlight band must agree before a result screen is accepted.
func DefaultPolicy() Policy {
	return Policy{
		MinOccupiedSlots:    1,
		BrightnessThreshold: 50,

		BlackValueCeiling: 70,
		BlackMinPixels:    5000,

		MinRateHits:      2,
		RequireHighlight: true,

		HighlightLower:        colorutil.HSV{H: 20, S: 100, V: 100},
		HighlightUpper:        colorutil.HSV{H: 40, S: 255, V: 255},
		HighlightMinPixels:    500,
		HighlightCellFraction: 0.2,
	}
}
