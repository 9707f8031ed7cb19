// Package region defines the fixed screen geometry of the race UI.
//
// All coordinates refer to a frame normalized to 1920x1080. The layout is a
// known constant of the game's UI; nothing here is learned or calibrated.
package region

import "kartlog/pkg/geometry"

// Kind tags a region with the type of field it contains.
type Kind int

const (
	KindRate Kind = iota
	KindRank
	KindRateChange
	KindCourseArea
	KindSingleCourseMarker
)

func (k Kind) String() string {
	switch k {
	case KindRate:
		return "rate"
	case KindRank:
		return "rank"
	case KindRateChange:
		return "rate_change"
	case KindCourseArea:
		return "course_name_area"
	case KindSingleCourseMarker:
		return "single_course_marker"
	}
	return "unknown"
}

// Region is a rectangle on the normalized frame tagged with its field kind.
type Region struct {
	Rect geometry.RectInt
	Kind Kind
}

// Normalized frame dimensions. Every region below is meaningless against any
// other resolution.
const (
	FrameWidth  = 1920
	FrameHeight = 1080
)

// Course-decision screen layout: two columns of 12 player cards each, 76px
// row pitch, rate field at a fixed x range per column.
const (
	slotRows    = 12
	slotTop     = 100
	slotBottom  = 140
	slotPitch   = 76
	slotLeftX1  = 440
	slotLeftX2  = 520
	slotRightX1 = 945
	slotRightX2 = 1025
)

// MaxParticipants is the number of player-rate slots on the course screen.
const MaxParticipants = 2 * slotRows

// Result screen layout: 13 rank rows derived from the first row, 77px pitch.
const (
	ResultRowCount = 13
	resultPitch            = 77
	rankX1, rankX2         = 1070, 1135
	rateX1, rateX2         = 1730, 1860
	changeX1, changeX2     = 1630, 1730
	resultRowY1            = 45
	resultRowY2            = 110
)

// ResultRow holds the three fields of one rank row on the result screen.
type ResultRow struct {
	Rank       Region
	Rate       Region
	RateChange Region
}

// Catalog is the immutable set of regions for one UI layout. Built once at
// process start; shared read-only after that.
type Catalog struct {
	// PlayerSlots are the 24 pre-race rate fields, left column first,
	// top to bottom within each column.
	PlayerSlots []Region

	// CourseArea is the large right-side search window that contains the
	// upcoming course name somewhere inside it.
	CourseArea Region

	// SingleCourseMarker is the center plate that is near-black only when
	// the course screen announces a standalone race rather than the second
	// leg of a chained one.
	SingleCourseMarker Region

	// ResultRows holds rows for ranks 1..13, index 0 = rank 1.
	ResultRows []ResultRow
}

// New builds the catalog for the known 1920x1080 layout.
func New() *Catalog {
	c := &Catalog{}

	for i := 0; i < slotRows; i++ {
		y1 := slotTop + i*slotPitch
		y2 := slotBottom + i*slotPitch
		c.PlayerSlots = append(c.PlayerSlots, Region{
			Rect: geometry.FromCorners(slotLeftX1, y1, slotLeftX2, y2),
			Kind: KindRate,
		})
	}
	for i := 0; i < slotRows; i++ {
		y1 := slotTop + i*slotPitch
		y2 := slotBottom + i*slotPitch
		c.PlayerSlots = append(c.PlayerSlots, Region{
			Rect: geometry.FromCorners(slotRightX1, y1, slotRightX2, y2),
			Kind: KindRate,
		})
	}

	c.CourseArea = Region{
		Rect: geometry.FromCorners(1100, 100, 1900, 900),
		Kind: KindCourseArea,
	}
	c.SingleCourseMarker = Region{
		Rect: geometry.FromCorners(560, 850, 1360, 1020),
		Kind: KindSingleCourseMarker,
	}

	for i := 0; i < ResultRowCount; i++ {
		dy := i * resultPitch
		c.ResultRows = append(c.ResultRows, ResultRow{
			Rank: Region{
				Rect: geometry.FromCorners(rankX1, resultRowY1+dy, rankX2, resultRowY2+dy),
				Kind: KindRank,
			},
			Rate: Region{
				Rect: geometry.FromCorners(rateX1, resultRowY1+dy, rateX2, resultRowY2+dy),
				Kind: KindRate,
			},
			RateChange: Region{
				Rect: geometry.FromCorners(changeX1, resultRowY1+dy, changeX2, resultRowY2+dy),
				Kind: KindRateChange,
			},
		})
	}

	return c
}

// ResultArea returns the aggregate rectangle spanning all 13 rank rows from
// the rank column through the rate column. The highlight presence check runs
// over this area.
func (c *Catalog) ResultArea() geometry.RectInt {
	first := c.ResultRows[0]
	last := c.ResultRows[len(c.ResultRows)-1]
	area := first.Rank.Rect.Union(first.Rate.Rect)
	return area.Union(last.Rank.Rect).Union(last.Rate.Rect)
}

// Row returns the result row for a 1-based rank.
func (c *Catalog) Row(rank int) ResultRow {
	return c.ResultRows[rank-1]
}
