package colorutil

import (
	"math"
	"testing"
)

func TestRGBToHSV(t *testing.T) {
	cases := []struct {
		name    string
		r, g, b float64
		want    HSV
	}{
		{"black", 0, 0, 0, HSV{H: 0, S: 0, V: 0}},
		{"white", 255, 255, 255, HSV{H: 0, S: 0, V: 255}},
		{"red", 255, 0, 0, HSV{H: 0, S: 255, V: 255}},
		{"green", 0, 255, 0, HSV{H: 60, S: 255, V: 255}},
		{"blue", 0, 0, 255, HSV{H: 120, S: 255, V: 255}},
		{"yellow", 255, 255, 0, HSV{H: 30, S: 255, V: 255}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RGBToHSV(tc.r, tc.g, tc.b)
			if math.Abs(got.H-tc.want.H) > 0.01 ||
				math.Abs(got.S-tc.want.S) > 0.01 ||
				math.Abs(got.V-tc.want.V) > 0.01 {
				t.Errorf("RGBToHSV(%v, %v, %v) = %+v, want %+v", tc.r, tc.g, tc.b, got, tc.want)
			}
		})
	}
}

func TestHSVInRange(t *testing.T) {
	lower := HSV{H: 20, S: 100, V: 100}
	upper := HSV{H: 40, S: 255, V: 255}

	yellow := RGBToHSV(255, 255, 0)
	if !yellow.InRange(lower, upper) {
		t.Errorf("yellow %+v should fall inside the highlight band", yellow)
	}

	blue := RGBToHSV(0, 0, 255)
	if blue.InRange(lower, upper) {
		t.Errorf("blue %+v should fall outside the highlight band", blue)
	}

	dimYellow := RGBToHSV(60, 60, 0)
	if dimYellow.InRange(lower, upper) {
		t.Errorf("dim yellow %+v should fail the value floor", dimYellow)
	}
}
