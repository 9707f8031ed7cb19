package geometry

import "testing"

func TestFromCorners(t *testing.T) {
	r := FromCorners(10, 20, 110, 50)
	if r.X != 10 || r.Y != 20 || r.Width != 100 || r.Height != 30 {
		t.Errorf("unexpected rect: %+v", r)
	}
	if r.Area() != 3000 {
		t.Errorf("expected area 3000, got %d", r.Area())
	}
}

func TestFitsWithin(t *testing.T) {
	cases := []struct {
		name string
		r    RectInt
		w, h int
		want bool
	}{
		{"inside", FromCorners(0, 0, 100, 100), 1920, 1080, true},
		{"exact fit", FromCorners(0, 0, 1920, 1080), 1920, 1080, true},
		{"past right edge", FromCorners(1900, 0, 1940, 40), 1920, 1080, false},
		{"past bottom edge", FromCorners(0, 1060, 40, 1100), 1920, 1080, false},
		{"negative origin", FromCorners(-1, 0, 40, 40), 1920, 1080, false},
		{"smaller capture", FromCorners(440, 100, 520, 140), 640, 480, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.FitsWithin(tc.w, tc.h); got != tc.want {
				t.Errorf("FitsWithin(%d, %d) = %v, want %v", tc.w, tc.h, got, tc.want)
			}
		})
	}
}

func TestIntersect(t *testing.T) {
	a := FromCorners(0, 0, 100, 100)
	b := FromCorners(50, 50, 150, 150)
	got, ok := a.Intersect(b)
	if !ok {
		t.Fatal("expected overlap")
	}
	if got != FromCorners(50, 50, 100, 100) {
		t.Errorf("unexpected intersection: %+v", got)
	}

	c := FromCorners(200, 200, 300, 300)
	if _, ok := a.Intersect(c); ok {
		t.Error("expected no overlap with a disjoint rect")
	}
}

func TestUnion(t *testing.T) {
	a := FromCorners(0, 0, 10, 10)
	b := FromCorners(20, 30, 40, 50)
	if got := a.Union(b); got != FromCorners(0, 0, 40, 50) {
		t.Errorf("unexpected union: %+v", got)
	}
}

func TestTranslateAndCenter(t *testing.T) {
	r := FromCorners(10, 10, 30, 30).Translate(5, -5)
	if r != FromCorners(15, 5, 35, 25) {
		t.Errorf("unexpected translation: %+v", r)
	}
	if c := r.Center(); c.X != 25 || c.Y != 15 {
		t.Errorf("unexpected center: %+v", c)
	}
}

func TestEmptyAndContains(t *testing.T) {
	if !FromCorners(10, 10, 10, 40).Empty() {
		t.Error("zero-width rect should be empty")
	}
	r := FromCorners(0, 0, 10, 10)
	if !r.Contains(PointInt{X: 0, Y: 0}) {
		t.Error("expected rect to contain its origin")
	}
	if r.Contains(PointInt{X: 10, Y: 10}) {
		t.Error("bottom-right corner is exclusive")
	}
}
