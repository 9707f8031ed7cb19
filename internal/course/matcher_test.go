package course

import "testing"

func TestMatchExactName(t *testing.T) {
	v := NewVocabulary(nil)
	got, ok := v.Match("Rainbow Road")
	if !ok || got != "Rainbow Road" {
		t.Errorf("Match(exact) = %q, %v", got, ok)
	}
}

func TestMatchNoisyText(t *testing.T) {
	v := NewVocabulary(nil)
	cases := []struct {
		raw  string
		want string
	}{
		{"Rainbovv Road", "Rainbow Road"},
		{"Mario Circuit", "Mario Circuit"},
		{"Marlo Circult", "Mario Circuit"},
		{"DK  Pass", "DK Pass"},
		{"Bowsers Castle", "Bowser's Castle"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := v.Match(tc.raw)
			if !ok || got != tc.want {
				t.Errorf("Match(%q) = %q, %v; want %q", tc.raw, got, ok, tc.want)
			}
		})
	}
}

func TestMatchRejectsLowScores(t *testing.T) {
	v := NewVocabulary(nil)
	for _, raw := range []string{"", "xq", "зззззззз", "0123456789012345678901234567890123456789"} {
		got, ok := v.Match(raw)
		if ok || got != Unknown {
			t.Errorf("Match(%q) = %q, %v; want unknown", raw, got, ok)
		}
	}
}

func TestMatchThresholdIsStrict(t *testing.T) {
	// Against a single 10-rune entry, a raw text at edit distance 4 scores
	// exactly 0.6 and must be rejected; distance 3 scores 0.7 and passes.
	v := NewVocabulary([]string{"abcdefghij"})

	if got, ok := v.Match("abcdefWXYZ"); ok {
		t.Errorf("score 0.6 should be rejected, got %q", got)
	}
	if got, ok := v.Match("abcdefgXYZ"); !ok || got != "abcdefghij" {
		t.Errorf("score 0.7 should match, got %q, %v", got, ok)
	}
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"abc", "abd", 1 - 1.0/3},
		{"abc", "", 0},
	}
	for _, tc := range cases {
		if got := similarity(tc.a, tc.b); got != tc.want {
			t.Errorf("similarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCompositeLabel(t *testing.T) {
	if got := CompositeLabel(true, "Mario Circuit", "Rainbow Road"); got != "Rainbow Road" {
		t.Errorf("standalone label = %q", got)
	}
	if got := CompositeLabel(false, "Mario Circuit", "Rainbow Road"); got != "Mario Circuit → Rainbow Road" {
		t.Errorf("composite label = %q", got)
	}
	if got := CompositeLabel(false, "", "Rainbow Road"); got != "unknown → Rainbow Road" {
		t.Errorf("composite label with no prior = %q", got)
	}
}

func TestEndOf(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"Rainbow Road", "Rainbow Road"},
		{"Mario Circuit → Rainbow Road", "Rainbow Road"},
		{"A → B → C", "C"},
		{"", Unknown},
	}
	for _, tc := range cases {
		if got := EndOf(tc.label); got != tc.want {
			t.Errorf("EndOf(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

func TestCharWhitelist(t *testing.T) {
	v := NewVocabulary([]string{"DK Pass", "Boo Cinema"})
	wl := v.CharWhitelist()

	for _, c := range "DKPassBooCinema " {
		if !containsRune(wl, c) {
			t.Errorf("whitelist missing %q", c)
		}
	}
	if containsRune(wl, 'z') {
		t.Error("whitelist should not contain characters absent from the vocabulary")
	}
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func TestVocabularyDefaults(t *testing.T) {
	v := NewVocabulary(nil)
	if len(v.Names) == 0 {
		t.Fatal("default vocabulary should not be empty")
	}
	for _, name := range []string{"Mario Circuit", "Rainbow Road"} {
		if !v.Contains(name) {
			t.Errorf("default vocabulary missing %q", name)
		}
	}
}

func TestPermittedEnds(t *testing.T) {
	v := NewVocabulary(nil)
	v.Routes["Mario Circuit"] = []string{"Rainbow Road", "Crown City"}

	ends := v.PermittedEnds("Mario Circuit")
	if len(ends) != 2 || ends[0] != "Rainbow Road" {
		t.Errorf("unexpected permitted ends: %v", ends)
	}
	if v.PermittedEnds("Rainbow Road") != nil {
		t.Error("expected nil for a course without registered routes")
	}
}
