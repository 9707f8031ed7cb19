package course

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
)

// matchThreshold is the strict lower bound on the similarity ratio. A best
// score equal to the threshold is still rejected.
const matchThreshold = 0.6

// Match fuzzy-matches raw recognized text against the vocabulary. It returns
// the best-scoring known name when its similarity strictly exceeds the
// threshold, otherwise (Unknown, false).
func (v *Vocabulary) Match(raw string) (string, bool) {
	raw = normalize(raw)
	if raw == "" {
		return Unknown, false
	}

	best := Unknown
	bestScore := matchThreshold
	for _, name := range v.Names {
		score := similarity(raw, name)
		if score > bestScore {
			bestScore = score
			best = name
		}
	}
	if best == Unknown {
		return Unknown, false
	}
	return best, true
}

// similarity is a normalized character-level edit ratio in [0, 1]:
// 1 - distance/maxRuneLen. Order-sensitive, 1.0 for identical strings.
func similarity(a, b string) float64 {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 && lb == 0 {
		return 1
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	d := levenshtein.Distance(a, b)
	return 1 - float64(d)/float64(longest)
}

// CompositeLabel builds the persisted course label. A standalone race keeps
// the matched name; the second leg of a chained race is labeled
// "start -> end" with the previous record's end course as the start.
func CompositeLabel(standalone bool, prevEnd, matched string) string {
	if standalone {
		return matched
	}
	if prevEnd == "" {
		prevEnd = Unknown
	}
	return fmt.Sprintf("%s → %s", prevEnd, matched)
}

// EndOf extracts the end course from a persisted label, which is either a
// plain name or a "start → end" composite.
func EndOf(label string) string {
	if label == "" {
		return Unknown
	}
	const arrow = " → "
	if idx := strings.LastIndex(label, arrow); idx >= 0 {
		return label[idx+len(arrow):]
	}
	return label
}
