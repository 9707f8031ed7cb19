// Package course matches noisy recognized text against the closed set of
// known course names.
package course

import (
	"sort"
	"strings"
)

// Unknown is the label persisted when no course could be determined.
const Unknown = "unknown"

// DefaultNames is the built-in course vocabulary, in the game's own menu
// order. It can be replaced wholesale from the settings file when the game
// ships new tracks.
var DefaultNames = []string{
	"Mario Bros. Circuit",
	"Crown City",
	"Whistlestop Summit",
	"DK Spaceport",
	"Desert Hills",
	"Shy Guy Bazaar",
	"Wario Stadium",
	"Airship Fortress",
	"DK Pass",
	"Starview Peak",
	"Sky-High Sundae",
	"Wario Shipyard",
	"Koopa Troopa Beach",
	"Faraway Oasis",
	"Peach Stadium",
	"Peach Beach",
	"Salty Salty Speedway",
	"Dino Dino Jungle",
	"Great ? Block Ruins",
	"Cheep Cheep Falls",
	"Dandelion Depths",
	"Boo Cinema",
	"Dry Bones Burnout",
	"Moo Moo Meadows",
	"Choco Mountain",
	"Toad's Factory",
	"Bowser's Castle",
	"Acorn Heights",
	"Mario Circuit",
	"Rainbow Road",
}

// Vocabulary is the fixed ordered set of known course names plus an optional
// route map of valid "start -> permitted ends" chains. The route map is not
// consulted by the matcher; it exists for the manual-edit collaborator.
type Vocabulary struct {
	Names  []string
	Routes map[string][]string
}

// NewVocabulary builds a vocabulary from the given names, falling back to the
// built-in list when names is empty.
func NewVocabulary(names []string) *Vocabulary {
	if len(names) == 0 {
		names = DefaultNames
	}
	return &Vocabulary{Names: names, Routes: map[string][]string{}}
}

// Contains reports whether name is a known course.
func (v *Vocabulary) Contains(name string) bool {
	for _, n := range v.Names {
		if n == name {
			return true
		}
	}
	return false
}

// PermittedEnds returns the valid second legs for a starting course, or nil
// when no routes are registered for it.
func (v *Vocabulary) PermittedEnds(start string) []string {
	return v.Routes[start]
}

// CharWhitelist returns the sorted union of characters appearing in the
// vocabulary. Restricting OCR to this set suppresses false-positive
// recognition of characters that cannot occur in any course name.
func (v *Vocabulary) CharWhitelist() string {
	seen := map[rune]bool{}
	for _, name := range v.Names {
		for _, c := range name {
			seen[c] = true
		}
	}
	chars := make([]rune, 0, len(seen))
	for c := range seen {
		chars = append(chars, c)
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })
	return string(chars)
}

// normalize strips the whitespace variance OCR introduces before scoring.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
