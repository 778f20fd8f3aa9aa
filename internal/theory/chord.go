package theory

import (
	"fmt"
	"strings"
)

// Quality is the parsed chord quality.
type Quality string

const (
	Major      Quality = "major"
	Minor      Quality = "minor"
	Diminished Quality = "diminished"
	Augmented  Quality = "augmented"
	Sus2       Quality = "sus2"
	Sus4       Quality = "sus4"
)

// Chord is an immutable parsed chord symbol: root pitch class 0-11, quality,
// extensions, and an optional explicit bass pitch class for slash chords.
type Chord struct {
	Symbol     string
	Root       int
	Quality    Quality
	Extensions []string
	Bass       int // pitch class, or -1 when the root carries the bass
}

// HasBass reports whether the symbol carried an explicit slash bass.
func (c Chord) HasBass() bool {
	return c.Bass >= 0
}

// Dominant reports whether the chord functions as a dominant seventh,
// the shape tritone substitution applies to.
func (c Chord) Dominant() bool {
	if c.Quality != Major {
		return false
	}
	for _, ext := range c.Extensions {
		if ext == "7" {
			return true
		}
	}
	return false
}

var pitchClasses = map[string]int{
	"C":  0,
	"C#": 1, "Db": 1,
	"D":  2,
	"D#": 3, "Eb": 3,
	"E":  4,
	"F":  5,
	"F#": 6, "Gb": 6,
	"G":  7,
	"G#": 8, "Ab": 8,
	"A":  9,
	"A#": 10, "Bb": 10,
	"B": 11,
}

var pitchClassNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

// PitchClassName returns a display name for a pitch class.
func PitchClassName(pc int) string {
	return pitchClassNames[((pc%12)+12)%12]
}

// Parse parses a chord symbol such as C, Em, Am7, Cmaj7, F#m7b5, Dm7/G.
func Parse(symbol string) (Chord, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Chord{}, fmt.Errorf("empty chord symbol")
	}

	base := symbol
	bass := -1
	if i := strings.Index(symbol, "/"); i >= 0 {
		base = strings.TrimSpace(symbol[:i])
		bassName := strings.TrimSpace(symbol[i+1:])
		pc, ok := pitchClasses[bassName]
		if !ok {
			return Chord{}, fmt.Errorf("chord %q: invalid bass note %q", symbol, bassName)
		}
		bass = pc
	}

	rootName, rest, err := splitRoot(base)
	if err != nil {
		return Chord{}, fmt.Errorf("chord %q: %w", symbol, err)
	}

	return Chord{
		Symbol:     symbol,
		Root:       pitchClasses[rootName],
		Quality:    parseQuality(rest),
		Extensions: parseExtensions(rest),
		Bass:       bass,
	}, nil
}

// splitRoot peels the 1-2 character root off the front of the symbol.
func splitRoot(symbol string) (root, rest string, err error) {
	if symbol == "" {
		return "", "", fmt.Errorf("empty chord symbol")
	}
	root = symbol[:1]
	rest = symbol[1:]
	if len(symbol) > 1 && (symbol[1] == '#' || symbol[1] == 'b') {
		root = symbol[:2]
		rest = symbol[2:]
	}
	if _, ok := pitchClasses[root]; !ok {
		return "", "", fmt.Errorf("invalid root note %q", root)
	}
	return root, rest, nil
}

func parseQuality(rest string) Quality {
	switch {
	case strings.HasPrefix(rest, "dim"):
		return Diminished
	case strings.HasPrefix(rest, "aug"):
		return Augmented
	case strings.HasPrefix(rest, "sus2"):
		return Sus2
	case strings.HasPrefix(rest, "sus4"):
		return Sus4
	case strings.HasPrefix(rest, "maj"):
		return Major
	case strings.HasPrefix(rest, "min"), strings.HasPrefix(rest, "m"):
		return Minor
	default:
		return Major
	}
}

func parseExtensions(rest string) []string {
	var extensions []string

	// maj7/min7 first so TrimPrefix("m") cannot corrupt them
	if strings.Contains(rest, "maj7") {
		extensions = append(extensions, "maj7")
		rest = strings.ReplaceAll(rest, "maj7", "")
	}
	if strings.Contains(rest, "min7") {
		extensions = append(extensions, "min7")
		rest = strings.ReplaceAll(rest, "min7", "")
	}

	rest = strings.TrimPrefix(rest, "min")
	rest = strings.TrimPrefix(rest, "m")
	rest = strings.TrimPrefix(rest, "dim")
	rest = strings.TrimPrefix(rest, "aug")
	rest = strings.TrimPrefix(rest, "sus2")
	rest = strings.TrimPrefix(rest, "sus4")

	if strings.Contains(rest, "7") {
		extensions = append(extensions, "7")
		rest = strings.ReplaceAll(rest, "7", "")
	}
	if strings.Contains(rest, "13") {
		extensions = append(extensions, "13")
		rest = strings.ReplaceAll(rest, "13", "")
	}
	if strings.Contains(rest, "11") {
		extensions = append(extensions, "11")
		rest = strings.ReplaceAll(rest, "11", "")
	}
	if strings.Contains(rest, "9") {
		extensions = append(extensions, "9")
	}

	return extensions
}

// Intervals returns the semitone offsets from the root for the chord's
// voiced pitch set.
func (c Chord) Intervals() []int {
	var intervals []int

	switch c.Quality {
	case Minor:
		intervals = []int{0, 3, 7}
	case Diminished:
		intervals = []int{0, 3, 6}
	case Augmented:
		intervals = []int{0, 4, 8}
	case Sus2:
		intervals = []int{0, 2, 7}
	case Sus4:
		intervals = []int{0, 5, 7}
	default:
		intervals = []int{0, 4, 7}
	}

	for _, ext := range c.Extensions {
		switch ext {
		case "7", "min7":
			intervals = append(intervals, 10)
		case "maj7":
			intervals = append(intervals, 11)
		case "9":
			intervals = append(intervals, 14)
		case "11":
			intervals = append(intervals, 17)
		case "13":
			intervals = append(intervals, 21)
		}
	}

	return intervals
}
