package theory

import "fmt"

// TritoneSub replaces a dominant chord with the dominant seventh a tritone
// away. Non-dominant chords are returned unchanged.
func TritoneSub(c Chord) Chord {
	if !c.Dominant() {
		return c
	}
	root := (c.Root + 6) % 12
	return Chord{
		Symbol:     fmt.Sprintf("%s7", PitchClassName(root)),
		Root:       root,
		Quality:    Major,
		Extensions: []string{"7"},
		Bass:       -1,
	}
}

// RelativeSub swaps a plain triad for its relative major/minor. Chords with
// extensions or explicit basses keep their identity.
func RelativeSub(c Chord) Chord {
	if len(c.Extensions) > 0 || c.HasBass() {
		return c
	}
	switch c.Quality {
	case Major:
		root := (c.Root + 9) % 12
		return Chord{
			Symbol:  fmt.Sprintf("%sm", PitchClassName(root)),
			Root:    root,
			Quality: Minor,
			Bass:    -1,
		}
	case Minor:
		root := (c.Root + 3) % 12
		return Chord{
			Symbol:  PitchClassName(root),
			Root:    root,
			Quality: Major,
			Bass:    -1,
		}
	default:
		return c
	}
}
