package engine

import (
	"math/rand"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/theory"
)

// Reharmonization modes.
const (
	ReharmNone     = "none"
	ReharmTritone  = "tritone"
	ReharmRelative = "relative"
)

// reharmonize applies one global substitution pass over the progression.
// The rand source is owned here and seeded from the request, so the same
// seed and inputs always pick the same substitutions. One draw is consumed
// per chord, eligible or not, to keep later choices independent of earlier
// chords' eligibility.
func reharmonize(chords []theory.Chord, spec ReharmSpec) []theory.Chord {
	if spec.Mode == "" || spec.Mode == ReharmNone || spec.Strength <= 0 {
		return chords
	}
	rng := rand.New(rand.NewSource(spec.Seed))

	out := make([]theory.Chord, len(chords))
	for i, c := range chords {
		draw := rng.Float64()
		out[i] = c
		if draw >= spec.Strength {
			continue
		}
		switch spec.Mode {
		case ReharmTritone:
			out[i] = theory.TritoneSub(c)
		case ReharmRelative:
			out[i] = theory.RelativeSub(c)
		}
	}
	return out
}
