package theory

// Default octaves for the two accompaniment registers. C4 = 60.
const (
	CompOctave = 4
	BassOctave = 2
)

// Voicing is the voiced pitch material for one chord: the comping pitch set
// and the single bass pitch. Both are plain MIDI note numbers.
type Voicing struct {
	Comp []int
	Bass int
}

// Voice builds the voicing for a chord at the default registers. It is a
// pure function of the chord; identical chords always voice identically.
func Voice(c Chord) Voicing {
	return VoiceAt(c, CompOctave, BassOctave)
}

// VoiceAt builds the voicing at explicit octaves.
func VoiceAt(c Chord, compOctave, bassOctave int) Voicing {
	rootMIDI := pitchAt(c.Root, compOctave)

	comp := make([]int, 0, 5)
	for _, interval := range c.Intervals() {
		p := rootMIDI + interval
		if p < 0 || p > 127 {
			continue
		}
		comp = append(comp, p)
	}

	bassPC := c.Root
	if c.HasBass() {
		bassPC = c.Bass
	}

	return Voicing{
		Comp: comp,
		Bass: clampPitch(pitchAt(bassPC, bassOctave)),
	}
}

// pitchAt places a pitch class in an octave. (octave+1)*12 puts C4 at 60.
func pitchAt(pc, octave int) int {
	return (octave+1)*12 + pc
}

func clampPitch(p int) int {
	if p < 0 {
		return p + 12
	}
	if p > 127 {
		return p - 12
	}
	return p
}
