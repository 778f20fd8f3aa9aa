package session

// Verdict is the practice outcome reported for a clip.
type Verdict string

const (
	VerdictPass     Verdict = "pass"
	VerdictStruggle Verdict = "struggle"
	VerdictNull     Verdict = ""
)

// Adjustment is the bounded difficulty step computed from a verdict. All
// deltas are deterministic functions of the prior state and the verdict;
// no random state is ever consulted.
type Adjustment struct {
	TempoDelta       int `json:"tempo_delta"`
	DensityDelta     int `json:"density_delta"`
	SyncopationDelta int `json:"syncopation_delta"`
}

// Difficulty is the per-session adaptive state.
type Difficulty struct {
	TempoBPM    int `json:"tempo_bpm"`
	Density     int `json:"density"`     // 0 low, 1 medium, 2 high
	Syncopation int `json:"syncopation"` // 0..2
}

const (
	minTempo   = 40
	maxTempo   = 240
	maxDensity = 2
	maxSync    = 2

	passTempoStep     = 4
	struggleTempoStep = -6
)

// trend buckets over the rolling score window
const (
	TrendDown = "down"
	TrendFlat = "flat"
	TrendUp   = "up"
)

// score bands
const (
	BandLow   = "low"   // 0-49
	BandMid   = "mid"   // 50-69
	BandSolid = "solid" // 70-84
	BandHigh  = "high"  // 85-100
)

// ScoreBand maps a 0-100 score onto its band.
func ScoreBand(score int) string {
	switch {
	case score < 50:
		return BandLow
	case score < 70:
		return BandMid
	case score < 85:
		return BandSolid
	default:
		return BandHigh
	}
}

// TrendBucket classifies a rolling score window: rising, falling, or flat.
// Fewer than two samples is flat.
func TrendBucket(window []int) string {
	if len(window) < 2 {
		return TrendFlat
	}
	first, last := window[0], window[len(window)-1]
	switch {
	case last > first:
		return TrendUp
	case last < first:
		return TrendDown
	default:
		return TrendFlat
	}
}

// Adjust computes the bounded difficulty step for a verdict. PASS nudges
// difficulty up, STRUGGLE nudges it down; every step is clamped so repeated
// verdicts walk, never jump.
func Adjust(d Difficulty, verdict Verdict, score int, trend string) Adjustment {
	var adj Adjustment
	switch verdict {
	case VerdictPass:
		adj.TempoDelta = clampTempoDelta(d.TempoBPM, passTempoStep)
		if score >= 85 && d.Density < maxDensity {
			adj.DensityDelta = 1
		}
		if trend == TrendUp && score >= 85 && d.Syncopation < maxSync {
			adj.SyncopationDelta = 1
		}
	case VerdictStruggle:
		adj.TempoDelta = clampTempoDelta(d.TempoBPM, struggleTempoStep)
		if score < 50 && d.Density > 0 {
			adj.DensityDelta = -1
		}
		if trend == TrendDown && d.Syncopation > 0 {
			adj.SyncopationDelta = -1
		}
	}
	return adj
}

// Apply returns the state after an adjustment.
func Apply(d Difficulty, adj Adjustment) Difficulty {
	d.TempoBPM += adj.TempoDelta
	d.Density += adj.DensityDelta
	d.Syncopation += adj.SyncopationDelta
	return d
}

func clampTempoDelta(tempo, step int) int {
	next := tempo + step
	if next < minTempo {
		return minTempo - tempo
	}
	if next > maxTempo {
		return maxTempo - tempo
	}
	return step
}

// coachHints is the total score-band x trend-bucket matrix. Every reachable
// pair maps to a hint; the lookup never consults random state.
var coachHints = map[string]map[string]string{
	BandLow: {
		TrendDown: "Slow it down and lock in with the bass before adding anything back.",
		TrendFlat: "Stay at this tempo and focus on clean chord changes.",
		TrendUp:   "Progress showing. Keep the tempo steady one more round.",
	},
	BandMid: {
		TrendDown: "Drop the density a notch and groove on the strong beats.",
		TrendFlat: "Solid base. Tighten the transitions between chords.",
		TrendUp:   "Good trajectory. Try leaning into the offbeat hits.",
	},
	BandSolid: {
		TrendDown: "Hold tempo here; work the tricky bar in isolation.",
		TrendFlat: "Consistent playing. Add a little dynamic shape to the comping.",
		TrendUp:   "Strong momentum. A small tempo bump is within reach.",
	},
	BandHigh: {
		TrendDown: "Still excellent. Relax and let the time settle back in.",
		TrendFlat: "Owning this groove. Consider the challenge preset next.",
		TrendUp:   "Peak form. Push tempo and syncopation together.",
	},
}

// SuggestPreset picks the playback preset for the session's next attempt
// from the rolling score window. Two consecutive low-band scores force
// recover; a high band that is not falling earns challenge; a solid band
// relaxes to loose; everything else stays tight. Names match the player's
// preset table.
func SuggestPreset(window []int) string {
	n := len(window)
	if n >= 2 && ScoreBand(window[n-1]) == BandLow && ScoreBand(window[n-2]) == BandLow {
		return "recover"
	}
	if n == 0 {
		return "tight"
	}
	band := ScoreBand(window[n-1])
	trend := TrendBucket(window)
	switch {
	case band == BandHigh && trend != TrendDown:
		return "challenge"
	case band == BandSolid:
		return "loose"
	default:
		return "tight"
	}
}

// CoachHint selects the hint for a band/bucket pair.
func CoachHint(band, bucket string) string {
	if row, ok := coachHints[band]; ok {
		if hint, ok := row[bucket]; ok {
			return hint
		}
	}
	// unreachable with valid bands/buckets; a stable fallback keeps the
	// lookup total even against future band additions
	return coachHints[BandMid][TrendFlat]
}
