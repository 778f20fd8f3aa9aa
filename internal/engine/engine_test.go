package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/note"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/style"
)

func testRequest(chords ...string) Request {
	return Request{
		Chords:       chords,
		StyleID:      "swing_basic",
		TempoBPM:     120,
		Meter:        note.Meter{Numerator: 4, Denominator: 4},
		BarsPerChord: 1,
	}
}

func TestGenerateDeterministic(t *testing.T) {
	eng := New(style.Builtin())
	req := testRequest("Dm7", "G7", "Cmaj7")
	req.Reharm = ReharmSpec{Mode: ReharmTritone, Strength: 0.5, Seed: 42}

	first, err := eng.Generate(req)
	require.NoError(t, err)
	second, err := eng.Generate(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateSortedAndValid(t *testing.T) {
	eng := New(style.Builtin())
	events, err := eng.Generate(testRequest("Am7", "D7", "Gmaj7"))
	require.NoError(t, err)
	require.NotEmpty(t, events)

	assert.True(t, note.Sorted(events))
	for _, ev := range events {
		require.NoError(t, ev.Validate())
		assert.Greater(t, ev.Duration, 0)
		switch ev.Track {
		case note.TrackComp:
			assert.Equal(t, 0, ev.Channel)
		case note.TrackBass:
			assert.Equal(t, 1, ev.Channel)
		default:
			t.Fatalf("unexpected track %v", ev.Track)
		}
	}
}

func TestGenerateEmptyProgression(t *testing.T) {
	eng := New(style.Builtin())
	_, err := eng.Generate(testRequest())
	assert.ErrorIs(t, err, ErrEmptyProgression)
}

func TestGenerateUnknownStyle(t *testing.T) {
	eng := New(style.Builtin())
	req := testRequest("C")
	req.StyleID = "free_jazz"

	_, err := eng.Generate(req)
	var styleErr *UnknownStyleError
	require.ErrorAs(t, err, &styleErr)
	assert.Equal(t, "free_jazz", styleErr.ID)
}

func TestGenerateUnknownReharmMode(t *testing.T) {
	eng := New(style.Builtin())
	req := testRequest("C")
	req.Reharm = ReharmSpec{Mode: "negative_harmony", Strength: 1}

	_, err := eng.Generate(req)
	var modeErr *UnknownReharmModeError
	require.ErrorAs(t, err, &modeErr)
	assert.Equal(t, "negative_harmony", modeErr.Mode)
}

func TestGenerateChordParseError(t *testing.T) {
	eng := New(style.Builtin())
	_, err := eng.Generate(testRequest("C", "H7", "G"))

	var parseErr *ChordParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, parseErr.Index)
	assert.Equal(t, "H7", parseErr.Symbol)
}

func TestReharmTritoneMovesBass(t *testing.T) {
	eng := New(style.Builtin())

	plain := testRequest("G7")
	plainEvents, err := eng.Generate(plain)
	require.NoError(t, err)

	sub := testRequest("G7")
	sub.Reharm = ReharmSpec{Mode: ReharmTritone, Strength: 1, Seed: 7}
	subEvents, err := eng.Generate(sub)
	require.NoError(t, err)

	assert.NotEqual(t, bassPitches(plainEvents), bassPitches(subEvents))
}

func TestReharmZeroStrengthIsIdentity(t *testing.T) {
	eng := New(style.Builtin())

	plain := testRequest("Dm7", "G7", "Cmaj7")
	plainEvents, err := eng.Generate(plain)
	require.NoError(t, err)

	zero := testRequest("Dm7", "G7", "Cmaj7")
	zero.Reharm = ReharmSpec{Mode: ReharmTritone, Strength: 0, Seed: 99}
	zeroEvents, err := eng.Generate(zero)
	require.NoError(t, err)

	assert.Equal(t, plainEvents, zeroEvents)
}

func TestStrictClaveViolation(t *testing.T) {
	offGrid := style.Pattern{
		Name: "broken_tresillo",
		Kind: style.KindBoth,
		CompHits: []style.Hit{
			{Beat: 0, Duration: 1, Velocity: 90},
			{Beat: 2, Duration: 1, Velocity: 90}, // not on the 3+3+2 grid
		},
		Clave:       []float64{0, 1.5, 3},
		StrictClave: true,
	}
	eng := New(style.NewTable(offGrid))

	req := testRequest("C")
	req.StyleID = "broken_tresillo"

	_, err := eng.Generate(req)
	var claveErr *ClaveViolationError
	require.ErrorAs(t, err, &claveErr)
	assert.Equal(t, "broken_tresillo", claveErr.Style)
	assert.Equal(t, 2.0, claveErr.Beat)
}

func TestPatternHitOutsideBar(t *testing.T) {
	overrun := style.Pattern{
		Name: "overrun",
		Kind: style.KindComp,
		CompHits: []style.Hit{
			{Beat: 0, Duration: 1, Velocity: 90},
			{Beat: 4, Duration: 1, Velocity: 90}, // resolves at the bar end
		},
	}
	eng := New(style.NewTable(overrun))

	req := testRequest("C")
	req.StyleID = "overrun"

	_, err := eng.Generate(req)
	var rangeErr *PatternRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "overrun", rangeErr.Style)
	assert.Equal(t, 4.0, rangeErr.Beat)
}

func TestStrictClaveOnGrid(t *testing.T) {
	eng := New(style.Builtin())
	req := testRequest("C", "F")
	req.StyleID = "tresillo_strict"

	events, err := eng.Generate(req)
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}

func TestKindRestriction(t *testing.T) {
	eng := New(style.Builtin())

	compOnly := testRequest("C")
	compOnly.StyleID = "comp_offbeat"
	events, err := eng.Generate(compOnly)
	require.NoError(t, err)
	for _, ev := range events {
		assert.Equal(t, note.TrackComp, ev.Track)
	}

	bassOnly := testRequest("C")
	bassOnly.StyleID = "walking_bass"
	events, err = eng.Generate(bassOnly)
	require.NoError(t, err)
	for _, ev := range events {
		assert.Equal(t, note.TrackBass, ev.Track)
	}
}

func TestBarsPerChordLayout(t *testing.T) {
	eng := New(style.Builtin())
	req := testRequest("C", "F")
	req.BarsPerChord = 2

	events, err := eng.Generate(req)
	require.NoError(t, err)

	barTicks := req.Program().BarTicks()
	// the second chord's first events start two bars in
	secondChordStart := 2 * barTicks
	found := false
	for _, ev := range events {
		if ev.Start == secondChordStart {
			found = true
		}
		assert.Less(t, ev.Start, 4*barTicks)
	}
	assert.True(t, found, "no event at the second chord's downbeat")
}

func bassPitches(events []note.Event) []int {
	var pitches []int
	for _, ev := range events {
		if ev.Track == note.TrackBass {
			pitches = append(pitches, ev.Pitch)
		}
	}
	return pitches
}
