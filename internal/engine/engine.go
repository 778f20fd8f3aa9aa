// Package engine turns a chord progression plus a style template into an
// ordered, validated note-event sequence. Generation is a pure function of
// the request: the only randomness is the seeded reharmonization pass.
package engine

import (
	"math"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/note"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/style"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/theory"
)

const (
	compChannel = 0
	bassChannel = 1
)

// ReharmSpec selects the optional reharmonization pass.
type ReharmSpec struct {
	Mode     string  `json:"mode"`     // "", "none", "tritone", "relative"
	Strength float64 `json:"strength"` // 0..1
	Seed     int64   `json:"seed"`
}

// Request carries everything generation depends on. AttemptID is not
// consulted here; it is the session layer's idempotency key.
type Request struct {
	Chords       []string       `json:"chords"`
	StyleID      string         `json:"style"`
	TempoBPM     int            `json:"tempo_bpm"`
	Meter        note.Meter     `json:"meter"`
	BarsPerChord int            `json:"bars_per_chord"`
	Reharm       ReharmSpec     `json:"reharm"`
	AttemptID    string         `json:"attempt_id"`
	TrackOrder   []note.TrackID `json:"-"`
}

// Program derives the codec/scheduler timing parameters from the request.
func (r Request) Program() note.Program {
	order := r.TrackOrder
	if len(order) == 0 {
		order = []note.TrackID{note.TrackComp, note.TrackBass}
	}
	return note.Program{
		TempoBPM:     r.TempoBPM,
		TicksPerBeat: note.DefaultTicksPerBeat,
		Meter:        r.Meter,
		Seed:         r.Reharm.Seed,
		TrackOrder:   order,
	}
}

// Engine generates accompaniment from an immutable style table.
type Engine struct {
	styles       *style.Table
	ticksPerBeat int
}

// New builds an engine over the given style table.
func New(styles *style.Table) *Engine {
	return &Engine{styles: styles, ticksPerBeat: note.DefaultTicksPerBeat}
}

// Generate produces the full event sequence for a request. Failures are
// terminal: no partial sequence is ever returned.
func (e *Engine) Generate(req Request) ([]note.Event, error) {
	if len(req.Chords) == 0 {
		return nil, ErrEmptyProgression
	}
	pattern, ok := e.styles.Lookup(req.StyleID)
	if !ok {
		return nil, &UnknownStyleError{ID: req.StyleID}
	}
	switch req.Reharm.Mode {
	case "", ReharmNone, ReharmTritone, ReharmRelative:
	default:
		return nil, &UnknownReharmModeError{Mode: req.Reharm.Mode}
	}
	program := req.Program()
	if err := program.Validate(); err != nil {
		return nil, err
	}

	chords := make([]theory.Chord, len(req.Chords))
	for i, symbol := range req.Chords {
		c, err := theory.Parse(symbol)
		if err != nil {
			return nil, &ChordParseError{Index: i, Symbol: symbol, Err: err}
		}
		chords[i] = c
	}

	chords = reharmonize(chords, req.Reharm)

	barsPerChord := req.BarsPerChord
	if barsPerChord <= 0 {
		barsPerChord = 1
	}
	barTicks := program.BarTicks()

	var events []note.Event
	for chordIdx, chord := range chords {
		voicing := theory.Voice(chord)
		for bar := 0; bar < barsPerChord; bar++ {
			barStart := (chordIdx*barsPerChord + bar) * barTicks

			if pattern.Kind != style.KindBass {
				for _, hit := range pattern.CompHits {
					tick, err := e.hitTick(pattern, hit, barStart, barTicks)
					if err != nil {
						return nil, err
					}
					for _, pitch := range voicing.Comp {
						ev, err := note.New(note.TrackComp, compChannel, tick, e.beatTicks(hit.Duration), pitch, hit.Velocity)
						if err != nil {
							return nil, err
						}
						events = append(events, ev)
					}
				}
			}

			if pattern.Kind != style.KindComp {
				for _, hit := range pattern.BassHits {
					tick, err := e.hitTick(pattern, hit, barStart, barTicks)
					if err != nil {
						return nil, err
					}
					ev, err := note.New(note.TrackBass, bassChannel, tick, e.beatTicks(hit.Duration), voicing.Bass, hit.Velocity)
					if err != nil {
						return nil, err
					}
					events = append(events, ev)
				}
			}
		}
	}

	note.Sort(events)
	return events, nil
}

// hitTick resolves a hit's absolute tick, rejecting hits that fall outside
// the bar and enforcing strict clave grids.
func (e *Engine) hitTick(pattern style.Pattern, hit style.Hit, barStart, barTicks int) (int, error) {
	offset := e.beatTicks(hit.Beat)
	if offset >= barTicks {
		return 0, &PatternRangeError{Style: pattern.Name, Beat: hit.Beat}
	}
	tick := barStart + offset

	if pattern.StrictClave && len(pattern.Clave) > 0 {
		onGrid := false
		for _, allowed := range pattern.Clave {
			if e.beatTicks(allowed) == offset {
				onGrid = true
				break
			}
		}
		if !onGrid {
			return 0, &ClaveViolationError{Style: pattern.Name, Beat: hit.Beat, Tick: tick}
		}
	}
	return tick, nil
}

// beatTicks quantizes a beat offset to integer ticks, once, at generation.
func (e *Engine) beatTicks(beats float64) int {
	ticks := int(math.Round(beats * float64(e.ticksPerBeat)))
	if ticks < 1 && beats > 0 {
		return 1
	}
	return ticks
}
