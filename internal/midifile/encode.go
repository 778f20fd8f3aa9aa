// Package midifile is the pure codec between note events and standard MIDI
// files. It performs no I/O: callers get bytes and decide persistence.
// Encoding the same program and events twice yields byte-identical output.
package midifile

import (
	"bytes"
	"fmt"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/note"
)

// CodecError identifies the violated invariant and, where one applies, the
// offending event index. No bytes are produced on error.
type CodecError struct {
	Invariant  string
	EventIndex int // -1 when no single event is at fault
	Err        error
}

func (e *CodecError) Error() string {
	if e.EventIndex >= 0 {
		return fmt.Sprintf("codec: %s (event %d): %v", e.Invariant, e.EventIndex, e.Err)
	}
	return fmt.Sprintf("codec: %s: %v", e.Invariant, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// ConductorTrackName labels the meta track carrying tempo and meter.
const ConductorTrackName = "conductor"

// Invariant names used in CodecError. Additive-only.
const (
	InvariantProgram    = "program spec"
	InvariantEventRange = "event range"
	InvariantOrdering   = "event ordering"
	InvariantTrackOrder = "track order"
)

// Encode serializes events into an SMF format-1 byte sequence.
//
// Preconditions, checked before any byte is written: the program is valid
// (tempo, meter, resolution, track order), every event passes the note
// contract, and events follow the contract ordering. The first track is a
// conductor track holding the tempo and meter meta events at tick 0; note
// tracks follow in trackOrder, each with a stable name meta event. Every
// event becomes exactly one note-on and one note-off, the off strictly
// later because durations are positive, so a decoded file can never hold a
// stuck note.
func Encode(program note.Program, events []note.Event, trackOrder []note.TrackID) ([]byte, error) {
	p := program
	if len(trackOrder) > 0 {
		p.TrackOrder = trackOrder
	}
	if err := p.Validate(); err != nil {
		return nil, &CodecError{Invariant: InvariantProgram, EventIndex: -1, Err: err}
	}
	for i, ev := range events {
		if err := ev.Validate(); err != nil {
			return nil, &CodecError{Invariant: InvariantEventRange, EventIndex: i, Err: err}
		}
	}
	if !note.Sorted(events) {
		return nil, &CodecError{
			Invariant:  InvariantOrdering,
			EventIndex: -1,
			Err:        fmt.Errorf("events not in (start tick, track, pitch) order"),
		}
	}
	known := make(map[note.TrackID]bool, len(p.TrackOrder))
	for _, t := range p.TrackOrder {
		known[t] = true
	}
	for i, ev := range events {
		if !known[ev.Track] {
			return nil, &CodecError{
				Invariant:  InvariantTrackOrder,
				EventIndex: i,
				Err:        fmt.Errorf("event track %s not in emission order", ev.Track.Name()),
			}
		}
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(p.TicksPerBeat)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName(ConductorTrackName))
	conductor.Add(0, smf.MetaTempo(float64(p.TempoBPM)))
	conductor.Add(0, smf.MetaMeter(uint8(p.Meter.Numerator), uint8(p.Meter.Denominator)))
	conductor.Close(0)
	s.Add(conductor)

	for _, trackID := range p.TrackOrder {
		s.Add(buildTrack(events, trackID))
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, &CodecError{Invariant: InvariantProgram, EventIndex: -1, Err: err}
	}
	return buf.Bytes(), nil
}

// moment is one wire message at an absolute tick, before delta encoding.
type moment struct {
	tick    int
	off     bool
	channel uint8
	pitch   uint8
	vel     uint8
}

func buildTrack(events []note.Event, trackID note.TrackID) smf.Track {
	var moments []moment
	for _, ev := range events {
		if ev.Track != trackID {
			continue
		}
		moments = append(moments, moment{
			tick:    ev.Start,
			channel: uint8(ev.Channel),
			pitch:   uint8(ev.Pitch),
			vel:     uint8(ev.Velocity),
		})
		moments = append(moments, moment{
			tick:    ev.End(),
			off:     true,
			channel: uint8(ev.Channel),
			pitch:   uint8(ev.Pitch),
		})
	}

	// Offs sort before ons at the same tick so a retriggered pitch releases
	// before it restrikes. The full key makes encoding order deterministic.
	sort.SliceStable(moments, func(i, j int) bool {
		a, b := moments[i], moments[j]
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		if a.off != b.off {
			return a.off
		}
		if a.channel != b.channel {
			return a.channel < b.channel
		}
		return a.pitch < b.pitch
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(trackID.Name()))

	prev := 0
	for _, m := range moments {
		delta := uint32(m.tick - prev)
		prev = m.tick
		if m.off {
			tr.Add(delta, gomidi.NoteOff(m.channel, m.pitch))
		} else {
			tr.Add(delta, gomidi.NoteOn(m.channel, m.pitch, m.vel))
		}
	}
	tr.Close(0)
	return tr
}
