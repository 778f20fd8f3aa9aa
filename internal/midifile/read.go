package midifile

import (
	"bytes"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Read parses SMF bytes back into the gomidi representation.
func Read(data []byte) (s *smf.SMF, e error) {
	// the smf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			s, e = nil, fmt.Errorf("parsing midi bytes: %v", r)
		}
	}()

	res, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing midi bytes: %w", err)
	}
	return res, nil
}

// ReadFile parses a MIDI file from disk.
func ReadFile(path string) (*smf.SMF, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading midi file: %w", err)
	}
	return Read(dat)
}

// TrackSummary counts the note traffic of one track.
type TrackSummary struct {
	Name     string
	NoteOns  int
	NoteOffs int
	LastTick uint64
}

// Summarize walks a parsed file and reports per-track note counts. Used by
// the inspect command and by tests asserting the paired on/off property.
func Summarize(s *smf.SMF) []TrackSummary {
	summaries := make([]TrackSummary, 0, len(s.Tracks))
	for _, track := range s.Tracks {
		var sum TrackSummary
		var absTicks uint64
		for _, event := range track {
			absTicks += uint64(event.Delta)
			var channel, key, velocity uint8
			var text string
			switch {
			case event.Message.GetMetaTrackName(&text):
				sum.Name = text
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				sum.NoteOns++
				sum.LastTick = absTicks
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				sum.NoteOffs++
				sum.LastTick = absTicks
			}
		}
		summaries = append(summaries, sum)
	}
	return summaries
}
