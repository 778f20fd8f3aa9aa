package note

import (
	"fmt"
	"sort"
)

// TrackID identifies one logical part within a clip.
type TrackID int

const (
	TrackComp TrackID = iota
	TrackBass
)

// Name returns the stable track name written into encoded files.
func (t TrackID) Name() string {
	switch t {
	case TrackComp:
		return "comp"
	case TrackBass:
		return "bass"
	default:
		return fmt.Sprintf("track-%d", int(t))
	}
}

const (
	MinPitch = 0
	MaxPitch = 127
	// a note-on at velocity 0 is a disguised note-off on the wire, so the
	// contract floor is 1
	MinVelocity = 1
	MaxVelocity = 127
	MaxChannel  = 15
)

// Event is a single played note. It is the contract boundary between the
// generation engine and both consumers (file codec and live scheduler), so
// out-of-range values are rejected at construction, never clamped.
type Event struct {
	Track    TrackID `json:"track"`
	Channel  int     `json:"channel"`
	Start    int     `json:"start_tick"`
	Duration int     `json:"duration_tick"`
	Pitch    int     `json:"pitch"`
	Velocity int     `json:"velocity"`
}

// New validates and builds an Event.
func New(track TrackID, channel, start, duration, pitch, velocity int) (Event, error) {
	e := Event{
		Track:    track,
		Channel:  channel,
		Start:    start,
		Duration: duration,
		Pitch:    pitch,
		Velocity: velocity,
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Validate checks the event invariants.
func (e Event) Validate() error {
	if e.Channel < 0 || e.Channel > MaxChannel {
		return fmt.Errorf("channel %d out of range 0-%d", e.Channel, MaxChannel)
	}
	if e.Start < 0 {
		return fmt.Errorf("start tick %d is negative", e.Start)
	}
	if e.Duration <= 0 {
		return fmt.Errorf("duration tick %d must be positive", e.Duration)
	}
	if e.Pitch < MinPitch || e.Pitch > MaxPitch {
		return fmt.Errorf("pitch %d out of range %d-%d", e.Pitch, MinPitch, MaxPitch)
	}
	if e.Velocity < MinVelocity || e.Velocity > MaxVelocity {
		return fmt.Errorf("velocity %d out of range %d-%d", e.Velocity, MinVelocity, MaxVelocity)
	}
	return nil
}

// End returns the tick at which the note releases.
func (e Event) End() int {
	return e.Start + e.Duration
}

// Less reports the contract ordering: (start tick, track, pitch) ascending.
// Downstream consumers rely on this ordering for note-off synthesis.
func Less(a, b Event) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.Track != b.Track {
		return a.Track < b.Track
	}
	return a.Pitch < b.Pitch
}

// Sort orders events in the contract ordering, in place.
func Sort(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return Less(events[i], events[j])
	})
}

// Sorted reports whether events already follow the contract ordering.
func Sorted(events []Event) bool {
	return sort.SliceIsSorted(events, func(i, j int) bool {
		return Less(events[i], events[j])
	})
}
