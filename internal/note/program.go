package note

import "fmt"

// DefaultTicksPerBeat is the file resolution used by convention.
const DefaultTicksPerBeat = 480

// Meter is a time signature.
type Meter struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

func (m Meter) Validate() error {
	if m.Numerator <= 0 || m.Denominator <= 0 {
		return fmt.Errorf("meter %d/%d must be positive", m.Numerator, m.Denominator)
	}
	// SMF meter denominators are powers of two
	d := m.Denominator
	for d > 1 {
		if d%2 != 0 {
			return fmt.Errorf("meter denominator %d is not a power of two", m.Denominator)
		}
		d /= 2
	}
	return nil
}

func (m Meter) String() string {
	return fmt.Sprintf("%d/%d", m.Numerator, m.Denominator)
}

// Program fixes the timing parameters for one clip. Resolution is constant
// per program and all tick math downstream is integer.
type Program struct {
	TempoBPM     int       `json:"tempo_bpm"`
	TicksPerBeat int       `json:"ticks_per_beat"`
	Meter        Meter     `json:"meter"`
	Seed         int64     `json:"seed"`
	TrackOrder   []TrackID `json:"track_order"`
}

func (p Program) Validate() error {
	if p.TempoBPM <= 0 {
		return fmt.Errorf("tempo %d bpm must be positive", p.TempoBPM)
	}
	if p.TicksPerBeat <= 0 {
		return fmt.Errorf("resolution %d ticks per beat must be positive", p.TicksPerBeat)
	}
	if err := p.Meter.Validate(); err != nil {
		return err
	}
	if len(p.TrackOrder) == 0 {
		return fmt.Errorf("track order is empty")
	}
	seen := make(map[TrackID]bool, len(p.TrackOrder))
	for _, t := range p.TrackOrder {
		if seen[t] {
			return fmt.Errorf("track %s repeated in track order", t.Name())
		}
		seen[t] = true
	}
	return nil
}

// BarTicks returns the length of one bar in ticks.
func (p Program) BarTicks() int {
	return p.TicksPerBeat * p.Meter.Numerator
}
