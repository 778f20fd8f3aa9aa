package player

import "time"

// OrnamentVelocityMax classifies ghost hits: note-ons at or under this
// velocity are decorative and the first candidates for a late drop.
const OrnamentVelocityMax = 40

// Decision is the outcome of consulting the late-drop policy.
type Decision int

const (
	// Dispatch sends the event despite its lateness.
	Dispatch Decision = iota
	// DropOrnament discards a decorative note-on outright.
	DropOrnament
	// DropCore discards a core note-on; its matching note-off is dispatched
	// immediately so the voice still resolves.
	DropCore
)

// LateDropPolicy is the ordered rule list consulted when an event's
// deadline has passed by more than the grace threshold. Rules are evaluated
// in order; the first that claims the event decides.
type LateDropPolicy struct {
	rules []rule
}

type rule func(ev scheduled, lateness time.Duration) (Decision, bool)

// DefaultPolicy implements the standard ladder: note-offs are never
// dropped, ornaments go first, core hits only as a last resort.
func DefaultPolicy() LateDropPolicy {
	return LateDropPolicy{rules: []rule{
		// A dropped note-off would strand a sounding pitch.
		func(ev scheduled, _ time.Duration) (Decision, bool) {
			if ev.off {
				return Dispatch, true
			}
			return 0, false
		},
		func(ev scheduled, _ time.Duration) (Decision, bool) {
			if ev.velocity <= OrnamentVelocityMax {
				return DropOrnament, true
			}
			return 0, false
		},
		func(ev scheduled, _ time.Duration) (Decision, bool) {
			return DropCore, true
		},
	}}
}

// Decide consults the rules for a late event.
func (p LateDropPolicy) Decide(ev scheduled, lateness time.Duration) Decision {
	for _, r := range p.rules {
		if d, ok := r(ev, lateness); ok {
			return d
		}
	}
	return Dispatch
}
