package engine

import (
	"errors"
	"fmt"
)

// ErrEmptyProgression rejects requests carrying no chords.
var ErrEmptyProgression = errors.New("empty chord progression")

// UnknownStyleError names a style id with no registered pattern.
type UnknownStyleError struct {
	ID string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("unknown style %q", e.ID)
}

// ChordParseError wraps a malformed chord symbol with its progression index.
type ChordParseError struct {
	Index  int
	Symbol string
	Err    error
}

func (e *ChordParseError) Error() string {
	return fmt.Sprintf("chord %d (%q): %v", e.Index, e.Symbol, e.Err)
}

func (e *ChordParseError) Unwrap() error {
	return e.Err
}

// UnknownReharmModeError rejects an unrecognized reharmonization mode.
type UnknownReharmModeError struct {
	Mode string
}

func (e *UnknownReharmModeError) Error() string {
	return fmt.Sprintf("unknown reharmonization mode %q", e.Mode)
}

// PatternRangeError rejects a template hit whose beat offset resolves at or
// past the bar end. Hits are never folded back into the bar.
type PatternRangeError struct {
	Style string
	Beat  float64
}

func (e *PatternRangeError) Error() string {
	return fmt.Sprintf("style %q: hit at beat %.3f falls outside the bar", e.Style, e.Beat)
}

// ClaveViolationError rejects a hit that does not resolve onto the declared
// clave grid of a strict style. Hits are never silently shifted.
type ClaveViolationError struct {
	Style string
	Beat  float64
	Tick  int
}

func (e *ClaveViolationError) Error() string {
	return fmt.Sprintf("style %q: hit at beat %.3f (tick %d) is off the clave grid", e.Style, e.Beat, e.Tick)
}
