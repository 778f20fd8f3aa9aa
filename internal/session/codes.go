package session

import (
	"errors"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/engine"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/midifile"
)

// Stable error codes for the external response surface. The taxonomy is
// additive-only: a published code never changes meaning and is never
// removed, only appended to.
const (
	CodeEmptyProgression = "empty_progression"
	CodeUnknownStyle     = "unknown_style"
	CodeChordParse       = "chord_parse"
	CodeClaveViolation   = "clave_violation"
	CodePatternRange     = "pattern_range"
	CodeUnknownReharm    = "unknown_reharm_mode"
	CodeCodecInvariant   = "codec_invariant"
	CodeTimeout          = "generation_timeout"
	CodeBundleExists     = "bundle_exists"
	CodeBundleWrite      = "bundle_write"
	CodeUnknownClip      = "unknown_clip"
	CodeInternal         = "internal"
)

// errorCode translates an internal failure into the published vocabulary.
// Only this layer performs that translation.
func errorCode(err error) string {
	var styleErr *engine.UnknownStyleError
	var chordErr *engine.ChordParseError
	var claveErr *engine.ClaveViolationError
	var rangeErr *engine.PatternRangeError
	var reharmErr *engine.UnknownReharmModeError
	var codecErr *midifile.CodecError

	switch {
	case errors.Is(err, engine.ErrEmptyProgression):
		return CodeEmptyProgression
	case errors.As(err, &styleErr):
		return CodeUnknownStyle
	case errors.As(err, &chordErr):
		return CodeChordParse
	case errors.As(err, &claveErr):
		return CodeClaveViolation
	case errors.As(err, &rangeErr):
		return CodePatternRange
	case errors.As(err, &reharmErr):
		return CodeUnknownReharm
	case errors.As(err, &codecErr):
		return CodeCodecInvariant
	default:
		return CodeInternal
	}
}
