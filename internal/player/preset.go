package player

import "time"

// Preset bundles the scheduler behavior knobs. Swing is the fraction of a
// triplet delay applied to offbeat eighths; HumanizeMax bounds the per-event
// timing jitter drawn once at arm time.
type Preset struct {
	Name        string        `json:"name"`
	Swing       float64       `json:"swing"`
	HumanizeMax time.Duration `json:"humanize_max"`
	Density     string        `json:"density"`
}

var presets = map[string]Preset{
	"tight": {
		Name:        "tight",
		Swing:       0,
		HumanizeMax: 0,
		Density:     "medium",
	},
	"loose": {
		Name:        "loose",
		Swing:       0.5,
		HumanizeMax: 12 * time.Millisecond,
		Density:     "medium",
	},
	"challenge": {
		Name:        "challenge",
		Swing:       0.6,
		HumanizeMax: 8 * time.Millisecond,
		Density:     "high",
	},
	"recover": {
		Name:        "recover",
		Swing:       0.3,
		HumanizeMax: 5 * time.Millisecond,
		Density:     "low",
	},
}

// PresetByName looks up one of the named presets.
func PresetByName(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// DefaultPreset is the scheduler's starting behavior.
func DefaultPreset() Preset {
	return presets["tight"]
}

// PresetNames lists the available presets.
func PresetNames() []string {
	return []string{"tight", "loose", "challenge", "recover"}
}
