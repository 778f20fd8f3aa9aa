package style

// Builtin returns the stock pattern table. Velocities follow the accent
// shape of the classic templates: strong downbeat, lighter offbeats, ghost
// hits well under the ornament threshold.
func Builtin() *Table {
	return NewTable(
		Pattern{
			Name: "swing_basic",
			Kind: KindBoth,
			CompHits: []Hit{
				{Beat: 0, Duration: 0.9, Velocity: 96},
				{Beat: 1.67, Duration: 0.3, Velocity: 35}, // ghost push
				{Beat: 2, Duration: 0.9, Velocity: 88},
				{Beat: 3.67, Duration: 0.3, Velocity: 35}, // ghost push
			},
			BassHits: []Hit{
				{Beat: 0, Duration: 0.95, Velocity: 100},
				{Beat: 1, Duration: 0.95, Velocity: 84},
				{Beat: 2, Duration: 0.95, Velocity: 92},
				{Beat: 3, Duration: 0.95, Velocity: 84},
			},
		},
		Pattern{
			Name: "ballad",
			Kind: KindBoth,
			CompHits: []Hit{
				{Beat: 0, Duration: 3.8, Velocity: 80},
			},
			BassHits: []Hit{
				{Beat: 0, Duration: 1.9, Velocity: 88},
				{Beat: 2, Duration: 1.9, Velocity: 76},
			},
		},
		Pattern{
			Name: "bossa",
			Kind: KindBoth,
			CompHits: []Hit{
				{Beat: 0, Duration: 0.9, Velocity: 92},
				{Beat: 1.5, Duration: 0.9, Velocity: 78},
				{Beat: 3, Duration: 0.9, Velocity: 84},
			},
			BassHits: []Hit{
				{Beat: 0, Duration: 1.4, Velocity: 96},
				{Beat: 1.5, Duration: 1.4, Velocity: 80},
				{Beat: 3, Duration: 0.9, Velocity: 88},
			},
			Clave: []float64{0, 1.5, 3},
		},
		Pattern{
			Name: "tresillo_strict",
			Kind: KindBoth,
			CompHits: []Hit{
				{Beat: 0, Duration: 1.3, Velocity: 100},
				{Beat: 1.5, Duration: 1.3, Velocity: 90},
				{Beat: 3, Duration: 0.9, Velocity: 95},
			},
			BassHits: []Hit{
				{Beat: 0, Duration: 1.4, Velocity: 104},
				{Beat: 1.5, Duration: 1.4, Velocity: 92},
				{Beat: 3, Duration: 0.9, Velocity: 98},
			},
			// 3+3+2 grid
			Clave:       []float64{0, 1.5, 3},
			StrictClave: true,
		},
		Pattern{
			Name: "comp_offbeat",
			Kind: KindComp,
			CompHits: []Hit{
				{Beat: 0.5, Duration: 0.4, Velocity: 86},
				{Beat: 1.5, Duration: 0.4, Velocity: 80},
				{Beat: 2.5, Duration: 0.4, Velocity: 86},
				{Beat: 3.5, Duration: 0.4, Velocity: 80},
			},
		},
		Pattern{
			Name: "walking_bass",
			Kind: KindBass,
			BassHits: []Hit{
				{Beat: 0, Duration: 0.95, Velocity: 98},
				{Beat: 1, Duration: 0.95, Velocity: 86},
				{Beat: 2, Duration: 0.95, Velocity: 92},
				{Beat: 3, Duration: 0.95, Velocity: 86},
			},
		},
	)
}
