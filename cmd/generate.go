package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/engine"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/midifile"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/note"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/style"
)

var (
	generateStyle  string
	generateTempo  int
	generateBars   int
	generateSeed   int64
	generateReharm string
	generateOut    string
)

func init() {
	generateCmd.Flags().StringVar(&generateStyle, "style", "swing_basic", "style pattern name")
	generateCmd.Flags().IntVar(&generateTempo, "tempo", 100, "tempo in BPM")
	generateCmd.Flags().IntVar(&generateBars, "bars", 1, "bars per chord")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "reharmonization seed")
	generateCmd.Flags().StringVar(&generateReharm, "reharm", "none", "reharmonization mode (none, tritone, relative)")
	generateCmd.Flags().StringVar(&generateOut, "out", "clip.mid", "output file path")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate [chords...]",
	Short: "Generate a clip to a MIDI file",
	Long: `Generate comping and bass for a chord progression and write the
combined sequence to a standard MIDI file.

Example:
  stringmaster generate --style bossa --tempo 120 Dm7 G7 Cmaj7`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			log.Fatal("Need at least one chord symbol")
		}
		generate(args)
	},
}

func generate(chords []string) {
	req := engine.Request{
		Chords:       chords,
		StyleID:      generateStyle,
		TempoBPM:     generateTempo,
		Meter:        note.Meter{Numerator: 4, Denominator: 4},
		BarsPerChord: generateBars,
		Reharm: engine.ReharmSpec{
			Mode:     generateReharm,
			Strength: 0.5,
			Seed:     generateSeed,
		},
	}

	eng := engine.New(style.Builtin())
	events, err := eng.Generate(req)
	if err != nil {
		log.Fatal("Generation failed:", err)
	}

	program := req.Program()
	data, err := midifile.Encode(program, events, program.TrackOrder)
	if err != nil {
		log.Fatal("Encoding failed:", err)
	}

	if err := os.WriteFile(generateOut, data, 0o644); err != nil {
		log.Fatal("Writing file failed:", err)
	}

	fmt.Printf("Wrote %d events to %s\n", len(events), generateOut)
}
