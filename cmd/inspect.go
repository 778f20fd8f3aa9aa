package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/midifile"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file.mid]",
	Short: "Inspect a MIDI file",
	Long:  `Print per-track note counts and tick spans for a standard MIDI file.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			log.Fatal("Need exactly one file argument")
		}
		inspect(args[0])
	},
}

func inspect(path string) {
	s, err := midifile.ReadFile(path)
	if err != nil {
		log.Fatal("Reading file failed:", err)
	}

	for _, summary := range midifile.Summarize(s) {
		fmt.Printf("track: %s\n", summary.Name)
		fmt.Printf("  note_ons: %d\n", summary.NoteOns)
		fmt.Printf("  note_offs: %d\n", summary.NoteOffs)
		fmt.Printf("  last_tick: %d\n", summary.LastTick)
	}
}
