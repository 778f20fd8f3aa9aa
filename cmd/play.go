package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/config"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/engine"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/metrics"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/note"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/player"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/style"
)

var (
	playStyle  string
	playTempo  int
	playBars   int
	playPreset string
)

func init() {
	playCmd.Flags().StringVar(&playStyle, "style", "swing_basic", "style pattern name")
	playCmd.Flags().IntVar(&playTempo, "tempo", 100, "tempo in BPM")
	playCmd.Flags().IntVar(&playBars, "bars", 1, "bars per chord")
	playCmd.Flags().StringVar(&playPreset, "preset", "tight", "playback preset")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [chords...]",
	Short: "Play a progression live",
	Long: `Generate comping and bass for a chord progression and play it
against wall-clock deadlines, printing each message as it dispatches.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			log.Fatal("Need at least one chord symbol")
		}
		play(args)
	},
}

func play(chords []string) {
	cfg := config.Load()

	preset, ok := player.PresetByName(playPreset)
	if !ok {
		log.Fatalf("Unknown preset %q (have: %v)", playPreset, player.PresetNames())
	}

	req := engine.Request{
		Chords:       chords,
		StyleID:      playStyle,
		TempoBPM:     playTempo,
		Meter:        note.Meter{Numerator: 4, Denominator: 4},
		BarsPerChord: playBars,
	}

	eng := engine.New(style.Builtin())
	events, err := eng.Generate(req)
	if err != nil {
		log.Fatal("Generation failed:", err)
	}

	send := func(msg gomidi.Message) error {
		fmt.Println(msg.String())
		return nil
	}

	sess := player.NewSession(send, player.Options{
		Lookahead: cfg.SchedLookahead,
		Grace:     cfg.SchedGrace,
	})
	if err := sess.Arm(req.Program(), events, preset); err != nil {
		log.Fatal("Arming failed:", err)
	}
	sess.Telemetry().OnDrop = func(drop player.DropRecord) {
		fmt.Printf("⚠️  dropped pitch %d at tick %d (%s late)\n", drop.Pitch, drop.Tick, drop.Lateness)
	}
	if err := sess.Play(); err != nil {
		log.Fatal("Playback failed:", err)
	}
	sess.Wait()

	dispatched, ornaments, core := sess.Telemetry().Counts()
	fmt.Printf("dispatched=%d ornament_drops=%d core_drops=%d\n", dispatched, ornaments, core)

	if ornaments > 0 || core > 0 {
		metrics.NewSentryMetrics().RecordLateDrops(ornaments, core)
		if cloudwatch, err := metrics.NewClient(context.Background(), cfg.Environment); err == nil {
			cloudwatch.RecordLateDrops(ornaments, core)
		}
	}
}
