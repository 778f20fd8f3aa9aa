package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set via ldflags during build
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "stringmaster",
	Short: "Deterministic accompaniment generator",
	Long: `stringmaster turns chord progressions into comping and bass clips,
serves them over HTTP, and plays them live against wall-clock deadlines.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
