package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "noted",
	Short: "Drum notation tools",
	Long: `noted reads drum compositions written as position records, engraves them as
ABC notation, resolves their timing and plays or exports them as MIDI.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
