package cmd

import (
	"fmt"

	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/file"
	"github.com/jsphweid/noted/timing"
	"github.com/spf13/cobra"
)

var timesNotes bool

func init() {
	rootCmd.AddCommand(timesCmd)
	timesCmd.Flags().BoolVar(&timesNotes, "notes", false, "also print the time of every note")
}

var timesCmd = &cobra.Command{
	Use:   "times [file]",
	Short: "Prints the time keys of a composition",
	Long:  `Prints the time keys of a composition and, with --notes, when every note sounds.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := file.Load(args[0])
		cobra.CheckErr(err)

		timeline := timing.NewTimeline(c)
		for _, k := range timeline.Keys {
			fmt.Printf("%-12s %10.4f  %s\n", k.Position, k.Seconds, formatSeconds(k.Seconds))
		}

		if !timesNotes {
			return
		}

		notes, err := timeline.NoteTimes(c)
		cobra.CheckErr(err)
		for _, n := range notes {
			fmt.Printf("%-24s %10.4f\n", codec.NoteToString(n.Note), n.Seconds)
		}
	},
}
