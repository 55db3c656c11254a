package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jsphweid/noted/file"
	"github.com/jsphweid/noted/midi"
	"github.com/jsphweid/noted/playback"
	"github.com/spf13/cobra"
)

var exportOpts playback.Options

func init() {
	rootCmd.AddCommand(exportCmd)
	addBarRangeFlags(exportCmd.Flags(), &exportOpts.StartBar, &exportOpts.EndBar)
}

var exportCmd = &cobra.Command{
	Use:   "export [file] [out.mid]",
	Short: "Exports a composition as a MIDI drum track",
	Long:  `Exports one pass of a composition as a General MIDI drum track.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(Export(args[0], args[1], exportOpts))
	},
}

func Export(path, out string, opts playback.Options) error {
	c, err := file.Load(path)
	if err != nil {
		return err
	}

	s, err := playback.BuildSchedule(c, opts)
	if err != nil {
		return err
	}

	if err := midi.WriteFile(midi.Export(s, c), out); err != nil {
		return err
	}

	info, err := os.Stat(out)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d hits, %s\n", out, len(s.Events), humanize.Bytes(uint64(info.Size())))
	return nil
}
