package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/constants"
	"github.com/jsphweid/noted/file"
	"github.com/jsphweid/noted/midi"
	"github.com/jsphweid/noted/model"
	"github.com/jsphweid/noted/timing"
	"github.com/jsphweid/noted/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Inspects a composition or an exported MIDI file",
	Long:  `Prints bars, meters, tempos and note statistics of a composition, or the drum hits of a MIDI file.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		if strings.EqualFold(filepath.Ext(path), ".mid") {
			cobra.CheckErr(inspectMidi(path))
			return
		}

		c, err := file.Load(path)
		cobra.CheckErr(err)
		inspect(c)
	},
}

func inspectMidi(path string) error {
	s, err := midi.ReadFile(path)
	if err != nil {
		return err
	}

	names := make(map[uint8]string, len(midi.Keys))
	for value, key := range midi.Keys {
		names[key] = value
	}

	for _, h := range midi.Hits(s) {
		fmt.Printf("%10.4f  %-4s %3d  vel %d\n", h.Seconds, names[h.Key], h.Key, h.Velocity)
	}
	return nil
}

func inspect(c model.Composition) {
	timeline := timing.NewTimeline(c)

	fmt.Printf("bars: %v\n", timeline.BarCount)
	fmt.Printf("duration: %s\n", formatSeconds(timeline.Duration()))

	counts := make(map[string]int)
	for _, n := range c.Notes {
		counts[n.Value]++
	}
	for _, v := range util.GetKeys(counts) {
		mark := ""
		if !constants.IsDrumNote(v) {
			mark = " (not a drum)"
		}
		fmt.Printf("  %-6s %d%s\n", v, counts[v], mark)
	}

	seen := make(map[string]int)
	for bar := 0; bar < timeline.BarCount; bar++ {
		meter := c.BarMeter(bar)
		bpm := c.PositionBpm(model.BarPosition{Bar: bar})
		notes := len(c.BarNotes(bar))

		key := codec.BarKey(c, bar, true)
		same := ""
		if first, ok := seen[key]; ok {
			same = fmt.Sprintf("  same as bar %d", first)
		} else {
			seen[key] = bar
		}

		fmt.Printf("bar %3d  %-6s %6s bpm  %3d notes%s\n", bar, meter, codec.FormatBpm(bpm), notes, same)
	}

	meters := make([]string, 0, len(c.MeterChanges)+1)
	for bar := 0; bar < timeline.BarCount; bar++ {
		meters = append(meters, c.BarMeter(bar).String())
	}
	fmt.Printf("meters: %s\n", strings.Join(util.Unique(meters), ", "))
}
